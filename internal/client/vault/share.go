package vault

import (
	"errors"
	"net/url"
	"strings"
)

// ErrNoCapability is returned when the dispatcher lacks the clipboard or
// the URL opener an action needs.
var ErrNoCapability = errors.New("capability not available")

const messagingBase = "https://wa.me/"

// Clipboard writes text to the system clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

// Opener hands a URL to the platform (browser, mail client, messaging app).
type Opener interface {
	OpenURL(url string) error
}

// ClipboardFunc adapts a function to Clipboard.
type ClipboardFunc func(text string) error

func (f ClipboardFunc) WriteAll(text string) error { return f(text) }

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(url string) error

func (f OpenerFunc) OpenURL(u string) error { return f(u) }

// Dispatcher builds the outbound share actions for a file link.
type Dispatcher struct {
	clip Clipboard
	open Opener
}

func NewDispatcher(clip Clipboard, open Opener) *Dispatcher {
	return &Dispatcher{clip: clip, open: open}
}

// CopyLink writes the raw link to the clipboard.
func (d *Dispatcher) CopyLink(fileLink string) error {
	if d == nil || d.clip == nil {
		return ErrNoCapability
	}
	return d.clip.WriteAll(fileLink)
}

// ShareViaMessaging opens a messaging deep link carrying the file name and
// link.
func (d *Dispatcher) ShareViaMessaging(fileLink string) error {
	return d.openURL(MessagingURL(fileLink))
}

// ShareViaEmail opens a mail draft with the file name as subject and the
// link in the body.
func (d *Dispatcher) ShareViaEmail(fileLink string) error {
	return d.openURL(MailURL(fileLink))
}

func (d *Dispatcher) openURL(u string) error {
	if d == nil || d.open == nil {
		return ErrNoCapability
	}
	return d.open.OpenURL(u)
}

// MessagingURL is the wa.me deep link sharing fileLink.
func MessagingURL(fileLink string) string {
	text := "Check out this file: " + LinkName(fileLink) + "\n" + fileLink
	return messagingBase + "?text=" + encodeComponent(text)
}

// MailURL is the mailto: link sharing fileLink.
func MailURL(fileLink string) string {
	subject := "File: " + LinkName(fileLink)
	body := "Check out this file:\n" + fileLink
	return "mailto:?subject=" + encodeComponent(subject) + "&body=" + encodeComponent(body)
}

// encodeComponent escapes s for a query value, spaces as %20 rather than
// '+', which mail clients would show literally.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
