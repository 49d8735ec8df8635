package vault

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/cloudvault/internal/client/models"
)

// ErrMalformedLink is returned by ResolveKey when a file link yields no
// storage key. It is a download failure: no network call is attempted.
var ErrMalformedLink = fmt.Errorf("%w: could not extract file key from URL", ErrDownloadFailed)

const fallbackName = "download"

var mediaExtensions = map[string]models.MediaKind{
	"jpg":  models.MediaImage,
	"jpeg": models.MediaImage,
	"png":  models.MediaImage,
	"gif":  models.MediaImage,
	"webp": models.MediaImage,
	"svg":  models.MediaImage,
	"mp4":  models.MediaVideo,
	"webm": models.MediaVideo,
	"ogg":  models.MediaVideo,
	"pdf":  models.MediaPDF,
}

// ResolveKey recovers the storage key from a file link. For both
// path-style (https://s3.<region>/<bucket>/<key>) and virtual-hosted
// (https://<bucket>.s3.<region>/<key>) links the key is the URL path
// without its leading slash, so a path-style key keeps the bucket as its
// first segment. Links that are not absolute URLs fall back to their last
// slash-delimited segment.
func ResolveKey(fileLink string) (string, error) {
	var key string
	if u, err := url.Parse(fileLink); err == nil && u.IsAbs() {
		key = strings.TrimPrefix(u.Path, "/")
	} else {
		key = lastSegment(fileLink)
	}
	if key == "" {
		return "", ErrMalformedLink
	}
	return key, nil
}

// DisplayName is the last segment of key, or "download" when it is empty.
func DisplayName(key string) string {
	if name := key[strings.LastIndex(key, "/")+1:]; name != "" {
		return name
	}
	return fallbackName
}

// MediaKindOf classifies name by its lowercased extension.
func MediaKindOf(name string) models.MediaKind {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return models.MediaOther
	}
	if kind, ok := mediaExtensions[strings.ToLower(name[i+1:])]; ok {
		return kind
	}
	return models.MediaOther
}

// LinkName is the best-effort display name of a link. Unlike downloads,
// share actions never fail on a malformed link.
func LinkName(fileLink string) string {
	if key, err := ResolveKey(fileLink); err == nil {
		return DisplayName(key)
	}
	return DisplayName(fileLink)
}

func lastSegment(s string) string {
	parts := strings.Split(s, "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}
	return ""
}
