package vault

import "errors"

// Failure kinds carried by error notices.
var (
	ErrFetchFailed     = errors.New("fetch failed")
	ErrUploadFailed    = errors.New("upload failed")
	ErrDeleteFailed    = errors.New("delete failed")
	ErrDownloadFailed  = errors.New("download failed")
	ErrViewFailed      = errors.New("view failed")
	ErrShareCopyFailed = errors.New("share copy failed")
)

// User-facing notice texts.
const (
	msgUploaded   = "File uploaded successfully!"
	msgDeleted    = "File deleted successfully!"
	msgDownloaded = "File downloaded successfully!"
	msgLinkCopied = "Link copied to clipboard!"

	msgFetchFailed    = "Failed to fetch files"
	msgUploadFailed   = "Upload failed"
	msgDeleteFailed   = "Delete failed"
	msgDownloadFailed = "File download failed"
	msgMalformedLink  = "Could not extract file key from URL"
	msgViewFailed     = "Failed to view file"
	msgCopyFailed     = "Failed to copy link"

	deletePrompt = "Are you sure you want to delete this file?"
)

type NoticeKind int

const (
	NoticeNone NoticeKind = iota
	NoticeError
	NoticeSuccess
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeError:
		return "error"
	case NoticeSuccess:
		return "success"
	default:
		return "none"
	}
}

// Notice is the single transient status slot. Err is set for error notices
// and matches one of the failure kinds with errors.Is.
type Notice struct {
	Kind    NoticeKind
	Message string
	Err     error
}

func (n Notice) IsError() bool   { return n.Kind == NoticeError }
func (n Notice) IsSuccess() bool { return n.Kind == NoticeSuccess }
