package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable        = errors.New("server unavailable")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrRejected           = errors.New("request rejected")
	ErrUnexpectedResponse = errors.New("unexpected response")
)

// APIError is a failed gateway call. Message is the backend's own
// explanation when it sent one, otherwise the per-call fallback; it is empty
// only when the backend answered 2xx with status=false and no message.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// Message returns the user-facing text carried by err, or fallback when err
// carries none.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
