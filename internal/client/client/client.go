package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/cloudvault/internal/client/models"
)

// Client is the remote file gateway: everything the session controller
// needs from the backend. A nil error from List means the backend answered
// with a valid file listing; shape checks never leak past this boundary.
type Client interface {
	List(ctx context.Context) ([]models.FileRecord, error)
	Upload(ctx context.Context, blob *Blob) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, id models.FileID) error
	Close() error
}

// AuthClient is the part of the backend API used by the session provider.
type AuthClient interface {
	Login(ctx context.Context, email string, password []byte) (*LoginResult, error)
	Register(ctx context.Context, req RegisterRequest) error
}

// Blob is a local file picked for upload.
type Blob struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type LoginResult struct {
	Token string
	User  models.User
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenSource supplies the bearer token attached to every request.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a plain function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }
