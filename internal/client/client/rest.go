package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dmitrijs2005/cloudvault/internal/client/models"
	"github.com/dmitrijs2005/cloudvault/internal/common"
	"github.com/dmitrijs2005/cloudvault/internal/logging"
	"github.com/google/uuid"
)

const (
	pathMyFiles  = "/api/files/my"
	pathUpload   = "/api/s3/upload"
	pathDownload = "/api/s3/download/"
	pathDelete   = "/api/s3/delete/"
	pathLogin    = "/api/auth/login"
	pathRegister = "/api/auth/register"

	msgFetchFailed    = "Failed to fetch files. Please try again."
	msgUploadFailed   = "File upload failed. Please try again."
	msgDownloadFailed = "File download failed. Please try again."
	msgDeleteFailed   = "File deletion failed. Please try again."
	msgLoginFailed    = "Login failed. Please check your credentials."
	msgRegisterFailed = "Registration failed. Please try again."
)

// RESTClient talks to the CloudVault HTTP API.
type RESTClient struct {
	baseURL         *url.URL
	http            *http.Client
	tokens          TokenSource
	onUnauthorized  func()
	retryMaxElapsed time.Duration
	log             logging.Logger
}

type RESTOption func(*RESTClient)

func WithHTTPClient(c *http.Client) RESTOption {
	return func(r *RESTClient) { r.http = c }
}

func WithTokenSource(ts TokenSource) RESTOption {
	return func(r *RESTClient) { r.tokens = ts }
}

// WithUnauthorizedHook registers fn to run whenever the API answers 401.
func WithUnauthorizedHook(fn func()) RESTOption {
	return func(r *RESTClient) { r.onUnauthorized = fn }
}

// WithRetryMaxElapsed bounds the total time spent retrying a GET. Zero
// disables retries.
func WithRetryMaxElapsed(d time.Duration) RESTOption {
	return func(r *RESTClient) { r.retryMaxElapsed = d }
}

func WithLogger(l logging.Logger) RESTOption {
	return func(r *RESTClient) { r.log = l }
}

func NewRESTClient(baseURL string, opts ...RESTOption) (*RESTClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host required", baseURL)
	}

	c := &RESTClient{
		baseURL:         u,
		http:            &http.Client{Timeout: 30 * time.Second},
		tokens:          TokenFunc(func() string { return "" }),
		retryMaxElapsed: 10 * time.Second,
		log:             logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// envelope is the common body shape of every JSON answer of the API.
type envelope struct {
	Status  bool            `json:"status"`
	Message json.RawMessage `json:"message,omitempty"`
	Files   json.RawMessage `json:"files,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// messageText flattens the "message" field, which the API sends either as a
// string or as a list of validation errors.
func messageText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	return ""
}

func (c *RESTClient) endpoint(path string) string {
	return c.baseURL.String() + path
}

func (c *RESTClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	if token := c.tokens.Token(); token != "" {
		req.Header.Set(common.AuthorizationHeaderName, "Bearer "+token)
	}
	return req, nil
}

// do sends the request once. A non-nil response always has a 2xx status;
// every other outcome is turned into an *APIError.
func (c *RESTClient) do(req *http.Request, fallback string) (*http.Response, error) {
	c.log.Debug(req.Context(), "api request", "method", req.Method, "path", req.URL.Path,
		"request_id", req.Header.Get(common.RequestIDHeaderName))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &APIError{Message: fallback, Err: fmt.Errorf("%w: %v", ErrUnavailable, err)}
	}

	c.log.Debug(req.Context(), "api response", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	apiErr := &APIError{StatusCode: resp.StatusCode, Message: fallback}
	var env envelope
	if b, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)); readErr == nil && json.Unmarshal(b, &env) == nil {
		if msg := messageText(env.Message); msg != "" {
			apiErr.Message = msg
		}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		apiErr.Err = ErrUnauthorized
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
	case resp.StatusCode == http.StatusForbidden:
		apiErr.Err = ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		apiErr.Err = ErrNotFound
	case resp.StatusCode >= 500:
		apiErr.Err = ErrUnavailable
	default:
		apiErr.Err = ErrRejected
	}
	return nil, apiErr
}

// doIdempotent retries transport failures and 5xx answers with exponential
// backoff. Anything else is returned on the first attempt.
func (c *RESTClient) doIdempotent(ctx context.Context, path, fallback string) (*http.Response, error) {
	var resp *http.Response

	operation := func() error {
		req, err := c.newRequest(ctx, http.MethodGet, path, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		r, err := c.do(req, fallback)
		if err != nil {
			if errors.Is(err, ErrUnavailable) {
				return err
			}
			return backoff.Permanent(err)
		}
		resp = r
		return nil
	}

	var b backoff.BackOff = &backoff.StopBackOff{}
	if c.retryMaxElapsed > 0 {
		eb := backoff.NewExponentialBackOff()
		eb.MaxElapsedTime = c.retryMaxElapsed
		b = eb
	}

	notify := func(err error, wait time.Duration) {
		c.log.Warn(ctx, "retrying request", "path", path, "wait", wait, "err", err)
	}
	if err := backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notify); err != nil {
		return nil, err
	}
	return resp, nil
}

func decodeEnvelope(resp *http.Response, fallback string) (*envelope, error) {
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: fallback,
			Err: fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)}
	}
	if !env.Status {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: messageText(env.Message), Err: ErrRejected}
	}
	return &env, nil
}

// List returns the caller's files. Only {status: true, files: [...]} counts
// as success.
func (c *RESTClient) List(ctx context.Context) ([]models.FileRecord, error) {
	resp, err := c.doIdempotent(ctx, pathMyFiles, msgFetchFailed)
	if err != nil {
		return nil, err
	}

	env, err := decodeEnvelope(resp, msgFetchFailed)
	if err != nil {
		return nil, err
	}
	if len(env.Files) == 0 || string(env.Files) == "null" {
		return nil, &APIError{StatusCode: resp.StatusCode, Err: ErrUnexpectedResponse}
	}

	var files []models.FileRecord
	if err := json.Unmarshal(env.Files, &files); err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msgFetchFailed,
			Err: fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)}
	}
	return files, nil
}

// Upload streams blob as the multipart field "file".
func (c *RESTClient) Upload(ctx context.Context, blob *Blob) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeMultipart(mw, blob))
	}()

	req, err := c.newRequest(ctx, http.MethodPost, pathUpload, pr)
	if err != nil {
		_ = pr.Close()
		return &APIError{Message: msgUploadFailed, Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.do(req, msgUploadFailed)
	_ = pr.Close()
	if err != nil {
		return err
	}
	_, err = decodeEnvelope(resp, msgUploadFailed)
	return err
}

func writeMultipart(mw *multipart.Writer, blob *Blob) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, blob.Name))
	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, blob.Body); err != nil {
		return err
	}
	return mw.Close()
}

// Download returns the raw object stored under key. The caller owns the
// returned body.
func (c *RESTClient) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := c.doIdempotent(ctx, pathDownload+escapeKey(key), msgDownloadFailed)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *RESTClient) Delete(ctx context.Context, id models.FileID) error {
	req, err := c.newRequest(ctx, http.MethodDelete, pathDelete+url.PathEscape(id.String()), nil)
	if err != nil {
		return &APIError{Message: msgDeleteFailed, Err: err}
	}
	resp, err := c.do(req, msgDeleteFailed)
	if err != nil {
		return err
	}
	_, err = decodeEnvelope(resp, msgDeleteFailed)
	return err
}

type loginData struct {
	Token string      `json:"token"`
	User  models.User `json:"data"`
}

func (c *RESTClient) Login(ctx context.Context, email string, password []byte) (*LoginResult, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": string(password)})
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, pathLogin, bytes.NewReader(body))
	if err != nil {
		return nil, &APIError{Message: msgLoginFailed, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req, msgLoginFailed)
	if err != nil {
		return nil, err
	}
	env, err := decodeEnvelope(resp, msgLoginFailed)
	if err != nil {
		return nil, err
	}

	var data loginData
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Token == "" {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msgLoginFailed, Err: ErrUnexpectedResponse}
	}
	return &LoginResult{Token: data.Token, User: data.User}, nil
}

func (c *RESTClient) Register(ctx context.Context, r RegisterRequest) error {
	body, err := json.Marshal(r)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, pathRegister, bytes.NewReader(body))
	if err != nil {
		return &APIError{Message: msgRegisterFailed, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req, msgRegisterFailed)
	if err != nil {
		return err
	}
	_, err = decodeEnvelope(resp, msgRegisterFailed)
	return err
}

func (c *RESTClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// escapeKey escapes each segment of an object key but keeps the separators.
func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
