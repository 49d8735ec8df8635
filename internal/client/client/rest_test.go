package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/cloudvault/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestREST(t *testing.T, h http.HandlerFunc, opts ...RESTOption) *RESTClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	opts = append([]RESTOption{WithRetryMaxElapsed(0)}, opts...)
	c, err := NewRESTClient(srv.URL, opts...)
	require.NoError(t, err)
	return c
}

func TestNewRESTClient_RejectsBadBaseURL(t *testing.T) {
	_, err := NewRESTClient("localhost")
	require.Error(t, err)

	_, err = NewRESTClient("://bad")
	require.Error(t, err)
}

func TestList_Success_AttachesBearerAndRequestID(t *testing.T) {
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/files/my", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_, _ = io.WriteString(w, `{"status":true,"files":[
			{"id":1,"fileLink":"https://vault.s3.eu-north-1.amazonaws.com/a.png"},
			{"id":2,"fileLink":"https://vault.s3.eu-north-1.amazonaws.com/b.pdf"}]}`)
	}, WithTokenSource(TokenFunc(func() string { return "tok-1" })))

	files, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, models.FileID("1"), files[0].ID)
	assert.Equal(t, "https://vault.s3.eu-north-1.amazonaws.com/b.pdf", files[1].FileLink)
}

func TestList_NoTokenNoAuthorizationHeader(t *testing.T) {
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"status":true,"files":[]}`)
	})

	files, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestList_InvalidShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"status false", `{"status":false}`},
		{"files missing", `{"status":true}`},
		{"files null", `{"status":true,"files":null}`},
		{"not json", `<html>oops</html>`},
		{"files wrong type", `{"status":true,"files":"nope"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tc.body)
			})
			files, err := c.List(context.Background())
			require.Error(t, err)
			assert.Nil(t, files)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
		})
	}
}

func TestList_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"status":true,"files":[]}`)
	}, WithRetryMaxElapsed(5_000_000_000))

	_, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestList_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"status":false,"message":"bad"}`)
	}, WithRetryMaxElapsed(5_000_000_000))

	_, err := c.List(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRejected))
	assert.Equal(t, "bad", Message(err, "x"))
	assert.Equal(t, int32(1), calls.Load())
}

func TestUnauthorized_FiresHook(t *testing.T) {
	var fired atomic.Bool
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, WithUnauthorizedHook(func() { fired.Store(true) }))

	_, err := c.List(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.True(t, fired.Load())
	assert.Equal(t, msgFetchFailed, Message(err, "x"))
}

func TestUpload_SendsMultipartFile(t *testing.T) {
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/s3/upload", r.URL.Path)

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		b, _ := io.ReadAll(f)

		assert.Equal(t, "notes.txt", hdr.Filename)
		assert.Equal(t, "text/plain", hdr.Header.Get("Content-Type"))
		assert.Equal(t, "hello vault", string(b))

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"status":true,"url":"https://vault.s3.amazonaws.com/notes.txt"}`)
	})

	err := c.Upload(context.Background(), &Blob{Name: "notes.txt", ContentType: "text/plain", Body: strings.NewReader("hello vault")})
	require.NoError(t, err)
}

func TestUpload_ServerMessageIsExtracted(t *testing.T) {
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"status":false,"message":"Maximum upload size exceeded"}`)
	})

	err := c.Upload(context.Background(), &Blob{Name: "big.bin", Body: strings.NewReader("x")})
	require.Error(t, err)
	assert.Equal(t, "Maximum upload size exceeded", Message(err, "generic"))
}

func TestUpload_StatusFalseWithoutMessage(t *testing.T) {
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		_, _ = io.WriteString(w, `{"status":false}`)
	})

	err := c.Upload(context.Background(), &Blob{Name: "a", Body: strings.NewReader("x")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRejected))
	assert.Equal(t, "Upload failed", Message(err, "Upload failed"))
}

func TestDownload_ReturnsBodyAndEscapesKey(t *testing.T) {
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/s3/download/vault/my%20report.pdf", r.URL.EscapedPath())
		_, _ = w.Write([]byte{0x25, 0x50, 0x44, 0x46})
	})

	body, err := c.Download(context.Background(), "vault/my report.pdf")
	require.NoError(t, err)
	defer body.Close()

	b, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), b)
}

func TestDownload_NotFound(t *testing.T) {
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.Download(context.Background(), "missing.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, msgDownloadFailed, Message(err, "x"))
}

func TestDelete(t *testing.T) {
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/s3/delete/42", r.URL.Path)
		_, _ = io.WriteString(w, `{"status":true,"message":"File deleted successfully"}`)
	})

	require.NoError(t, c.Delete(context.Background(), "42"))
}

func TestDelete_ServerError(t *testing.T) {
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"status":false,"message":"The specified key does not exist."}`)
	})

	err := c.Delete(context.Background(), "42")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.Equal(t, "The specified key does not exist.", Message(err, "x"))
}

func TestTransportFailure_UsesFallback(t *testing.T) {
	c, err := NewRESTClient("http://127.0.0.1:1", WithRetryMaxElapsed(0))
	require.NoError(t, err)

	err = c.Delete(context.Background(), "1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.Equal(t, msgDeleteFailed, Message(err, "x"))
}

func TestLogin(t *testing.T) {
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		b, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"email":"a@b.c","password":"pw"}`, string(b))
		_, _ = io.WriteString(w, `{"status":true,"data":{"token":"jwt","status":"true",
			"data":{"userId":7,"username":"alice","email":"a@b.c"}}}`)
	})

	res, err := c.Login(context.Background(), "a@b.c", []byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, "jwt", res.Token)
	assert.Equal(t, int64(7), res.User.ID)
	assert.Equal(t, "alice", res.User.Username)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"status":false,"message":"Invalid email or password"}`)
	})

	_, err := c.Login(context.Background(), "a@b.c", []byte("bad"))
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", Message(err, "x"))
}

func TestRegister_ValidationMessages(t *testing.T) {
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"status":false,"message":["email is required","username is required"]}`)
	})

	err := c.Register(context.Background(), RegisterRequest{Password: "pw"})
	require.Error(t, err)
	assert.Equal(t, "email is required; username is required", Message(err, "x"))
}

func TestRegister_Success(t *testing.T) {
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/register", r.URL.Path)
		_, _ = io.WriteString(w, `{"status":true,"message":"User created successfully"}`)
	})

	require.NoError(t, c.Register(context.Background(), RegisterRequest{Username: "u", Email: "e", Password: "p"}))
}

func TestMessage_Fallbacks(t *testing.T) {
	assert.Equal(t, "fb", Message(nil, "fb"))
	assert.Equal(t, "fb", Message(errors.New("plain"), "fb"))
	assert.Equal(t, "fb", Message(&APIError{Err: ErrRejected}, "fb"))
	assert.Equal(t, "msg", Message(&APIError{Message: "msg"}, "fb"))
}

func TestAPIError_Error(t *testing.T) {
	assert.Equal(t, "m: request rejected", (&APIError{Message: "m", Err: ErrRejected}).Error())
	assert.Equal(t, "m", (&APIError{Message: "m"}).Error())
	assert.Equal(t, "not found", (&APIError{Err: ErrNotFound}).Error())
	assert.Equal(t, "request failed with status 418", (&APIError{StatusCode: 418}).Error())
}
