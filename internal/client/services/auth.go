// Package services contains application services for the CloudVault client.
// This file defines the session provider: register, login, logout, restoring
// the persisted session, and the 401 teardown hook.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/cloudvault/internal/client/client"
	"github.com/dmitrijs2005/cloudvault/internal/client/models"
	"github.com/dmitrijs2005/cloudvault/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/cloudvault/internal/common"
	"github.com/dmitrijs2005/cloudvault/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// AuthService manages the current session.
//
// Contract:
//   - Register: create an account on the backend; does not log in.
//   - Login: authenticate, persist token and user, and make them current.
//   - Logout: forget the session locally and in the store.
//   - Restore: reload a persisted session; expired tokens are discarded.
//   - Token: the bearer token of the current session, "" when logged out.
//   - HandleUnauthorized: teardown triggered by a 401 from the backend.
type AuthService interface {
	Register(ctx context.Context, username, email string, password []byte) error
	Login(ctx context.Context, email string, password []byte) (*models.Session, error)
	Logout(ctx context.Context) error
	Restore(ctx context.Context) (*models.Session, error)
	Session() *models.Session
	Token() string
	HandleUnauthorized()
}

type authService struct {
	client client.AuthClient
	repo   metadata.Repository
	log    logging.Logger
	now    func() time.Time

	mu      sync.RWMutex
	session *models.Session
}

// NewAuthService constructs an AuthService bound to the backend auth API and
// the local metadata store.
func NewAuthService(ac client.AuthClient, repo metadata.Repository, log logging.Logger) AuthService {
	if log == nil {
		log = logging.Nop()
	}
	return &authService{client: ac, repo: repo, log: log, now: time.Now}
}

func (a *authService) Register(ctx context.Context, username, email string, password []byte) error {
	if email == "" || len(password) == 0 {
		return common.ErrEmptyInput
	}
	req := client.RegisterRequest{Username: username, Email: email, Password: string(password)}
	if err := a.client.Register(ctx, req); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	a.log.Info(ctx, "account registered", "email", email)
	return nil
}

// Login authenticates and persists the session in one transaction.
func (a *authService) Login(ctx context.Context, email string, password []byte) (*models.Session, error) {
	if email == "" || len(password) == 0 {
		return nil, common.ErrEmptyInput
	}

	res, err := a.client.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	sess := newSession(res.Token, res.User)
	if sess.Expired(a.now()) {
		return nil, common.ErrTokenExpired
	}

	user, err := json.Marshal(res.User)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}
	if err := a.repo.SetMany(ctx, map[string][]byte{
		common.MetaKeyToken: []byte(res.Token),
		common.MetaKeyUser:  user,
	}); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	a.setSession(sess)
	a.log.Info(ctx, "logged in", "user", sess.User.DisplayName())
	return sess, nil
}

func (a *authService) Logout(ctx context.Context) error {
	a.setSession(nil)
	if err := a.repo.Delete(ctx, common.MetaKeyToken, common.MetaKeyUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Restore loads the persisted session. It returns common.ErrNotLoggedIn
// when nothing is stored and common.ErrTokenExpired (after clearing the
// store) when the token has run out.
func (a *authService) Restore(ctx context.Context) (*models.Session, error) {
	token, err := a.repo.Get(ctx, common.MetaKeyToken)
	if errors.Is(err, metadata.ErrNotFound) {
		return nil, common.ErrNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}

	var user models.User
	if raw, err := a.repo.Get(ctx, common.MetaKeyUser); err == nil {
		if err := json.Unmarshal(raw, &user); err != nil {
			a.log.Warn(ctx, "stored user unreadable", "err", err)
		}
	} else if !errors.Is(err, metadata.ErrNotFound) {
		return nil, fmt.Errorf("load user: %w", err)
	}

	sess := newSession(string(token), user)
	if sess.Expired(a.now()) {
		a.log.Info(ctx, "stored session expired", "expired_at", sess.ExpiresAt)
		if err := a.Logout(ctx); err != nil {
			return nil, err
		}
		return nil, common.ErrTokenExpired
	}

	a.setSession(sess)
	return sess, nil
}

func (a *authService) Session() *models.Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.session == nil {
		return nil
	}
	s := *a.session
	return &s
}

func (a *authService) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.session == nil {
		return ""
	}
	return a.session.Token
}

// HandleUnauthorized is installed as the gateway's 401 hook.
func (a *authService) HandleUnauthorized() {
	ctx := context.Background()
	a.log.Warn(ctx, "session rejected by backend, logging out")
	if err := a.Logout(ctx); err != nil {
		a.log.Error(ctx, "clear session failed", "err", err)
	}
}

func (a *authService) setSession(s *models.Session) {
	a.mu.Lock()
	a.session = s
	a.mu.Unlock()
}

// newSession reads subject and expiry from the token without verifying it;
// the signature is the backend's concern. Opaque tokens are accepted as-is.
func newSession(token string, user models.User) *models.Session {
	sess := &models.Session{Token: token, User: user}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return sess
	}
	if sub, err := claims.GetSubject(); err == nil {
		sess.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		sess.ExpiresAt = exp.Time
	}
	if sess.User.Email == "" {
		if email, ok := claims["email"].(string); ok {
			sess.User.Email = email
		}
	}
	return sess
}
