package models

import "time"

// User is the account profile returned by the login endpoint.
type User struct {
	ID       int64  `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// DisplayName is what the session header shows: username, else email,
// else "User".
func (u *User) DisplayName() string {
	switch {
	case u == nil:
		return "User"
	case u.Username != "":
		return u.Username
	case u.Email != "":
		return u.Email
	default:
		return "User"
	}
}

// Session is an authenticated login: the bearer token plus what the client
// knows about its owner.
type Session struct {
	Token     string
	User      User
	Subject   string
	ExpiresAt time.Time
}

// Expired reports whether the token carried an expiry that has passed.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
