package common

import "errors"

var (
	// Session errors.
	ErrNotLoggedIn  = errors.New("not logged in")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Input validation.
	ErrEmptyInput = errors.New("empty input")
)
