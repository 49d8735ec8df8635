// Package common contains constants, sentinel errors and small helpers shared
// by the CloudVault client packages.
package common

const (
	// AuthorizationHeaderName carries the bearer token on API requests.
	AuthorizationHeaderName = "Authorization"

	// RequestIDHeaderName correlates a client request with backend logs.
	RequestIDHeaderName = "X-Request-ID"

	// Keys of the persisted session in the local metadata store.
	MetaKeyToken = "token"
	MetaKeyUser  = "user"
)
