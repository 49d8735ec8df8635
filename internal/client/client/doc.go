// Package client is the CloudVault backend boundary.
//
// # Overview
//
// The package provides:
//  1. The gateway contract used by the file session controller (Client):
//     List, Upload, Download and Delete.
//  2. The authentication calls used by the session provider (AuthClient).
//  3. RESTClient, the HTTP implementation talking to the CloudVault API. It
//     attaches the bearer token, resolves paths against the base URL, retries
//     idempotent GETs with exponential backoff and extracts the backend's
//     "message" field from failed responses.
//  4. S3Client, a direct object-store implementation of Client for buckets
//     reachable without the API.
//
// # Error Handling
//
// Every failure is an *APIError whose Message is ready to show to the user;
// use Message(err, fallback) to read it. Transport conditions are exposed as
// sentinels matched with errors.Is: ErrUnavailable, ErrUnauthorized,
// ErrNotFound, ErrRejected, ErrUnexpectedResponse.
//
// A 401 from the REST API additionally fires the unauthorized hook so the
// session provider can drop the stored token.
package client
