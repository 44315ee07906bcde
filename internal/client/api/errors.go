package api

import "errors"

var (
	// ErrUnavailable means the backend could not be reached or answered
	// with a server error. Retrying is up to the user, never automatic.
	ErrUnavailable = errors.New("server unavailable")

	// ErrUnauthorized means the backend rejected the credentials or token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound means the requested resource does not exist.
	ErrNotFound = errors.New("not found")
)
