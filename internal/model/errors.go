package model

import "errors"

var (
	// ErrUnauthorized is returned when the server rejects credentials or a token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoSession is returned by operations that require a stored token.
	ErrNoSession = errors.New("no active session")
)
