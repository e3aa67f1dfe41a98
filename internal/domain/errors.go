package domain

import "errors"

var (
	// ErrValidation marks missing or malformed request input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a referenced file or session that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUpstream marks a failed call to a remote AI service.
	ErrUpstream = errors.New("upstream service failure")
	// ErrProtocolMismatch marks an upstream response that does not match the
	// expected shape. Callers surface it as a general failure.
	ErrProtocolMismatch = errors.New("unexpected upstream response")
)
