// Package apperr defines the sentinel domain errors shared across services,
// repositories and handlers. Callers match them with errors.Is; the HTTP
// boundary translates them to response statuses.
package apperr

import "errors"

var (
	// ErrNotFound covers unknown users and to-do items (404).
	ErrNotFound = errors.New("not found")

	// ErrNotAuthorized covers missing/malformed/expired credentials and
	// password mismatches (401).
	ErrNotAuthorized = errors.New("not authorized")

	// ErrConflict covers duplicate usernames (409).
	ErrConflict = errors.New("already exists")

	// ErrValidation covers bad request shapes and absent, expired or
	// mismatched OTPs (400).
	ErrValidation = errors.New("bad request")
)
