package service

import "errors"

var (
	// ErrNotFound covers missing posts, accounts, and business profiles.
	ErrNotFound = errors.New("not found")
	// ErrValidation covers malformed creation input rejected before any
	// state is written.
	ErrValidation = errors.New("validation failed")
)
