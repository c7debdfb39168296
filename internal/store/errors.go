package store

import "errors"

// Predefined errors for the store layer.
var (
	// ErrNotFound indicates that a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrConflict indicates a uniqueness or state conflict, e.g. a duplicate
	// order id or a payment that is no longer pending.
	ErrConflict = errors.New("conflict")
)
