package storage

import "errors"

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when inserting a record whose unique key
	// (customer title, account id, or admin id) is already taken.
	ErrConflict = errors.New("record already exists")
)
