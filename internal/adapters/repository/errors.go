package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrOpen     = errors.New("open store failed")
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)
