package models

import "errors"

// Domain errors shared across layers
var (
	// ErrRowNotFound indicates that no row matches the given id
	ErrRowNotFound = errors.New("row not found")

	// ErrLoadFailed indicates the initial fetch reported success=false
	ErrLoadFailed = errors.New("initial load failed")
)
