package row

import "errors"

// Row-related errors
var (
	// Validation errors
	ErrEmptyID         = errors.New("row id cannot be empty")
	ErrDuplicateID     = errors.New("a row with this id already exists")
	ErrTitleTooLong    = errors.New("row title cannot exceed 255 characters")
	ErrInvalidState    = errors.New("invalid state: must be one of all, open, closed")
	ErrInvalidPosition = errors.New("invalid position: must be >= 0")
	ErrNoFields        = errors.New("no fields to update")
	ErrRequiredField   = errors.New("field is required")
	ErrFieldDisabled   = errors.New("field is disabled")
)
