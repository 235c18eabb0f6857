package cli

import (
	"errors"
	"fmt"

	"github.com/thenoetrevino/tablero/internal/collection"
	"github.com/thenoetrevino/tablero/internal/models"
	rowservice "github.com/thenoetrevino/tablero/internal/services/row"
)

// Exit codes for CLI commands.
// These codes follow Unix conventions and provide consistent error reporting
// across all CLI commands.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitError indicates a general error occurred.
	// Use for: Database errors, daemon errors, or any error that doesn't fit
	// the specific categories below.
	ExitError = 1

	// ExitUsage indicates incorrect command usage.
	// Use for: Missing required flags or malformed flag values.
	ExitUsage = 2

	// ExitNotFound indicates a requested row was not found.
	ExitNotFound = 3

	// ExitDataErr indicates invalid or malformed data.
	// Use for: Unreadable stdin or data that cannot be processed.
	ExitDataErr = 4

	// ExitValidation indicates a validation error.
	// Use for: Invalid states, titles that are too long, missing required
	// columns, disabled columns, or a table that is full.
	ExitValidation = 5
)

// StatusError carries the process exit code for a failed command. The error has
// already been reported to the user when it is returned.
type StatusError struct {
	Code int
	Err  error
}

func (e *StatusError) Error() string {
	return e.Err.Error()
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// errorClass maps an error to its exit code, error code and suggestion
type errorClass struct {
	target     error
	exitCode   int
	code       string
	suggestion string
}

var errorClasses = []errorClass{
	{models.ErrRowNotFound, ExitNotFound, "ROW_NOT_FOUND", "Run 'tablero row list' to see row ids"},
	{collection.ErrMaxLengthReached, ExitValidation, "MAX_LENGTH_REACHED", "Delete a row first or raise table.max_length"},
	{collection.ErrCreatorHidden, ExitValidation, "CREATOR_HIDDEN", "Set table.creator_position to top or bottom"},
	{collection.ErrNotEditable, ExitValidation, "NOT_EDITABLE", ""},
	{rowservice.ErrFieldDisabled, ExitValidation, "FIELD_DISABLED", ""},
	{rowservice.ErrRequiredField, ExitValidation, "REQUIRED_FIELD", "Pass --title"},
	{rowservice.ErrTitleTooLong, ExitValidation, "TITLE_TOO_LONG", ""},
	{rowservice.ErrInvalidState, ExitValidation, "INVALID_STATE", "Use one of: all, open, closed"},
	{rowservice.ErrInvalidPosition, ExitValidation, "INVALID_POSITION", ""},
	{rowservice.ErrNoFields, ExitValidation, "NO_FIELDS", "Pass at least one of --title, --description, --state, --created"},
	{rowservice.ErrDuplicateID, ExitValidation, "DUPLICATE_ID", "Omit --id to generate a fresh one"},
	{rowservice.ErrEmptyID, ExitUsage, "EMPTY_ID", ""},
	{models.ErrLoadFailed, ExitError, "LOAD_FAILED", ""},
}

// ExitCode returns the exit code for err
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *StatusError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if c, ok := classify(err); ok {
		return c.exitCode
	}
	return ExitError
}

// ErrorCode returns the machine readable error code for err
func ErrorCode(err error) string {
	if c, ok := classify(err); ok {
		return c.code
	}
	return "ERROR"
}

func classify(err error) (errorClass, bool) {
	for _, c := range errorClasses {
		if errors.Is(err, c.target) {
			return c, true
		}
	}
	return errorClass{}, false
}

// Usage reports a usage error such as a malformed flag value
func Usage(format string, args ...any) error {
	return &StatusError{Code: ExitUsage, Err: fmt.Errorf(format, args...)}
}
