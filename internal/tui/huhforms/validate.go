package huhforms

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/thenoetrevino/tablero/internal/models"
)

// Validation errors shown inline under the form fields
var (
	ErrTitleRequired = errors.New("title is required")
	ErrTitleTooLong  = fmt.Errorf("title cannot exceed %d characters", models.MaxTitleLength)
	ErrInvalidDate   = fmt.Errorf("date must look like %s", models.DateLayout)
	ErrInvalidState  = errors.New("state must be all, open or closed")
)

// ValidateTitle returns a title validator honoring the required rule
func ValidateTitle(required func() bool) func(string) error {
	return func(s string) error {
		if required != nil && required() && strings.TrimSpace(s) == "" {
			return ErrTitleRequired
		}
		if utf8.RuneCountInString(s) > models.MaxTitleLength {
			return ErrTitleTooLong
		}
		return nil
	}
}

// ValidateDate accepts an empty string or a models.DateLayout date
func ValidateDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if _, err := time.Parse(models.DateLayout, strings.TrimSpace(s)); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// ValidateState accepts an empty string or one of the known states
func ValidateState(s string) error {
	if s == "" || models.State(s).Valid() {
		return nil
	}
	return ErrInvalidState
}
