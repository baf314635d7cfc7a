// Package model defines the core domain types of the budget tracker.
package model

import (
	"errors"
	"fmt"
)

// Validation errors returned when user input cannot be saved.
var (
	ErrEmptyName           = errors.New("name cannot be empty")
	ErrNonPositiveAmount   = errors.New("amount must be greater than zero")
	ErrNegativeAmount      = errors.New("amount cannot be negative")
	ErrMissingCategory     = errors.New("category is required")
	ErrDuplicateCategory   = errors.New("category name already exists")
	ErrProtectedCategory   = errors.New("default categories cannot be deleted")
	ErrInvalidCurrency     = errors.New("invalid currency code")
	ErrInvalidKind         = errors.New("invalid transaction kind")
	ErrInvalidFrequency    = errors.New("invalid bill frequency")
	ErrInvalidGoalPeriod   = errors.New("invalid goal period")
	ErrInvalidWeekStart    = errors.New("invalid week start")
	ErrInvalidMonthStart   = errors.New("month start day must be between 1 and 28")
	ErrMissingDate         = errors.New("date is required")
	ErrInvalidPeriodBounds = errors.New("period end is before period start")
	ErrInvalidCutoff       = errors.New("cutoff must be a date in the past")
)

// ValidationError ties a validation failure to the field that caused it.
type ValidationError struct {
	Err   error
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// IsValidationError reports whether err is a user input validation failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
