// Package storage provides the SQLite persistence layer for the budget tracker.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/envelope/internal/model"
)

// Validation and lookup errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidDateRange = errors.New("start date must be before end date")
	ErrNotFound         = errors.New("not found")
	ErrDuplicateEntry   = errors.New("duplicate entry")
	ErrConstraint       = errors.New("constraint violation")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateID checks the id every stored row must carry.
func validateID(id string) error {
	return validateString(id, "id")
}

func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if err := validateID(txn.ID); err != nil {
		return err
	}
	return txn.Validate()
}

func validateCategory(c *model.Category) error {
	if c == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	if err := validateID(c.ID); err != nil {
		return err
	}
	return c.Validate()
}

func validateBill(b *model.RecurringBill) error {
	if b == nil {
		return fmt.Errorf("%w: bill", ErrNilParameter)
	}
	if err := validateID(b.ID); err != nil {
		return err
	}
	return b.Validate()
}

func validateGoal(g *model.Goal) error {
	if g == nil {
		return fmt.Errorf("%w: goal", ErrNilParameter)
	}
	if err := validateID(g.ID); err != nil {
		return err
	}
	return g.Validate()
}

func validateSnapshot(s *model.MonthlySavingsSnapshot) error {
	if err := validateID(s.ID); err != nil {
		return err
	}
	if s.MonthStart.IsZero() || s.MonthEnd.IsZero() {
		return fmt.Errorf("%w: month bounds", ErrNilParameter)
	}
	if s.MonthEnd.Before(s.MonthStart) {
		return fmt.Errorf("%w: %v to %v", ErrInvalidDateRange, s.MonthStart, s.MonthEnd)
	}
	return nil
}

func validateWeeklyLog(l *model.WeeklyLog) error {
	if err := validateID(l.ID); err != nil {
		return err
	}
	if l.WeekStart.IsZero() || l.WeekEnd.IsZero() {
		return fmt.Errorf("%w: week bounds", ErrNilParameter)
	}
	if l.WeekEnd.Before(l.WeekStart) {
		return fmt.Errorf("%w: %v to %v", ErrInvalidDateRange, l.WeekStart, l.WeekEnd)
	}
	return nil
}
