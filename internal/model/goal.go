package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// GoalPeriod is the repeating window a goal limit applies to.
type GoalPeriod string

const (
	// GoalWeekly limits spending per week.
	GoalWeekly GoalPeriod = "weekly"
	// GoalMonthly limits spending per budget month.
	GoalMonthly GoalPeriod = "monthly"
)

// ParseGoalPeriod converts user input into a GoalPeriod.
func ParseGoalPeriod(s string) (GoalPeriod, error) {
	p := GoalPeriod(strings.ToLower(strings.TrimSpace(s)))
	if p != GoalWeekly && p != GoalMonthly {
		return "", invalid("period", ErrInvalidGoalPeriod)
	}
	return p, nil
}

// Goal is a spending ceiling for one category over the current week or month.
type Goal struct {
	CreatedAt    time.Time
	Limit        decimal.Decimal
	ID           string
	CategoryName string
	Period       GoalPeriod
	Notes        string
}

// Validate checks that the goal can be saved.
func (g *Goal) Validate() error {
	if strings.TrimSpace(g.CategoryName) == "" {
		return invalid("category", ErrMissingCategory)
	}
	if !g.Limit.IsPositive() {
		return invalid("limit", ErrNonPositiveAmount)
	}
	if g.Period != GoalWeekly && g.Period != GoalMonthly {
		return invalid("period", ErrInvalidGoalPeriod)
	}
	return nil
}
