package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is how often a recurring bill is due.
type Frequency string

const (
	// FrequencyWeekly bills are due every week.
	FrequencyWeekly Frequency = "weekly"
	// FrequencyMonthly bills are due every month.
	FrequencyMonthly Frequency = "monthly"
	// FrequencyYearly bills are due once a year.
	FrequencyYearly Frequency = "yearly"
)

var (
	weeksPerYear  = decimal.NewFromInt(52)
	monthsPerYear = decimal.NewFromInt(12)
)

// ParseFrequency converts user input into a Frequency.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", invalid("frequency", ErrInvalidFrequency)
	}
	return f, nil
}

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// RecurringBill is planning data for a repeating obligation. It never creates transactions itself.
type RecurringBill struct {
	CreatedAt time.Time
	Amount    decimal.Decimal
	Category  CategorySnapshot
	ID        string
	Name      string
	Frequency Frequency
	Notes     string
	IsActive  bool
}

// MonthlyEquivalent normalizes the bill amount to one month.
func (b *RecurringBill) MonthlyEquivalent() decimal.Decimal {
	switch b.Frequency {
	case FrequencyWeekly:
		return b.Amount.Mul(weeksPerYear).Div(monthsPerYear)
	case FrequencyYearly:
		return b.Amount.Div(monthsPerYear)
	default:
		return b.Amount
	}
}

// Validate checks that the bill can be saved.
func (b *RecurringBill) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return invalid("name", ErrEmptyName)
	}
	if !b.Amount.IsPositive() {
		return invalid("amount", ErrNonPositiveAmount)
	}
	if !b.Frequency.Valid() {
		return invalid("frequency", ErrInvalidFrequency)
	}
	if strings.TrimSpace(b.Category.Name) == "" {
		return invalid("category", ErrMissingCategory)
	}
	return nil
}
