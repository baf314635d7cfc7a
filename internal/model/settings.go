package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// WeekStart is the user's preferred first day of the week.
type WeekStart string

const (
	// WeekStartSunday starts weeks on Sunday.
	WeekStartSunday WeekStart = "sunday"
	// WeekStartMonday starts weeks on Monday.
	WeekStartMonday WeekStart = "monday"
)

// ParseWeekStart converts user input into a WeekStart.
func ParseWeekStart(s string) (WeekStart, error) {
	w := WeekStart(strings.ToLower(strings.TrimSpace(s)))
	if w != WeekStartSunday && w != WeekStartMonday {
		return "", invalid("week_start", ErrInvalidWeekStart)
	}
	return w, nil
}

// Weekday maps the preference onto time.Weekday.
func (w WeekStart) Weekday() time.Weekday {
	if w == WeekStartMonday {
		return time.Monday
	}
	return time.Sunday
}

// Settings is the single per-user configuration record. Callers save it explicitly after changes.
type Settings struct {
	CachedRate       *CachedRate
	MonthlyEnvelope  decimal.Decimal
	SpendingCurrency CurrencyCode
	BudgetCurrency   CurrencyCode
	WeekStart        WeekStart
	MonthStartDay    int
}

// DefaultSettings is what a fresh install starts with.
func DefaultSettings() Settings {
	return Settings{
		SpendingCurrency: DefaultSpendingCurrency,
		MonthlyEnvelope:  decimal.Zero,
		WeekStart:        WeekStartSunday,
		MonthStartDay:    1,
	}
}

// HasDualCurrency reports whether the envelope must be converted before use.
func (s *Settings) HasDualCurrency() bool {
	return !s.BudgetCurrency.IsZero() && s.BudgetCurrency != s.SpendingCurrency
}

// EffectiveBudgetCurrency is the currency the envelope is denominated in.
func (s *Settings) EffectiveBudgetCurrency() CurrencyCode {
	if s.BudgetCurrency.IsZero() {
		return s.SpendingCurrency
	}
	return s.BudgetCurrency
}

// Validate checks every field a user can edit.
func (s *Settings) Validate() error {
	if !s.SpendingCurrency.Valid() {
		return invalid("spending_currency", ErrInvalidCurrency)
	}
	if !s.BudgetCurrency.IsZero() && !s.BudgetCurrency.Valid() {
		return invalid("budget_currency", ErrInvalidCurrency)
	}
	if s.MonthlyEnvelope.IsNegative() {
		return invalid("monthly_envelope", ErrNegativeAmount)
	}
	if s.WeekStart != WeekStartSunday && s.WeekStart != WeekStartMonday {
		return invalid("week_start", ErrInvalidWeekStart)
	}
	if s.MonthStartDay < 1 || s.MonthStartDay > 28 {
		return invalid("month_start_day", ErrInvalidMonthStart)
	}
	return nil
}
