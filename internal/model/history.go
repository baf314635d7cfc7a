package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlySavingsSnapshot freezes a closed month's budget performance. It is never updated.
type MonthlySavingsSnapshot struct {
	MonthStart       time.Time
	MonthEnd         time.Time
	CreatedAt        time.Time
	BudgetAmount     decimal.Decimal
	SpentAmount      decimal.Decimal
	ExchangeRate     decimal.Decimal
	ID               string
	BudgetCurrency   CurrencyCode
	SpendingCurrency CurrencyCode
}

// BudgetInSpendingCurrency converts the frozen budget with the frozen rate.
func (s *MonthlySavingsSnapshot) BudgetInSpendingCurrency() decimal.Decimal {
	if s.ExchangeRate.IsZero() {
		return s.BudgetAmount
	}
	return s.BudgetAmount.Mul(s.ExchangeRate)
}

// Savings is the converted budget minus what was spent. Negative means over budget.
func (s *MonthlySavingsSnapshot) Savings() decimal.Decimal {
	return s.BudgetInSpendingCurrency().Sub(s.SpentAmount)
}

// WeeklyLog records how a closed week ended. It is never updated.
type WeeklyLog struct {
	WeekStart           time.Time
	WeekEnd             time.Time
	CreatedAt           time.Time
	TotalAvailable      decimal.Decimal
	RolledOverAmount    decimal.Decimal
	UnusedRolledForward decimal.Decimal
	ID                  string
	CurrencyCode        CurrencyCode
	GoalsWithLeftover   int
}
