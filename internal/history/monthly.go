// Package history decides which closed periods need an immutable record and
// assembles the history views from live figures and stored records.
package history

import (
	"log/slog"
	"sort"
	"time"

	"github.com/Veraticus/envelope/internal/budget"
	"github.com/Veraticus/envelope/internal/model"
	"github.com/Veraticus/envelope/internal/period"
	"github.com/shopspring/decimal"
)

// MonthlyCloseInput carries what is needed to snapshot closed months.
type MonthlyCloseInput struct {
	Now              time.Time
	NewID            func() string
	Calendar         period.Calendar
	Settings         model.Settings
	Rate             decimal.Decimal
	Transactions     []model.Transaction
	Existing         []model.MonthlySavingsSnapshot
	AllowSubunitRate bool
}

// PendingMonthlySnapshots returns one snapshot for every closed budget month that
// has at least one expense and shares no day with a stored snapshot, so a changed
// month start day never counts an expense twice. The current live rate stands in
// for the month's historical rate. Results are ordered oldest first.
func PendingMonthlySnapshots(in MonthlyCloseInput) []model.MonthlySavingsSnapshot {
	cal := in.Calendar
	current := cal.Month(in.Now)

	covered := make([]period.Range, 0, len(in.Existing))
	for _, s := range in.Existing {
		covered = append(covered, period.Range{Start: cal.StartOfDay(s.MonthStart), End: cal.StartOfDay(s.MonthEnd)})
	}

	months := make(map[string]period.Range)
	for _, t := range in.Transactions {
		if !t.IsExpense() || cal.IsSameMonth(t.Date, in.Now) {
			continue
		}
		m := cal.Month(t.Date)
		if !m.Start.Before(current.Start) {
			continue
		}
		if _, seen := months[m.Key()]; seen || overlapsAny(m, covered) {
			continue
		}
		months[m.Key()] = m
	}

	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rate := budget.EffectiveRate(in.Settings, in.Rate, in.AllowSubunitRate)
	snapshots := make([]model.MonthlySavingsSnapshot, 0, len(keys))
	for _, k := range keys {
		m := months[k]
		snap := model.MonthlySavingsSnapshot{
			MonthStart:       m.Start,
			MonthEnd:         m.End,
			BudgetAmount:     in.Settings.MonthlyEnvelope,
			SpentAmount:      budget.SumExpenses(in.Transactions, m, nil),
			ExchangeRate:     rate,
			BudgetCurrency:   in.Settings.EffectiveBudgetCurrency(),
			SpendingCurrency: in.Settings.SpendingCurrency,
			CreatedAt:        in.Now,
		}
		if in.NewID != nil {
			snap.ID = in.NewID()
		}
		slog.Debug("monthly snapshot pending", "month", m.String(), "spent", snap.SpentAmount.String())
		snapshots = append(snapshots, snap)
	}
	return snapshots
}

func overlapsAny(r period.Range, ranges []period.Range) bool {
	for _, o := range ranges {
		if r.Overlaps(o) {
			return true
		}
	}
	return false
}

// MonthRow is one line of the monthly history view.
type MonthRow struct {
	Month                    period.Range
	BudgetAmount             decimal.Decimal
	ExchangeRate             decimal.Decimal
	BudgetInSpendingCurrency decimal.Decimal
	Spent                    decimal.Decimal
	Savings                  decimal.Decimal
	BudgetCurrency           model.CurrencyCode
	SpendingCurrency         model.CurrencyCode
	IsCurrent                bool
}

// MonthRows lists the live current month first, then stored snapshots newest
// first. Closed months without a snapshot are not synthesized.
func MonthRows(current budget.Summary, settings model.Settings, cal period.Calendar, snapshots []model.MonthlySavingsSnapshot) []MonthRow {
	rows := make([]MonthRow, 0, len(snapshots)+1)
	rows = append(rows, MonthRow{
		Month:                    current.Month,
		BudgetAmount:             settings.MonthlyEnvelope,
		ExchangeRate:             current.Rate,
		BudgetInSpendingCurrency: current.EnvelopeInSpendingCurrency,
		Spent:                    current.TotalExpenses,
		Savings:                  current.MonthlySavings,
		BudgetCurrency:           current.BudgetCurrency,
		SpendingCurrency:         current.SpendingCurrency,
		IsCurrent:                true,
	})

	past := make([]model.MonthlySavingsSnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		if cal.IsSameMonth(s.MonthStart, current.Now) {
			continue
		}
		past = append(past, s)
	}
	sort.Slice(past, func(i, j int) bool {
		return past[i].MonthStart.After(past[j].MonthStart)
	})

	for _, s := range past {
		rows = append(rows, MonthRow{
			Month:                    period.Range{Start: cal.StartOfDay(s.MonthStart), End: cal.StartOfDay(s.MonthEnd)},
			BudgetAmount:             s.BudgetAmount,
			ExchangeRate:             s.ExchangeRate,
			BudgetInSpendingCurrency: s.BudgetInSpendingCurrency(),
			Spent:                    s.SpentAmount,
			Savings:                  s.Savings(),
			BudgetCurrency:           s.BudgetCurrency,
			SpendingCurrency:         s.SpendingCurrency,
		})
	}
	return rows
}
