package budget

import (
	"github.com/Veraticus/envelope/internal/model"
	"github.com/Veraticus/envelope/internal/period"
	"github.com/shopspring/decimal"
)

// WidgetSummary is the subset of figures shown on the home-screen widget.
type WidgetSummary struct {
	Week            period.Range
	WeeklyAvailable decimal.Decimal
	WeeklyAllowance decimal.Decimal
	WeeklySpent     decimal.Decimal
	Currency        model.CurrencyCode
	DaysLeft        int
}

// ComputeWidget runs the same evaluation as Compute and keeps the widget fields.
func ComputeWidget(in Input) WidgetSummary {
	s := Compute(in)
	return WidgetSummary{
		Week:            s.Week,
		WeeklyAvailable: s.WeeklyAvailable,
		WeeklyAllowance: s.WeeklyAllowance,
		WeeklySpent:     s.WeeklyDiscretionarySpent,
		Currency:        s.SpendingCurrency,
		DaysLeft:        in.Calendar.DaysLeft(s.Week, in.Now),
	}
}
