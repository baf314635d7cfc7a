package sheets

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/envelope/internal/budget"
	"github.com/Veraticus/envelope/internal/history"
	"github.com/Veraticus/envelope/internal/model"
)

// Tab titles.
const (
	TabMonthlyHistory = "Monthly History"
	TabWeeklyLogs     = "Weekly Logs"
	TabCurrentMonth   = "Current Month"
)

// Tabs lists every tab in display order.
var Tabs = []string{TabMonthlyHistory, TabWeeklyLogs, TabCurrentMonth}

// MonthlyHistoryRow represents a single row in the Monthly History tab.
type MonthlyHistoryRow struct {
	MonthStart               time.Time
	MonthEnd                 time.Time
	BudgetAmount             decimal.Decimal
	ExchangeRate             decimal.Decimal
	BudgetInSpendingCurrency decimal.Decimal
	Spent                    decimal.Decimal
	Savings                  decimal.Decimal
	BudgetCurrency           string
	SpendingCurrency         string
	IsCurrent                bool
}

// WeeklyLogRow represents a single row in the Weekly Logs tab.
type WeeklyLogRow struct {
	WeekStart           time.Time
	WeekEnd             time.Time
	TotalAvailable      decimal.Decimal
	RolledOverAmount    decimal.Decimal
	UnusedRolledForward decimal.Decimal
	Currency            string
	GoalsWithLeftover   int
}

// CurrentMonthRow is one labelled figure in the Current Month tab.
type CurrentMonthRow struct {
	Value decimal.Decimal
	Label string
}

// TabData holds all the data for the complete spreadsheet export.
type TabData struct {
	GeneratedAt  time.Time
	Month        DateRange
	Currency     string
	Months       []MonthlyHistoryRow
	Weeks        []WeeklyLogRow
	CurrentMonth []CurrentMonthRow
}

// DateRange represents the time period covered by the report.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// BuildTabData assembles the export from live figures and stored history.
func BuildTabData(now time.Time, summary budget.Summary, months []history.MonthRow, weeks []model.WeeklyLog) TabData {
	data := TabData{
		GeneratedAt: now,
		Month:       DateRange{Start: summary.Month.Start, End: summary.Month.End},
		Currency:    string(summary.SpendingCurrency),
	}

	for _, m := range months {
		data.Months = append(data.Months, MonthlyHistoryRow{
			MonthStart:               m.Month.Start,
			MonthEnd:                 m.Month.End,
			BudgetAmount:             m.BudgetAmount,
			ExchangeRate:             m.ExchangeRate,
			BudgetInSpendingCurrency: m.BudgetInSpendingCurrency,
			Spent:                    m.Spent,
			Savings:                  m.Savings,
			BudgetCurrency:           string(m.BudgetCurrency),
			SpendingCurrency:         string(m.SpendingCurrency),
			IsCurrent:                m.IsCurrent,
		})
	}

	for _, w := range weeks {
		data.Weeks = append(data.Weeks, WeeklyLogRow{
			WeekStart:           w.WeekStart,
			WeekEnd:             w.WeekEnd,
			TotalAvailable:      w.TotalAvailable,
			RolledOverAmount:    w.RolledOverAmount,
			UnusedRolledForward: w.UnusedRolledForward,
			Currency:            string(w.CurrencyCode),
			GoalsWithLeftover:   w.GoalsWithLeftover,
		})
	}

	data.CurrentMonth = []CurrentMonthRow{
		{Label: "Envelope", Value: summary.EnvelopeInSpendingCurrency},
		{Label: "Committed (bills)", Value: summary.CommittedMonthly},
		{Label: "Allocated (goals)", Value: summary.AllocatedMonthly},
		{Label: "Discretionary pool", Value: summary.DiscretionaryPool},
		{Label: "Weekly allowance", Value: summary.WeeklyAllowance},
		{Label: "Spent this week", Value: summary.WeeklyDiscretionarySpent},
		{Label: "Available this week", Value: summary.WeeklyAvailable},
		{Label: "Income", Value: summary.TotalIncome},
		{Label: "Expenses", Value: summary.TotalExpenses},
		{Label: "Savings", Value: summary.MonthlySavings},
	}

	return data
}
