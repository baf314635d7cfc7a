package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/envelope/internal/budget"
	"github.com/Veraticus/envelope/internal/history"
	"github.com/Veraticus/envelope/internal/model"
	"github.com/Veraticus/envelope/internal/period"
)

type rangeResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func newRange(r period.Range) rangeResponse {
	return rangeResponse{Start: r.Start.Format(time.DateOnly), End: r.End.Format(time.DateOnly)}
}

type widgetResponse struct {
	Week            rangeResponse   `json:"week"`
	WeeklyAvailable decimal.Decimal `json:"weekly_available"`
	WeeklyAllowance decimal.Decimal `json:"weekly_allowance"`
	WeeklySpent     decimal.Decimal `json:"weekly_spent"`
	Currency        string          `json:"currency"`
	DaysLeft        int             `json:"days_left"`
}

func newWidgetResponse(w budget.WidgetSummary) widgetResponse {
	return widgetResponse{
		Week:            newRange(w.Week),
		WeeklyAvailable: w.WeeklyAvailable,
		WeeklyAllowance: w.WeeklyAllowance,
		WeeklySpent:     w.WeeklySpent,
		Currency:        string(w.Currency),
		DaysLeft:        w.DaysLeft,
	}
}

type goalResponse struct {
	Window    rangeResponse   `json:"window"`
	Limit     decimal.Decimal `json:"limit"`
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
	Ratio     decimal.Decimal `json:"ratio"`
	Category  string          `json:"category"`
	Period    string          `json:"period"`
	AtRisk    bool            `json:"at_risk"`
}

func newGoalResponses(goals []budget.GoalProgress) []goalResponse {
	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, goalResponse{
			Window:    newRange(g.Window),
			Limit:     g.Goal.Limit,
			Spent:     g.Spent,
			Remaining: g.Remaining(),
			Ratio:     g.Ratio,
			Category:  g.Goal.CategoryName,
			Period:    string(g.Goal.Period),
			AtRisk:    g.AtRisk,
		})
	}
	return out
}

type summaryResponse struct {
	Week                       rangeResponse   `json:"week"`
	Month                      rangeResponse   `json:"month"`
	Rate                       decimal.Decimal `json:"rate"`
	WeeksInMonth               decimal.Decimal `json:"weeks_in_month"`
	EnvelopeInSpendingCurrency decimal.Decimal `json:"envelope_in_spending_currency"`
	CommittedMonthly           decimal.Decimal `json:"committed_monthly"`
	AllocatedMonthly           decimal.Decimal `json:"allocated_monthly"`
	DiscretionaryPool          decimal.Decimal `json:"discretionary_pool"`
	WeeklyAllowance            decimal.Decimal `json:"weekly_allowance"`
	WeeklyDiscretionarySpent   decimal.Decimal `json:"weekly_discretionary_spent"`
	WeeklyAvailable            decimal.Decimal `json:"weekly_available"`
	WeeklyEnvelope             decimal.Decimal `json:"weekly_envelope"`
	WeeklyCommitted            decimal.Decimal `json:"weekly_committed"`
	WeeklyGoals                decimal.Decimal `json:"weekly_goals"`
	TotalIncome                decimal.Decimal `json:"total_income"`
	TotalExpenses              decimal.Decimal `json:"total_expenses"`
	MonthlySavings             decimal.Decimal `json:"monthly_savings"`
	SpendingCurrency           string          `json:"spending_currency"`
	BudgetCurrency             string          `json:"budget_currency"`
	Goals                      []goalResponse  `json:"goals"`
	GoalsAtRisk                []goalResponse  `json:"goals_at_risk"`
	MonthTransactions          int             `json:"month_transactions"`
	OverBudget                 bool            `json:"over_budget"`
}

func newSummaryResponse(s budget.Summary) summaryResponse {
	return summaryResponse{
		Week:                       newRange(s.Week),
		Month:                      newRange(s.Month),
		Rate:                       s.Rate,
		WeeksInMonth:               s.WeeksInMonth.Round(4),
		EnvelopeInSpendingCurrency: s.EnvelopeInSpendingCurrency,
		CommittedMonthly:           s.CommittedMonthly,
		AllocatedMonthly:           s.AllocatedMonthly,
		DiscretionaryPool:          s.DiscretionaryPool,
		WeeklyAllowance:            s.WeeklyAllowance.Round(2),
		WeeklyDiscretionarySpent:   s.WeeklyDiscretionarySpent,
		WeeklyAvailable:            s.WeeklyAvailable.Round(2),
		WeeklyEnvelope:             s.WeeklyEnvelope.Round(2),
		WeeklyCommitted:            s.WeeklyCommitted.Round(2),
		WeeklyGoals:                s.WeeklyGoals.Round(2),
		TotalIncome:                s.TotalIncome,
		TotalExpenses:              s.TotalExpenses,
		MonthlySavings:             s.MonthlySavings,
		SpendingCurrency:           string(s.SpendingCurrency),
		BudgetCurrency:             string(s.BudgetCurrency),
		Goals:                      newGoalResponses(s.Goals),
		GoalsAtRisk:                newGoalResponses(s.GoalsAtRisk),
		MonthTransactions:          len(s.MonthTransactions),
		OverBudget:                 s.IsOverBudget(),
	}
}

type monthResponse struct {
	Month                    rangeResponse   `json:"month"`
	BudgetAmount             decimal.Decimal `json:"budget_amount"`
	ExchangeRate             decimal.Decimal `json:"exchange_rate"`
	BudgetInSpendingCurrency decimal.Decimal `json:"budget_in_spending_currency"`
	Spent                    decimal.Decimal `json:"spent"`
	Savings                  decimal.Decimal `json:"savings"`
	BudgetCurrency           string          `json:"budget_currency"`
	SpendingCurrency         string          `json:"spending_currency"`
	IsCurrent                bool            `json:"is_current"`
}

func newMonthResponses(rows []history.MonthRow) []monthResponse {
	out := make([]monthResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, monthResponse{
			Month:                    newRange(r.Month),
			BudgetAmount:             r.BudgetAmount,
			ExchangeRate:             r.ExchangeRate,
			BudgetInSpendingCurrency: r.BudgetInSpendingCurrency,
			Spent:                    r.Spent,
			Savings:                  r.Savings,
			BudgetCurrency:           string(r.BudgetCurrency),
			SpendingCurrency:         string(r.SpendingCurrency),
			IsCurrent:                r.IsCurrent,
		})
	}
	return out
}

type weekResponse struct {
	WeekStart           string          `json:"week_start"`
	WeekEnd             string          `json:"week_end"`
	TotalAvailable      decimal.Decimal `json:"total_available"`
	RolledOverAmount    decimal.Decimal `json:"rolled_over_amount"`
	UnusedRolledForward decimal.Decimal `json:"unused_rolled_forward"`
	Currency            string          `json:"currency"`
	GoalsWithLeftover   int             `json:"goals_with_leftover"`
}

func newWeekResponses(logs []model.WeeklyLog, loc *time.Location) []weekResponse {
	out := make([]weekResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, weekResponse{
			WeekStart:           l.WeekStart.In(loc).Format(time.DateOnly),
			WeekEnd:             l.WeekEnd.In(loc).Format(time.DateOnly),
			TotalAvailable:      l.TotalAvailable.Round(2),
			RolledOverAmount:    l.RolledOverAmount.Round(2),
			UnusedRolledForward: l.UnusedRolledForward.Round(2),
			Currency:            string(l.CurrencyCode),
			GoalsWithLeftover:   l.GoalsWithLeftover,
		})
	}
	return out
}

type transactionResponse struct {
	BillID   *string         `json:"bill_id,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Kind     string          `json:"kind"`
	Date     string          `json:"date"`
	Note     string          `json:"note,omitempty"`
	Category string          `json:"category"`
	Icon     string          `json:"icon,omitempty"`
	Color    string          `json:"color,omitempty"`
}

func newTransactionResponses(txns []model.Transaction, loc *time.Location) []transactionResponse {
	out := make([]transactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, transactionResponse{
			BillID:   t.BillID,
			Amount:   t.Amount,
			ID:       t.ID,
			Title:    t.Title,
			Kind:     string(t.Kind),
			Date:     t.Date.In(loc).Format(time.RFC3339),
			Note:     t.Note,
			Category: t.Category.Name,
			Icon:     t.Category.Icon,
			Color:    t.Category.Color,
		})
	}
	return out
}
