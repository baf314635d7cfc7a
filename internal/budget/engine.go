// Package budget derives weekly and monthly budget figures from settings, the
// conversion rate, recurring bills, goals and transactions. Everything here is
// a pure function of its input.
package budget

import (
	"sort"
	"time"

	"github.com/Veraticus/envelope/internal/model"
	"github.com/Veraticus/envelope/internal/period"
	"github.com/shopspring/decimal"
)

// AtRiskThreshold is the spent ratio at which a goal is flagged.
var AtRiskThreshold = decimal.RequireFromString("0.70")

var one = decimal.NewFromInt(1)

// Input is everything the engine needs for one evaluation.
type Input struct {
	Now          time.Time
	Calendar     period.Calendar
	Settings     model.Settings
	Rate         decimal.Decimal
	Bills        []model.RecurringBill
	Goals        []model.Goal
	Transactions []model.Transaction
	// AllowSubunitRate disables the max(rate, 1) floor applied to dual-currency envelopes.
	AllowSubunitRate bool
}

// GoalProgress is one goal evaluated against its current window.
type GoalProgress struct {
	Window period.Range
	Spent  decimal.Decimal
	Ratio  decimal.Decimal
	Goal   model.Goal
	AtRisk bool
}

// Remaining is the limit minus spent, never below zero.
func (g GoalProgress) Remaining() decimal.Decimal {
	return decimal.Max(decimal.Zero, g.Goal.Limit.Sub(g.Spent))
}

// Summary is the engine output for a single instant.
type Summary struct {
	Now                        time.Time
	Week                       period.Range
	Month                      period.Range
	GoalCategoryNames          map[string]struct{}
	Rate                       decimal.Decimal
	WeeksInMonth               decimal.Decimal
	EnvelopeInSpendingCurrency decimal.Decimal
	CommittedMonthly           decimal.Decimal
	AllocatedMonthly           decimal.Decimal
	DiscretionaryPool          decimal.Decimal
	WeeklyAllowance            decimal.Decimal
	WeeklyDiscretionarySpent   decimal.Decimal
	WeeklyAvailable            decimal.Decimal
	WeeklyEnvelope             decimal.Decimal
	WeeklyCommitted            decimal.Decimal
	WeeklyGoals                decimal.Decimal
	TotalIncome                decimal.Decimal
	TotalExpenses              decimal.Decimal
	MonthlySavings             decimal.Decimal
	MonthTransactions          []model.Transaction
	Goals                      []GoalProgress
	GoalsAtRisk                []GoalProgress
	SpendingCurrency           model.CurrencyCode
	BudgetCurrency             model.CurrencyCode
}

// IsOverBudget reports whether this month's expenses exceed the converted envelope.
func (s *Summary) IsOverBudget() bool {
	return s.MonthlySavings.IsNegative()
}

// Compute evaluates every budget figure for in.Now.
func Compute(in Input) Summary {
	s := Summary{
		Now:              in.Now,
		Week:             in.Calendar.Week(in.Now),
		Month:            in.Calendar.Month(in.Now),
		WeeksInMonth:     in.Calendar.WeeksInMonth(in.Now),
		Rate:             EffectiveRate(in.Settings, in.Rate, in.AllowSubunitRate),
		SpendingCurrency: in.Settings.SpendingCurrency,
		BudgetCurrency:   in.Settings.EffectiveBudgetCurrency(),
	}

	s.EnvelopeInSpendingCurrency = in.Settings.MonthlyEnvelope.Mul(s.Rate)
	s.CommittedMonthly = CommittedMonthly(in.Bills)
	s.AllocatedMonthly = AllocatedMonthly(in.Goals, s.WeeksInMonth)
	s.DiscretionaryPool = decimal.Max(decimal.Zero,
		s.EnvelopeInSpendingCurrency.Sub(s.CommittedMonthly).Sub(s.AllocatedMonthly))
	s.WeeklyAllowance = perWeek(s.DiscretionaryPool, s.WeeksInMonth)

	s.GoalCategoryNames = GoalCategoryNames(in.Goals)
	s.WeeklyDiscretionarySpent = SumExpenses(in.Transactions, s.Week, func(t *model.Transaction) bool {
		if t.IsBillLinked() {
			return false
		}
		_, tracked := s.GoalCategoryNames[t.Category.Name]
		return !tracked
	})
	s.WeeklyAvailable = s.WeeklyAllowance.Sub(s.WeeklyDiscretionarySpent)

	s.WeeklyEnvelope = perWeek(s.EnvelopeInSpendingCurrency, s.WeeksInMonth)
	s.WeeklyCommitted = perWeek(s.CommittedMonthly, s.WeeksInMonth)
	s.WeeklyGoals = perWeek(s.AllocatedMonthly, s.WeeksInMonth)

	s.TotalIncome = decimal.Zero
	s.TotalExpenses = decimal.Zero
	for _, t := range in.Transactions {
		if !in.Calendar.IsSameMonth(t.Date, in.Now) {
			continue
		}
		s.MonthTransactions = append(s.MonthTransactions, t)
		switch t.Kind {
		case model.KindIncome:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case model.KindExpense:
			s.TotalExpenses = s.TotalExpenses.Add(t.Amount)
		}
	}

	s.MonthlySavings = decimal.Zero
	if in.Settings.MonthlyEnvelope.IsPositive() {
		s.MonthlySavings = s.EnvelopeInSpendingCurrency.Sub(s.TotalExpenses)
	}

	s.Goals = make([]GoalProgress, 0, len(in.Goals))
	for _, g := range in.Goals {
		s.Goals = append(s.Goals, EvaluateGoal(g, in.Transactions, in.Calendar, in.Now))
	}
	s.GoalsAtRisk = AtRisk(s.Goals)

	return s
}

// EffectiveRate is the multiplier applied to the envelope. Single-currency
// settings always use 1. Dual-currency settings floor the rate at 1 unless
// allowSubunit is set.
func EffectiveRate(settings model.Settings, rate decimal.Decimal, allowSubunit bool) decimal.Decimal {
	if !settings.HasDualCurrency() {
		return one
	}
	if !rate.IsPositive() {
		return one
	}
	if allowSubunit {
		return rate
	}
	return decimal.Max(rate, one)
}

// CommittedMonthly sums the monthly equivalent of every active bill.
func CommittedMonthly(bills []model.RecurringBill) decimal.Decimal {
	total := decimal.Zero
	for i := range bills {
		if !bills[i].IsActive {
			continue
		}
		total = total.Add(bills[i].MonthlyEquivalent())
	}
	return total
}

// AllocatedMonthly sums goal limits, scaling weekly goals by weeksInMonth.
func AllocatedMonthly(goals []model.Goal, weeksInMonth decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, g := range goals {
		switch g.Period {
		case model.GoalMonthly:
			total = total.Add(g.Limit)
		case model.GoalWeekly:
			total = total.Add(g.Limit.Mul(weeksInMonth))
		}
	}
	return total
}

// WeeklyAllowance divides the discretionary pool across the month's weeks.
func WeeklyAllowance(pool, weeksInMonth decimal.Decimal) decimal.Decimal {
	return perWeek(pool, weeksInMonth)
}

// GoalCategoryNames is the set of categories tracked by some goal.
func GoalCategoryNames(goals []model.Goal) map[string]struct{} {
	names := make(map[string]struct{}, len(goals))
	for _, g := range goals {
		names[g.CategoryName] = struct{}{}
	}
	return names
}

// SumExpenses adds up expenses dated within r that pass keep. A nil keep accepts all.
func SumExpenses(txns []model.Transaction, r period.Range, keep func(*model.Transaction) bool) decimal.Decimal {
	total := decimal.Zero
	for i := range txns {
		t := &txns[i]
		if !t.IsExpense() || !r.Contains(t.Date) {
			continue
		}
		if keep != nil && !keep(t) {
			continue
		}
		total = total.Add(t.Amount)
	}
	return total
}

// SpentRatio is spent/limit, or zero when the limit is not positive. It is not capped at 1.
func SpentRatio(spent, limit decimal.Decimal) decimal.Decimal {
	if !limit.IsPositive() {
		return decimal.Zero
	}
	return spent.Div(limit)
}

// EvaluateGoal measures a goal against its current week or month.
func EvaluateGoal(g model.Goal, txns []model.Transaction, cal period.Calendar, now time.Time) GoalProgress {
	window := cal.Window(g.Period, now)
	spent := SumExpenses(txns, window, func(t *model.Transaction) bool {
		return t.Category.Name == g.CategoryName
	})
	ratio := SpentRatio(spent, g.Limit)
	return GoalProgress{
		Goal:   g,
		Window: window,
		Spent:  spent,
		Ratio:  ratio,
		AtRisk: ratio.GreaterThanOrEqual(AtRiskThreshold),
	}
}

// AtRisk filters goals at or above the threshold, highest ratio first.
func AtRisk(progress []GoalProgress) []GoalProgress {
	var risky []GoalProgress
	for _, p := range progress {
		if p.AtRisk {
			risky = append(risky, p)
		}
	}
	sort.SliceStable(risky, func(i, j int) bool {
		return risky[i].Ratio.GreaterThan(risky[j].Ratio)
	})
	return risky
}

func perWeek(amount, weeksInMonth decimal.Decimal) decimal.Decimal {
	if !weeksInMonth.IsPositive() {
		return decimal.Zero
	}
	return amount.Div(weeksInMonth)
}
