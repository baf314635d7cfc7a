package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/envelope/internal/budget"
	"github.com/Veraticus/envelope/internal/history"
	"github.com/Veraticus/envelope/internal/model"
)

const dateLayout = "Jan 2, 2006"

func figure(label, value string) string {
	return LabelStyle.Render(label) + value
}

// FormatRange renders a period as "Feb 1 - Feb 28, 2025".
func FormatRange(start, end time.Time) string {
	if start.Year() == end.Year() {
		return start.Format("Jan 2") + " - " + end.Format(dateLayout)
	}
	return start.Format(dateLayout) + " - " + end.Format(dateLayout)
}

// RenderWeekPanel renders the weekly allowance figures.
func RenderWeekPanel(s budget.Summary) string {
	code := s.SpendingCurrency
	lines := []string{
		SubtleStyle.Render(FormatRange(s.Week.Start, s.Week.End)),
		figure("Available", FormatBalance(s.WeeklyAvailable, code)),
		figure("Allowance", FormatMoney(s.WeeklyAllowance, code)),
		figure("Spent", FormatMoney(s.WeeklyDiscretionarySpent, code)),
		figure("Envelope / week", FormatMoney(s.WeeklyEnvelope, code)),
		figure("Bills / week", FormatMoney(s.WeeklyCommitted, code)),
		figure("Goals / week", FormatMoney(s.WeeklyGoals, code)),
	}
	return RenderBox("This Week", strings.Join(lines, "\n"))
}

// RenderMonthPanel renders the monthly envelope figures.
func RenderMonthPanel(s budget.Summary) string {
	code := s.SpendingCurrency
	lines := []string{
		SubtleStyle.Render(FormatRange(s.Month.Start, s.Month.End)),
		figure("Envelope", FormatMoney(s.EnvelopeInSpendingCurrency, code)),
		figure("Committed (bills)", FormatMoney(s.CommittedMonthly, code)),
		figure("Allocated (goals)", FormatMoney(s.AllocatedMonthly, code)),
		figure("Discretionary pool", FormatMoney(s.DiscretionaryPool, code)),
		figure("Income", FormatMoney(s.TotalIncome, code)),
		figure("Expenses", FormatMoney(s.TotalExpenses, code)),
		figure("Savings", FormatBalance(s.MonthlySavings, code)),
	}
	if s.BudgetCurrency != "" && s.BudgetCurrency != s.SpendingCurrency {
		lines = append(lines, figure("Rate", fmt.Sprintf("1 %s = %s %s", s.BudgetCurrency, s.Rate.String(), code)))
	}
	if s.IsOverBudget() {
		lines = append(lines, "", FormatWarning("Over budget this month"))
	}
	return RenderBox("This Month", strings.Join(lines, "\n"))
}

// RenderGoals renders goal progress bars. Goals at risk are listed first.
func RenderGoals(s budget.Summary) string {
	if len(s.Goals) == 0 {
		return SubtleStyle.Render("No goals set")
	}

	ordered := append([]budget.GoalProgress{}, s.GoalsAtRisk...)
	for _, g := range s.Goals {
		if !g.AtRisk {
			ordered = append(ordered, g)
		}
	}

	lines := make([]string, 0, len(ordered))
	for _, g := range ordered {
		name := g.Goal.CategoryName + " (" + string(g.Goal.Period) + ")"
		line := fmt.Sprintf("%s %s  %s / %s",
			LabelStyle.Render(name),
			FormatRatio(g.Ratio, 12),
			FormatAmount(g.Spent),
			FormatMoney(g.Goal.Limit, s.SpendingCurrency))
		if g.AtRisk {
			line += " " + WarningStyle.Render(WarningIcon)
		}
		lines = append(lines, line)
	}
	return RenderBox("Goals", strings.Join(lines, "\n"))
}

// RenderSummary renders the full budget summary.
func RenderSummary(s budget.Summary) string {
	return strings.Join([]string{
		RenderWeekPanel(s),
		RenderMonthPanel(s),
		RenderGoals(s),
	}, "\n")
}

// RenderWidget renders the compact widget view.
func RenderWidget(w budget.WidgetSummary) string {
	days := "days"
	if w.DaysLeft == 1 {
		days = "day"
	}
	lines := []string{
		BoldStyle.Render(FormatBalance(w.WeeklyAvailable, w.Currency)) + SubtleStyle.Render(" left this week"),
		fmt.Sprintf("%s of %s spent", FormatAmount(w.WeeklySpent), FormatMoney(w.WeeklyAllowance, w.Currency)),
		SubtleStyle.Render(fmt.Sprintf("%d %s left", w.DaysLeft, days)),
	}
	return strings.Join(lines, "\n")
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// WriteTransactions prints transactions as a table.
func WriteTransactions(out io.Writer, txns []model.Transaction) error {
	w := newTable(out)
	_, _ = fmt.Fprintln(w, "DATE\tKIND\tAMOUNT\tCATEGORY\tTITLE\tID")
	for _, t := range txns {
		amount := FormatAmount(t.Amount)
		if t.IsExpense() {
			amount = "-" + amount
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.Date.Format(time.DateOnly), t.Kind, amount, t.Category.Name, t.Title, t.ID)
	}
	return w.Flush()
}

// WriteCategories prints categories as a table.
func WriteCategories(out io.Writer, categories []model.Category) error {
	w := newTable(out)
	_, _ = fmt.Fprintln(w, "NAME\tKIND\tICON\tCOLOR\tDEFAULT\tID")
	for _, c := range categories {
		def := ""
		if c.IsDefault {
			def = "yes"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", c.Name, c.Kind, c.Icon, c.Color, def, c.ID)
	}
	return w.Flush()
}

// WriteBills prints recurring bills as a table.
func WriteBills(out io.Writer, bills []model.RecurringBill) error {
	w := newTable(out)
	_, _ = fmt.Fprintln(w, "NAME\tAMOUNT\tFREQUENCY\tMONTHLY\tCATEGORY\tACTIVE\tID")
	for _, b := range bills {
		active := "no"
		if b.IsActive {
			active = "yes"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			b.Name, FormatAmount(b.Amount), b.Frequency, FormatAmount(b.MonthlyEquivalent()), b.Category.Name, active, b.ID)
	}
	return w.Flush()
}

// WriteGoals prints goals as a table.
func WriteGoals(out io.Writer, goals []model.Goal) error {
	w := newTable(out)
	_, _ = fmt.Fprintln(w, "CATEGORY\tLIMIT\tPERIOD\tNOTES\tID")
	for _, g := range goals {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", g.CategoryName, FormatAmount(g.Limit), g.Period, g.Notes, g.ID)
	}
	return w.Flush()
}

// WriteMonthHistory prints monthly history rows, current month first.
func WriteMonthHistory(out io.Writer, rows []history.MonthRow) error {
	w := newTable(out)
	_, _ = fmt.Fprintln(w, "MONTH\tBUDGET\tRATE\tCONVERTED\tSPENT\tSAVINGS\t")
	for _, r := range rows {
		marker := ""
		if r.IsCurrent {
			marker = "(current)"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			FormatRange(r.Month.Start, r.Month.End),
			FormatMoney(r.BudgetAmount, r.BudgetCurrency),
			r.ExchangeRate.String(),
			FormatMoney(r.BudgetInSpendingCurrency, r.SpendingCurrency),
			FormatAmount(r.Spent),
			FormatAmount(r.Savings),
			marker)
	}
	return w.Flush()
}

// WriteWeekHistory prints closed weekly logs, newest first.
func WriteWeekHistory(out io.Writer, logs []model.WeeklyLog) error {
	w := newTable(out)
	_, _ = fmt.Fprintln(w, "WEEK\tAVAILABLE\tROLLED OVER\tUNUSED FORWARD\tGOALS WITH LEFTOVER")
	for _, l := range logs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			FormatRange(l.WeekStart, l.WeekEnd),
			FormatMoney(l.TotalAvailable, l.CurrencyCode),
			FormatAmount(l.RolledOverAmount),
			FormatAmount(l.UnusedRolledForward),
			l.GoalsWithLeftover)
	}
	return w.Flush()
}
