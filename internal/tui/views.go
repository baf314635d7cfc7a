package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/envelope/internal/budget"
	"github.com/Veraticus/envelope/internal/cli"
	"github.com/Veraticus/envelope/internal/currency"
	"github.com/Veraticus/envelope/internal/history"
	"github.com/Veraticus/envelope/internal/model"
)

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	sections := []string{m.headerView()}

	switch {
	case m.summary == nil && m.lastError == nil:
		sections = append(sections, m.spinner.View()+" Loading budget...")
	case m.summary == nil:
		// Nothing to show besides the error below.
	case m.view == ViewHistory:
		sections = append(sections, m.historyView())
	default:
		sections = append(sections, m.overviewView())
	}

	if m.lastError != nil {
		sections = append(sections, m.theme.Negative.Render(cli.ErrorIcon+" "+m.lastError.Error()))
	}

	sections = append(sections, m.help.View(m.keymap))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) headerView() string {
	tabs := []string{"Overview", "History"}
	rendered := make([]string, len(tabs))
	for i, tab := range tabs {
		if View(i) == m.view {
			rendered[i] = m.theme.ActiveTab.Render(tab)
		} else {
			rendered[i] = m.theme.InactiveTab.Render(tab)
		}
	}

	title := m.theme.Title.Render(cli.EnvelopeIcon + " Envelope")
	line := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", strings.Join(rendered, " "), "  ", m.rateView())
	return line + "\n"
}

func (m Model) rateView() string {
	if m.refreshing {
		return m.spinner.View() + m.theme.Muted.Render(" fetching rate")
	}
	if model.IsIdentity(m.rate.From, m.rate.To) {
		return m.theme.Muted.Render("single currency")
	}
	label := fmt.Sprintf("1 %s = %s %s ", m.rate.From, m.rate.Rate.String(), m.rate.To)
	out := m.theme.Normal.Render(label) + cli.FormatRateState(m.rate.State)
	if m.rate.Err != nil && m.rate.State.Kind != currency.StateFresh {
		out += m.theme.Muted.Render(" (" + m.rate.Err.Error() + ")")
	}
	return out
}

func (m Model) figure(label, value string) string {
	return m.theme.Label.Render(label) + value
}

func (m Model) money(d decimal.Decimal) string {
	return cli.FormatMoney(d, m.summary.SpendingCurrency)
}

func (m Model) balance(d decimal.Decimal) string {
	if d.IsNegative() {
		return m.theme.Negative.Render(m.money(d))
	}
	return m.theme.Positive.Render(m.money(d))
}

func (m Model) overviewView() string {
	s := m.summary

	week := m.theme.Panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Bold.Render("This Week"),
		m.theme.Subtitle.Render(cli.FormatRange(s.Week.Start, s.Week.End)),
		"",
		m.figure("Available", m.balance(s.WeeklyAvailable)),
		m.figure("Allowance", m.money(s.WeeklyAllowance)),
		m.figure("Spent", m.money(s.WeeklyDiscretionarySpent)),
	))

	month := m.theme.Panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Bold.Render("This Month"),
		m.theme.Subtitle.Render(cli.FormatRange(s.Month.Start, s.Month.End)),
		"",
		m.figure("Envelope", m.money(s.EnvelopeInSpendingCurrency)),
		m.figure("Bills", m.money(s.CommittedMonthly)),
		m.figure("Goals", m.money(s.AllocatedMonthly)),
		m.figure("Expenses", m.money(s.TotalExpenses)),
		m.figure("Income", m.money(s.TotalIncome)),
		m.figure("Savings", m.balance(s.MonthlySavings)),
	))

	panels := lipgloss.JoinHorizontal(lipgloss.Top, week, " ", month)
	if m.width > 0 && lipgloss.Width(panels) > m.width {
		panels = lipgloss.JoinVertical(lipgloss.Left, week, month)
	}

	return lipgloss.JoinVertical(lipgloss.Left, panels, m.goalsView(s))
}

func (m Model) goalsView(s *budget.Summary) string {
	if len(s.Goals) == 0 {
		return m.theme.Muted.Render("No goals set")
	}

	lines := []string{m.theme.Bold.Render("Goals")}
	if n := len(s.GoalsAtRisk); n > 0 {
		lines = append(lines, m.theme.Warning.Render(fmt.Sprintf("%s %d at risk", cli.WarningIcon, n)))
	}
	for _, g := range s.Goals {
		ratio := min(g.Ratio.InexactFloat64(), 1)
		name := g.Goal.CategoryName + " (" + string(g.Goal.Period) + ")"
		line := m.theme.Label.Render(name) + m.goalBar.ViewAs(ratio) + " " +
			cli.FormatAmount(g.Spent) + " / " + m.money(g.Goal.Limit)
		if g.AtRisk {
			line = line + " " + m.theme.Warning.Render("at risk")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) historyView() string {
	if len(m.months) == 0 {
		return m.theme.Muted.Render("No history yet")
	}
	return m.theme.Panel.Render(m.history.View())
}

func newHistoryTable(height int) table.Model {
	columns := []table.Column{
		{Title: "Month", Width: 24},
		{Title: "Budget", Width: 16},
		{Title: "Rate", Width: 8},
		{Title: "Spent", Width: 14},
		{Title: "Savings", Width: 14},
	}
	return table.New(
		table.WithColumns(columns),
		table.WithHeight(max(height-8, 3)),
	)
}

func historyRows(months []history.MonthRow) []table.Row {
	rows := make([]table.Row, 0, len(months))
	for _, r := range months {
		label := cli.FormatRange(r.Month.Start, r.Month.End)
		if r.IsCurrent {
			label += " *"
		}
		rows = append(rows, table.Row{
			label,
			cli.FormatMoney(r.BudgetAmount, r.BudgetCurrency),
			r.ExchangeRate.String(),
			cli.FormatAmount(r.Spent),
			cli.FormatAmount(r.Savings),
		})
	}
	return rows
}
