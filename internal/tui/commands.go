package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// loadSummary recomputes the budget figures and the month history.
func (m Model) loadSummary() tea.Cmd {
	ctx, source := m.ctx, m.source
	return func() tea.Msg {
		summary, err := source.Summary(ctx)
		if err != nil {
			return summaryLoadedMsg{err: err}
		}
		months, err := source.MonthHistory(ctx)
		if err != nil {
			return summaryLoadedMsg{err: err}
		}
		return summaryLoadedMsg{summary: summary, months: months}
	}
}

// refreshRate fetches a live conversion rate. Network failures arrive as a degraded state, not an error.
func (m Model) refreshRate() tea.Cmd {
	ctx, source := m.ctx, m.source
	return func() tea.Msg {
		status, err := source.RefreshRate(ctx)
		return rateRefreshedMsg{status: status, err: err}
	}
}
