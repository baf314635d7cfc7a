package tui

import (
	"github.com/Veraticus/envelope/internal/budget"
	"github.com/Veraticus/envelope/internal/history"
	"github.com/Veraticus/envelope/internal/ledger"
)

// summaryLoadedMsg carries freshly computed figures.
type summaryLoadedMsg struct {
	err     error
	months  []history.MonthRow
	summary budget.Summary
}

// rateRefreshedMsg reports the end of a live rate fetch.
type rateRefreshedMsg struct {
	err    error
	status ledger.RateStatus
}
