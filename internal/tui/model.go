// Package tui implements the interactive budget dashboard.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/envelope/internal/budget"
	"github.com/Veraticus/envelope/internal/history"
	"github.com/Veraticus/envelope/internal/ledger"
	"github.com/Veraticus/envelope/internal/tui/themes"
)

// Dashboard is what the dashboard reads from and refreshes. *ledger.Ledger implements it.
type Dashboard interface {
	Summary(ctx context.Context) (budget.Summary, error)
	MonthHistory(ctx context.Context) ([]history.MonthRow, error)
	RefreshRate(ctx context.Context) (ledger.RateStatus, error)
	RateStatus() ledger.RateStatus
}

// View is the active dashboard page.
type View int

const (
	// ViewOverview shows the weekly and monthly panels and goals.
	ViewOverview View = iota
	// ViewHistory shows the month history table.
	ViewHistory
)

// Model holds the dashboard state.
type Model struct {
	ctx        context.Context
	source     Dashboard
	lastError  error
	summary    *budget.Summary
	theme      themes.Theme
	rate       ledger.RateStatus
	months     []history.MonthRow
	keymap     KeyMap
	help       help.Model
	spinner    spinner.Model
	goalBar    progress.Model
	history    table.Model
	config     Config
	width      int
	height     int
	view       View
	loading    bool
	refreshing bool
	quitting   bool
}

func newModel(ctx context.Context, source Dashboard, cfg Config) Model {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	s.Style = cfg.Theme.Title

	h := help.New()
	h.ShowAll = cfg.ShowHelp

	return Model{
		ctx:        ctx,
		source:     source,
		theme:      cfg.Theme,
		config:     cfg,
		keymap:     DefaultKeyMap(),
		help:       h,
		spinner:    s,
		goalBar:    progress.New(progress.WithSolidFill(string(cfg.Theme.Primary)), progress.WithWidth(20), progress.WithoutPercentage()),
		history:    newHistoryTable(cfg.Height),
		rate:       source.RateStatus(),
		width:      cfg.Width,
		height:     cfg.Height,
		loading:    true,
		refreshing: cfg.RefreshOnStart,
	}
}

// Init starts the first load and, when configured, a live rate fetch.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.loadSummary()}
	if m.refreshing {
		cmds = append(cmds, m.refreshRate())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.history.SetWidth(msg.Width - 2)
		m.history.SetHeight(max(msg.Height-8, 3))
		return m, nil

	case summaryLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		m.lastError = nil
		m.summary = &msg.summary
		m.months = msg.months
		m.history.SetRows(historyRows(msg.months))
		return m, nil

	case rateRefreshedMsg:
		m.refreshing = false
		m.rate = msg.status
		if msg.err != nil {
			m.lastError = msg.err
		}
		// The envelope conversion depends on the rate.
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.loadSummary())

	case spinner.TickMsg:
		if !m.loading && !m.refreshing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.view == ViewHistory {
		var cmd tea.Cmd
		m.history, cmd = m.history.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Refresh):
		if m.refreshing {
			return m, nil
		}
		m.refreshing = true
		return m, tea.Batch(m.spinner.Tick, m.refreshRate())

	case key.Matches(msg, m.keymap.Reload):
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.loadSummary())

	case key.Matches(msg, m.keymap.NextView):
		if m.view == ViewOverview {
			m.view = ViewHistory
			m.history.Focus()
		} else {
			m.view = ViewOverview
			m.history.Blur()
		}
		return m, nil

	case key.Matches(msg, m.keymap.ToggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.view == ViewHistory {
		var cmd tea.Cmd
		m.history, cmd = m.history.Update(msg)
		return m, cmd
	}
	return m, nil
}
