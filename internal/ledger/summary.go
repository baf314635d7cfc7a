package ledger

import (
	"context"
	"log/slog"

	"github.com/Veraticus/envelope/internal/budget"
	"github.com/Veraticus/envelope/internal/history"
	"github.com/Veraticus/envelope/internal/model"
	"github.com/Veraticus/envelope/internal/service"
	"github.com/Veraticus/envelope/internal/widget"
)

// Summary evaluates the budget engine for now.
func (l *Ledger) Summary(ctx context.Context) (budget.Summary, error) {
	settings, err := l.Settings(ctx)
	if err != nil {
		return budget.Summary{}, err
	}
	in, err := l.engineInput(ctx, settings, true)
	if err != nil {
		return budget.Summary{}, err
	}
	return budget.Compute(in), nil
}

// Widget computes the widget figures the same way the widget process does:
// from the mirror and read-only queries.
func (l *Ledger) Widget(ctx context.Context) (budget.WidgetSummary, error) {
	svc := widget.NewService(l.mirror, l.store, l.loc,
		widget.WithClock(l.clock), widget.WithSubunitRate(l.allowSubunit))
	summary, err := svc.Summary(ctx)
	if err != nil {
		return budget.WidgetSummary{}, wrap("compute widget", err)
	}
	return summary, nil
}

// engineInput loads active bills, goals and transactions. When currentOnly is
// set, only transactions in the current week or month are loaded.
func (l *Ledger) engineInput(ctx context.Context, settings model.Settings, currentOnly bool) (budget.Input, error) {
	now := l.now()
	cal := l.calendar(settings)

	filter := service.TransactionFilter{}
	if currentOnly {
		week, month := cal.Week(now), cal.Month(now)
		filter.Start, filter.End = week.Start, week.LastInstant()
		if month.Start.Before(filter.Start) {
			filter.Start = month.Start
		}
		if month.LastInstant().After(filter.End) {
			filter.End = month.LastInstant()
		}
	}

	txns, err := l.store.GetTransactions(ctx, filter)
	if err != nil {
		return budget.Input{}, wrap("load transactions", err)
	}
	bills, err := l.store.GetBills(ctx, true)
	if err != nil {
		return budget.Input{}, wrap("load bills", err)
	}
	goals, err := l.store.GetGoals(ctx)
	if err != nil {
		return budget.Input{}, wrap("load goals", err)
	}

	return budget.Input{
		Now:              now,
		Calendar:         cal,
		Settings:         settings,
		Rate:             l.rate(settings),
		Bills:            bills,
		Goals:            goals,
		Transactions:     txns,
		AllowSubunitRate: l.allowSubunit,
	}, nil
}

// CloseResult counts the records a close pass created.
type CloseResult struct {
	Months int
	Weeks  int
}

// ClosePeriods snapshots every closed month and logs every closed week that has
// no record yet. Running it again without a new closed period creates nothing.
func (l *Ledger) ClosePeriods(ctx context.Context, progress func(done, total int)) (CloseResult, error) {
	settings, err := l.Settings(ctx)
	if err != nil {
		return CloseResult{}, err
	}
	in, err := l.engineInput(ctx, settings, false)
	if err != nil {
		return CloseResult{}, err
	}

	snapshots, err := l.store.GetMonthlySnapshots(ctx)
	if err != nil {
		return CloseResult{}, wrap("load monthly snapshots", err)
	}
	logs, err := l.store.GetWeeklyLogs(ctx)
	if err != nil {
		return CloseResult{}, wrap("load weekly logs", err)
	}

	pendingMonths := history.PendingMonthlySnapshots(history.MonthlyCloseInput{
		Now:              in.Now,
		NewID:            l.newID,
		Calendar:         in.Calendar,
		Settings:         settings,
		Rate:             in.Rate,
		Transactions:     in.Transactions,
		Existing:         snapshots,
		AllowSubunitRate: l.allowSubunit,
	})
	pendingWeeks := history.PendingWeeklyLogs(history.WeeklyCloseInput{
		Now:              in.Now,
		NewID:            l.newID,
		Calendar:         in.Calendar,
		Settings:         settings,
		Rate:             in.Rate,
		Bills:            in.Bills,
		Goals:            in.Goals,
		Transactions:     in.Transactions,
		Existing:         logs,
		AllowSubunitRate: l.allowSubunit,
	})

	total := len(pendingMonths) + len(pendingWeeks)
	if total == 0 {
		return CloseResult{}, nil
	}

	if len(pendingMonths) > 0 {
		if err := l.store.SaveMonthlySnapshots(ctx, pendingMonths); err != nil {
			return CloseResult{}, wrap("save monthly snapshots", err)
		}
	}
	if progress != nil {
		progress(len(pendingMonths), total)
	}

	if len(pendingWeeks) > 0 {
		if err := l.store.SaveWeeklyLogs(ctx, pendingWeeks); err != nil {
			return CloseResult{Months: len(pendingMonths)}, wrap("save weekly logs", err)
		}
	}
	if progress != nil {
		progress(total, total)
	}

	slog.Info("closed periods", "months", len(pendingMonths), "weeks", len(pendingWeeks))
	return CloseResult{Months: len(pendingMonths), Weeks: len(pendingWeeks)}, nil
}

// MonthHistory lists the live current month followed by stored snapshots, newest
// first. Months that closed since the last pass are snapshotted before reading.
func (l *Ledger) MonthHistory(ctx context.Context) ([]history.MonthRow, error) {
	if _, err := l.ClosePeriods(ctx, nil); err != nil {
		return nil, err
	}
	settings, err := l.Settings(ctx)
	if err != nil {
		return nil, err
	}
	in, err := l.engineInput(ctx, settings, true)
	if err != nil {
		return nil, err
	}
	snapshots, err := l.store.GetMonthlySnapshots(ctx)
	if err != nil {
		return nil, wrap("load monthly snapshots", err)
	}
	return history.MonthRows(budget.Compute(in), settings, in.Calendar, snapshots), nil
}

// WeekHistory lists stored weekly logs, newest first, after logging any week
// that closed since the last pass.
func (l *Ledger) WeekHistory(ctx context.Context) ([]model.WeeklyLog, error) {
	if _, err := l.ClosePeriods(ctx, nil); err != nil {
		return nil, err
	}
	logs, err := l.store.GetWeeklyLogs(ctx)
	if err != nil {
		return nil, wrap("load weekly logs", err)
	}
	return history.SortWeeklyLogs(logs), nil
}
