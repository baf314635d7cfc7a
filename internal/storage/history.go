package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/envelope/internal/model"
)

// SaveMonthlySnapshots appends snapshots in one transaction. Existing rows are
// never touched; a snapshot for an already recorded month fails with ErrDuplicateEntry.
func (s *SQLiteStorage) SaveMonthlySnapshots(ctx context.Context, snapshots []model.MonthlySavingsSnapshot) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(snapshots) == 0 {
		return nil
	}
	for i := range snapshots {
		if err := validateSnapshot(&snapshots[i]); err != nil {
			return fmt.Errorf("snapshot at index %d: %w", i, err)
		}
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO monthly_savings_snapshots (
				id, month_start, month_end, budget_amount, spent_amount, exchange_rate,
				budget_currency, spending_currency, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, snap := range snapshots {
			createdAt := snap.CreatedAt
			if createdAt.IsZero() {
				createdAt = time.Now()
			}
			_, err := stmt.ExecContext(ctx,
				snap.ID, formatTime(snap.MonthStart), formatTime(snap.MonthEnd),
				snap.BudgetAmount, snap.SpentAmount, snap.ExchangeRate,
				string(snap.BudgetCurrency), string(snap.SpendingCurrency), formatTime(createdAt),
			)
			if err != nil {
				return fmt.Errorf("failed to save monthly snapshot: %w", translateError(err))
			}
			slog.Info("saved monthly snapshot", "month_start", snap.MonthStart.Format(time.DateOnly),
				"spent", snap.SpentAmount.String(), "rate", snap.ExchangeRate.String())
		}
		return nil
	})
}

// GetMonthlySnapshots returns every snapshot, newest month first.
func (s *SQLiteStorage) GetMonthlySnapshots(ctx context.Context) ([]model.MonthlySavingsSnapshot, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, month_start, month_end, budget_amount, spent_amount, exchange_rate,
		       budget_currency, spending_currency, created_at
		FROM monthly_savings_snapshots
		ORDER BY month_start DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snapshots []model.MonthlySavingsSnapshot
	for rows.Next() {
		var (
			snap                          model.MonthlySavingsSnapshot
			start, end, created           string
			budgetCurrency, spendCurrency string
		)
		if err := rows.Scan(&snap.ID, &start, &end, &snap.BudgetAmount, &snap.SpentAmount, &snap.ExchangeRate,
			&budgetCurrency, &spendCurrency, &created); err != nil {
			return nil, fmt.Errorf("failed to scan monthly snapshot: %w", err)
		}
		snap.BudgetCurrency = model.CurrencyCode(budgetCurrency)
		snap.SpendingCurrency = model.CurrencyCode(spendCurrency)
		if snap.MonthStart, err = parseTime(start); err != nil {
			return nil, err
		}
		if snap.MonthEnd, err = parseTime(end); err != nil {
			return nil, err
		}
		if snap.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly snapshots: %w", err)
	}

	slog.Debug("retrieved monthly snapshots", "count", len(snapshots))
	return snapshots, nil
}

// SaveWeeklyLogs appends weekly logs in one transaction.
func (s *SQLiteStorage) SaveWeeklyLogs(ctx context.Context, logs []model.WeeklyLog) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(logs) == 0 {
		return nil
	}
	for i := range logs {
		if err := validateWeeklyLog(&logs[i]); err != nil {
			return fmt.Errorf("weekly log at index %d: %w", i, err)
		}
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO weekly_logs (
				id, week_start, week_end, total_available, rolled_over_amount,
				unused_rolled_forward, goals_with_leftover, currency_code, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, l := range logs {
			createdAt := l.CreatedAt
			if createdAt.IsZero() {
				createdAt = time.Now()
			}
			_, err := stmt.ExecContext(ctx,
				l.ID, formatTime(l.WeekStart), formatTime(l.WeekEnd), l.TotalAvailable, l.RolledOverAmount,
				l.UnusedRolledForward, l.GoalsWithLeftover, string(l.CurrencyCode), formatTime(createdAt),
			)
			if err != nil {
				return fmt.Errorf("failed to save weekly log: %w", translateError(err))
			}
			slog.Info("saved weekly log", "week_start", l.WeekStart.Format(time.DateOnly),
				"available", l.TotalAvailable.String(), "unused", l.UnusedRolledForward.String())
		}
		return nil
	})
}

// GetWeeklyLogs returns every log, newest week first.
func (s *SQLiteStorage) GetWeeklyLogs(ctx context.Context) ([]model.WeeklyLog, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, week_start, week_end, total_available, rolled_over_amount,
		       unused_rolled_forward, goals_with_leftover, currency_code, created_at
		FROM weekly_logs
		ORDER BY week_start DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query weekly logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var logs []model.WeeklyLog
	for rows.Next() {
		var (
			l                   model.WeeklyLog
			start, end, created string
			currency            string
		)
		if err := rows.Scan(&l.ID, &start, &end, &l.TotalAvailable, &l.RolledOverAmount,
			&l.UnusedRolledForward, &l.GoalsWithLeftover, &currency, &created); err != nil {
			return nil, fmt.Errorf("failed to scan weekly log: %w", err)
		}
		l.CurrencyCode = model.CurrencyCode(currency)
		if l.WeekStart, err = parseTime(start); err != nil {
			return nil, err
		}
		if l.WeekEnd, err = parseTime(end); err != nil {
			return nil, err
		}
		if l.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating weekly logs: %w", err)
	}

	slog.Debug("retrieved weekly logs", "count", len(logs))
	return logs, nil
}
