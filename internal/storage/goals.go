package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/envelope/internal/model"
)

const goalColumns = `id, category_name, spending_limit, period, notes, created_at`

// CreateGoal inserts a spending goal.
func (s *SQLiteStorage) CreateGoal(ctx context.Context, goal *model.Goal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateGoal(goal); err != nil {
		return err
	}
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO goals (`+goalColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		goal.ID, goal.CategoryName, goal.Limit, string(goal.Period), goal.Notes, formatTime(goal.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", translateError(err))
	}

	slog.Debug("created goal", "category", goal.CategoryName, "period", goal.Period)
	return nil
}

// UpdateGoal replaces the editable fields of a goal.
func (s *SQLiteStorage) UpdateGoal(ctx context.Context, goal *model.Goal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateGoal(goal); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE goals SET category_name = ?, spending_limit = ?, period = ?, notes = ?
		WHERE id = ?`,
		goal.CategoryName, goal.Limit, string(goal.Period), goal.Notes, goal.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", translateError(err))
	}
	return requireAffected(res, "goal", goal.ID)
}

// DeleteGoal removes a goal.
func (s *SQLiteStorage) DeleteGoal(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return requireAffected(res, "goal", id)
}

// GetGoal returns the goal with the given id.
func (s *SQLiteStorage) GetGoal(ctx context.Context, id string) (*model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ?`, id)
	goal, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: goal %s", ErrNotFound, id)
	}
	return goal, err
}

// GetGoals lists every goal ordered by category.
func (s *SQLiteStorage) GetGoals(ctx context.Context) ([]model.Goal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+goalColumns+` FROM goals ORDER BY category_name, period`)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var goals []model.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goals: %w", err)
	}

	slog.Debug("retrieved goals", "count", len(goals))
	return goals, nil
}

func scanGoal(row rowScanner) (*model.Goal, error) {
	var (
		g         model.Goal
		period    string
		createdAt string
	)
	err := row.Scan(&g.ID, &g.CategoryName, &g.Limit, &period, &g.Notes, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan goal: %w", err)
	}
	g.Period = model.GoalPeriod(period)
	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &g, nil
}
