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

const billColumns = `id, name, amount, frequency, category_name, category_icon, category_color, is_active, notes, created_at`

// CreateBill inserts a recurring bill.
func (s *SQLiteStorage) CreateBill(ctx context.Context, bill *model.RecurringBill) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBill(bill); err != nil {
		return err
	}
	if bill.CreatedAt.IsZero() {
		bill.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recurring_bills (`+billColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.Name, bill.Amount, string(bill.Frequency),
		bill.Category.Name, bill.Category.Icon, bill.Category.Color,
		bill.IsActive, bill.Notes, formatTime(bill.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create bill: %w", translateError(err))
	}

	slog.Debug("created bill", "name", bill.Name, "frequency", bill.Frequency)
	return nil
}

// UpdateBill replaces the editable fields of a bill.
func (s *SQLiteStorage) UpdateBill(ctx context.Context, bill *model.RecurringBill) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBill(bill); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE recurring_bills
		SET name = ?, amount = ?, frequency = ?, category_name = ?, category_icon = ?,
		    category_color = ?, is_active = ?, notes = ?
		WHERE id = ?`,
		bill.Name, bill.Amount, string(bill.Frequency), bill.Category.Name, bill.Category.Icon,
		bill.Category.Color, bill.IsActive, bill.Notes, bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", translateError(err))
	}
	return requireAffected(res, "bill", bill.ID)
}

// DeleteBill removes a bill. Transactions that reference it keep their bill id.
func (s *SQLiteStorage) DeleteBill(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM recurring_bills WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	return requireAffected(res, "bill", id)
}

// GetBill returns the bill with the given id.
func (s *SQLiteStorage) GetBill(ctx context.Context, id string) (*model.RecurringBill, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+billColumns+` FROM recurring_bills WHERE id = ?`, id)
	bill, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: bill %s", ErrNotFound, id)
	}
	return bill, err
}

// GetBills lists bills by name, optionally only the active ones.
func (s *SQLiteStorage) GetBills(ctx context.Context, activeOnly bool) ([]model.RecurringBill, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + billColumns + ` FROM recurring_bills`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var bills []model.RecurringBill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bills: %w", err)
	}

	slog.Debug("retrieved bills", "count", len(bills), "active_only", activeOnly)
	return bills, nil
}

func scanBill(row rowScanner) (*model.RecurringBill, error) {
	var (
		b         model.RecurringBill
		frequency string
		createdAt string
	)
	err := row.Scan(&b.ID, &b.Name, &b.Amount, &frequency, &b.Category.Name, &b.Category.Icon,
		&b.Category.Color, &b.IsActive, &b.Notes, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan bill: %w", err)
	}
	b.Frequency = model.Frequency(frequency)
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &b, nil
}
