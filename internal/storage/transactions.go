package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/envelope/internal/model"
	"github.com/Veraticus/envelope/internal/service"
)

const transactionColumns = `id, title, amount, kind, date, note, category_name, category_icon, category_color, bill_id, created_at`

// CreateTransaction inserts a new transaction.
func (s *SQLiteStorage) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.Title, txn.Amount, string(txn.Kind), formatTime(txn.Date), txn.Note,
		txn.Category.Name, txn.Category.Icon, txn.Category.Color, txn.BillID, formatTime(txn.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", translateError(err))
	}

	slog.Debug("created transaction", "id", txn.ID, "kind", txn.Kind, "amount", txn.Amount.String())
	return nil
}

// UpdateTransaction replaces the editable fields of an existing transaction.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET title = ?, amount = ?, kind = ?, date = ?, note = ?,
		    category_name = ?, category_icon = ?, category_color = ?, bill_id = ?
		WHERE id = ?`,
		txn.Title, txn.Amount, string(txn.Kind), formatTime(txn.Date), txn.Note,
		txn.Category.Name, txn.Category.Icon, txn.Category.Color, txn.BillID, txn.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", translateError(err))
	}
	return requireAffected(res, "transaction", txn.ID)
}

// DeleteTransaction removes one transaction.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return requireAffected(res, "transaction", id)
}

// DeleteTransactionsBefore removes every transaction dated strictly before the cutoff.
func (s *SQLiteStorage) DeleteTransactionsBefore(ctx context.Context, before time.Time) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if before.IsZero() {
		return 0, fmt.Errorf("%w: before", ErrNilParameter)
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE date < ?`, formatTime(before))
	if err != nil {
		return 0, fmt.Errorf("failed to delete transactions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	slog.Info("deleted transactions", "before", before.Format(time.DateOnly), "count", n)
	return n, nil
}

// GetTransaction returns the transaction with the given id.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transaction %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// GetTransactions returns transactions matching filter, newest first.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if !filter.Start.IsZero() && !filter.End.IsZero() && filter.End.Before(filter.Start) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, filter.End, filter.Start)
	}

	var (
		where []string
		args  []any
	)
	if !filter.Start.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, formatTime(filter.Start))
	}
	if !filter.End.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, formatTime(filter.End))
	}
	if filter.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(filter.Kind))
	}
	if filter.Category != "" {
		where = append(where, "category_name = ?")
		args = append(args, filter.Category)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	slog.Debug("retrieved transactions", "count", len(transactions))
	return transactions, nil
}

// TransactionNoteExists reports whether any transaction carries exactly this note.
func (s *SQLiteStorage) TransactionNoteExists(ctx context.Context, note string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(note, "note"); err != nil {
		return false, err
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE note = ?`, note).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to look up transaction note: %w", err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var (
		txn       model.Transaction
		kind      string
		date      string
		createdAt string
		billID    sql.NullString
	)
	err := row.Scan(
		&txn.ID, &txn.Title, &txn.Amount, &kind, &date, &txn.Note,
		&txn.Category.Name, &txn.Category.Icon, &txn.Category.Color, &billID, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	txn.Kind = model.Kind(kind)
	if billID.Valid {
		id := billID.String
		txn.BillID = &id
	}
	if txn.Date, err = parseTime(date); err != nil {
		return nil, err
	}
	if txn.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &txn, nil
}
