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
)

const categoryColumns = `id, name, icon, color, kind, is_default, sort_order, created_at`

// CreateCategory inserts a category. Names are unique per kind, ignoring case.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (`+categoryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		category.ID, strings.TrimSpace(category.Name), category.Icon, category.Color, string(category.Kind),
		category.IsDefault, category.SortOrder, formatTime(category.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", translateError(err))
	}

	slog.Debug("created category", "name", category.Name, "kind", category.Kind)
	return nil
}

// UpdateCategory renames or restyles a category. Transactions keep their own snapshot.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, icon = ?, color = ?, sort_order = ?
		WHERE id = ?`,
		strings.TrimSpace(category.Name), category.Icon, category.Color, category.SortOrder, category.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", translateError(err))
	}
	return requireAffected(res, "category", category.ID)
}

// DeleteCategory removes a category. Protection of defaults is enforced by the caller.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return requireAffected(res, "category", id)
}

// GetCategory returns the category with the given id.
func (s *SQLiteStorage) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	return s.scanOneCategory(row, id)
}

// GetCategoryByName looks a category up by kind and case-insensitive name.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, kind model.Kind, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+` FROM categories
		WHERE kind = ? AND name = ? COLLATE NOCASE`,
		string(kind), strings.TrimSpace(name),
	)
	return s.scanOneCategory(row, name)
}

// GetCategories lists categories of one kind, or all when kind is empty.
func (s *SQLiteStorage) GetCategories(ctx context.Context, kind model.Kind) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + categoryColumns + ` FROM categories`
	var args []any
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY kind, sort_order, name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

func (s *SQLiteStorage) scanOneCategory(row *sql.Row, key string) (*model.Category, error) {
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: category %s", ErrNotFound, key)
	}
	return c, err
}

func scanCategory(row rowScanner) (*model.Category, error) {
	var (
		c         model.Category
		kind      string
		createdAt string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Icon, &c.Color, &kind, &c.IsDefault, &c.SortOrder, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan category: %w", err)
	}
	c.Kind = model.Kind(kind)

	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &c, nil
}
