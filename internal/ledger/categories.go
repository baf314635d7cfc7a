package ledger

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Veraticus/envelope/internal/model"
	"github.com/Veraticus/envelope/internal/storage"
)

// CategoryInput holds the user-editable category fields.
type CategoryInput struct {
	Name  string
	Icon  string
	Color string
	Kind  model.Kind
}

// SeedDefaults creates any missing default category. It is safe to run repeatedly.
func (l *Ledger) SeedDefaults(ctx context.Context) (int, error) {
	order := map[model.Kind]int{}
	created := 0
	for _, def := range model.DefaultCategories {
		sortOrder := order[def.Kind]
		order[def.Kind]++

		_, err := l.store.GetCategoryByName(ctx, def.Kind, def.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return created, wrap("look up default category", err)
		}

		category := def
		category.ID = l.newID()
		category.IsDefault = true
		category.SortOrder = sortOrder
		category.CreatedAt = l.now()
		if err := l.store.CreateCategory(ctx, &category); err != nil {
			return created, wrap("seed default category", err)
		}
		created++
	}

	if created > 0 {
		slog.Info("seeded default categories", "count", created)
	}
	return created, nil
}

// Categories lists categories of one kind, or every category when kind is empty.
func (l *Ledger) Categories(ctx context.Context, kind model.Kind) ([]model.Category, error) {
	categories, err := l.store.GetCategories(ctx, kind)
	if err != nil {
		return nil, wrap("list categories", err)
	}
	return categories, nil
}

// AddCategory creates a user category. Names are unique within a kind, ignoring case.
func (l *Ledger) AddCategory(ctx context.Context, in CategoryInput) (*model.Category, error) {
	category := &model.Category{
		ID:        l.newID(),
		Name:      strings.TrimSpace(in.Name),
		Icon:      in.Icon,
		Color:     in.Color,
		Kind:      in.Kind,
		CreatedAt: l.now(),
	}
	if err := category.Validate(); err != nil {
		return nil, err
	}
	if err := l.ensureUniqueName(ctx, category.Kind, category.Name, ""); err != nil {
		return nil, err
	}

	existing, err := l.store.GetCategories(ctx, category.Kind)
	if err != nil {
		return nil, wrap("list categories", err)
	}
	category.SortOrder = len(existing)

	if err := l.store.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, storage.ErrDuplicateEntry) {
			return nil, invalid("name", model.ErrDuplicateCategory)
		}
		return nil, wrap("create category", err)
	}
	slog.Info("category added", "name", category.Name, "kind", category.Kind)
	return category, nil
}

// UpdateCategory renames or restyles a category. Existing transactions and bills keep their snapshot.
func (l *Ledger) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*model.Category, error) {
	category, err := l.store.GetCategory(ctx, id)
	if err != nil {
		return nil, wrap("get category", err)
	}

	category.Name = strings.TrimSpace(in.Name)
	if in.Icon != "" {
		category.Icon = in.Icon
	}
	if in.Color != "" {
		category.Color = in.Color
	}
	if err := category.Validate(); err != nil {
		return nil, err
	}
	if err := l.ensureUniqueName(ctx, category.Kind, category.Name, category.ID); err != nil {
		return nil, err
	}

	if err := l.store.UpdateCategory(ctx, category); err != nil {
		if errors.Is(err, storage.ErrDuplicateEntry) {
			return nil, invalid("name", model.ErrDuplicateCategory)
		}
		return nil, wrap("update category", err)
	}
	return category, nil
}

// DeleteCategory removes a user category. Defaults are protected.
func (l *Ledger) DeleteCategory(ctx context.Context, id string) error {
	category, err := l.store.GetCategory(ctx, id)
	if err != nil {
		return wrap("get category", err)
	}
	if category.IsDefault {
		return invalid("category", model.ErrProtectedCategory)
	}
	if err := l.store.DeleteCategory(ctx, id); err != nil {
		return wrap("delete category", err)
	}
	slog.Info("category deleted", "name", category.Name, "kind", category.Kind)
	return nil
}

// category resolves a name within a kind. A missing name is a validation error.
func (l *Ledger) category(ctx context.Context, kind model.Kind, name string) (*model.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, invalid("category", model.ErrMissingCategory)
	}
	category, err := l.store.GetCategoryByName(ctx, kind, name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, invalid("category", model.ErrMissingCategory)
	}
	if err != nil {
		return nil, wrap("get category", err)
	}
	return category, nil
}

func (l *Ledger) ensureUniqueName(ctx context.Context, kind model.Kind, name, selfID string) error {
	existing, err := l.store.GetCategoryByName(ctx, kind, name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return wrap("get category", err)
	}
	if existing.ID != selfID {
		return invalid("name", model.ErrDuplicateCategory)
	}
	return nil
}
