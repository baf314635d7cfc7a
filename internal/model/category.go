package model

import (
	"strings"
	"time"
)

// Category groups transactions for display and goal tracking. Names are unique within a kind.
type Category struct {
	CreatedAt time.Time
	ID        string
	Name      string
	Icon      string
	Color     string
	Kind      Kind
	SortOrder int
	IsDefault bool
}

// Snapshot copies the display fields for denormalized storage.
func (c *Category) Snapshot() CategorySnapshot {
	return CategorySnapshot{Name: c.Name, Icon: c.Icon, Color: c.Color}
}

// Validate checks that the category can be saved.
func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return invalid("name", ErrEmptyName)
	}
	if !c.Kind.Valid() {
		return invalid("kind", ErrInvalidKind)
	}
	return nil
}

// SameName compares category names the way uniqueness is enforced.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// DefaultCategories are seeded on first run and protected from deletion.
var DefaultCategories = []Category{
	{Name: "Groceries", Icon: "cart", Color: "green", Kind: KindExpense},
	{Name: "Dining", Icon: "fork.knife", Color: "orange", Kind: KindExpense},
	{Name: "Transport", Icon: "car", Color: "blue", Kind: KindExpense},
	{Name: "Gas", Icon: "fuelpump", Color: "red", Kind: KindExpense},
	{Name: "Housing", Icon: "house", Color: "brown", Kind: KindExpense},
	{Name: "Utilities", Icon: "bolt", Color: "yellow", Kind: KindExpense},
	{Name: "Health", Icon: "heart", Color: "pink", Kind: KindExpense},
	{Name: "Entertainment", Icon: "tv", Color: "purple", Kind: KindExpense},
	{Name: "Shopping", Icon: "bag", Color: "indigo", Kind: KindExpense},
	{Name: "Other", Icon: "ellipsis", Color: "gray", Kind: KindExpense},
	{Name: "Salary", Icon: "banknote", Color: "green", Kind: KindIncome},
	{Name: "Freelance", Icon: "briefcase", Color: "teal", Kind: KindIncome},
	{Name: "Other Income", Icon: "plus", Color: "gray", Kind: KindIncome},
}

// FallbackCategory returns the catch-all category name for a kind.
func FallbackCategory(kind Kind) string {
	if kind == KindIncome {
		return "Other Income"
	}
	return "Other"
}
