package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind tells whether money left or entered the user's pocket.
type Kind string

const (
	// KindExpense is money spent.
	KindExpense Kind = "expense"
	// KindIncome is money received.
	KindIncome Kind = "income"
)

// ParseKind converts user input into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindExpense:
		return KindExpense, nil
	case KindIncome:
		return KindIncome, nil
	default:
		return "", invalid("kind", ErrInvalidKind)
	}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindExpense || k == KindIncome
}

// CategorySnapshot is a copy of a category's display fields taken when a
// transaction or bill is created. Later category edits do not touch it.
type CategorySnapshot struct {
	Name  string
	Icon  string
	Color string
}

// Transaction represents a single income or expense entry in the spending currency.
type Transaction struct {
	Date      time.Time
	CreatedAt time.Time
	BillID    *string
	Amount    decimal.Decimal
	Category  CategorySnapshot
	ID        string
	Title     string
	Note      string
	Kind      Kind
}

// IsExpense reports whether the transaction is spending.
func (t *Transaction) IsExpense() bool {
	return t.Kind == KindExpense
}

// IsBillLinked reports whether the transaction was generated for a recurring bill.
func (t *Transaction) IsBillLinked() bool {
	return t.BillID != nil && *t.BillID != ""
}

// Validate checks the fields a user must supply before a transaction can be saved.
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return invalid("title", ErrEmptyName)
	}
	if !t.Amount.IsPositive() {
		return invalid("amount", ErrNonPositiveAmount)
	}
	if !t.Kind.Valid() {
		return invalid("kind", ErrInvalidKind)
	}
	if t.Date.IsZero() {
		return invalid("date", ErrMissingDate)
	}
	if strings.TrimSpace(t.Category.Name) == "" {
		return invalid("category", ErrMissingCategory)
	}
	return nil
}
