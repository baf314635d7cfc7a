package ledger

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/envelope/internal/model"
	"github.com/Veraticus/envelope/internal/service"
)

// QuickAddNote marks expenses created through the shortcut entry point.
const QuickAddNote = "Added via Shortcut"

// TransactionInput holds the user-editable transaction fields.
type TransactionInput struct {
	Date         time.Time
	BillID       *string
	Amount       decimal.Decimal
	Title        string
	Note         string
	CategoryName string
	Kind         model.Kind
	// ClearNote removes the note on update, where an empty Note keeps it.
	ClearNote bool
}

// AddTransaction records income or an expense. The category's display fields are
// copied onto the transaction as they are now.
func (l *Ledger) AddTransaction(ctx context.Context, in TransactionInput) (*model.Transaction, error) {
	txn := &model.Transaction{
		ID:        l.newID(),
		Title:     strings.TrimSpace(in.Title),
		Amount:    in.Amount,
		Kind:      in.Kind,
		Date:      in.Date,
		Note:      in.Note,
		BillID:    in.BillID,
		CreatedAt: l.now(),
	}
	if txn.Date.IsZero() {
		txn.Date = l.now()
	}
	if !txn.Kind.Valid() {
		return nil, invalid("kind", model.ErrInvalidKind)
	}

	category, err := l.category(ctx, txn.Kind, in.CategoryName)
	if err != nil {
		return nil, err
	}
	txn.Category = category.Snapshot()

	if err := txn.Validate(); err != nil {
		return nil, err
	}
	if err := l.store.CreateTransaction(ctx, txn); err != nil {
		return nil, wrap("create transaction", err)
	}

	slog.Info("transaction added", "id", txn.ID, "kind", txn.Kind, "amount", txn.Amount.String(), "category", txn.Category.Name)
	return txn, nil
}

// QuickAdd records an expense dated now from the shortcut entry point.
func (l *Ledger) QuickAdd(ctx context.Context, amount decimal.Decimal, description, categoryName string) (*model.Transaction, error) {
	return l.AddTransaction(ctx, TransactionInput{
		Title:        description,
		Amount:       amount,
		Kind:         model.KindExpense,
		Date:         l.now(),
		Note:         QuickAddNote,
		CategoryName: categoryName,
	})
}

// UpdateTransaction edits a transaction in place. The category snapshot is only
// replaced when the category name changes; the kind cannot change.
func (l *Ledger) UpdateTransaction(ctx context.Context, id string, in TransactionInput) (*model.Transaction, error) {
	txn, err := l.store.GetTransaction(ctx, id)
	if err != nil {
		return nil, wrap("get transaction", err)
	}

	if in.Title != "" {
		txn.Title = strings.TrimSpace(in.Title)
	}
	if !in.Amount.IsZero() {
		txn.Amount = in.Amount
	}
	if !in.Date.IsZero() {
		txn.Date = in.Date
	}
	switch {
	case in.ClearNote:
		txn.Note = ""
	case in.Note != "":
		txn.Note = in.Note
	}
	if in.CategoryName != "" && !model.SameName(in.CategoryName, txn.Category.Name) {
		category, err := l.category(ctx, txn.Kind, in.CategoryName)
		if err != nil {
			return nil, err
		}
		txn.Category = category.Snapshot()
	}

	if err := txn.Validate(); err != nil {
		return nil, err
	}
	if err := l.store.UpdateTransaction(ctx, txn); err != nil {
		return nil, wrap("update transaction", err)
	}
	return txn, nil
}

// DeleteTransaction removes a transaction.
func (l *Ledger) DeleteTransaction(ctx context.Context, id string) error {
	if err := l.store.DeleteTransaction(ctx, id); err != nil {
		return wrap("delete transaction", err)
	}
	slog.Info("transaction deleted", "id", id)
	return nil
}

// Transactions lists transactions newest first.
func (l *Ledger) Transactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	txns, err := l.store.GetTransactions(ctx, filter)
	if err != nil {
		return nil, wrap("list transactions", err)
	}
	return txns, nil
}

// PruneTransactions deletes transactions dated before the cutoff. Closed periods are
// recorded first so the history keeps the pruned months and weeks.
func (l *Ledger) PruneTransactions(ctx context.Context, before time.Time) (int64, error) {
	if before.IsZero() || before.After(l.now()) {
		return 0, invalid("before", model.ErrInvalidCutoff)
	}
	if _, err := l.ClosePeriods(ctx, nil); err != nil {
		return 0, err
	}
	n, err := l.store.DeleteTransactionsBefore(ctx, before)
	if err != nil {
		return 0, wrap("prune transactions", err)
	}
	slog.Info("transactions pruned", "before", before.Format(time.DateOnly), "deleted", n)
	return n, nil
}

// ImportResult counts what an import did.
type ImportResult struct {
	Imported int
	Skipped  int
}

// Import adds transactions whose note is not already stored. The note carries the
// source's unique id, so re-importing the same file adds nothing.
func (l *Ledger) Import(ctx context.Context, inputs []TransactionInput, progress func(done, total int)) (ImportResult, error) {
	var result ImportResult
	for i, in := range inputs {
		exists := false
		if in.Note != "" {
			var err error
			exists, err = l.store.TransactionNoteExists(ctx, in.Note)
			if err != nil {
				return result, wrap("check imported transaction", err)
			}
		}
		if exists {
			result.Skipped++
		} else {
			if _, err := l.AddTransaction(ctx, in); err != nil {
				return result, err
			}
			result.Imported++
		}
		if progress != nil {
			progress(i+1, len(inputs))
		}
	}

	slog.Info("import finished", "imported", result.Imported, "skipped", result.Skipped)
	return result, nil
}
