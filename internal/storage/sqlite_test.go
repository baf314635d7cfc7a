package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/envelope/internal/model"
	"github.com/Veraticus/envelope/internal/service"
)

// createTestStorage opens a migrated database in a temp directory.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func newExpense(id, category string, amount string, date time.Time) *model.Transaction {
	return &model.Transaction{
		ID:       id,
		Title:    "Expense " + id,
		Amount:   decimal.RequireFromString(amount),
		Kind:     model.KindExpense,
		Date:     date,
		Category: model.CategorySnapshot{Name: category, Icon: "cart", Color: "green"},
	}
}

// allTransactions matches every stored transaction.
func allTransactions() service.TransactionFilter {
	return service.TransactionFilter{}
}

func filter(start, end time.Time, kind model.Kind, category string) service.TransactionFilter {
	return service.TransactionFilter{Start: start, End: end, Kind: kind, Category: category}
}

func TestSQLiteStorage_NewSQLiteStorage(t *testing.T) {
	_, err := NewSQLiteStorage("")
	assert.ErrorIs(t, err, ErrEmptyString)

	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "envelope.db")
	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	assert.Equal(t, dbPath, store.Path())
}

func TestSQLiteStorage_TransactionLifecycle(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	txn := newExpense("t1", "Groceries", "42.10", day(2025, 3, 4))
	billID := "bill-1"
	txn.BillID = &billID
	txn.Note = "weekly shop"
	require.NoError(t, store.CreateTransaction(ctx, txn))
	assert.False(t, txn.CreatedAt.IsZero(), "created_at should be stamped")

	got, err := store.GetTransaction(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Expense t1", got.Title)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("42.10")))
	assert.True(t, got.Date.Equal(txn.Date))
	assert.Equal(t, "Groceries", got.Category.Name)
	require.NotNil(t, got.BillID)
	assert.Equal(t, "bill-1", *got.BillID)

	got.Amount = decimal.RequireFromString("50")
	got.BillID = nil
	require.NoError(t, store.UpdateTransaction(ctx, got))

	updated, err := store.GetTransaction(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "50", updated.Amount.String())
	assert.Nil(t, updated.BillID)

	require.NoError(t, store.DeleteTransaction(ctx, "t1"))
	_, err = store.GetTransaction(ctx, "t1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.DeleteTransaction(ctx, "t1"), ErrNotFound)
}

func TestSQLiteStorage_CreateTransactionRejectsInvalid(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		mutate func(*model.Transaction)
		name   string
	}{
		{name: "zero amount", mutate: func(tx *model.Transaction) { tx.Amount = decimal.Zero }},
		{name: "negative amount", mutate: func(tx *model.Transaction) { tx.Amount = decimal.NewFromInt(-3) }},
		{name: "empty title", mutate: func(tx *model.Transaction) { tx.Title = "  " }},
		{name: "missing category", mutate: func(tx *model.Transaction) { tx.Category = model.CategorySnapshot{} }},
		{name: "bad kind", mutate: func(tx *model.Transaction) { tx.Kind = "transfer" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := newExpense("bad", "Other", "1", day(2025, 1, 1))
			tt.mutate(txn)
			err := store.CreateTransaction(ctx, txn)
			require.Error(t, err)
			assert.True(t, model.IsValidationError(err), "want validation error, got %v", err)
		})
	}

	dup := newExpense("dup", "Other", "1", day(2025, 1, 1))
	require.NoError(t, store.CreateTransaction(ctx, dup))
	assert.ErrorIs(t, store.CreateTransaction(ctx, dup), ErrDuplicateEntry)
}

func TestSQLiteStorage_GetTransactionsFiltering(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	for i, d := range []int{1, 5, 10, 15, 20} {
		txn := newExpense(fmt.Sprintf("e%d", i), "Groceries", "10", day(2025, 4, d))
		if d == 10 {
			txn.Category.Name = "Gas"
		}
		require.NoError(t, store.CreateTransaction(ctx, txn))
	}
	income := &model.Transaction{
		ID: "inc", Title: "Paycheck", Amount: decimal.NewFromInt(3000), Kind: model.KindIncome,
		Date: day(2025, 4, 12), Category: model.CategorySnapshot{Name: "Salary"},
	}
	require.NoError(t, store.CreateTransaction(ctx, income))

	all, err := store.GetTransactions(ctx, allTransactions())
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, "e4", all[0].ID, "newest first")

	inRange, err := store.GetTransactions(ctx, filter(day(2025, 4, 5), day(2025, 4, 15), "", ""))
	require.NoError(t, err)
	assert.Len(t, inRange, 4)

	expenses, err := store.GetTransactions(ctx, filter(time.Time{}, time.Time{}, model.KindExpense, ""))
	require.NoError(t, err)
	assert.Len(t, expenses, 5)

	gas, err := store.GetTransactions(ctx, filter(time.Time{}, time.Time{}, "", "Gas"))
	require.NoError(t, err)
	require.Len(t, gas, 1)
	assert.Equal(t, "e2", gas[0].ID)

	_, err = store.GetTransactions(ctx, filter(day(2025, 4, 15), day(2025, 4, 1), "", ""))
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	paged := allTransactions()
	paged.Limit, paged.Offset = 2, 2
	page, err := store.GetTransactions(ctx, paged)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "inc", page[0].ID)
}

func TestSQLiteStorage_DeleteTransactionsBefore(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.CreateTransaction(ctx, newExpense("old", "Other", "5", day(2024, 12, 31))))
	require.NoError(t, store.CreateTransaction(ctx, newExpense("new", "Other", "5", day(2025, 1, 2))))

	n, err := store.DeleteTransactionsBefore(ctx, day(2025, 1, 1))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	remaining, err := store.GetTransactions(ctx, allTransactions())
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "new", remaining[0].ID)
}

func TestSQLiteStorage_TransactionNoteExists(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	txn := newExpense("n1", "Other", "5", day(2025, 2, 2))
	txn.Note = "Imported from OFX (ABC123)"
	require.NoError(t, store.CreateTransaction(ctx, txn))

	found, err := store.TransactionNoteExists(ctx, "Imported from OFX (ABC123)")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = store.TransactionNoteExists(ctx, "Imported from OFX (XYZ)")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSQLiteStorage_ConcurrentAccess(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- store.CreateTransaction(ctx, newExpense(fmt.Sprintf("c%02d", i), "Other", "1", day(2025, 5, 1)))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	all, err := store.GetTransactions(ctx, allTransactions())
	require.NoError(t, err)
	assert.Len(t, all, 20)
}
