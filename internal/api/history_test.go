package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/envelope/internal/currency"
	"github.com/Veraticus/envelope/internal/ledger"
	"github.com/Veraticus/envelope/internal/model"
	"github.com/Veraticus/envelope/internal/storage"
	"github.com/Veraticus/envelope/internal/widget"
)

type oneRate struct{}

func (oneRate) Fetch(context.Context, model.CurrencyCode, model.CurrencyCode) (currency.Quote, error) {
	return currency.Quote{Rate: decimal.NewFromInt(1)}, nil
}

func TestRouter_HistoryClosesPeriodsWhileRunning(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "envelope.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))

	now := time.Date(2025, 2, 20, 12, 0, 0, 0, time.UTC)
	l := ledger.New(store, currency.NewCache(oneRate{}, store), widget.NewFile(filepath.Join(dir, "widget.yaml")), time.UTC,
		ledger.WithClock(func() time.Time { return now }))
	require.NoError(t, l.Init(ctx))

	_, err = l.AddTransaction(ctx, ledger.TransactionInput{
		Title:        "Market",
		Amount:       decimal.NewFromInt(50),
		Kind:         model.KindExpense,
		Date:         now,
		CategoryName: "Groceries",
	})
	require.NoError(t, err)
	_, err = l.ClosePeriods(ctx, nil)
	require.NoError(t, err)

	router := NewRouter(l, time.UTC)

	// The process keeps running into March.
	now = time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history/months", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var months []monthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&months))
	require.Len(t, months, 2)
	assert.True(t, months[0].IsCurrent)
	assert.False(t, months[1].IsCurrent)
	assert.Equal(t, "50", months[1].Spent.String())

	snapshots, err := store.GetMonthlySnapshots(ctx)
	require.NoError(t, err)
	assert.Len(t, snapshots, 1)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history/weeks", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var weeks []weekResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&weeks))
	require.NotEmpty(t, weeks)
	assert.Equal(t, "2025-02-23", weeks[0].WeekStart, "the week before March 2 closed while serving")
}
