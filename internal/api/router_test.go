package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/envelope/internal/budget"
	"github.com/Veraticus/envelope/internal/common"
	"github.com/Veraticus/envelope/internal/history"
	"github.com/Veraticus/envelope/internal/model"
	"github.com/Veraticus/envelope/internal/period"
	"github.com/Veraticus/envelope/internal/service"
)

var week = period.Range{
	Start: time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
}

type fakeReader struct {
	err    error
	filter service.TransactionFilter
	logs   []model.WeeklyLog
}

func (f *fakeReader) Widget(context.Context) (budget.WidgetSummary, error) {
	return budget.WidgetSummary{
		Week:            week,
		WeeklyAvailable: decimal.RequireFromString("710"),
		WeeklyAllowance: decimal.RequireFromString("750"),
		WeeklySpent:     decimal.RequireFromString("40"),
		Currency:        "USD",
		DaysLeft:        4,
	}, f.err
}

func (f *fakeReader) Summary(context.Context) (budget.Summary, error) {
	return budget.Summary{
		Week:             week,
		Month:            period.Range{Start: week.Start, End: week.End},
		MonthlySavings:   decimal.NewFromInt(-5),
		SpendingCurrency: "USD",
		Goals: []budget.GoalProgress{{
			Goal:   model.Goal{CategoryName: "Dining", Limit: decimal.NewFromInt(100), Period: model.GoalWeekly},
			Window: week,
			Spent:  decimal.NewFromInt(80),
			Ratio:  decimal.RequireFromString("0.8"),
			AtRisk: true,
		}},
	}, f.err
}

func (f *fakeReader) MonthHistory(context.Context) ([]history.MonthRow, error) {
	return []history.MonthRow{
		{Month: week, IsCurrent: true, Spent: decimal.NewFromInt(10)},
		{Month: week, Spent: decimal.NewFromInt(20)},
	}, f.err
}

func (f *fakeReader) WeekHistory(context.Context) ([]model.WeeklyLog, error) {
	return f.logs, f.err
}

func (f *fakeReader) Transactions(_ context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	f.filter = filter
	return []model.Transaction{{
		ID: "t1", Title: "Lunch", Amount: decimal.RequireFromString("12.50"), Kind: model.KindExpense,
		Date: week.Start.Add(13 * time.Hour), Category: model.CategorySnapshot{Name: "Dining"},
	}}, f.err
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]any
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestRouter_Health(t *testing.T) {
	rec, body := get(t, NewRouter(&fakeReader{}, time.UTC), "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestRouter_Widget(t *testing.T) {
	rec, body := get(t, NewRouter(&fakeReader{}, time.UTC), "/api/widget")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "710", body["weekly_available"])
	assert.Equal(t, "750", body["weekly_allowance"])
	assert.Equal(t, "USD", body["currency"])
	assert.EqualValues(t, 4, body["days_left"])
	assert.Equal(t, map[string]any{"start": "2025-02-09", "end": "2025-02-15"}, body["week"])
}

func TestRouter_Summary(t *testing.T) {
	rec, body := get(t, NewRouter(&fakeReader{}, time.UTC), "/api/summary")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["over_budget"])
	goals, ok := body["goals"].([]any)
	require.True(t, ok)
	require.Len(t, goals, 1)
	goal := goals[0].(map[string]any)
	assert.Equal(t, "Dining", goal["category"])
	assert.Equal(t, "20", goal["remaining"])
}

func TestRouter_History(t *testing.T) {
	reader := &fakeReader{logs: []model.WeeklyLog{
		{WeekStart: week.Start, WeekEnd: week.End, TotalAvailable: decimal.RequireFromString("123.456"), CurrencyCode: "USD"},
	}}
	h := NewRouter(reader, time.UTC)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history/months?limit=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var months []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &months))
	require.Len(t, months, 1)
	assert.Equal(t, true, months[0]["is_current"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history/weeks", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var weeks []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &weeks))
	require.Len(t, weeks, 1)
	assert.Equal(t, "2025-02-09", weeks[0]["week_start"])
	assert.Equal(t, "123.46", weeks[0]["total_available"])
}

func TestRouter_Transactions(t *testing.T) {
	reader := &fakeReader{}
	h := NewRouter(reader, time.UTC)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transactions?from=2025-02-01&to=2025-02-28&kind=expense", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), reader.filter.Start)
	assert.Equal(t, time.Date(2025, 2, 28, 23, 59, 59, 999999999, time.UTC), reader.filter.End)
	assert.Equal(t, model.KindExpense, reader.filter.Kind)
	assert.Equal(t, 100, reader.filter.Limit)

	var txns []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txns))
	require.Len(t, txns, 1)
	assert.Equal(t, "12.5", txns[0]["amount"])
	assert.Equal(t, "Dining", txns[0]["category"])
}

func TestRouter_BadRequests(t *testing.T) {
	h := NewRouter(&fakeReader{}, time.UTC)

	for _, path := range []string{
		"/api/history/months?limit=abc",
		"/api/history/weeks?limit=-1",
		"/api/transactions?from=yesterday",
		"/api/transactions?from=2025-02-10&to=2025-02-01",
		"/api/transactions?kind=refund",
	} {
		rec, body := get(t, h, path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		require.Contains(t, body, "error", path)
		assert.Equal(t, "invalid_request", body["error"].(map[string]any)["code"], path)
	}
}

func TestRouter_PersistenceFailure(t *testing.T) {
	reader := &fakeReader{err: common.Persistence("load settings", errors.New("disk I/O error"))}
	rec, body := get(t, NewRouter(reader, time.UTC), "/api/summary")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "internal_error", errBody["code"])
	assert.NotContains(t, fmt.Sprint(errBody["message"]), "disk")
}

func TestRouter_NotFound(t *testing.T) {
	rec, _ := get(t, NewRouter(&fakeReader{}, time.UTC), "/api/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
