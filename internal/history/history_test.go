package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/Veraticus/envelope/internal/budget"
	"github.com/Veraticus/envelope/internal/model"
	"github.com/Veraticus/envelope/internal/period"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cal = period.Calendar{FirstWeekday: time.Sunday, MonthStartDay: 1, Location: time.UTC}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func midnight(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func spend(category, amount string, at time.Time) model.Transaction {
	return model.Transaction{
		Title:    category,
		Amount:   dec(amount),
		Kind:     model.KindExpense,
		Date:     at,
		Category: model.CategorySnapshot{Name: category},
	}
}

func sequence() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func settingsWithEnvelope(amount string) model.Settings {
	s := model.DefaultSettings()
	s.MonthlyEnvelope = dec(amount)
	return s
}

func TestPendingMonthlySnapshots(t *testing.T) {
	txns := []model.Transaction{
		spend("Dining", "50", day(2023, 1, 10)),
		spend("Dining", "30", day(2023, 2, 7)),
		spend("Groceries", "200", day(2023, 2, 14)),
		spend("Gas", "150", day(2023, 2, 14)),
		spend("Dining", "10", day(2023, 3, 1)),
		spend("Dining", "5", day(2023, 4, 2)),
		{Title: "Salary", Amount: dec("1000"), Kind: model.KindIncome, Date: day(2022, 12, 20), Category: model.CategorySnapshot{Name: "Salary"}},
	}
	existing := []model.MonthlySavingsSnapshot{
		{MonthStart: midnight(2023, 1, 1), MonthEnd: midnight(2023, 1, 31)},
	}

	got := PendingMonthlySnapshots(MonthlyCloseInput{
		Now:          day(2023, 3, 8),
		NewID:        sequence(),
		Calendar:     cal,
		Settings:     settingsWithEnvelope("2800"),
		Rate:         dec("20"),
		Transactions: txns,
		Existing:     existing,
	})

	require.Len(t, got, 1)
	snap := got[0]
	assert.Equal(t, "id-1", snap.ID)
	assert.Equal(t, midnight(2023, 2, 1), snap.MonthStart)
	assert.Equal(t, midnight(2023, 2, 28), snap.MonthEnd)
	assert.True(t, dec("380").Equal(snap.SpentAmount))
	assert.True(t, dec("2800").Equal(snap.BudgetAmount))
	assert.True(t, decimal.NewFromInt(1).Equal(snap.ExchangeRate), "single currency snapshots use rate 1")
	assert.Equal(t, model.CurrencyCode("USD"), snap.BudgetCurrency)
}

func TestPendingMonthlySnapshots_DualCurrencyUsesLiveRate(t *testing.T) {
	settings := settingsWithEnvelope("3000")
	settings.SpendingCurrency = "MXN"
	settings.BudgetCurrency = "USD"

	got := PendingMonthlySnapshots(MonthlyCloseInput{
		Now:          day(2023, 3, 8),
		Calendar:     cal,
		Settings:     settings,
		Rate:         dec("17.5"),
		Transactions: []model.Transaction{spend("Dining", "100", day(2023, 1, 3)), spend("Dining", "100", day(2023, 2, 3))},
	})

	require.Len(t, got, 2)
	assert.Equal(t, midnight(2023, 1, 1), got[0].MonthStart)
	assert.Equal(t, midnight(2023, 2, 1), got[1].MonthStart)
	for _, s := range got {
		assert.True(t, dec("17.5").Equal(s.ExchangeRate))
		assert.Equal(t, model.CurrencyCode("USD"), s.BudgetCurrency)
		assert.Equal(t, model.CurrencyCode("MXN"), s.SpendingCurrency)
	}
}

func TestPendingMonthlySnapshots_NeverCurrentMonth(t *testing.T) {
	got := PendingMonthlySnapshots(MonthlyCloseInput{
		Now:          day(2023, 3, 31),
		Calendar:     cal,
		Settings:     settingsWithEnvelope("100"),
		Rate:         dec("1"),
		Transactions: []model.Transaction{spend("Dining", "10", day(2023, 3, 1))},
	})
	assert.Empty(t, got)
}

func TestPendingMonthlySnapshots_CustomMonthStart(t *testing.T) {
	custom := period.Calendar{FirstWeekday: time.Sunday, MonthStartDay: 19, Location: time.UTC}

	got := PendingMonthlySnapshots(MonthlyCloseInput{
		Now:      day(2024, 5, 25),
		Calendar: custom,
		Settings: settingsWithEnvelope("100"),
		Rate:     dec("1"),
		Transactions: []model.Transaction{
			spend("Dining", "10", day(2024, 5, 5)),
			spend("Dining", "15", day(2024, 4, 20)),
		},
	})

	require.Len(t, got, 1)
	assert.Equal(t, midnight(2024, 4, 19), got[0].MonthStart)
	assert.Equal(t, midnight(2024, 5, 18), got[0].MonthEnd)
	assert.True(t, dec("25").Equal(got[0].SpentAmount))
}

func TestPendingMonthlySnapshots_ChangedMonthStartDay(t *testing.T) {
	txns := []model.Transaction{
		spend("Dining", "10", day(2025, 1, 5)),
		spend("Dining", "10", day(2025, 1, 20)),
	}

	first := PendingMonthlySnapshots(MonthlyCloseInput{
		Now:          day(2025, 2, 10),
		Calendar:     cal,
		Settings:     settingsWithEnvelope("100"),
		Rate:         dec("1"),
		Transactions: txns,
	})
	require.Len(t, first, 1)
	assert.True(t, dec("20").Equal(first[0].SpentAmount))

	fifteenth := period.Calendar{FirstWeekday: time.Sunday, MonthStartDay: 15, Location: time.UTC}
	settings := settingsWithEnvelope("100")
	settings.MonthStartDay = 15

	t.Run("months overlapping a snapshot are skipped", func(t *testing.T) {
		got := PendingMonthlySnapshots(MonthlyCloseInput{
			Now:          day(2025, 3, 1),
			Calendar:     fifteenth,
			Settings:     settings,
			Rate:         dec("1"),
			Transactions: txns,
			Existing:     first,
		})
		assert.Empty(t, got)
	})

	t.Run("later months are still closed", func(t *testing.T) {
		got := PendingMonthlySnapshots(MonthlyCloseInput{
			Now:          day(2025, 4, 1),
			Calendar:     fifteenth,
			Settings:     settings,
			Rate:         dec("1"),
			Transactions: append(txns, spend("Dining", "7", day(2025, 2, 20))),
			Existing:     first,
		})
		require.Len(t, got, 1)
		assert.Equal(t, midnight(2025, 2, 15), got[0].MonthStart)
		assert.Equal(t, midnight(2025, 3, 14), got[0].MonthEnd)
		assert.True(t, dec("7").Equal(got[0].SpentAmount))
	})
}

func TestPendingWeeklyLogs(t *testing.T) {
	goals := []model.Goal{{CategoryName: "Gas", Limit: dec("100"), Period: model.GoalWeekly}}
	txns := []model.Transaction{
		spend("Groceries", "30", day(2023, 2, 7)),
		spend("Groceries", "200", day(2023, 2, 14)),
		spend("Gas", "150", day(2023, 2, 14)),
	}
	settings := settingsWithEnvelope("2800")

	logs := PendingWeeklyLogs(WeeklyCloseInput{
		Now:          day(2023, 2, 22),
		NewID:        sequence(),
		Calendar:     cal,
		Settings:     settings,
		Rate:         dec("1"),
		Goals:        goals,
		Transactions: txns,
	})

	require.Len(t, logs, 2)

	first := logs[0]
	assert.Equal(t, midnight(2023, 2, 5), first.WeekStart)
	assert.Equal(t, midnight(2023, 2, 11), first.WeekEnd)
	assert.True(t, dec("600").Equal(first.TotalAvailable), "got %s", first.TotalAvailable)
	assert.True(t, first.RolledOverAmount.IsZero())
	assert.True(t, dec("570").Equal(first.UnusedRolledForward))
	assert.Equal(t, 1, first.GoalsWithLeftover)
	assert.Equal(t, model.CurrencyCode("USD"), first.CurrencyCode)

	second := logs[1]
	assert.Equal(t, midnight(2023, 2, 12), second.WeekStart)
	assert.True(t, dec("570").Equal(second.RolledOverAmount))
	assert.True(t, dec("1170").Equal(second.TotalAvailable))
	assert.True(t, dec("970").Equal(second.UnusedRolledForward))
	assert.Equal(t, 0, second.GoalsWithLeftover)

	t.Run("continues after the newest stored log", func(t *testing.T) {
		more := PendingWeeklyLogs(WeeklyCloseInput{
			Now:          day(2023, 3, 8),
			Calendar:     cal,
			Settings:     settings,
			Rate:         dec("1"),
			Goals:        goals,
			Transactions: txns,
			Existing:     []model.WeeklyLog{second, first},
		})

		require.Len(t, more, 2)
		assert.Equal(t, midnight(2023, 2, 19), more[0].WeekStart)
		assert.True(t, dec("970").Equal(more[0].RolledOverAmount))
		assert.Equal(t, midnight(2023, 2, 26), more[1].WeekStart)
		assert.True(t, more[0].UnusedRolledForward.Equal(more[1].RolledOverAmount))
	})

	t.Run("nothing while the week is still open", func(t *testing.T) {
		assert.Empty(t, PendingWeeklyLogs(WeeklyCloseInput{
			Now:          day(2023, 2, 22),
			Calendar:     cal,
			Settings:     settings,
			Rate:         dec("1"),
			Transactions: txns,
			Existing:     []model.WeeklyLog{second},
		}))
	})

	t.Run("nothing without expenses", func(t *testing.T) {
		assert.Empty(t, PendingWeeklyLogs(WeeklyCloseInput{
			Now:      day(2023, 2, 22),
			Calendar: cal,
			Settings: settings,
			Rate:     dec("1"),
		}))
	})
}

func TestPendingWeeklyLogs_OverspendDoesNotRollNegative(t *testing.T) {
	logs := PendingWeeklyLogs(WeeklyCloseInput{
		Now:          day(2023, 2, 15),
		Calendar:     cal,
		Settings:     settingsWithEnvelope("400"),
		Rate:         dec("1"),
		Transactions: []model.Transaction{spend("Dining", "500", day(2023, 2, 7))},
	})

	require.Len(t, logs, 1)
	assert.True(t, dec("100").Equal(logs[0].TotalAvailable))
	assert.True(t, logs[0].UnusedRolledForward.IsZero())
}

func TestPendingWeeklyLogs_ChangedWeekStart(t *testing.T) {
	txns := []model.Transaction{spend("Dining", "20", day(2025, 2, 4))}
	logged := model.WeeklyLog{
		WeekStart:           midnight(2025, 2, 2),
		WeekEnd:             midnight(2025, 2, 8),
		UnusedRolledForward: dec("12"),
	}

	tests := []struct {
		name      string
		firstDay  time.Weekday
		wantWeeks []time.Time
	}{
		{
			name:      "same week start continues the next day",
			firstDay:  time.Sunday,
			wantWeeks: []time.Time{midnight(2025, 2, 9), midnight(2025, 2, 16)},
		},
		{
			name:      "partly logged week is skipped",
			firstDay:  time.Monday,
			wantWeeks: []time.Time{midnight(2025, 2, 10), midnight(2025, 2, 17)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := period.Calendar{FirstWeekday: tt.firstDay, MonthStartDay: 1, Location: time.UTC}
			logs := PendingWeeklyLogs(WeeklyCloseInput{
				Now:          day(2025, 2, 26),
				Calendar:     c,
				Settings:     settingsWithEnvelope("400"),
				Rate:         dec("1"),
				Transactions: txns,
				Existing:     []model.WeeklyLog{logged},
			})

			require.Len(t, logs, len(tt.wantWeeks))
			for i, want := range tt.wantWeeks {
				assert.Equal(t, want, logs[i].WeekStart)
				assert.True(t, logs[i].WeekStart.After(logged.WeekEnd))
			}
			assert.True(t, dec("12").Equal(logs[0].RolledOverAmount))
		})
	}
}

func TestMonthRows(t *testing.T) {
	now := day(2023, 3, 8)
	settings := settingsWithEnvelope("2800")
	summary := budget.Compute(budget.Input{
		Now:          now,
		Calendar:     cal,
		Settings:     settings,
		Rate:         dec("1"),
		Transactions: []model.Transaction{spend("Dining", "10", day(2023, 3, 1))},
	})

	snapshots := []model.MonthlySavingsSnapshot{
		{MonthStart: midnight(2023, 1, 1), MonthEnd: midnight(2023, 1, 31), BudgetAmount: dec("2800"), SpentAmount: dec("50"), ExchangeRate: dec("1")},
		{MonthStart: midnight(2023, 2, 1), MonthEnd: midnight(2023, 2, 28), BudgetAmount: dec("2800"), SpentAmount: dec("3000"), ExchangeRate: dec("1")},
		{MonthStart: midnight(2023, 3, 1), MonthEnd: midnight(2023, 3, 31), BudgetAmount: dec("1"), SpentAmount: dec("1"), ExchangeRate: dec("1")},
	}

	rows := MonthRows(summary, settings, cal, snapshots)

	require.Len(t, rows, 3)
	assert.True(t, rows[0].IsCurrent)
	assert.True(t, dec("10").Equal(rows[0].Spent))
	assert.True(t, dec("2790").Equal(rows[0].Savings))

	assert.Equal(t, midnight(2023, 2, 1), rows[1].Month.Start)
	assert.True(t, dec("-200").Equal(rows[1].Savings))
	assert.Equal(t, midnight(2023, 1, 1), rows[2].Month.Start)
}

func TestSortWeeklyLogs(t *testing.T) {
	logs := []model.WeeklyLog{
		{WeekStart: midnight(2023, 2, 5)},
		{WeekStart: midnight(2023, 2, 19)},
		{WeekStart: midnight(2023, 2, 12)},
	}
	sorted := SortWeeklyLogs(logs)
	assert.Equal(t, midnight(2023, 2, 19), sorted[0].WeekStart)
	assert.Equal(t, midnight(2023, 2, 5), sorted[2].WeekStart)
	assert.Equal(t, midnight(2023, 2, 5), logs[0].WeekStart)
}
