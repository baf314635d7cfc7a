package storage

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/envelope/internal/model"
)

func TestSQLiteStorage_Categories(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	groceries := &model.Category{ID: "c1", Name: "Groceries", Kind: model.KindExpense, SortOrder: 2, IsDefault: true}
	dining := &model.Category{ID: "c2", Name: "Dining", Kind: model.KindExpense, SortOrder: 1}
	salary := &model.Category{ID: "c3", Name: "Salary", Kind: model.KindIncome}
	for _, c := range []*model.Category{groceries, dining, salary} {
		require.NoError(t, store.CreateCategory(ctx, c))
	}

	expense, err := store.GetCategories(ctx, model.KindExpense)
	require.NoError(t, err)
	require.Len(t, expense, 2)
	assert.Equal(t, "Dining", expense[0].Name, "ordered by sort order")

	all, err := store.GetCategories(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byName, err := store.GetCategoryByName(ctx, model.KindExpense, "  groceries ")
	require.NoError(t, err)
	assert.Equal(t, "c1", byName.ID)
	assert.True(t, byName.IsDefault)

	_, err = store.GetCategoryByName(ctx, model.KindIncome, "Groceries")
	assert.ErrorIs(t, err, ErrNotFound)

	t.Run("duplicate name ignoring case", func(t *testing.T) {
		err := store.CreateCategory(ctx, &model.Category{ID: "c4", Name: "GROCERIES", Kind: model.KindExpense})
		assert.ErrorIs(t, err, ErrDuplicateEntry)
	})

	t.Run("same name different kind", func(t *testing.T) {
		err := store.CreateCategory(ctx, &model.Category{ID: "c5", Name: "Dining", Kind: model.KindIncome})
		assert.NoError(t, err)
	})

	t.Run("update and delete", func(t *testing.T) {
		dining.Icon = "fork.knife"
		require.NoError(t, store.UpdateCategory(ctx, dining))
		got, err := store.GetCategory(ctx, "c2")
		require.NoError(t, err)
		assert.Equal(t, "fork.knife", got.Icon)

		require.NoError(t, store.DeleteCategory(ctx, "c2"))
		_, err = store.GetCategory(ctx, "c2")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSQLiteStorage_Bills(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	rent := &model.RecurringBill{
		ID: "b1", Name: "Rent", Amount: decimal.NewFromInt(1500), Frequency: model.FrequencyMonthly,
		Category: model.CategorySnapshot{Name: "Housing"}, IsActive: true,
	}
	gym := &model.RecurringBill{
		ID: "b2", Name: "Gym", Amount: decimal.NewFromInt(480), Frequency: model.FrequencyYearly,
		Category: model.CategorySnapshot{Name: "Health"}, IsActive: false,
	}
	require.NoError(t, store.CreateBill(ctx, rent))
	require.NoError(t, store.CreateBill(ctx, gym))

	active, err := store.GetBills(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Rent", active[0].Name)

	all, err := store.GetBills(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Gym", all[0].Name)

	gym.IsActive = true
	gym.Notes = "annual membership"
	require.NoError(t, store.UpdateBill(ctx, gym))
	got, err := store.GetBill(ctx, "b2")
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.Equal(t, "annual membership", got.Notes)
	assert.Equal(t, model.FrequencyYearly, got.Frequency)

	require.NoError(t, store.DeleteBill(ctx, "b1"))
	_, err = store.GetBill(ctx, "b1")
	assert.ErrorIs(t, err, ErrNotFound)

	bad := &model.RecurringBill{ID: "b3", Name: "Bad", Amount: decimal.Zero, Frequency: model.FrequencyWeekly,
		Category: model.CategorySnapshot{Name: "Other"}}
	assert.True(t, model.IsValidationError(store.CreateBill(ctx, bad)))
}

func TestSQLiteStorage_Goals(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	gas := &model.Goal{ID: "g1", CategoryName: "Gas", Limit: decimal.NewFromInt(150), Period: model.GoalWeekly}
	require.NoError(t, store.CreateGoal(ctx, gas))

	goals, err := store.GetGoals(ctx)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.True(t, goals[0].Limit.Equal(decimal.NewFromInt(150)))

	gas.Period = model.GoalMonthly
	require.NoError(t, store.UpdateGoal(ctx, gas))
	got, err := store.GetGoal(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, model.GoalMonthly, got.Period)

	require.NoError(t, store.DeleteGoal(ctx, "g1"))
	assert.ErrorIs(t, store.DeleteGoal(ctx, "g1"), ErrNotFound)
}
