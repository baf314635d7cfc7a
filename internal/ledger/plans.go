package ledger

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/envelope/internal/model"
)

// BillInput holds the user-editable bill fields.
type BillInput struct {
	Amount       decimal.Decimal
	Name         string
	CategoryName string
	Notes        string
	Frequency    model.Frequency
	ClearNotes   bool
}

// AddBill creates an active recurring bill. Bills are planning data and never create transactions.
func (l *Ledger) AddBill(ctx context.Context, in BillInput) (*model.RecurringBill, error) {
	category, err := l.category(ctx, model.KindExpense, in.CategoryName)
	if err != nil {
		return nil, err
	}

	bill := &model.RecurringBill{
		ID:        l.newID(),
		Name:      strings.TrimSpace(in.Name),
		Amount:    in.Amount,
		Frequency: in.Frequency,
		Category:  category.Snapshot(),
		Notes:     in.Notes,
		IsActive:  true,
		CreatedAt: l.now(),
	}
	if err := bill.Validate(); err != nil {
		return nil, err
	}
	if err := l.store.CreateBill(ctx, bill); err != nil {
		return nil, wrap("create bill", err)
	}

	slog.Info("bill added", "name", bill.Name, "amount", bill.Amount.String(), "frequency", bill.Frequency)
	return bill, nil
}

// UpdateBill edits a bill. Empty fields keep their current value; ClearNotes
// removes the notes.
func (l *Ledger) UpdateBill(ctx context.Context, id string, in BillInput) (*model.RecurringBill, error) {
	bill, err := l.store.GetBill(ctx, id)
	if err != nil {
		return nil, wrap("get bill", err)
	}

	if in.Name != "" {
		bill.Name = strings.TrimSpace(in.Name)
	}
	if !in.Amount.IsZero() {
		bill.Amount = in.Amount
	}
	if in.Frequency != "" {
		bill.Frequency = in.Frequency
	}
	switch {
	case in.ClearNotes:
		bill.Notes = ""
	case in.Notes != "":
		bill.Notes = in.Notes
	}
	if in.CategoryName != "" && !model.SameName(in.CategoryName, bill.Category.Name) {
		category, err := l.category(ctx, model.KindExpense, in.CategoryName)
		if err != nil {
			return nil, err
		}
		bill.Category = category.Snapshot()
	}

	if err := bill.Validate(); err != nil {
		return nil, err
	}
	if err := l.store.UpdateBill(ctx, bill); err != nil {
		return nil, wrap("update bill", err)
	}
	return bill, nil
}

// SetBillActive pauses or resumes a bill. Inactive bills do not count as committed.
func (l *Ledger) SetBillActive(ctx context.Context, id string, active bool) (*model.RecurringBill, error) {
	bill, err := l.store.GetBill(ctx, id)
	if err != nil {
		return nil, wrap("get bill", err)
	}
	bill.IsActive = active
	if err := l.store.UpdateBill(ctx, bill); err != nil {
		return nil, wrap("update bill", err)
	}
	slog.Info("bill toggled", "name", bill.Name, "active", active)
	return bill, nil
}

// ToggleBill flips a bill between active and paused.
func (l *Ledger) ToggleBill(ctx context.Context, id string) (*model.RecurringBill, error) {
	bill, err := l.store.GetBill(ctx, id)
	if err != nil {
		return nil, wrap("get bill", err)
	}
	return l.SetBillActive(ctx, id, !bill.IsActive)
}

// DeleteBill removes a bill.
func (l *Ledger) DeleteBill(ctx context.Context, id string) error {
	if err := l.store.DeleteBill(ctx, id); err != nil {
		return wrap("delete bill", err)
	}
	return nil
}

// Bills lists bills by name.
func (l *Ledger) Bills(ctx context.Context, activeOnly bool) ([]model.RecurringBill, error) {
	bills, err := l.store.GetBills(ctx, activeOnly)
	if err != nil {
		return nil, wrap("list bills", err)
	}
	return bills, nil
}

// GoalInput holds the user-editable goal fields.
type GoalInput struct {
	Limit        decimal.Decimal
	CategoryName string
	Notes        string
	Period       model.GoalPeriod
	ClearNotes   bool
}

// AddGoal creates a spending limit for an expense category. The goal stores the
// category's current spelling since goal matching is by exact name.
func (l *Ledger) AddGoal(ctx context.Context, in GoalInput) (*model.Goal, error) {
	category, err := l.category(ctx, model.KindExpense, in.CategoryName)
	if err != nil {
		return nil, err
	}

	goal := &model.Goal{
		ID:           l.newID(),
		CategoryName: category.Name,
		Limit:        in.Limit,
		Period:       in.Period,
		Notes:        in.Notes,
		CreatedAt:    l.now(),
	}
	if err := goal.Validate(); err != nil {
		return nil, err
	}
	if err := l.store.CreateGoal(ctx, goal); err != nil {
		return nil, wrap("create goal", err)
	}

	slog.Info("goal added", "category", goal.CategoryName, "limit", goal.Limit.String(), "period", goal.Period)
	return goal, nil
}

// UpdateGoal edits a goal. Empty fields keep their current value; ClearNotes
// removes the notes.
func (l *Ledger) UpdateGoal(ctx context.Context, id string, in GoalInput) (*model.Goal, error) {
	goal, err := l.store.GetGoal(ctx, id)
	if err != nil {
		return nil, wrap("get goal", err)
	}

	if in.CategoryName != "" && in.CategoryName != goal.CategoryName {
		category, err := l.category(ctx, model.KindExpense, in.CategoryName)
		if err != nil {
			return nil, err
		}
		goal.CategoryName = category.Name
	}
	if !in.Limit.IsZero() {
		goal.Limit = in.Limit
	}
	if in.Period != "" {
		goal.Period = in.Period
	}
	switch {
	case in.ClearNotes:
		goal.Notes = ""
	case in.Notes != "":
		goal.Notes = in.Notes
	}

	if err := goal.Validate(); err != nil {
		return nil, err
	}
	if err := l.store.UpdateGoal(ctx, goal); err != nil {
		return nil, wrap("update goal", err)
	}
	return goal, nil
}

// DeleteGoal removes a goal.
func (l *Ledger) DeleteGoal(ctx context.Context, id string) error {
	if err := l.store.DeleteGoal(ctx, id); err != nil {
		return wrap("delete goal", err)
	}
	return nil
}

// Goals lists every goal.
func (l *Ledger) Goals(ctx context.Context) ([]model.Goal, error) {
	goals, err := l.store.GetGoals(ctx)
	if err != nil {
		return nil, wrap("list goals", err)
	}
	return goals, nil
}
