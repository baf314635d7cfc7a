// Package service defines the interfaces shared by the application layers.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/envelope/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
// Start and End are inclusive instants; zero values leave that side open.
type TransactionFilter struct {
	Start    time.Time
	End      time.Time
	Kind     model.Kind
	Category string
	Limit    int
	Offset   int
}

// TransactionStore persists income and expense entries.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, txn *model.Transaction) error
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	DeleteTransactionsBefore(ctx context.Context, before time.Time) (int64, error)
	GetTransaction(ctx context.Context, id string) (*model.Transaction, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	TransactionNoteExists(ctx context.Context, note string) (bool, error)
}

// CategoryStore persists user categories.
type CategoryStore interface {
	CreateCategory(ctx context.Context, category *model.Category) error
	UpdateCategory(ctx context.Context, category *model.Category) error
	DeleteCategory(ctx context.Context, id string) error
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	GetCategoryByName(ctx context.Context, kind model.Kind, name string) (*model.Category, error)
	GetCategories(ctx context.Context, kind model.Kind) ([]model.Category, error)
}

// BillStore persists recurring bills.
type BillStore interface {
	CreateBill(ctx context.Context, bill *model.RecurringBill) error
	UpdateBill(ctx context.Context, bill *model.RecurringBill) error
	DeleteBill(ctx context.Context, id string) error
	GetBill(ctx context.Context, id string) (*model.RecurringBill, error)
	GetBills(ctx context.Context, activeOnly bool) ([]model.RecurringBill, error)
}

// GoalStore persists spending goals.
type GoalStore interface {
	CreateGoal(ctx context.Context, goal *model.Goal) error
	UpdateGoal(ctx context.Context, goal *model.Goal) error
	DeleteGoal(ctx context.Context, id string) error
	GetGoal(ctx context.Context, id string) (*model.Goal, error)
	GetGoals(ctx context.Context) ([]model.Goal, error)
}

// HistoryStore is append-only storage for closed-period records.
type HistoryStore interface {
	SaveMonthlySnapshots(ctx context.Context, snapshots []model.MonthlySavingsSnapshot) error
	GetMonthlySnapshots(ctx context.Context) ([]model.MonthlySavingsSnapshot, error)
	SaveWeeklyLogs(ctx context.Context, logs []model.WeeklyLog) error
	GetWeeklyLogs(ctx context.Context) ([]model.WeeklyLog, error)
}

// SettingsStore persists the single settings record and the cached exchange rate.
type SettingsStore interface {
	LoadSettings(ctx context.Context) (model.Settings, error)
	SaveSettings(ctx context.Context, settings model.Settings) error
	LoadRate(ctx context.Context) (*model.CachedRate, error)
	SaveRate(ctx context.Context, rate model.CachedRate) error
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	TransactionStore
	CategoryStore
	BillStore
	GoalStore
	HistoryStore
	SettingsStore

	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// SettingsMirror is the small shared copy of settings that the widget read path uses.
type SettingsMirror interface {
	WriteSettings(settings model.Settings) error
	ReadSettings() (model.Settings, error)
}

// WidgetSource is the read-only slice of storage the widget needs.
type WidgetSource interface {
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	GetBills(ctx context.Context, activeOnly bool) ([]model.RecurringBill, error)
	GetGoals(ctx context.Context) ([]model.Goal, error)
}
