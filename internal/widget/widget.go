package widget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/envelope/internal/budget"
	"github.com/Veraticus/envelope/internal/model"
	"github.com/Veraticus/envelope/internal/period"
	"github.com/Veraticus/envelope/internal/service"
)

// Service computes the widget figures from the mirror and read-only storage queries.
// It never fetches a live rate; the mirrored rate is used when it matches the pair.
type Service struct {
	mirror       service.SettingsMirror
	store        service.WidgetSource
	loc          *time.Location
	clock        func() time.Time
	allowSubunit bool
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) { s.clock = clock }
}

// WithSubunitRate disables the rate floor for dual-currency envelopes.
func WithSubunitRate(allow bool) Option {
	return func(s *Service) { s.allowSubunit = allow }
}

// NewService wires a widget service.
func NewService(mirror service.SettingsMirror, store service.WidgetSource, loc *time.Location, opts ...Option) *Service {
	if loc == nil {
		loc = time.Local
	}
	s := &Service{mirror: mirror, store: store, loc: loc, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summary returns this week's widget figures. A missing mirror falls back to default settings.
func (s *Service) Summary(ctx context.Context) (budget.WidgetSummary, error) {
	settings, err := s.mirror.ReadSettings()
	if err != nil && !errors.Is(err, ErrNoMirror) {
		return budget.WidgetSummary{}, err
	}
	if errors.Is(err, ErrNoMirror) {
		slog.Debug("widget mirror missing, using defaults")
	}

	now := s.clock().In(s.loc)
	cal := period.New(settings, s.loc)
	week, month := cal.Week(now), cal.Month(now)

	start, end := week.Start, week.LastInstant()
	if month.Start.Before(start) {
		start = month.Start
	}
	if month.LastInstant().After(end) {
		end = month.LastInstant()
	}

	txns, err := s.store.GetTransactions(ctx, service.TransactionFilter{Start: start, End: end})
	if err != nil {
		return budget.WidgetSummary{}, fmt.Errorf("failed to load widget transactions: %w", err)
	}
	bills, err := s.store.GetBills(ctx, true)
	if err != nil {
		return budget.WidgetSummary{}, fmt.Errorf("failed to load widget bills: %w", err)
	}
	goals, err := s.store.GetGoals(ctx)
	if err != nil {
		return budget.WidgetSummary{}, fmt.Errorf("failed to load widget goals: %w", err)
	}

	return budget.ComputeWidget(budget.Input{
		Now:              now,
		Calendar:         cal,
		Settings:         settings,
		Rate:             MirroredRate(settings),
		Bills:            bills,
		Goals:            goals,
		Transactions:     txns,
		AllowSubunitRate: s.allowSubunit,
	}), nil
}

// MirroredRate is the cached rate when it belongs to the settings' pair, else 1.
func MirroredRate(settings model.Settings) decimal.Decimal {
	from, to := settings.EffectiveBudgetCurrency(), settings.SpendingCurrency
	if settings.CachedRate.Matches(from, to) && settings.CachedRate.Rate.IsPositive() {
		return settings.CachedRate.Rate
	}
	return decimal.NewFromInt(1)
}
