// Package ledger is the application service behind every user action: it
// validates input, persists through storage, keeps the widget mirror current
// and runs the budget engine over stored data.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/envelope/internal/common"
	"github.com/Veraticus/envelope/internal/currency"
	"github.com/Veraticus/envelope/internal/model"
	"github.com/Veraticus/envelope/internal/period"
	"github.com/Veraticus/envelope/internal/service"
	"github.com/Veraticus/envelope/internal/storage"
)

// Ledger coordinates storage, the rate cache and the widget mirror.
type Ledger struct {
	store        service.Storage
	rates        *currency.Cache
	mirror       service.SettingsMirror
	loc          *time.Location
	clock        func() time.Time
	newID        func() string
	allowSubunit bool
}

// Option customizes a Ledger.
type Option func(*Ledger)

// WithClock overrides time.Now.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) { l.clock = clock }
}

// WithIDGenerator overrides the random UUID generator.
func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

// WithSubunitRate disables the max(rate, 1) floor for dual-currency envelopes.
func WithSubunitRate(allow bool) Option {
	return func(l *Ledger) { l.allowSubunit = allow }
}

// New creates a ledger. Call Init before serving requests.
func New(store service.Storage, rates *currency.Cache, mirror service.SettingsMirror, loc *time.Location, opts ...Option) *Ledger {
	if loc == nil {
		loc = time.Local
	}
	l := &Ledger{
		store:  store,
		rates:  rates,
		mirror: mirror,
		loc:    loc,
		clock:  time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Init seeds default categories, loads the stored rate for the configured pair
// and refreshes the widget mirror.
func (l *Ledger) Init(ctx context.Context) error {
	if _, err := l.SeedDefaults(ctx); err != nil {
		return err
	}
	settings, err := l.Settings(ctx)
	if err != nil {
		return err
	}
	if err := l.rates.Hydrate(ctx, settings.BudgetCurrency, settings.SpendingCurrency); err != nil {
		return common.Persistence("hydrate exchange rate", err)
	}
	return l.writeMirror(ctx)
}

// Location is the time zone periods are evaluated in.
func (l *Ledger) Location() *time.Location {
	return l.loc
}

func (l *Ledger) now() time.Time {
	return l.clock().In(l.loc)
}

func (l *Ledger) calendar(settings model.Settings) period.Calendar {
	return period.New(settings, l.loc)
}

// rate is the cached rate when it belongs to the settings' pair, else 1.
func (l *Ledger) rate(settings model.Settings) decimal.Decimal {
	from, to := l.rates.Pair()
	if from == settings.BudgetCurrency && to == settings.SpendingCurrency {
		return l.rates.Rate()
	}
	return decimal.NewFromInt(1)
}

// wrap classifies a storage error: validation and not-found pass through, the rest is persistence.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if model.IsValidationError(err) || errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	return common.Persistence(op, err)
}

func invalid(field string, err error) error {
	return &model.ValidationError{Field: field, Err: err}
}
