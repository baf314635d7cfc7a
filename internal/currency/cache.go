// Package currency keeps the budget-to-spending exchange rate and its freshness state.
package currency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/envelope/internal/model"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// ErrInvalidRate is returned by fetchers that receive a non-positive rate.
var ErrInvalidRate = errors.New("rate must be positive")

// StateKind enumerates the freshness states of the cached rate.
type StateKind int

const (
	// StateIdle means no conversion is needed or none has been attempted.
	StateIdle StateKind = iota
	// StateLoading means a fetch is in flight.
	StateLoading
	// StateFresh means the last fetch for the active pair succeeded.
	StateFresh
	// StateStale means a previously stored rate for the active pair is in use.
	StateStale
	// StateUnavailable means there is no usable rate for the active pair.
	StateUnavailable
)

func (k StateKind) String() string {
	switch k {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateFresh:
		return "fresh"
	case StateStale:
		return "stale"
	case StateUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("state(%d)", int(k))
	}
}

// State is the cache state plus the trade date label for fresh and stale rates.
type State struct {
	TradeDate string
	Kind      StateKind
}

func (s State) String() string {
	if s.TradeDate != "" {
		return fmt.Sprintf("%s (%s)", s.Kind, s.TradeDate)
	}
	return s.Kind.String()
}

// Quote is a fetched rate: units of "to" per one "from", published on TradeDate.
type Quote struct {
	Rate      decimal.Decimal
	TradeDate string
}

// Fetcher retrieves a live exchange rate. One attempt, no retries.
type Fetcher interface {
	Fetch(ctx context.Context, from, to model.CurrencyCode) (Quote, error)
}

// RateStore is the durable home of the last successfully fetched rate.
type RateStore interface {
	LoadRate(ctx context.Context) (*model.CachedRate, error)
	SaveRate(ctx context.Context, rate model.CachedRate) error
}

// Cache holds the active conversion rate. The zero rate is never exposed: it
// starts at 1 so dependent arithmetic always has a usable value.
type Cache struct {
	fetcher Fetcher
	store   RateStore
	clock   func() time.Time
	lastErr error
	rate    decimal.Decimal
	from    model.CurrencyCode
	to      model.CurrencyCode
	state   State
	group   singleflight.Group
	mu      sync.RWMutex
}

// NewCache creates a cache in the idle state with rate 1.
func NewCache(fetcher Fetcher, store RateStore) *Cache {
	return &Cache{
		fetcher: fetcher,
		store:   store,
		clock:   time.Now,
		rate:    decimal.NewFromInt(1),
		state:   State{Kind: StateIdle},
	}
}

// Rate returns the active rate.
func (c *Cache) Rate() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rate
}

// State returns the active freshness state.
func (c *Cache) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Pair returns the currency pair the active rate belongs to.
func (c *Cache) Pair() (from, to model.CurrencyCode) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.from, c.to
}

// LastError returns the error behind the most recent stale, unavailable or unsaved result.
func (c *Cache) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Hydrate loads the stored rate for the pair on startup. A stored rate is marked
// stale until a live refresh succeeds.
func (c *Cache) Hydrate(ctx context.Context, from, to model.CurrencyCode) error {
	if model.IsIdentity(from, to) {
		c.set(from, to, decimal.NewFromInt(1), State{Kind: StateIdle}, nil)
		return nil
	}

	cached, err := c.store.LoadRate(ctx)
	if err != nil {
		c.set(from, to, decimal.NewFromInt(1), State{Kind: StateIdle}, err)
		return fmt.Errorf("failed to load cached rate: %w", err)
	}

	if cached.Matches(from, to) && cached.Rate.IsPositive() {
		c.set(from, to, cached.Rate, State{Kind: StateStale, TradeDate: cached.TradeDate}, nil)
		slog.Debug("hydrated exchange rate", "from", from, "to", to, "rate", cached.Rate.String(), "trade_date", cached.TradeDate)
		return nil
	}

	c.set(from, to, decimal.NewFromInt(1), State{Kind: StateIdle}, nil)
	return nil
}

// Refresh fetches a live rate for the pair. Concurrent calls for the same pair
// share one fetch. Failures never surface as errors; they degrade to the stored
// rate (stale) or to rate 1 (unavailable). A result that lands after a newer call
// switched the cache to another pair is dropped and neither stored nor applied.
func (c *Cache) Refresh(ctx context.Context, from, to model.CurrencyCode) State {
	if model.IsIdentity(from, to) {
		c.set(from, to, decimal.NewFromInt(1), State{Kind: StateIdle}, nil)
		return State{Kind: StateIdle}
	}

	key := string(from) + "/" + string(to)
	v, _, shared := c.group.Do(key, func() (any, error) {
		c.mu.Lock()
		c.from, c.to = from, to
		c.state = State{Kind: StateLoading}
		c.mu.Unlock()

		return c.refresh(ctx, from, to), nil
	})
	if shared {
		slog.Debug("joined in-flight rate refresh", "from", from, "to", to)
	}
	return v.(State)
}

func (c *Cache) refresh(ctx context.Context, from, to model.CurrencyCode) State {
	quote, err := c.fetcher.Fetch(ctx, from, to)
	if err == nil && !quote.Rate.IsPositive() {
		err = fmt.Errorf("%w: got %s", ErrInvalidRate, quote.Rate)
	}
	if err == nil {
		state := State{Kind: StateFresh, TradeDate: quote.TradeDate}
		if c.superseded(from, to) {
			slog.Debug("dropping rate for superseded pair", "from", from, "to", to, "rate", quote.Rate.String())
			return state
		}
		saveErr := c.store.SaveRate(ctx, model.CachedRate{
			From:      from,
			To:        to,
			Rate:      quote.Rate,
			TradeDate: quote.TradeDate,
			FetchedAt: c.clock(),
		})
		if saveErr != nil {
			saveErr = fmt.Errorf("failed to persist rate: %w", saveErr)
			slog.Warn("exchange rate fetched but not saved", "from", from, "to", to, "error", saveErr)
		}
		if !c.setIfCurrent(from, to, quote.Rate, state, saveErr) {
			return state
		}
		slog.Info("exchange rate refreshed", "from", from, "to", to, "rate", quote.Rate.String(), "trade_date", quote.TradeDate)
		return state
	}

	slog.Warn("exchange rate fetch failed", "from", from, "to", to, "error", err)

	cached, loadErr := c.store.LoadRate(ctx)
	if loadErr == nil && cached.Matches(from, to) && cached.Rate.IsPositive() {
		state := State{Kind: StateStale, TradeDate: cached.TradeDate}
		c.setIfCurrent(from, to, cached.Rate, state, err)
		return state
	}
	if loadErr != nil {
		err = errors.Join(err, loadErr)
	}

	state := State{Kind: StateUnavailable}
	c.setIfCurrent(from, to, decimal.NewFromInt(1), state, err)
	return state
}

// superseded reports whether a newer call moved the cache off the pair.
func (c *Cache) superseded(from, to model.CurrencyCode) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.from != from || c.to != to
}

func (c *Cache) setIfCurrent(from, to model.CurrencyCode, rate decimal.Decimal, state State, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.from != from || c.to != to {
		return false
	}
	c.rate = rate
	c.state = state
	c.lastErr = err
	return true
}

func (c *Cache) set(from, to model.CurrencyCode, rate decimal.Decimal, state State, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.from, c.to = from, to
	c.rate = rate
	c.state = state
	c.lastErr = err
}
