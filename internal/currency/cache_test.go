package currency

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Veraticus/envelope/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	err     error
	started chan struct{}
	release chan struct{}
	quote   Quote
	calls   atomic.Int32
}

func (f *fakeFetcher) Fetch(_ context.Context, _, _ model.CurrencyCode) (Quote, error) {
	f.calls.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return f.quote, f.err
}

type memoryStore struct {
	rate    *model.CachedRate
	saveErr error
	mu      sync.Mutex
}

func (m *memoryStore) LoadRate(_ context.Context) (*model.CachedRate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rate == nil {
		return nil, nil
	}
	r := *m.rate
	return &r, nil
}

func (m *memoryStore) SaveRate(_ context.Context, rate model.CachedRate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.rate = &rate
	return nil
}

func TestCache_DefaultsToOne(t *testing.T) {
	c := NewCache(&fakeFetcher{}, &memoryStore{})
	assert.True(t, decimal.NewFromInt(1).Equal(c.Rate()))
	assert.Equal(t, StateIdle, c.State().Kind)
}

func TestCache_RefreshIdentity(t *testing.T) {
	fetcher := &fakeFetcher{quote: Quote{Rate: decimal.NewFromInt(20), TradeDate: "2024-05-03"}}
	c := NewCache(fetcher, &memoryStore{})

	c.Refresh(context.Background(), "USD", "MXN")
	require.True(t, decimal.NewFromInt(20).Equal(c.Rate()))

	state := c.Refresh(context.Background(), "USD", "USD")
	assert.Equal(t, StateIdle, state.Kind)
	assert.True(t, decimal.NewFromInt(1).Equal(c.Rate()))
	assert.Equal(t, int32(1), fetcher.calls.Load())

	c.Refresh(context.Background(), "", "USD")
	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func TestCache_RefreshSuccessPersists(t *testing.T) {
	store := &memoryStore{}
	fetcher := &fakeFetcher{quote: Quote{Rate: decimal.RequireFromString("17.05"), TradeDate: "2024-05-03"}}
	c := NewCache(fetcher, store)

	state := c.Refresh(context.Background(), "USD", "MXN")

	assert.Equal(t, State{Kind: StateFresh, TradeDate: "2024-05-03"}, state)
	assert.True(t, decimal.RequireFromString("17.05").Equal(c.Rate()))
	require.NotNil(t, store.rate)
	assert.Equal(t, model.CurrencyCode("USD"), store.rate.From)
	assert.Equal(t, model.CurrencyCode("MXN"), store.rate.To)
	assert.Equal(t, "2024-05-03", store.rate.TradeDate)
	assert.NoError(t, c.LastError())
}

func TestCache_RefreshFailure(t *testing.T) {
	fetchErr := errors.New("network down")

	t.Run("falls back to stored rate for same pair", func(t *testing.T) {
		store := &memoryStore{rate: &model.CachedRate{From: "USD", To: "MXN", Rate: decimal.NewFromInt(18), TradeDate: "2024-04-30"}}
		c := NewCache(&fakeFetcher{err: fetchErr}, store)

		state := c.Refresh(context.Background(), "USD", "MXN")

		assert.Equal(t, State{Kind: StateStale, TradeDate: "2024-04-30"}, state)
		assert.True(t, decimal.NewFromInt(18).Equal(c.Rate()))
		assert.ErrorIs(t, c.LastError(), fetchErr)
	})

	t.Run("stored rate for another pair is unusable", func(t *testing.T) {
		store := &memoryStore{rate: &model.CachedRate{From: "EUR", To: "MXN", Rate: decimal.NewFromInt(19), TradeDate: "2024-04-30"}}
		c := NewCache(&fakeFetcher{err: fetchErr}, store)

		state := c.Refresh(context.Background(), "USD", "MXN")

		assert.Equal(t, StateUnavailable, state.Kind)
		assert.True(t, decimal.NewFromInt(1).Equal(c.Rate()))
	})

	t.Run("non-positive rate counts as failure", func(t *testing.T) {
		c := NewCache(&fakeFetcher{quote: Quote{Rate: decimal.Zero}}, &memoryStore{})

		state := c.Refresh(context.Background(), "USD", "MXN")

		assert.Equal(t, StateUnavailable, state.Kind)
		assert.ErrorIs(t, c.LastError(), ErrInvalidRate)
	})
}

func TestCache_SaveFailureStillFresh(t *testing.T) {
	saveErr := errors.New("disk full")
	store := &memoryStore{saveErr: saveErr}
	c := NewCache(&fakeFetcher{quote: Quote{Rate: decimal.NewFromInt(20), TradeDate: "2024-05-03"}}, store)

	state := c.Refresh(context.Background(), "USD", "MXN")

	assert.Equal(t, StateFresh, state.Kind)
	assert.ErrorIs(t, c.LastError(), saveErr)
}

func TestCache_Hydrate(t *testing.T) {
	store := &memoryStore{rate: &model.CachedRate{From: "USD", To: "MXN", Rate: decimal.NewFromInt(18), TradeDate: "2024-04-30"}}

	t.Run("matching pair is stale", func(t *testing.T) {
		c := NewCache(&fakeFetcher{}, store)
		require.NoError(t, c.Hydrate(context.Background(), "USD", "MXN"))
		assert.Equal(t, State{Kind: StateStale, TradeDate: "2024-04-30"}, c.State())
		assert.True(t, decimal.NewFromInt(18).Equal(c.Rate()))
	})

	t.Run("other pair stays idle at one", func(t *testing.T) {
		c := NewCache(&fakeFetcher{}, store)
		require.NoError(t, c.Hydrate(context.Background(), "EUR", "MXN"))
		assert.Equal(t, StateIdle, c.State().Kind)
		assert.True(t, decimal.NewFromInt(1).Equal(c.Rate()))
	})
}

func TestCache_CoalescesSamePair(t *testing.T) {
	fetcher := &fakeFetcher{
		quote:   Quote{Rate: decimal.NewFromInt(20), TradeDate: "2024-05-03"},
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	c := NewCache(fetcher, &memoryStore{})

	var wg sync.WaitGroup
	results := make([]State, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = c.Refresh(context.Background(), "USD", "MXN")
	}()
	<-fetcher.started
	assert.Equal(t, StateLoading, c.State().Kind)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1] = c.Refresh(context.Background(), "USD", "MXN")
	}()
	time.Sleep(50 * time.Millisecond)
	close(fetcher.release)
	wg.Wait()

	assert.Equal(t, int32(1), fetcher.calls.Load())
	assert.Equal(t, results[0], results[1])
	assert.Equal(t, StateFresh, results[1].Kind)
}

type pairFetcher struct {
	quotes  map[model.CurrencyCode]Quote
	gates   map[model.CurrencyCode]chan struct{}
	started chan model.CurrencyCode
}

func (f *pairFetcher) Fetch(_ context.Context, from, _ model.CurrencyCode) (Quote, error) {
	f.started <- from
	if gate, ok := f.gates[from]; ok {
		<-gate
	}
	return f.quotes[from], nil
}

func TestCache_DropsSupersededPair(t *testing.T) {
	fetcher := &pairFetcher{
		quotes: map[model.CurrencyCode]Quote{
			"EUR": {Rate: decimal.RequireFromString("19.1"), TradeDate: "2024-05-02"},
			"USD": {Rate: decimal.RequireFromString("17.5"), TradeDate: "2024-05-03"},
		},
		gates:   map[model.CurrencyCode]chan struct{}{"EUR": make(chan struct{})},
		started: make(chan model.CurrencyCode, 2),
	}
	store := &memoryStore{}
	c := NewCache(fetcher, store)

	done := make(chan State)
	go func() {
		done <- c.Refresh(context.Background(), "EUR", "MXN")
	}()
	require.Equal(t, model.CurrencyCode("EUR"), <-fetcher.started)

	state := c.Refresh(context.Background(), "USD", "MXN")
	require.Equal(t, StateFresh, state.Kind)
	<-fetcher.started

	close(fetcher.gates["EUR"])
	<-done

	from, to := c.Pair()
	assert.Equal(t, model.CurrencyCode("USD"), from)
	assert.Equal(t, model.CurrencyCode("MXN"), to)
	assert.True(t, decimal.RequireFromString("17.5").Equal(c.Rate()))
	assert.Equal(t, StateFresh, c.State().Kind)
	assert.Equal(t, "2024-05-03", c.State().TradeDate)

	stored, err := store.LoadRate(context.Background())
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, model.CurrencyCode("USD"), stored.From, "the late result is not persisted")
}

func TestHTTPFetcher(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/latest", r.URL.Path)
			assert.Equal(t, "USD", r.URL.Query().Get("from"))
			assert.Equal(t, "MXN", r.URL.Query().Get("to"))
			_, _ = w.Write([]byte(`{"amount":1.0,"base":"USD","date":"2024-05-03","rates":{"MXN":16.9812}}`))
		}))
		defer srv.Close()

		quote, err := NewHTTPFetcher(srv.URL, time.Second).Fetch(context.Background(), "USD", "MXN")
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("16.9812").Equal(quote.Rate))
		assert.Equal(t, "2024-05-03", quote.TradeDate)
	})

	t.Run("server error is a single attempt", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := NewHTTPFetcher(srv.URL, time.Second).Fetch(context.Background(), "USD", "MXN")
		assert.ErrorContains(t, err, "502")
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("missing rate", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"date":"2024-05-03","rates":{"EUR":0.93}}`))
		}))
		defer srv.Close()

		_, err := NewHTTPFetcher(srv.URL, time.Second).Fetch(context.Background(), "USD", "MXN")
		assert.Error(t, err)
	})
}
