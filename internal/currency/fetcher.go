package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/envelope/internal/model"
)

// DefaultEndpoint is a Frankfurter-compatible rates API.
const DefaultEndpoint = "https://api.frankfurter.app"

// HTTPFetcher reads the latest rate from a Frankfurter-compatible endpoint.
// Each Fetch is a single attempt; the cache decides what a failure means.
type HTTPFetcher struct {
	client   *http.Client
	endpoint string
}

// NewHTTPFetcher creates a fetcher. A zero timeout falls back to 10 seconds.
func NewHTTPFetcher(endpoint string, timeout time.Duration) *HTTPFetcher {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPFetcher{
		client:   &http.Client{Timeout: timeout},
		endpoint: strings.TrimRight(endpoint, "/"),
	}
}

type latestResponse struct {
	Rates map[string]decimal.Decimal `json:"rates"`
	Date  string                     `json:"date"`
}

// Fetch performs a single GET /latest?from=X&to=Y.
func (f *HTTPFetcher) Fetch(ctx context.Context, from, to model.CurrencyCode) (Quote, error) {
	q := url.Values{}
	q.Set("from", string(from))
	q.Set("to", string(to))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint+"/latest?"+q.Encode(), nil)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to build rate request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("failed to fetch rate: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Quote{}, fmt.Errorf("rate service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Quote{}, fmt.Errorf("failed to decode rate response: %w", err)
	}

	rate, ok := payload.Rates[string(to)]
	if !ok {
		return Quote{}, fmt.Errorf("rate service response has no %s rate", to)
	}
	if !rate.IsPositive() {
		return Quote{}, fmt.Errorf("%w: got %s", ErrInvalidRate, rate)
	}

	return Quote{Rate: rate, TradeDate: payload.Date}, nil
}
