// Package currency normalizes entered transaction amounts into canonical
// USD values using a live exchange-rate source.
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/cache"
	"fintrack/internal/core"
)

// RateSource returns the exchange rates for a base currency as a map of
// currency code to rate (units of that currency per one unit of base).
type RateSource interface {
	Rates(ctx context.Context, base string) (map[string]decimal.Decimal, error)
}

// HTTPSource fetches rates from a latest-rates endpoint such as
// https://api.exchangerate-api.com/v4/latest. The base currency is appended
// as the final path segment.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type ratesResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

func (s *HTTPSource) Rates(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/"+base, nil)
	if err != nil {
		return nil, fmt.Errorf("build rates request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates endpoint returned status %d", resp.StatusCode)
	}

	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode rates response: %w", err)
	}
	if len(body.Rates) == 0 {
		return nil, fmt.Errorf("rates endpoint returned no rates for base %s", base)
	}

	rates := make(map[string]decimal.Decimal, len(body.Rates))
	for code, rate := range body.Rates {
		rates[code] = decimal.NewFromFloat(rate)
	}
	return rates, nil
}

// Converter turns entered amounts into USD. Rate tables are cached with a
// TTL so a burst of transaction creations does not hammer the rate source.
type Converter struct {
	source RateSource
	rates  *cache.LRUCache[map[string]decimal.Decimal]
}

func NewConverter(source RateSource, ttl time.Duration) *Converter {
	return &Converter{
		source: source,
		rates:  cache.NewLRUCache[map[string]decimal.Decimal](4, ttl),
	}
}

// ToUSD converts amount from the given ISO currency code into USD. A "USD"
// or empty code passes through unchanged. The conversion divides the entered
// amount by the USD-based rate for the code; this matches the historical
// data this system carries and must not be "corrected" silently.
//
// Any lookup failure is reported as core.ErrConversion; callers abort the
// surrounding transaction-creation flow instead of defaulting.
func (c *Converter) ToUSD(ctx context.Context, amount decimal.Decimal, code string) (decimal.Decimal, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || code == "USD" {
		return amount, nil
	}

	rates, ok := c.rates.Get("USD")
	if !ok {
		fetched, err := c.source.Rates(ctx, "USD")
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %v", core.ErrConversion, err)
		}
		c.rates.Set("USD", fetched)
		rates = fetched
	}

	rate, found := rates[code]
	if !found || rate.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: no rate for currency %q", core.ErrConversion, code)
	}
	return amount.Div(rate), nil
}
