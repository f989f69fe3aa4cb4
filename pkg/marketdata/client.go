// Package marketdata fetches public company fundamentals from the market
// data provider, with a Redis-backed response cache.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/redis"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Fundamentals is a public company's reference data as the provider
// reports it
type Fundamentals struct {
	Symbol          string  `json:"symbol"`
	CompanyName     string  `json:"company_name"`
	Industry        string  `json:"industry"`
	Sector          string  `json:"sector"`
	BusinessSummary string  `json:"business_summary"`
	MarketCap       float64 `json:"market_cap"`
	Revenue         float64 `json:"revenue"`
	Employees       int     `json:"employees"`
	Country         string  `json:"country"`
	PERatio         float64 `json:"pe_ratio"`
	PriceToBook     float64 `json:"price_to_book"`
	DebtToEquity    float64 `json:"debt_to_equity"`
	ReturnOnEquity  float64 `json:"return_on_equity"`
	ProfitMargins   float64 `json:"profit_margins"`
	RevenueGrowth   float64 `json:"revenue_growth"`
}

// Cache is the subset of the Redis client the market data client needs
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// ClientConfig holds market data provider configuration
type ClientConfig struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Client fetches fundamentals from the provider
type Client struct {
	httpClient *http.Client
	config     ClientConfig
	cache      Cache
	logger     ectologger.Logger
}

// NewClient creates a new market data client. cache may be nil, in which
// case every lookup goes to the provider.
func NewClient(cfg ClientConfig, cache Cache, logger ectologger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		config:     cfg,
		cache:      cache,
		logger:     logger,
	}
}

// GetFundamentals returns the fundamentals for a ticker symbol, serving
// from cache when a fresh entry exists
func (c *Client) GetFundamentals(ctx context.Context, symbol string) (*Fundamentals, error) {
	ctx, span := tracing.StartSpan(ctx, "marketdata.Client.GetFundamentals")
	defer span.End()

	cacheKey := "marketdata:fundamentals:" + symbol

	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, cacheKey); err == nil {
			var fundamentals Fundamentals
			if err := json.Unmarshal([]byte(cached), &fundamentals); err == nil {
				metrics.MarketDataCacheHitsTotal.WithLabelValues("hit").Inc()
				return &fundamentals, nil
			}
		} else if !redis.IsNil(err) {
			c.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"symbol": symbol}).Warn("Fundamentals cache read failed")
		}
		metrics.MarketDataCacheHitsTotal.WithLabelValues("miss").Inc()
	}

	fundamentals, err := c.fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if data, err := json.Marshal(fundamentals); err == nil {
			if err := c.cache.Set(ctx, cacheKey, string(data), c.config.CacheTTL); err != nil {
				c.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"symbol": symbol}).Warn("Failed to cache fundamentals")
			}
		}
	}

	return fundamentals, nil
}

func (c *Client) fetch(ctx context.Context, symbol string) (*Fundamentals, error) {
	url := fmt.Sprintf("%s/v1/fundamentals/%s", c.config.BaseURL, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build fundamentals request: %w", err)
	}
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.MarketDataRequestsTotal.WithLabelValues("error").Inc()
		c.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"symbol": symbol}).Error("Market data request failed")
		return nil, httperror.NewHTTPError(http.StatusBadGateway, "market data provider unavailable")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decode
	case http.StatusNotFound:
		metrics.MarketDataRequestsTotal.WithLabelValues("not_found").Inc()
		return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "no fundamentals for symbol %s", symbol)
	default:
		metrics.MarketDataRequestsTotal.WithLabelValues("error").Inc()
		c.logger.WithContext(ctx).WithFields(map[string]any{"symbol": symbol, "status": resp.StatusCode}).Error("Market data provider returned an error")
		return nil, httperror.NewHTTPError(http.StatusBadGateway, "market data provider error")
	}

	var fundamentals Fundamentals
	if err := json.NewDecoder(resp.Body).Decode(&fundamentals); err != nil {
		metrics.MarketDataRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to decode fundamentals for %s: %w", symbol, err)
	}

	if fundamentals.Symbol == "" {
		fundamentals.Symbol = symbol
	}

	metrics.MarketDataRequestsTotal.WithLabelValues("ok").Inc()
	return &fundamentals, nil
}
