// Package marketdata provides the external data clients the specialists use
// to ground their analyses: crypto quotes, DeFi TVL, equity quotes, news
// headlines and macro series.
package marketdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// CoinGeckoBaseURL is the public CoinGecko API endpoint.
	CoinGeckoBaseURL = "https://api.coingecko.com/api/v3"

	// DefaultTimeout is the default HTTP timeout for data clients.
	DefaultTimeout = 15 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5
)

// coinIDs maps common ticker symbols to CoinGecko coin ids.
var coinIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"ADA":   "cardano",
	"XRP":   "ripple",
	"DOT":   "polkadot",
	"DOGE":  "dogecoin",
	"AVAX":  "avalanche-2",
	"MATIC": "matic-network",
	"LINK":  "chainlink",
}

// CoinGeckoClient fetches crypto market data from the CoinGecko API.
type CoinGeckoClient struct {
	client  *resty.Client
	limiter *rate.Limiter
	logger  arbor.ILogger
}

// CoinGeckoOption configures the CoinGeckoClient.
type CoinGeckoOption func(*CoinGeckoClient)

// WithCoinGeckoBaseURL sets a custom base URL.
func WithCoinGeckoBaseURL(baseURL string) CoinGeckoOption {
	return func(c *CoinGeckoClient) {
		c.client.SetBaseURL(baseURL)
	}
}

// WithCoinGeckoAPIKey sets a pro API key.
func WithCoinGeckoAPIKey(apiKey string) CoinGeckoOption {
	return func(c *CoinGeckoClient) {
		if apiKey != "" {
			c.client.SetHeader("x-cg-pro-api-key", apiKey)
		}
	}
}

// WithCoinGeckoTimeout sets a custom per-request HTTP timeout.
func WithCoinGeckoTimeout(timeout time.Duration) CoinGeckoOption {
	return func(c *CoinGeckoClient) {
		c.client.SetTimeout(timeout)
	}
}

// WithCoinGeckoRateLimit sets a custom rate limit.
func WithCoinGeckoRateLimit(requestsPerSecond int) CoinGeckoOption {
	return func(c *CoinGeckoClient) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewCoinGeckoClient creates a new CoinGecko API client.
func NewCoinGeckoClient(logger arbor.ILogger, opts ...CoinGeckoOption) *CoinGeckoClient {
	client := resty.New().
		SetBaseURL(CoinGeckoBaseURL).
		SetTimeout(DefaultTimeout).
		SetHeader("Accept", "application/json")

	c := &CoinGeckoClient{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// CoinID resolves a ticker symbol to the CoinGecko coin id, falling back to
// the lowercased symbol for coins outside the common set.
func CoinID(symbol string) string {
	if id, ok := coinIDs[strings.ToUpper(symbol)]; ok {
		return id
	}
	return strings.ToLower(symbol)
}

type coinMarketResponse struct {
	MarketData struct {
		CurrentPrice             map[string]float64 `json:"current_price"`
		High24h                  map[string]float64 `json:"high_24h"`
		Low24h                   map[string]float64 `json:"low_24h"`
		MarketCap                map[string]float64 `json:"market_cap"`
		TotalVolume              map[string]float64 `json:"total_volume"`
		PriceChangePercentage24h float64            `json:"price_change_percentage_24h"`
	} `json:"market_data"`
}

// GetQuote fetches the current market snapshot for a crypto symbol.
func (c *CoinGeckoClient) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	coinID := CoinID(symbol)
	c.logger.Debug().Str("coin_id", coinID).Msg("CoinGecko quote request")

	var body coinMarketResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"localization":   "false",
			"tickers":        "false",
			"community_data": "false",
			"developer_data": "false",
		}).
		SetResult(&body).
		Get("/coins/" + coinID)
	if err != nil {
		return nil, fmt.Errorf("coingecko request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("coingecko returned status %d for %s", resp.StatusCode(), coinID)
	}

	md := body.MarketData
	return &Quote{
		Symbol:       strings.ToUpper(symbol),
		Price:        decimal.NewFromFloat(md.CurrentPrice["usd"]),
		High:         decimal.NewFromFloat(md.High24h["usd"]),
		Low:          decimal.NewFromFloat(md.Low24h["usd"]),
		Volume:       int64(md.TotalVolume["usd"]),
		Change24hPct: md.PriceChangePercentage24h,
		MarketCap:    decimal.NewFromFloat(md.MarketCap["usd"]),
		FetchedAt:    time.Now().UTC(),
		Source:       "coingecko",
	}, nil
}

type marketChartResponse struct {
	Prices       [][]float64 `json:"prices"`
	TotalVolumes [][]float64 `json:"total_volumes"`
}

// GetHistory fetches the daily closing price series for the last days days.
func (c *CoinGeckoClient) GetHistory(ctx context.Context, symbol string, days int) ([]PricePoint, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}
	if days <= 0 {
		days = 30
	}

	coinID := CoinID(symbol)

	var body marketChartResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"vs_currency": "usd",
			"days":        fmt.Sprintf("%d", days),
			"interval":    "daily",
		}).
		SetResult(&body).
		Get("/coins/" + coinID + "/market_chart")
	if err != nil {
		return nil, fmt.Errorf("coingecko request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("coingecko returned status %d for %s", resp.StatusCode(), coinID)
	}

	points := make([]PricePoint, 0, len(body.Prices))
	for i, pair := range body.Prices {
		if len(pair) < 2 {
			continue
		}
		point := PricePoint{
			Timestamp: time.UnixMilli(int64(pair[0])).UTC(),
			Price:     decimal.NewFromFloat(pair[1]),
		}
		if i < len(body.TotalVolumes) && len(body.TotalVolumes[i]) >= 2 {
			point.Volume = decimal.NewFromFloat(body.TotalVolumes[i][1])
		}
		points = append(points, point)
	}

	c.logger.Debug().
		Str("coin_id", coinID).
		Int("points", len(points)).
		Msg("CoinGecko history fetched")

	return points, nil
}
