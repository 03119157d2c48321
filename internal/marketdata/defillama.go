package marketdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

// DefiLlamaBaseURL is the public DefiLlama API endpoint.
const DefiLlamaBaseURL = "https://api.llama.fi"

// protocolSlugs maps asset symbols to DefiLlama protocol slugs where the
// asset has an associated protocol.
var protocolSlugs = map[string]string{
	"ETH":   "lido",
	"SOL":   "marinade-finance",
	"AVAX":  "aave",
	"MATIC": "polygon-bridge-&-staking",
}

// DefiLlamaClient fetches DeFi TVL data from the DefiLlama API.
type DefiLlamaClient struct {
	client  *resty.Client
	limiter *rate.Limiter
	logger  arbor.ILogger
}

// DefiLlamaOption configures the DefiLlamaClient.
type DefiLlamaOption func(*DefiLlamaClient)

// WithDefiLlamaBaseURL sets a custom base URL.
func WithDefiLlamaBaseURL(baseURL string) DefiLlamaOption {
	return func(c *DefiLlamaClient) {
		c.client.SetBaseURL(baseURL)
	}
}

// WithDefiLlamaTimeout sets a custom per-request HTTP timeout.
func WithDefiLlamaTimeout(timeout time.Duration) DefiLlamaOption {
	return func(c *DefiLlamaClient) {
		c.client.SetTimeout(timeout)
	}
}

// NewDefiLlamaClient creates a new DefiLlama API client.
func NewDefiLlamaClient(logger arbor.ILogger, opts ...DefiLlamaOption) *DefiLlamaClient {
	client := resty.New().
		SetBaseURL(DefiLlamaBaseURL).
		SetTimeout(DefaultTimeout).
		SetHeader("Accept", "application/json")

	c := &DefiLlamaClient{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type protocolResponse struct {
	Name     string  `json:"name"`
	TVL      float64 `json:"tvl"`
	Change1d float64 `json:"change_1d"`
	Change7d float64 `json:"change_7d"`
}

// GetProtocolTVL fetches the TVL reading for a protocol slug.
func (c *DefiLlamaClient) GetProtocolTVL(ctx context.Context, slug string) (*ProtocolTVL, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	var body protocolResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get("/protocol/" + slug)
	if err != nil {
		return nil, fmt.Errorf("defillama request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("defillama returned status %d for %s", resp.StatusCode(), slug)
	}

	return &ProtocolTVL{
		Protocol:  body.Name,
		TVL:       body.TVL,
		Change1d:  body.Change1d,
		Change7d:  body.Change7d,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// GetAssetTVL fetches the TVL reading for the protocol associated with an
// asset symbol. Assets without an associated protocol return nil without
// error.
func (c *DefiLlamaClient) GetAssetTVL(ctx context.Context, symbol string) (*ProtocolTVL, error) {
	slug, ok := protocolSlugs[strings.ToUpper(symbol)]
	if !ok {
		c.logger.Debug().Str("symbol", symbol).Msg("No DefiLlama protocol mapping for asset")
		return nil, nil
	}
	return c.GetProtocolTVL(ctx, slug)
}
