package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

// FredBaseURL is the FRED economic data API endpoint.
const FredBaseURL = "https://api.stlouisfed.org/fred"

// trackedSeries are the macro series the macro specialist reads.
var trackedSeries = []struct {
	ID   string
	Name string
	Unit string
}{
	{ID: "FEDFUNDS", Name: "Federal Funds Rate", Unit: "percent"},
	{ID: "CPIAUCSL", Name: "Consumer Price Index", Unit: "index"},
	{ID: "UNRATE", Name: "Unemployment Rate", Unit: "percent"},
	{ID: "DGS10", Name: "10-Year Treasury Yield", Unit: "percent"},
}

// staticFallbacks are used when no FRED API key is configured or the API is
// unreachable, so the macro specialist always has a baseline to reason from.
var staticFallbacks = map[string]float64{
	"FEDFUNDS": 4.50,
	"CPIAUCSL": 310.0,
	"UNRATE":   4.1,
	"DGS10":    4.2,
}

// EconomicClient fetches macro series from the FRED API with static
// fallbacks.
type EconomicClient struct {
	client  *resty.Client
	apiKey  string
	limiter *rate.Limiter
	logger  arbor.ILogger
}

// EconomicOption configures the EconomicClient.
type EconomicOption func(*EconomicClient)

// WithFredBaseURL sets a custom base URL.
func WithFredBaseURL(baseURL string) EconomicOption {
	return func(c *EconomicClient) {
		c.client.SetBaseURL(baseURL)
	}
}

// WithFredTimeout sets a custom per-request HTTP timeout.
func WithFredTimeout(timeout time.Duration) EconomicOption {
	return func(c *EconomicClient) {
		c.client.SetTimeout(timeout)
	}
}

// NewEconomicClient creates a new FRED client. An empty apiKey is allowed;
// readings then come from the static fallback table.
func NewEconomicClient(apiKey string, logger arbor.ILogger, opts ...EconomicOption) *EconomicClient {
	client := resty.New().
		SetBaseURL(FredBaseURL).
		SetTimeout(DefaultTimeout).
		SetHeader("Accept", "application/json")

	c := &EconomicClient{
		client:  client,
		apiKey:  apiKey,
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type fredObservationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// GetIndicators returns the tracked macro series. Series that cannot be
// fetched fall back to static baseline values rather than failing the whole
// read.
func (c *EconomicClient) GetIndicators(ctx context.Context) ([]EconomicIndicator, error) {
	indicators := make([]EconomicIndicator, 0, len(trackedSeries))
	for _, series := range trackedSeries {
		indicator, err := c.getSeries(ctx, series.ID, series.Name, series.Unit)
		if err != nil {
			c.logger.Warn().Err(err).
				Str("series", series.ID).
				Msg("FRED series unavailable, using static fallback")
			indicator = &EconomicIndicator{
				SeriesID: series.ID,
				Name:     series.Name,
				Value:    staticFallbacks[series.ID],
				Unit:     series.Unit,
				Date:     time.Now().UTC(),
				Static:   true,
			}
		}
		indicators = append(indicators, *indicator)
	}
	return indicators, nil
}

func (c *EconomicClient) getSeries(ctx context.Context, seriesID, name, unit string) (*EconomicIndicator, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("no FRED API key configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	var body fredObservationsResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"series_id":  seriesID,
			"api_key":    c.apiKey,
			"file_type":  "json",
			"sort_order": "desc",
			"limit":      "1",
		}).
		SetResult(&body).
		Get("/series/observations")
	if err != nil {
		return nil, fmt.Errorf("fred request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fred returned status %d for %s", resp.StatusCode(), seriesID)
	}
	if len(body.Observations) == 0 {
		return nil, fmt.Errorf("no observations for %s", seriesID)
	}

	obs := body.Observations[0]
	var value float64
	if _, err := fmt.Sscanf(obs.Value, "%f", &value); err != nil {
		return nil, fmt.Errorf("unparsable observation value %q for %s", obs.Value, seriesID)
	}

	indicator := &EconomicIndicator{
		SeriesID: seriesID,
		Name:     name,
		Value:    value,
		Unit:     unit,
	}
	if date, err := time.Parse("2006-01-02", obs.Date); err == nil {
		indicator.Date = date
	}
	return indicator, nil
}
