package marketdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"
	"github.com/ternarybob/arbor"
)

// YahooClient fetches equity and index quotes from Yahoo Finance. It covers
// the non-crypto side of asset queries and the benchmark indexes the macro
// specialist references.
type YahooClient struct {
	logger arbor.ILogger
}

// NewYahooClient creates a new Yahoo Finance client.
func NewYahooClient(logger arbor.ILogger) *YahooClient {
	return &YahooClient{logger: logger}
}

// GetQuote gets current quote data for a symbol.
func (y *YahooClient) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol cannot be empty")
	}

	q, err := quote.Get(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote for %s: %w", symbol, err)
	}
	if q == nil {
		return nil, fmt.Errorf("no quote returned for %s", symbol)
	}

	y.logger.Debug().Str("symbol", symbol).Msg("Yahoo quote fetched")

	return &Quote{
		Symbol:       symbol,
		Price:        decimal.NewFromFloat(q.RegularMarketPrice),
		Open:         decimal.NewFromFloat(q.RegularMarketOpen),
		High:         decimal.NewFromFloat(q.RegularMarketDayHigh),
		Low:          decimal.NewFromFloat(q.RegularMarketDayLow),
		Volume:       int64(q.RegularMarketVolume),
		Change24hPct: q.RegularMarketChangePercent,
		FetchedAt:    time.Now().UTC(),
		Source:       "yahoo",
	}, nil
}

// GetHistory gets the daily closing price series for the last days days.
func (y *YahooClient) GetHistory(ctx context.Context, symbol string, days int) ([]PricePoint, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol cannot be empty")
	}
	if days <= 0 {
		days = 30
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days)

	params := &chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}

	iter := chart.Get(params)
	var points []PricePoint
	for iter.Next() {
		bar := iter.Bar()
		points = append(points, PricePoint{
			Timestamp: time.Unix(int64(bar.Timestamp), 0).UTC(),
			Price:     bar.Close,
			Volume:    decimal.NewFromInt(int64(bar.Volume)),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to get history for %s: %w", symbol, err)
	}

	y.logger.Debug().
		Str("symbol", symbol).
		Int("points", len(points)).
		Msg("Yahoo history fetched")

	return points, nil
}
