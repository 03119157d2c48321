package marketdata

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a snapshot of one asset's market state.
type Quote struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	Open          decimal.Decimal `json:"open"`
	High          decimal.Decimal `json:"high"`
	Low           decimal.Decimal `json:"low"`
	Volume        int64           `json:"volume"`
	Change24hPct  float64         `json:"change_24h_pct"`
	MarketCap     decimal.Decimal `json:"market_cap"`
	FetchedAt     time.Time       `json:"fetched_at"`
	Source        string          `json:"source"`
}

// PricePoint is one closing price in a historical series.
type PricePoint struct {
	Timestamp time.Time       `json:"timestamp"`
	Price     decimal.Decimal `json:"price"`
	Volume    decimal.Decimal `json:"volume,omitempty"`
}

// NewsArticle is one headline relevant to an asset.
type NewsArticle struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	Snippet     string    `json:"snippet,omitempty"`
}

// EconomicIndicator is one macro series observation.
type EconomicIndicator struct {
	SeriesID string    `json:"series_id"`
	Name     string    `json:"name"`
	Value    float64   `json:"value"`
	Unit     string    `json:"unit"`
	Date     time.Time `json:"date"`
	Static   bool      `json:"static,omitempty"` // true when a fallback value, not a live reading
}

// ProtocolTVL is the total value locked reading for one DeFi protocol.
type ProtocolTVL struct {
	Protocol  string    `json:"protocol"`
	TVL       float64   `json:"tvl"`
	Change1d  float64   `json:"change_1d"`
	Change7d  float64   `json:"change_7d"`
	FetchedAt time.Time `json:"fetched_at"`
}
