package marketdata

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func series(prices ...float64) []PricePoint {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]PricePoint, len(prices))
	for i, p := range prices {
		points[i] = PricePoint{
			Timestamp: base.AddDate(0, 0, i),
			Price:     decimal.NewFromFloat(p),
		}
	}
	return points
}

func TestSMA(t *testing.T) {
	points := series(10, 20, 30, 40)

	sma := SMA(points, 2)
	assert.True(t, sma.Equal(decimal.NewFromInt(35)), "SMA(2) = %s, want 35", sma)

	sma = SMA(points, 4)
	assert.True(t, sma.Equal(decimal.NewFromInt(25)), "SMA(4) = %s, want 25", sma)

	// Too-short series
	assert.True(t, SMA(points, 10).IsZero())
}

func TestRSI(t *testing.T) {
	// Monotonic gains drive RSI to 100
	assert.Equal(t, float64(100), RSI(series(1, 2, 3, 4, 5, 6), 5))

	// Too-short series returns the neutral midpoint
	assert.Equal(t, float64(50), RSI(series(1, 2), 14))

	// Equal gains and losses land at 50
	rsi := RSI(series(10, 12, 10, 12, 10), 4)
	assert.InDelta(t, 50, rsi, 0.001)
}

func TestMomentum(t *testing.T) {
	points := series(100, 110, 120)

	assert.InDelta(t, 20, Momentum(points, 2), 0.001)
	assert.InDelta(t, 9.0909, Momentum(points, 1), 0.001)
	assert.Equal(t, float64(0), Momentum(points, 5))
}

func TestParseRSS(t *testing.T) {
	payload := []byte(`<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Search results</title>
    <item>
      <title>Bitcoin rallies past resistance</title>
      <link>https://example.com/a</link>
      <description>&lt;a href="https://example.com/a"&gt;Bitcoin rallies&lt;/a&gt; on strong volume</description>
      <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
      <source url="https://example.com">Example Wire</source>
    </item>
    <item>
      <title></title>
      <link>https://example.com/skipped</link>
    </item>
    <item>
      <title>Second story</title>
      <link>https://example.com/b</link>
    </item>
  </channel>
</rss>`)

	articles, err := parseRSS(payload, 10)
	assert.NoError(t, err)
	assert.Len(t, articles, 2)

	assert.Equal(t, "Bitcoin rallies past resistance", articles[0].Title)
	assert.Equal(t, "Example Wire", articles[0].Source)
	assert.Equal(t, "Bitcoin rallies on strong volume", articles[0].Snippet)
	assert.Equal(t, 2006, articles[0].PublishedAt.Year())

	// maxResults bounds the output
	bounded, err := parseRSS(payload, 1)
	assert.NoError(t, err)
	assert.Len(t, bounded, 1)
}
