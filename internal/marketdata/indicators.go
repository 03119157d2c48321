package marketdata

import "github.com/shopspring/decimal"

// SMA returns the simple moving average of the last period prices, or zero
// when the series is shorter than period.
func SMA(points []PricePoint, period int) decimal.Decimal {
	if period <= 0 || len(points) < period {
		return decimal.Zero
	}

	sum := decimal.Zero
	for _, p := range points[len(points)-period:] {
		sum = sum.Add(p.Price)
	}
	return sum.Div(decimal.NewFromInt(int64(period)))
}

// RSI returns the relative strength index over the last period intervals
// using the standard Wilder average of gains and losses. Returns 50 when the
// series is too short to compute, and 100 when there are no losses.
func RSI(points []PricePoint, period int) float64 {
	if period <= 0 || len(points) < period+1 {
		return 50
	}

	window := points[len(points)-period-1:]
	gains, losses := decimal.Zero, decimal.Zero
	for i := 1; i < len(window); i++ {
		change := window[i].Price.Sub(window[i-1].Price)
		if change.IsPositive() {
			gains = gains.Add(change)
		} else {
			losses = losses.Add(change.Neg())
		}
	}

	if losses.IsZero() {
		if gains.IsZero() {
			return 50
		}
		return 100
	}

	rs, _ := gains.Div(losses).Float64()
	return 100 - 100/(1+rs)
}

// Momentum returns the percentage price change over the last period
// intervals, or zero when the series is too short.
func Momentum(points []PricePoint, period int) float64 {
	if period <= 0 || len(points) < period+1 {
		return 0
	}

	current := points[len(points)-1].Price
	past := points[len(points)-period-1].Price
	if past.IsZero() {
		return 0
	}

	pct, _ := current.Sub(past).Div(past).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}
