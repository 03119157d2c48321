package models

import "fmt"

// Timeframe represents the analysis horizon for a request.
type Timeframe string

const (
	TimeframeIntraday Timeframe = "intraday"
	TimeframeShort    Timeframe = "short_term"
	TimeframeMedium   Timeframe = "medium_term"
	TimeframeLong     Timeframe = "long_term"
)

// ParseTimeframe converts a string to a Timeframe, rejecting unknown values.
// An unknown timeframe is the one request-level validation failure that is
// surfaced to the caller instead of being absorbed downstream.
func ParseTimeframe(s string) (Timeframe, error) {
	switch Timeframe(s) {
	case TimeframeIntraday, TimeframeShort, TimeframeMedium, TimeframeLong:
		return Timeframe(s), nil
	case "":
		return TimeframeMedium, nil
	default:
		return "", fmt.Errorf("unknown timeframe: %s", s)
	}
}

// Days returns the number of calendar days of data the timeframe covers.
func (t Timeframe) Days() int {
	switch t {
	case TimeframeIntraday:
		return 1
	case TimeframeShort:
		return 7
	case TimeframeLong:
		return 90
	default:
		return 30
	}
}

// IsValid reports whether the timeframe is one of the known values.
func (t Timeframe) IsValid() bool {
	_, err := ParseTimeframe(string(t))
	return err == nil
}

func (t Timeframe) String() string {
	return string(t)
}
