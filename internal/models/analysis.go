package models

import "time"

// RiskLevel buckets the overall risk score into five bands.
type RiskLevel string

const (
	RiskVeryLow  RiskLevel = "very_low"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskVeryHigh RiskLevel = "very_high"
)

// RiskLevelFromScore converts a risk score (1 - overall confidence) into a
// RiskLevel. Band boundaries are exclusive at the upper edge: a score of
// exactly 0.2 is low, not very_low.
func RiskLevelFromScore(score float64) RiskLevel {
	switch {
	case score < 0.2:
		return RiskVeryLow
	case score < 0.4:
		return RiskLow
	case score < 0.6:
		return RiskMedium
	case score < 0.8:
		return RiskHigh
	default:
		return RiskVeryHigh
	}
}

// Analysis is the persisted record for one completed request: the synthesis
// plus the three specialist results it was derived from. OverallConfidence
// is the arithmetic mean of the specialist confidences, including zeros from
// degraded specialists.
type Analysis struct {
	ID          string    `json:"id" badgerhold:"key"`
	Query       string    `json:"query"`
	AssetSymbol string    `json:"asset_symbol"`
	Timeframe   Timeframe `json:"timeframe"`

	Synthesis Synthesis `json:"synthesis"`

	Macro     SpecialistResult `json:"macro_analysis"`
	Technical SpecialistResult `json:"technical_analysis"`
	Sentiment SpecialistResult `json:"sentiment_analysis"`

	OverallConfidence float64   `json:"overall_confidence"`
	RiskScore         float64   `json:"risk_score"`
	RiskLevel         RiskLevel `json:"risk_level"`

	CreatedAt time.Time `json:"created_at"`
}
