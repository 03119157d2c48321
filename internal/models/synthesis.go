package models

import (
	"fmt"
	"math"
	"time"
)

// Outlook is the merged directional view across the three specialists.
type Outlook string

const (
	OutlookBullish Outlook = "bullish"
	OutlookBearish Outlook = "bearish"
	OutlookNeutral Outlook = "neutral"
)

// TradingAction is the recommendation derived from the outlook.
type TradingAction string

const (
	ActionBuy  TradingAction = "buy"
	ActionSell TradingAction = "sell"
	ActionHold TradingAction = "hold"
)

// PositionSize buckets the recommended exposure from mean confidence.
type PositionSize string

const (
	PositionSmall  PositionSize = "small"
	PositionMedium PositionSize = "medium"
	PositionLarge  PositionSize = "large"
)

// Synthesis is the deterministic merge of three specialist results into a
// single recommendation. Identical inputs always produce identical output
// apart from GeneratedAt.
type Synthesis struct {
	Outlook       Outlook       `json:"outlook"`
	TradingAction TradingAction `json:"trading_action"`
	PositionSize  PositionSize  `json:"position_sizing"`
	Confidence    float64       `json:"confidence"`

	BullishFactors  []string `json:"bullish_factors,omitempty"`
	BearishFactors  []string `json:"bearish_factors,omitempty"`
	CriticalFactors []string `json:"critical_factors,omitempty"`
	KeyRisks        []string `json:"key_risks,omitempty"`
	RiskMitigations []string `json:"risk_mitigations,omitempty"`

	InvestmentThesis string `json:"investment_thesis"`
	ExecutiveSummary string `json:"executive_summary"`

	MacroSummary     string `json:"macro_analysis_summary"`
	TechnicalSummary string `json:"technical_analysis_summary"`
	SentimentSummary string `json:"sentiment_analysis_summary"`

	GeneratedAt time.Time `json:"generated_at"`
}

// FinalResponse renders the one-line recommendation stored as the assistant
// turn in conversation memory.
func (s *Synthesis) FinalResponse() string {
	return fmt.Sprintf("Outlook: %s. Action: %s. Position: %s. Confidence: %v.",
		s.Outlook, s.TradingAction, s.PositionSize, math.Round(s.Confidence*100)/100)
}
