package synthesis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/verdict/internal/models"
)

var errTest = errors.New("provider unavailable")

func specialist(name, signal string, confidence float64) *models.SpecialistResult {
	return &models.SpecialistResult{
		AgentName:  name,
		Summary:    "Analysis for " + name + ".",
		Signal:     signal,
		Confidence: confidence,
	}
}

func TestMerge_MajorityVote(t *testing.T) {
	tests := []struct {
		name        string
		macroSig    string
		techSig     string
		sentSig     string
		wantOutlook models.Outlook
		wantAction  models.TradingAction
	}{
		{name: "two bullish one bearish", macroSig: "bullish", techSig: "bullish", sentSig: "bearish", wantOutlook: models.OutlookBullish, wantAction: models.ActionBuy},
		{name: "two bearish one bullish", macroSig: "bearish", techSig: "bearish", sentSig: "bullish", wantOutlook: models.OutlookBearish, wantAction: models.ActionSell},
		{name: "one each resolves neutral", macroSig: "bullish", techSig: "bearish", sentSig: "neutral", wantOutlook: models.OutlookNeutral, wantAction: models.ActionHold},
		{name: "all neutral", macroSig: "neutral", techSig: "neutral", sentSig: "neutral", wantOutlook: models.OutlookNeutral, wantAction: models.ActionHold},
		{name: "all bullish", macroSig: "bullish", techSig: "bullish", sentSig: "bullish", wantOutlook: models.OutlookBullish, wantAction: models.ActionBuy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Merge(
				specialist(models.AgentMacro, tt.macroSig, 0.6),
				specialist(models.AgentTechnical, tt.techSig, 0.6),
				specialist(models.AgentSentiment, tt.sentSig, 0.6),
			)
			assert.Equal(t, tt.wantOutlook, s.Outlook)
			assert.Equal(t, tt.wantAction, s.TradingAction)
		})
	}
}

func TestMerge_PositionSizing(t *testing.T) {
	tests := []struct {
		name        string
		confidences [3]float64
		want        models.PositionSize
	}{
		{name: "mean exactly 0.75 is large", confidences: [3]float64{0.75, 0.75, 0.75}, want: models.PositionLarge},
		{name: "mean just below 0.75 is medium", confidences: [3]float64{0.749999, 0.749999, 0.749999}, want: models.PositionMedium},
		{name: "mean exactly 0.60 is medium", confidences: [3]float64{0.60, 0.60, 0.60}, want: models.PositionMedium},
		{name: "mean just below 0.60 is small", confidences: [3]float64{0.599999, 0.599999, 0.599999}, want: models.PositionSmall},
		{name: "high mean is large", confidences: [3]float64{0.9, 0.8, 0.85}, want: models.PositionLarge},
		{name: "degraded zero pulls mean small", confidences: [3]float64{0.8, 0.8, 0.0}, want: models.PositionSmall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Merge(
				specialist(models.AgentMacro, "neutral", tt.confidences[0]),
				specialist(models.AgentTechnical, "neutral", tt.confidences[1]),
				specialist(models.AgentSentiment, "neutral", tt.confidences[2]),
			)
			assert.Equal(t, tt.want, s.PositionSize)
		})
	}
}

func TestMerge_Deterministic(t *testing.T) {
	macro := specialist(models.AgentMacro, "bullish", 0.72)
	macro.BullishFactors = []string{"rate cut expected", "fiscal easing"}
	technical := specialist(models.AgentTechnical, "bullish", 0.81)
	technical.BullishFactors = []string{"rate cut expected", "golden cross"}
	sentiment := specialist(models.AgentSentiment, "bearish", 0.55)

	first := Merge(macro, technical, sentiment)
	second := Merge(macro, technical, sentiment)

	assert.Equal(t, first.Outlook, second.Outlook)
	assert.Equal(t, first.TradingAction, second.TradingAction)
	assert.Equal(t, first.PositionSize, second.PositionSize)
	assert.Equal(t, first.Confidence, second.Confidence)
	assert.Equal(t, first.BullishFactors, second.BullishFactors)
	assert.Equal(t, first.ExecutiveSummary, second.ExecutiveSummary)
}

func TestMerge_FactorDeduplication(t *testing.T) {
	macro := specialist(models.AgentMacro, "bullish", 0.7)
	macro.BullishFactors = []string{"rate cut expected", "  ", "strong GDP"}
	technical := specialist(models.AgentTechnical, "bullish", 0.7)
	technical.BullishFactors = []string{"rate cut expected", "breakout confirmed"}
	sentiment := specialist(models.AgentSentiment, "neutral", 0.7)
	sentiment.BullishFactors = []string{"", "strong GDP"}

	s := Merge(macro, technical, sentiment)

	require.Equal(t, []string{"rate cut expected", "strong GDP", "breakout confirmed"}, s.BullishFactors)
}

func TestMerge_ConfidenceRounding(t *testing.T) {
	s := Merge(
		specialist(models.AgentMacro, "neutral", 0.7),
		specialist(models.AgentTechnical, "neutral", 0.7),
		specialist(models.AgentSentiment, "neutral", 0.8),
	)
	// (0.7+0.7+0.8)/3 = 0.73333... rounds to 4 decimal places
	assert.Equal(t, 0.7333, s.Confidence)
}

func TestMerge_DegradedSpecialistStillMerges(t *testing.T) {
	macro := specialist(models.AgentMacro, "bullish", 0.8)
	technical := specialist(models.AgentTechnical, "bullish", 0.7)
	degraded := models.DegradedResult(models.AgentSentiment, errTest)

	s := Merge(macro, technical, degraded)

	assert.Equal(t, models.OutlookBullish, s.Outlook)
	assert.Equal(t, models.ActionBuy, s.TradingAction)
	assert.Equal(t, 0.5, s.Confidence)
	assert.Contains(t, s.SentimentSummary, "analysis failed")
}

func TestMerge_InvestmentThesis(t *testing.T) {
	macro := specialist(models.AgentMacro, "neutral", 0.6)
	macro.InvestmentThesis = "Macro backdrop is supportive."
	technical := specialist(models.AgentTechnical, "neutral", 0.6)
	sentiment := specialist(models.AgentSentiment, "neutral", 0.6)
	sentiment.InvestmentThesis = "Retail sentiment remains cautious."

	s := Merge(macro, technical, sentiment)
	assert.Equal(t, "Macro backdrop is supportive.\n\nRetail sentiment remains cautious.", s.InvestmentThesis)
}

func TestMerge_ThesisFallsBackToDetailedAnalysis(t *testing.T) {
	macro := specialist(models.AgentMacro, "neutral", 0.6)
	macro.DetailedAnalysis = map[string]interface{}{"text": "Rates are likely to stay on hold."}
	technical := specialist(models.AgentTechnical, "neutral", 0.6)
	sentiment := specialist(models.AgentSentiment, "neutral", 0.6)

	s := Merge(macro, technical, sentiment)
	assert.Equal(t, "Rates are likely to stay on hold.", s.InvestmentThesis)
}

func TestMerge_ThesisDefaultWhenAllEmpty(t *testing.T) {
	s := Merge(
		specialist(models.AgentMacro, "neutral", 0.6),
		specialist(models.AgentTechnical, "neutral", 0.6),
		specialist(models.AgentSentiment, "neutral", 0.6),
	)
	assert.Equal(t, defaultThesis, s.InvestmentThesis)
}

func TestRiskLevelFromScore(t *testing.T) {
	tests := []struct {
		score float64
		want  models.RiskLevel
	}{
		{score: 0.19, want: models.RiskVeryLow},
		{score: 0.20, want: models.RiskLow},
		{score: 0.39, want: models.RiskLow},
		{score: 0.40, want: models.RiskMedium},
		{score: 0.59, want: models.RiskMedium},
		{score: 0.60, want: models.RiskHigh},
		{score: 0.79, want: models.RiskHigh},
		{score: 0.81, want: models.RiskVeryHigh},
	}

	for _, tt := range tests {
		if got := models.RiskLevelFromScore(tt.score); got != tt.want {
			t.Errorf("RiskLevelFromScore(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}
