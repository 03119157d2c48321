package synthesis

import (
	"math"
	"strings"
	"time"

	"github.com/ternarybob/verdict/internal/models"
)

// Position sizing thresholds on mean specialist confidence (inclusive lower bounds)
const (
	largePositionThreshold  = 0.75
	mediumPositionThreshold = 0.60
)

const defaultThesis = "Combined analysis from specialists."

// Merge combines the three specialist results into a single Synthesis.
// The merge is a pure function of its inputs except for the GeneratedAt
// timestamp: identical specialist results always produce an identical
// recommendation.
func Merge(macro, technical, sentiment *models.SpecialistResult) *models.Synthesis {
	macroDir := SpecialistDirection(macro)
	technicalDir := SpecialistDirection(technical)
	sentimentDir := SpecialistDirection(sentiment)

	outlook := voteOutlook(macroDir, technicalDir, sentimentDir)

	avgConfidence := meanConfidence(macro, technical, sentiment)

	return &models.Synthesis{
		Outlook:          outlook,
		TradingAction:    actionForOutlook(outlook),
		PositionSize:     positionForConfidence(avgConfidence),
		Confidence:       roundTo(avgConfidence, 4),
		BullishFactors:   collectList(func(r *models.SpecialistResult) []string { return r.BullishFactors }, macro, technical, sentiment),
		BearishFactors:   collectList(func(r *models.SpecialistResult) []string { return r.BearishFactors }, macro, technical, sentiment),
		CriticalFactors:  collectList(func(r *models.SpecialistResult) []string { return r.CriticalFactors }, macro, technical, sentiment),
		KeyRisks:         collectList(func(r *models.SpecialistResult) []string { return r.KeyRisks }, macro, technical, sentiment),
		RiskMitigations:  collectList(func(r *models.SpecialistResult) []string { return r.RiskMitigations }, macro, technical, sentiment),
		InvestmentThesis: buildThesis(macro, technical, sentiment),
		ExecutiveSummary: buildExecutiveSummary(macro, technical, sentiment, outlook, avgConfidence),
		MacroSummary:     resultSummary(macro),
		TechnicalSummary: resultSummary(technical),
		SentimentSummary: resultSummary(sentiment),
		GeneratedAt:      time.Now().UTC(),
	}
}

// voteOutlook runs a majority vote across the three directions. A tie between
// bullish and bearish counts resolves to neutral.
func voteOutlook(directions ...Direction) models.Outlook {
	bullish, bearish := 0, 0
	for _, d := range directions {
		switch d {
		case DirectionBullish:
			bullish++
		case DirectionBearish:
			bearish++
		}
	}
	switch {
	case bullish > bearish:
		return models.OutlookBullish
	case bearish > bullish:
		return models.OutlookBearish
	default:
		return models.OutlookNeutral
	}
}

func actionForOutlook(outlook models.Outlook) models.TradingAction {
	switch outlook {
	case models.OutlookBullish:
		return models.ActionBuy
	case models.OutlookBearish:
		return models.ActionSell
	default:
		return models.ActionHold
	}
}

func positionForConfidence(avgConfidence float64) models.PositionSize {
	switch {
	case avgConfidence >= largePositionThreshold:
		return models.PositionLarge
	case avgConfidence >= mediumPositionThreshold:
		return models.PositionMedium
	default:
		return models.PositionSmall
	}
}

func meanConfidence(results ...*models.SpecialistResult) float64 {
	if len(results) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range results {
		if r != nil {
			sum += r.Confidence
		}
	}
	return sum / float64(len(results))
}

// collectList concatenates one list field across the specialists in fixed
// order, dropping blank entries and exact duplicates while preserving
// first-seen order.
func collectList(field func(*models.SpecialistResult) []string, results ...*models.SpecialistResult) []string {
	items := []string{}
	seen := map[string]bool{}
	for _, r := range results {
		if r == nil {
			continue
		}
		for _, item := range field(r) {
			if strings.TrimSpace(item) == "" || seen[item] {
				continue
			}
			seen[item] = true
			items = append(items, item)
		}
	}
	return items
}

// buildThesis joins the specialists' thesis texts in macro, technical,
// sentiment order with blank-line separators. A specialist without a thesis
// falls back to its detailed analysis text; specialists providing neither are
// skipped.
func buildThesis(results ...*models.SpecialistResult) string {
	parts := []string{}
	for _, r := range results {
		if r == nil {
			continue
		}
		t := strings.TrimSpace(r.InvestmentThesis)
		if t == "" {
			t = strings.TrimSpace(detailedAnalysisText(r))
		}
		if t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) == 0 {
		return defaultThesis
	}
	return strings.Join(parts, "\n\n")
}

func detailedAnalysisText(r *models.SpecialistResult) string {
	if text, ok := r.DetailedAnalysis["text"].(string); ok {
		return text
	}
	return ""
}

func resultSummary(r *models.SpecialistResult) string {
	if r == nil {
		return ""
	}
	return r.Summary
}

func roundTo(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}
