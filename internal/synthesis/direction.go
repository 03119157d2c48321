package synthesis

import (
	"strings"

	"github.com/ternarybob/verdict/internal/models"
)

// Direction is the per-specialist directional reading used by the outlook vote
type Direction string

const (
	DirectionBullish Direction = "bullish"
	DirectionBearish Direction = "bearish"
	DirectionNeutral Direction = "neutral"
)

var (
	bullishKeywords = []string{"bull", "positive", "up", "higher", "rally"}
	bearishKeywords = []string{"bear", "negative", "down", "lower", "sell"}
)

// ClassifyText maps free text to a direction via keyword matching.
// Bullish keywords are checked before bearish ones; first match wins.
func ClassifyText(text string) Direction {
	if text == "" {
		return DirectionNeutral
	}
	t := strings.ToLower(text)
	for _, k := range bullishKeywords {
		if strings.Contains(t, k) {
			return DirectionBullish
		}
	}
	for _, k := range bearishKeywords {
		if strings.Contains(t, k) {
			return DirectionBearish
		}
	}
	return DirectionNeutral
}

// SpecialistDirection reads a specialist's direction from its explicit signal
// field when present, falling back to classifying its summary text.
func SpecialistDirection(result *models.SpecialistResult) Direction {
	if result == nil {
		return DirectionNeutral
	}
	if result.Signal != "" {
		return ClassifyText(result.Signal)
	}
	return ClassifyText(result.Summary)
}
