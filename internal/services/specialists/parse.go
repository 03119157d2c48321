// Package specialists implements the three analysis ports (macro, technical,
// sentiment). Each specialist gathers its own external data, asks the LLM
// for a structured judgment and normalizes the payload into a
// SpecialistResult at this boundary.
package specialists

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
)

// specialistPayload is the JSON shape every specialist prompt demands.
// Provider-specific direction fields map onto Signal during normalization.
type specialistPayload struct {
	Summary          string   `json:"summary"`
	Outlook          string   `json:"outlook,omitempty"`
	Trend            string   `json:"trend,omitempty"`
	SentimentLabel   string   `json:"sentiment_label,omitempty"`
	KeyFactors       []string `json:"key_factors,omitempty"`
	BullishFactors   []string `json:"bullish_factors,omitempty"`
	BearishFactors   []string `json:"bearish_factors,omitempty"`
	Risks            []string `json:"risks,omitempty"`
	RiskMitigations  []string `json:"risk_mitigations,omitempty"`
	InvestmentThesis string   `json:"investment_thesis,omitempty"`
	Confidence       float64  `json:"confidence"`
}

// parsePayload decodes a specialist response, stripping markdown fences the
// model sometimes wraps around the JSON despite instructions. Malformed
// payloads are logged with the raw text for diagnosis.
func parsePayload(raw string, logger arbor.ILogger) (*specialistPayload, error) {
	cleaned := stripFences(raw)

	var payload specialistPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		logger.Warn().
			Str("payload", raw).
			Err(err).
			Msg("Malformed specialist payload")
		return nil, fmt.Errorf("malformed specialist payload: %w", err)
	}

	if strings.TrimSpace(payload.Summary) == "" {
		logger.Warn().
			Str("payload", raw).
			Msg("Specialist payload missing summary")
		return nil, fmt.Errorf("specialist payload missing summary")
	}

	payload.Confidence = clampConfidence(payload.Confidence)
	return &payload, nil
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag.
func stripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func clampConfidence(confidence float64) float64 {
	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}
