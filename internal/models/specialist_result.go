package models

import "fmt"

// Specialist agent names. These are fixed identifiers used in synthesis
// ordering (macro, technical, sentiment) and in persisted analyses.
const (
	AgentMacro     = "Macro Analyst"
	AgentTechnical = "Technical Analyst"
	AgentSentiment = "Sentiment Analyst"
)

// SpecialistResult is the normalized output shape every specialist must emit.
// Normalization happens once at the specialist boundary; the synthesizer
// never inspects provider-specific payloads. Results are never mutated after
// creation.
type SpecialistResult struct {
	AgentName  string  `json:"agent_name"`
	Summary    string  `json:"summary"`
	Confidence float64 `json:"confidence"`

	// Signal is the specialist's explicit directional statement (an outlook,
	// trend, or sentiment label). When empty, direction is classified from
	// the summary text instead.
	Signal string `json:"signal,omitempty"`

	KeyFactors      []string `json:"key_factors,omitempty"`
	BullishFactors  []string `json:"bullish_factors,omitempty"`
	BearishFactors  []string `json:"bearish_factors,omitempty"`
	CriticalFactors []string `json:"critical_factors,omitempty"`
	KeyRisks        []string `json:"key_risks,omitempty"`
	RiskMitigations []string `json:"risk_mitigations,omitempty"`

	InvestmentThesis string `json:"investment_thesis,omitempty"`

	DetailedAnalysis map[string]interface{} `json:"detailed_analysis,omitempty"`
	DataSources      map[string]interface{} `json:"data_sources,omitempty"`

	// Degraded marks a placeholder produced when the specialist failed.
	Degraded bool `json:"degraded,omitempty"`
}

// DegradedResult builds the placeholder substituted when a specialist fails.
// It carries the error text as the summary and zero confidence so the
// synthesis mean reflects the failure.
func DegradedResult(agentName string, err error) *SpecialistResult {
	summary := fmt.Sprintf("%s analysis failed", agentName)
	if err != nil {
		summary = fmt.Sprintf("%s analysis failed: %v", agentName, err)
	}
	return &SpecialistResult{
		AgentName:  agentName,
		Summary:    summary,
		Confidence: 0.0,
		Degraded:   true,
	}
}
