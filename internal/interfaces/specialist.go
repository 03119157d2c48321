package interfaces

import (
	"context"

	"github.com/ternarybob/verdict/internal/models"
)

// AnalysisContext carries the request-scoped inputs a specialist needs
// beyond the query text itself.
type AnalysisContext struct {
	AssetSymbol string
	Timeframe   models.Timeframe

	// ConversationContext is the rendered prior-history block, empty for
	// first-turn requests.
	ConversationContext string
}

// Specialist is one pluggable analysis port. Implementations return a
// normalized SpecialistResult or an error; the orchestrator converts errors
// into degraded placeholder results rather than aborting the request.
type Specialist interface {
	// Name returns the fixed agent name used in synthesis ordering.
	Name() string

	// Analyze runs the specialist's analysis for a query.
	Analyze(ctx context.Context, query string, actx AnalysisContext) (*models.SpecialistResult, error)
}
