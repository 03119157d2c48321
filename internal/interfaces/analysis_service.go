package interfaces

import (
	"context"

	"github.com/ternarybob/verdict/internal/models"
)

// AnalysisService is the produced boundary to callers: one synchronous
// operation returning a complete analysis. Specialist failures surface as
// degraded sections inside the result, never as an error; an error return
// means the request itself was malformed or no synthesis could even be
// attempted.
type AnalysisService interface {
	Analyze(ctx context.Context, req *models.AnalysisRequest) (*models.Analysis, error)

	// Flush blocks until background persistence (conversation writes, cache
	// writes) from previously returned analyses has settled. Used by tests
	// and shutdown.
	Flush()
}
