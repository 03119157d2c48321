package interfaces

import (
	"context"

	"github.com/ternarybob/verdict/internal/models"
)

// ResultCache deduplicates identical analysis requests. Lookups and writes
// are keyed by the request fingerprint; entries expire on a fixed TTL owned
// by the implementation.
type ResultCache interface {
	// Get returns the cached analysis for a request, or ErrCacheMiss.
	Get(ctx context.Context, req *models.AnalysisRequest, contextAssetSymbol string) (*models.Analysis, error)

	// Put stores a completed analysis under the request's fingerprint.
	Put(ctx context.Context, req *models.AnalysisRequest, contextAssetSymbol string, analysis *models.Analysis) error
}
