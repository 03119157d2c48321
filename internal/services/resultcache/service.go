// Package resultcache deduplicates identical analysis requests by mapping a
// request fingerprint to the completed analysis for a fixed TTL.
package resultcache

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/verdict/internal/interfaces"
	"github.com/ternarybob/verdict/internal/models"
)

// DefaultTTL is the cache entry lifetime when none is configured.
const DefaultTTL = 1800 * time.Second

// Service implements interfaces.ResultCache over a CacheStorage backend.
type Service struct {
	storage interfaces.CacheStorage
	ttl     time.Duration
	logger  arbor.ILogger
}

// NewService creates a new result cache service. A non-positive ttl falls
// back to DefaultTTL.
func NewService(storage interfaces.CacheStorage, ttl time.Duration, logger arbor.ILogger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		storage: storage,
		ttl:     ttl,
		logger:  logger,
	}
}

// Get returns the cached analysis for the request, or ErrCacheMiss.
func (s *Service) Get(ctx context.Context, req *models.AnalysisRequest, contextAssetSymbol string) (*models.Analysis, error) {
	key := Fingerprint(req, contextAssetSymbol)

	analysis, err := s.storage.GetCached(ctx, key)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("asset", req.AssetSymbol).
		Str("key", key).
		Msg("Returning cached analysis")

	return analysis, nil
}

// Put stores a completed analysis under the request's fingerprint.
func (s *Service) Put(ctx context.Context, req *models.AnalysisRequest, contextAssetSymbol string, analysis *models.Analysis) error {
	key := Fingerprint(req, contextAssetSymbol)

	if err := s.storage.SetCached(ctx, key, analysis, s.ttl); err != nil {
		return fmt.Errorf("failed to cache analysis: %w", err)
	}

	s.logger.Debug().
		Str("asset", req.AssetSymbol).
		Str("key", key).
		Msg("Cached analysis")

	return nil
}

// Ensure Service implements the ResultCache interface
var _ interfaces.ResultCache = (*Service)(nil)
