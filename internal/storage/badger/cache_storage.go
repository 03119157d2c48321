package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/verdict/internal/interfaces"
	"github.com/ternarybob/verdict/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// cacheRecord holds one cached analysis under its request fingerprint.
type cacheRecord struct {
	Key       string `badgerhold:"key"`
	Analysis  models.Analysis
	ExpiresAt time.Time
}

// CacheStorage implements the CacheStorage interface for Badger
type CacheStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewCacheStorage creates a new CacheStorage instance
func NewCacheStorage(db *BadgerDB, logger arbor.ILogger) interfaces.CacheStorage {
	return &CacheStorage{
		db:     db,
		logger: logger,
	}
}

// GetCached returns the cached analysis for a fingerprint, treating expired
// entries as misses.
func (s *CacheStorage) GetCached(ctx context.Context, key string) (*models.Analysis, error) {
	var record cacheRecord
	err := s.db.Store().Get(key, &record)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}

	if time.Now().After(record.ExpiresAt) {
		if err := s.db.Store().Delete(key, &cacheRecord{}); err != nil && err != badgerhold.ErrNotFound {
			s.logger.Warn().Err(err).Str("key", key).Msg("Failed to delete expired cache entry")
		}
		return nil, interfaces.ErrCacheMiss
	}

	return &record.Analysis, nil
}

// SetCached stores an analysis under a fingerprint with the given TTL.
func (s *CacheStorage) SetCached(ctx context.Context, key string, analysis *models.Analysis, ttl time.Duration) error {
	record := cacheRecord{
		Key:       key,
		Analysis:  *analysis,
		ExpiresAt: time.Now().Add(ttl),
	}

	if err := s.db.Store().Upsert(key, &record); err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}
	return nil
}

// sweepExpired deletes cache entries past their expiry. Returns the number removed.
func (s *CacheStorage) sweepExpired(ctx context.Context) int {
	var records []cacheRecord
	if err := s.db.Store().Find(&records, badgerhold.Where("ExpiresAt").Lt(time.Now())); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to find expired cache entries")
		return 0
	}

	removed := 0
	for _, record := range records {
		if err := s.db.Store().Delete(record.Key, &cacheRecord{}); err != nil && err != badgerhold.ErrNotFound {
			s.logger.Warn().Err(err).Str("key", record.Key).Msg("Failed to delete expired cache entry")
			continue
		}
		removed++
	}
	return removed
}
