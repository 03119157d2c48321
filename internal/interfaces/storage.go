package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/verdict/internal/models"
)

// SessionStorage persists conversation sessions keyed session:{session_id}.
// Every write resets the entry's expiry to the supplied TTL; reads treat
// expired entries as absent. Implementations must be safe for concurrent use.
type SessionStorage interface {
	// SaveSession writes the whole session object (write-through) with the
	// given TTL.
	SaveSession(ctx context.Context, session *models.ConversationSession, ttl time.Duration) error

	// GetSession retrieves a session by id. Returns ErrSessionNotFound when
	// absent or expired.
	GetSession(ctx context.Context, sessionID string) (*models.ConversationSession, error)

	// DeleteSession removes a session. Deleting an absent session is not an
	// error.
	DeleteSession(ctx context.Context, sessionID string) error

	// ListSessions returns all live sessions. Used by the expiry sweep.
	ListSessions(ctx context.Context) ([]*models.ConversationSession, error)
}

// CacheStorage maps request fingerprints to cached analyses with TTL.
// Values are content-addressed by fingerprint so concurrent writes of the
// same key are idempotent.
type CacheStorage interface {
	// GetCached returns the cached analysis for a fingerprint, or
	// ErrCacheMiss when absent or expired.
	GetCached(ctx context.Context, key string) (*models.Analysis, error)

	// SetCached stores an analysis under a fingerprint with the given TTL.
	SetCached(ctx context.Context, key string, analysis *models.Analysis, ttl time.Duration) error
}

// AnalysisStorage keeps the durable record of completed analyses, separate
// from the TTL-governed result cache.
type AnalysisStorage interface {
	SaveAnalysis(ctx context.Context, analysis *models.Analysis) error

	// GetAnalysis retrieves a persisted analysis by id. Returns
	// ErrAnalysisNotFound when unknown.
	GetAnalysis(ctx context.Context, id string) (*models.Analysis, error)

	// ListRecent returns up to limit analyses, most recent first.
	ListRecent(ctx context.Context, limit int) ([]*models.Analysis, error)
}

// StorageManager provides access to all storage interfaces behind one
// backend (Badger, or the in-memory fallback when the store cannot be
// opened).
type StorageManager interface {
	SessionStorage() SessionStorage
	CacheStorage() CacheStorage
	AnalysisStorage() AnalysisStorage

	// Sweep removes expired records left behind by lazy expiry. Best-effort;
	// a failure on one record does not abort the sweep.
	Sweep(ctx context.Context) error

	Close() error
}
