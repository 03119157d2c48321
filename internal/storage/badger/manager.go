package badger

import (
	"context"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/verdict/internal/common"
	"github.com/ternarybob/verdict/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db       *BadgerDB
	session  interfaces.SessionStorage
	cache    interfaces.CacheStorage
	analysis interfaces.AnalysisStorage
	logger   arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:       db,
		session:  NewSessionStorage(db, logger),
		cache:    NewCacheStorage(db, logger),
		analysis: NewAnalysisStorage(db, logger),
		logger:   logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// SessionStorage returns the Session storage interface
func (m *Manager) SessionStorage() interfaces.SessionStorage {
	return m.session
}

// CacheStorage returns the Cache storage interface
func (m *Manager) CacheStorage() interfaces.CacheStorage {
	return m.cache
}

// AnalysisStorage returns the Analysis storage interface
func (m *Manager) AnalysisStorage() interfaces.AnalysisStorage {
	return m.analysis
}

// Sweep removes expired sessions and cache entries left behind by lazy
// expiry. Failures on individual records are logged and skipped.
func (m *Manager) Sweep(ctx context.Context) error {
	sessions := 0
	if s, ok := m.session.(*SessionStorage); ok {
		sessions = s.sweepExpired(ctx)
	}
	entries := 0
	if c, ok := m.cache.(*CacheStorage); ok {
		entries = c.sweepExpired(ctx)
	}

	if sessions > 0 || entries > 0 {
		m.logger.Info().
			Int("sessions", sessions).
			Int("cache_entries", entries).
			Msg("Swept expired records")
	}
	return nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
