// Package memory provides an in-memory StorageManager used when the Badger
// store cannot be opened. TTL enforcement is best-effort within process
// lifetime; nothing survives a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/verdict/internal/interfaces"
	"github.com/ternarybob/verdict/internal/models"
)

type sessionEntry struct {
	session   models.ConversationSession
	expiresAt time.Time
}

type cacheEntry struct {
	analysis  models.Analysis
	expiresAt time.Time
}

// Manager implements StorageManager with in-process maps.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]sessionEntry
	cache    map[string]cacheEntry
	analyses map[string]models.Analysis
	order    []string // analysis ids in insertion order
	logger   arbor.ILogger
}

// NewManager creates a new in-memory storage manager
func NewManager(logger arbor.ILogger) interfaces.StorageManager {
	logger.Info().Msg("In-memory storage manager initialized")
	return &Manager{
		sessions: make(map[string]sessionEntry),
		cache:    make(map[string]cacheEntry),
		analyses: make(map[string]models.Analysis),
		logger:   logger,
	}
}

func (m *Manager) SessionStorage() interfaces.SessionStorage   { return m }
func (m *Manager) CacheStorage() interfaces.CacheStorage       { return m }
func (m *Manager) AnalysisStorage() interfaces.AnalysisStorage { return m }

// SaveSession writes the whole session object with a fresh expiry. The
// stored copy is detached from the caller's so later mutations of either
// side do not race.
func (m *Manager) SaveSession(ctx context.Context, session *models.ConversationSession, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.SessionID] = sessionEntry{
		session:   *session.Clone(),
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (m *Manager) GetSession(ctx context.Context, sessionID string) (*models.ConversationSession, error) {
	m.mu.RLock()
	entry, ok := m.sessions[sessionID]
	m.mu.RUnlock()

	if !ok {
		return nil, interfaces.ErrSessionNotFound
	}
	if time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.sessions, sessionID)
		m.mu.Unlock()
		return nil, interfaces.ErrSessionNotFound
	}

	return entry.session.Clone(), nil
}

func (m *Manager) DeleteSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

func (m *Manager) ListSessions(ctx context.Context) ([]*models.ConversationSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now()
	sessions := make([]*models.ConversationSession, 0, len(m.sessions))
	for _, entry := range m.sessions {
		if now.After(entry.expiresAt) {
			continue
		}
		sessions = append(sessions, entry.session.Clone())
	}
	return sessions, nil
}

func (m *Manager) GetCached(ctx context.Context, key string) (*models.Analysis, error) {
	m.mu.RLock()
	entry, ok := m.cache[key]
	m.mu.RUnlock()

	if !ok {
		return nil, interfaces.ErrCacheMiss
	}
	if time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.cache, key)
		m.mu.Unlock()
		return nil, interfaces.ErrCacheMiss
	}

	analysis := entry.analysis
	return &analysis, nil
}

func (m *Manager) SetCached(ctx context.Context, key string, analysis *models.Analysis, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[key] = cacheEntry{
		analysis:  *analysis,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (m *Manager) SaveAnalysis(ctx context.Context, analysis *models.Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.analyses[analysis.ID]; !exists {
		m.order = append(m.order, analysis.ID)
	}
	m.analyses[analysis.ID] = *analysis
	return nil
}

func (m *Manager) GetAnalysis(ctx context.Context, id string) (*models.Analysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	analysis, ok := m.analyses[id]
	if !ok {
		return nil, interfaces.ErrAnalysisNotFound
	}
	return &analysis, nil
}

func (m *Manager) ListRecent(ctx context.Context, limit int) ([]*models.Analysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []*models.Analysis{}
	for i := len(m.order) - 1; i >= 0; i-- {
		if limit > 0 && len(result) >= limit {
			break
		}
		analysis := m.analyses[m.order[i]]
		result = append(result, &analysis)
	}
	return result, nil
}

// Sweep removes expired sessions and cache entries.
func (m *Manager) Sweep(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	sessions, entries := 0, 0
	for id, entry := range m.sessions {
		if now.After(entry.expiresAt) {
			delete(m.sessions, id)
			sessions++
		}
	}
	for key, entry := range m.cache {
		if now.After(entry.expiresAt) {
			delete(m.cache, key)
			entries++
		}
	}

	if sessions > 0 || entries > 0 {
		m.logger.Info().
			Int("sessions", sessions).
			Int("cache_entries", entries).
			Msg("Swept expired records")
	}
	return nil
}

func (m *Manager) Close() error {
	return nil
}

// Ensure Manager implements all storage interfaces
var (
	_ interfaces.StorageManager  = (*Manager)(nil)
	_ interfaces.SessionStorage  = (*Manager)(nil)
	_ interfaces.CacheStorage    = (*Manager)(nil)
	_ interfaces.AnalysisStorage = (*Manager)(nil)
)
