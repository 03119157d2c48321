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

// sessionRecord wraps a session with its expiry. Badger has no per-record
// TTL through badgerhold, so expiry is enforced lazily on read and by the
// periodic sweep.
type sessionRecord struct {
	Key       string `badgerhold:"key"`
	Session   models.ConversationSession
	ExpiresAt time.Time
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}

// SessionStorage implements the SessionStorage interface for Badger
type SessionStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSessionStorage creates a new SessionStorage instance
func NewSessionStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SessionStorage {
	return &SessionStorage{
		db:     db,
		logger: logger,
	}
}

// SaveSession writes the whole session object with a fresh expiry.
func (s *SessionStorage) SaveSession(ctx context.Context, session *models.ConversationSession, ttl time.Duration) error {
	if session.SessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	record := sessionRecord{
		Key:       sessionKey(session.SessionID),
		Session:   *session,
		ExpiresAt: time.Now().Add(ttl),
	}

	if err := s.db.Store().Upsert(record.Key, &record); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// GetSession retrieves a session, treating expired records as absent.
func (s *SessionStorage) GetSession(ctx context.Context, sessionID string) (*models.ConversationSession, error) {
	var record sessionRecord
	err := s.db.Store().Get(sessionKey(sessionID), &record)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if time.Now().After(record.ExpiresAt) {
		if err := s.db.Store().Delete(record.Key, &sessionRecord{}); err != nil && err != badgerhold.ErrNotFound {
			s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to delete expired session")
		}
		return nil, interfaces.ErrSessionNotFound
	}

	return &record.Session, nil
}

// DeleteSession removes a session. Deleting an absent session is not an error.
func (s *SessionStorage) DeleteSession(ctx context.Context, sessionID string) error {
	err := s.db.Store().Delete(sessionKey(sessionID), &sessionRecord{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ListSessions returns all unexpired sessions.
func (s *SessionStorage) ListSessions(ctx context.Context) ([]*models.ConversationSession, error) {
	var records []sessionRecord
	if err := s.db.Store().Find(&records, nil); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	now := time.Now()
	sessions := make([]*models.ConversationSession, 0, len(records))
	for i := range records {
		if now.After(records[i].ExpiresAt) {
			continue
		}
		session := records[i].Session
		sessions = append(sessions, &session)
	}
	return sessions, nil
}

// sweepExpired deletes sessions past their expiry. Returns the number removed.
func (s *SessionStorage) sweepExpired(ctx context.Context) int {
	var records []sessionRecord
	if err := s.db.Store().Find(&records, badgerhold.Where("ExpiresAt").Lt(time.Now())); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to find expired sessions")
		return 0
	}

	removed := 0
	for _, record := range records {
		if err := s.db.Store().Delete(record.Key, &sessionRecord{}); err != nil && err != badgerhold.ErrNotFound {
			s.logger.Warn().Err(err).Str("key", record.Key).Msg("Failed to delete expired session")
			continue
		}
		removed++
	}
	return removed
}
