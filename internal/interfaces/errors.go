package interfaces

import "errors"

// Sentinel errors for the storage and conversation layers. Callers compare
// with errors.Is.
var (
	// ErrSessionNotFound is returned when a session is absent or expired.
	ErrSessionNotFound = errors.New("session not found")

	// ErrConversationNotFound is returned when a conversation id is unknown
	// within an existing session.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrCacheMiss is returned when no live cache entry exists for a
	// fingerprint.
	ErrCacheMiss = errors.New("cache miss")

	// ErrAnalysisNotFound is returned when a persisted analysis id is
	// unknown.
	ErrAnalysisNotFound = errors.New("analysis not found")
)
