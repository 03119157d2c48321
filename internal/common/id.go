package common

import (
	"github.com/google/uuid"
)

// NewSessionID generates a unique session identifier
func NewSessionID() string {
	return uuid.New().String()
}

// NewConversationID generates a unique conversation identifier
func NewConversationID() string {
	return uuid.New().String()
}

// NewMessageID generates a unique message ID with the "msg_" prefix
// Format: msg_<uuid>
func NewMessageID() string {
	return "msg_" + uuid.New().String()
}

// NewAnalysisID generates a unique analysis ID with the "analysis_" prefix
// Format: analysis_<uuid>
func NewAnalysisID() string {
	return "analysis_" + uuid.New().String()
}
