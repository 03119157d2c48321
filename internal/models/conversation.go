package models

import "time"

// MessageRole identifies the sender of a conversation message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// IsValid reports whether the role is one of the known values.
func (r MessageRole) IsValid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// ConversationMessage is a single append-only turn in a conversation.
type ConversationMessage struct {
	ID        string                 `json:"id"`
	Role      MessageRole            `json:"role"`
	Content   string                 `json:"content"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// ConversationContext holds one conversation within a session: its message
// history plus the previous analysis outcome used for context injection on
// the next turn.
type ConversationContext struct {
	ConversationID string                `json:"conversation_id"`
	UserID         string                `json:"user_id"`
	AssetSymbol    string                `json:"asset_symbol"`
	Messages       []ConversationMessage `json:"messages"`

	PreviousOutlook    string  `json:"previous_outlook,omitempty"`
	PreviousConfidence float64 `json:"previous_confidence,omitempty"`
	PreviousAction     string  `json:"previous_action,omitempty"`

	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}

// ConversationSession groups the conversations of one user. Sessions expire
// after seven days of inactivity.
type ConversationSession struct {
	SessionID     string                          `json:"session_id" badgerhold:"key"`
	UserID        string                          `json:"user_id"`
	CreatedAt     time.Time                       `json:"created_at"`
	LastAccessed  time.Time                       `json:"last_accessed"`
	Conversations map[string]*ConversationContext `json:"conversations"`
}

// Clone returns a deep copy of the session. The copy shares no maps or
// slices with the original, so callers can mutate one without racing the
// other.
func (s *ConversationSession) Clone() *ConversationSession {
	if s == nil {
		return nil
	}
	out := *s
	if s.Conversations != nil {
		out.Conversations = make(map[string]*ConversationContext, len(s.Conversations))
		for id, conv := range s.Conversations {
			out.Conversations[id] = conv.clone()
		}
	}
	return &out
}

func (c *ConversationContext) clone() *ConversationContext {
	if c == nil {
		return nil
	}
	out := *c
	out.Messages = make([]ConversationMessage, len(c.Messages))
	copy(out.Messages, c.Messages)
	for i, msg := range c.Messages {
		if msg.Metadata == nil {
			continue
		}
		meta := make(map[string]interface{}, len(msg.Metadata))
		for k, v := range msg.Metadata {
			meta[k] = v
		}
		out.Messages[i].Metadata = meta
	}
	return &out
}

// GetOrCreateConversation returns the conversation with the given id,
// creating it when absent. The session's Conversations map is never nil
// after this call.
func (s *ConversationSession) GetOrCreateConversation(conversationID, assetSymbol string) *ConversationContext {
	if s.Conversations == nil {
		s.Conversations = make(map[string]*ConversationContext)
	}
	if conv, ok := s.Conversations[conversationID]; ok {
		return conv
	}
	now := time.Now().UTC()
	conv := &ConversationContext{
		ConversationID: conversationID,
		UserID:         s.UserID,
		AssetSymbol:    assetSymbol,
		Messages:       []ConversationMessage{},
		CreatedAt:      now,
		LastUpdated:    now,
	}
	s.Conversations[conversationID] = conv
	return conv
}

// Touch bumps the session's last-accessed time.
func (s *ConversationSession) Touch() {
	s.LastAccessed = time.Now().UTC()
}

// MessageCount returns the total messages across all conversations.
func (s *ConversationSession) MessageCount() int {
	total := 0
	for _, conv := range s.Conversations {
		total += len(conv.Messages)
	}
	return total
}

// SessionStats summarizes a session for reporting endpoints.
type SessionStats struct {
	SessionID          string              `json:"session_id"`
	UserID             string              `json:"user_id"`
	TotalConversations int                 `json:"total_conversations"`
	TotalMessages      int                 `json:"total_messages"`
	CreatedAt          time.Time           `json:"created_at"`
	LastAccessed       time.Time           `json:"last_accessed"`
	Conversations      []ConversationStats `json:"conversations"`
}

// ConversationStats summarizes one conversation inside SessionStats.
type ConversationStats struct {
	ConversationID string  `json:"conversation_id"`
	AssetSymbol    string  `json:"asset_symbol"`
	MessageCount   int     `json:"message_count"`
	LastOutlook    string  `json:"last_outlook,omitempty"`
	LastConfidence float64 `json:"last_confidence,omitempty"`
}
