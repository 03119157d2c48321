package models

// AnalysisRequest describes a single analysis submission. Requests are
// immutable once submitted; the orchestrator derives everything else
// (fingerprint, enriched query, conversation updates) from this value.
type AnalysisRequest struct {
	Query          string    `json:"query" validate:"required,min=1"`
	AssetSymbol    string    `json:"asset_symbol" validate:"required,min=1,max=32"`
	Timeframe      Timeframe `json:"timeframe" validate:"omitempty"`
	SessionID      string    `json:"session_id,omitempty"`
	ConversationID string    `json:"conversation_id,omitempty"`
}

// HasConversation reports whether the request carries enough identity to
// participate in conversation memory. Both ids are required; a conversation
// id without a session is ignored.
func (r *AnalysisRequest) HasConversation() bool {
	return r.SessionID != "" && r.ConversationID != ""
}
