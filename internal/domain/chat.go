package domain

import "time"

// Message roles. Any role other than "user" is rendered as the assistant
// when building a transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn in a conversation. Timestamp is RFC 3339 and
// optional for client-supplied history.
type Message struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"ts,omitempty"`
}

// Conversation is a named, append-only message history.
type Conversation struct {
	ID      string    `json:"conversation_id"`
	Name    string    `json:"name"`
	History []Message `json:"history"`
}

// ConversationInfo is the listing view of a conversation, without history.
type ConversationInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Query          string    `json:"q" binding:"required"`
	History        []Message `json:"history,omitempty"`
	ConversationID string    `json:"conversation_id,omitempty"`
}

// AskResponse wraps the normalized answer.
type AskResponse struct {
	Answer AnswerResult `json:"answer"`
}

// SaveChatRequest is the body of POST /save_chat.
type SaveChatRequest struct {
	Name    string    `json:"name,omitempty"`
	History []Message `json:"history" binding:"required"`
}

// IngestResponse reports how many chunks were indexed.
type IngestResponse struct {
	Status string `json:"status"`
	Chunks int    `json:"chunks"`
}
