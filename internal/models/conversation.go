package models

import "time"

// Message roles. An "error" message records a failed assistant turn so the
// conversation history never silently loses a turn.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleError     = "error"
)

// Conversation groups an ordered sequence of messages for one user.
// UpdatedAt advances whenever a message is appended.
type Conversation struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SourceRef identifies a document cited by an assistant message.
// It carries identifying metadata only, never the document content.
type SourceRef struct {
	ID       int64    `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// Message is one append-only entry in a conversation. Replay order is
// creation order. Sources is set on assistant messages and stays an empty
// array, not absent, when retrieval found nothing.
type Message struct {
	ID             int64       `json:"id"`
	ConversationID int64       `json:"conversation_id"`
	Role           string      `json:"role"`
	Content        string      `json:"content"`
	Sources        []SourceRef `json:"sources"`
	CreatedAt      time.Time   `json:"created_at"`
}
