package repositories

import (
	"context"
	"errors"

	"secdocs/internal/models"
)

// ConversationRepository defines the interface for conversation and message
// persistence. Messages are append-only and replayed in creation order.
type ConversationRepository interface {
	// Create starts a new conversation for an owner.
	Create(ctx context.Context, title string, ownerID int64) (*models.Conversation, error)

	// Get retrieves a conversation by ID.
	Get(ctx context.Context, id int64) (*models.Conversation, error)

	// ListByOwner returns the owner's conversations, most recently
	// updated first.
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Conversation, error)

	// Delete removes a conversation and all of its messages.
	Delete(ctx context.Context, id int64) error

	// AppendMessage assigns an ID and creation time, appends the message,
	// and advances the conversation's UpdatedAt.
	AppendMessage(ctx context.Context, msg *models.Message) (*models.Message, error)

	// ListMessages returns a conversation's messages in creation order.
	ListMessages(ctx context.Context, conversationID int64) ([]*models.Message, error)

	Ping(ctx context.Context) error
	Close() error
}

// ConversationRepositoryError represents errors from the conversation repository
type ConversationRepositoryError struct {
	Operation      string
	ConversationID int64
	Err            error
	Message        string
	NotFound       bool
}

func (e *ConversationRepositoryError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Operation + ": " + e.Err.Error()
	}
	return e.Operation + ": unknown error"
}

func (e *ConversationRepositoryError) Unwrap() error {
	return e.Err
}

// NewConversationRepositoryError creates a new conversation repository error
func NewConversationRepositoryError(operation string, conversationID int64, err error, message string) *ConversationRepositoryError {
	return &ConversationRepositoryError{
		Operation:      operation,
		ConversationID: conversationID,
		Err:            err,
		Message:        message,
	}
}

// ConversationNotFoundError reports a lookup for a conversation that does not exist
func ConversationNotFoundError(operation string, conversationID int64) error {
	return &ConversationRepositoryError{
		Operation:      operation,
		ConversationID: conversationID,
		Message:        "conversation not found",
		NotFound:       true,
	}
}

// IsConversationNotFound reports whether err is a conversation-not-found error
func IsConversationNotFound(err error) bool {
	var repoErr *ConversationRepositoryError
	return errors.As(err, &repoErr) && repoErr.NotFound
}
