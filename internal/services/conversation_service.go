package services

import (
	"context"
	"log"
	"strings"

	"secdocs/internal/models"
	"secdocs/internal/repositories"
)

// ConversationService manages conversation lifecycle and history with
// owner checks applied on every operation.
type ConversationService struct {
	convRepo repositories.ConversationRepository
	logger   *log.Logger
}

// NewConversationService creates a new conversation service
func NewConversationService(convRepo repositories.ConversationRepository, logger *log.Logger) *ConversationService {
	return &ConversationService{
		convRepo: convRepo,
		logger:   logger,
	}
}

// Create starts a new conversation for the owner.
func (s *ConversationService) Create(ctx context.Context, ownerID int64, title string) (*models.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "New conversation"
	}

	conv, err := s.convRepo.Create(ctx, title, ownerID)
	if err != nil {
		return nil, NewFailure(FailureRetrieval, "create_conversation", "failed to create conversation", err)
	}
	s.logger.Printf("Created conversation %d for user %d", conv.ID, ownerID)
	return conv, nil
}

// List returns the owner's conversations, most recently updated first.
// A non-empty query keeps only conversations whose title contains it,
// case-insensitively.
func (s *ConversationService) List(ctx context.Context, ownerID int64, query string) ([]*models.Conversation, error) {
	convs, err := s.convRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, NewFailure(FailureRetrieval, "list_conversations", "failed to list conversations", err)
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return convs, nil
	}

	needle := strings.ToLower(query)
	matched := make([]*models.Conversation, 0, len(convs))
	for _, conv := range convs {
		if strings.Contains(strings.ToLower(conv.Title), needle) {
			matched = append(matched, conv)
		}
	}
	return matched, nil
}

// Messages returns a conversation's history in creation order after
// verifying ownership.
func (s *ConversationService) Messages(ctx context.Context, ownerID, conversationID int64) ([]*models.Message, error) {
	if err := s.checkOwnership(ctx, ownerID, conversationID, "list_messages"); err != nil {
		return nil, err
	}

	msgs, err := s.convRepo.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, NewFailure(FailureRetrieval, "list_messages", "failed to list messages", err)
	}
	return msgs, nil
}

// Delete removes a conversation and its messages after verifying ownership.
func (s *ConversationService) Delete(ctx context.Context, ownerID, conversationID int64) error {
	if err := s.checkOwnership(ctx, ownerID, conversationID, "delete_conversation"); err != nil {
		return err
	}

	if err := s.convRepo.Delete(ctx, conversationID); err != nil {
		return NewFailure(FailureRetrieval, "delete_conversation", "failed to delete conversation", err)
	}
	s.logger.Printf("Deleted conversation %d", conversationID)
	return nil
}

func (s *ConversationService) checkOwnership(ctx context.Context, ownerID, conversationID int64, op string) error {
	conv, err := s.convRepo.Get(ctx, conversationID)
	if err != nil {
		if repositories.IsConversationNotFound(err) {
			return NewFailure(FailureNotFound, op, "conversation not found", err)
		}
		return NewFailure(FailureRetrieval, op, "failed to load conversation", err)
	}
	if conv.OwnerID != ownerID {
		return NewFailure(FailureAuth, op, "conversation belongs to another user", nil)
	}
	return nil
}
