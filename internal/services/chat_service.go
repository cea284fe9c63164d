package services

import (
	"context"
	"log"
	"strings"

	"secdocs/internal/models"
	"secdocs/internal/repositories"
)

// TurnPhase names a step of the chat turn state machine.
type TurnPhase string

const (
	PhaseValidating TurnPhase = "validating"
	PhaseRetrieving TurnPhase = "retrieving"
	PhaseGenerating TurnPhase = "generating"
	PhasePersisting TurnPhase = "persisting"
	PhaseResponded  TurnPhase = "responded"
	PhaseErrored    TurnPhase = "errored"
)

// TurnTracer observes phase transitions of a chat turn. It keeps tracing
// out of the business logic so tests run without a tracing backend.
type TurnTracer interface {
	OnPhase(conversationID int64, phase TurnPhase)
}

// LogTracer traces turn phases to a standard logger.
type LogTracer struct {
	Logger *log.Logger
}

func (t *LogTracer) OnPhase(conversationID int64, phase TurnPhase) {
	t.Logger.Printf("conversation %d: %s", conversationID, phase)
}

// NopTracer discards all phase transitions.
type NopTracer struct{}

func (NopTracer) OnPhase(int64, TurnPhase) {}

// ChatService runs one chat turn end to end: validate, retrieve, generate,
// persist, respond. A failure after validation still persists the user's
// message plus an error-role message, so conversation history never
// silently loses a turn.
type ChatService struct {
	retrieval *RetrievalService
	answers   *AnswerService
	convRepo  repositories.ConversationRepository
	tracer    TurnTracer
	logger    *log.Logger
	topK      int
}

// NewChatService creates a new chat service
func NewChatService(
	retrieval *RetrievalService,
	answers *AnswerService,
	convRepo repositories.ConversationRepository,
	tracer TurnTracer,
	logger *log.Logger,
	topK int,
) *ChatService {
	if tracer == nil {
		tracer = NopTracer{}
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &ChatService{
		retrieval: retrieval,
		answers:   answers,
		convRepo:  convRepo,
		tracer:    tracer,
		logger:    logger,
		topK:      topK,
	}
}

// Chat executes a turn for ownerID in the given conversation and returns
// the persisted assistant message with its sources.
func (s *ChatService) Chat(ctx context.Context, ownerID, conversationID int64, message string) (*models.ChatResponse, error) {
	// Validating
	s.tracer.OnPhase(conversationID, PhaseValidating)
	message = strings.TrimSpace(message)
	if message == "" {
		s.tracer.OnPhase(conversationID, PhaseErrored)
		return nil, NewFailure(FailureValidation, "chat", "message is required", nil)
	}

	conv, err := s.convRepo.Get(ctx, conversationID)
	if err != nil {
		s.tracer.OnPhase(conversationID, PhaseErrored)
		if repositories.IsConversationNotFound(err) {
			return nil, NewFailure(FailureNotFound, "chat", "conversation not found", err)
		}
		return nil, NewFailure(FailureRetrieval, "chat", "failed to load conversation", err)
	}
	if conv.OwnerID != ownerID {
		s.tracer.OnPhase(conversationID, PhaseErrored)
		return nil, NewFailure(FailureAuth, "chat", "conversation belongs to another user", nil)
	}

	// The user's message is persisted before any provider call so it
	// survives a downstream failure.
	if _, err := s.convRepo.AppendMessage(ctx, &models.Message{
		ConversationID: conversationID,
		Role:           models.RoleUser,
		Content:        message,
	}); err != nil {
		s.tracer.OnPhase(conversationID, PhaseErrored)
		return nil, NewFailure(FailureRetrieval, "chat", "failed to persist message", err)
	}

	// Retrieving
	s.tracer.OnPhase(conversationID, PhaseRetrieving)
	result, err := s.retrieval.Retrieve(ctx, message, s.topK)
	if err != nil {
		return nil, s.failTurn(ctx, conversationID, err)
	}

	// Generating
	s.tracer.OnPhase(conversationID, PhaseGenerating)
	contextBlock := AssembleContext(result.Documents)
	answer, err := s.answers.Generate(ctx, message, result.ImprovedQuery, contextBlock)
	if err != nil {
		return nil, s.failTurn(ctx, conversationID, err)
	}

	// Persisting
	s.tracer.OnPhase(conversationID, PhasePersisting)
	sources := sourcesFromDocuments(result.Documents)
	assistantMsg, err := s.convRepo.AppendMessage(ctx, &models.Message{
		ConversationID: conversationID,
		Role:           models.RoleAssistant,
		Content:        answer,
		Sources:        sources,
	})
	if err != nil {
		s.tracer.OnPhase(conversationID, PhaseErrored)
		return nil, NewFailure(FailureGeneration, "chat", "failed to persist assistant message", err)
	}

	s.tracer.OnPhase(conversationID, PhaseResponded)
	return &models.ChatResponse{
		Message: assistantMsg,
		Sources: sources,
	}, nil
}

// failTurn records a failed turn as an error-role message and returns the
// original failure. The error message persists best-effort: a second
// storage failure is logged, not raised over the first.
func (s *ChatService) failTurn(ctx context.Context, conversationID int64, cause error) error {
	s.tracer.OnPhase(conversationID, PhaseErrored)
	s.logger.Printf("Chat turn failed for conversation %d: %v", conversationID, cause)

	if _, err := s.convRepo.AppendMessage(ctx, &models.Message{
		ConversationID: conversationID,
		Role:           models.RoleError,
		Content:        UserMessage(cause),
	}); err != nil {
		s.logger.Printf("Failed to persist error message for conversation %d: %v", conversationID, err)
	}
	return cause
}

// sourcesFromDocuments projects retrieved documents to citation metadata.
// Content is deliberately excluded to keep message rows small.
func sourcesFromDocuments(docs []*models.Document) []models.SourceRef {
	sources := make([]models.SourceRef, len(docs))
	for i, doc := range docs {
		sources[i] = models.SourceRef{
			ID:       doc.ID,
			Title:    doc.Title,
			Category: doc.CategoryOrDefault(),
			Tags:     doc.Metadata.Tags,
		}
	}
	return sources
}
