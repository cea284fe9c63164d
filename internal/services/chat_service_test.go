package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"secdocs/internal/models"
	"secdocs/internal/repositories"
)

// recordingTracer captures the phase sequence of a turn
type recordingTracer struct {
	phases []TurnPhase
}

func (r *recordingTracer) OnPhase(_ int64, phase TurnPhase) {
	r.phases = append(r.phases, phase)
}

type chatFixture struct {
	llm      *MockLLMClient
	docRepo  *MockDocumentRepository
	convRepo *MockConversationRepository
	tracer   *recordingTracer
	svc      *ChatService
}

func newChatFixture() *chatFixture {
	llm := new(MockLLMClient)
	docRepo := new(MockDocumentRepository)
	convRepo := new(MockConversationRepository)
	tracer := &recordingTracer{}

	retrieval := NewRetrievalService(llm, NewQueryImprover(llm), docRepo, testLogger())
	answers := NewAnswerService(llm, testLogger())
	svc := NewChatService(retrieval, answers, convRepo, tracer, testLogger(), 3)

	return &chatFixture{
		llm:      llm,
		docRepo:  docRepo,
		convRepo: convRepo,
		tracer:   tracer,
		svc:      svc,
	}
}

func (f *chatFixture) conversation(id, ownerID int64) {
	f.convRepo.On("Get", mock.Anything, id).
		Return(&models.Conversation{ID: id, OwnerID: ownerID, Title: "t"}, nil)
}

// echoMessage makes AppendMessage return its input with an ID assigned
func (f *chatFixture) echoMessages() {
	f.convRepo.On("AppendMessage", mock.Anything, mock.AnythingOfType("*models.Message")).
		Return(&models.Message{ID: 100}, nil)
}

func appendedMessages(convRepo *MockConversationRepository) []*models.Message {
	var msgs []*models.Message
	for _, call := range convRepo.Calls {
		if call.Method == "AppendMessage" {
			msgs = append(msgs, call.Arguments.Get(1).(*models.Message))
		}
	}
	return msgs
}

func TestChatService_Chat(t *testing.T) {
	ctx := context.Background()

	t.Run("empty message is rejected before anything is persisted", func(t *testing.T) {
		f := newChatFixture()

		_, err := f.svc.Chat(ctx, 1, 10, "   ")
		assert.True(t, IsFailure(err, FailureValidation))
		f.convRepo.AssertNotCalled(t, "AppendMessage", mock.Anything, mock.Anything)
	})

	t.Run("unknown conversation", func(t *testing.T) {
		f := newChatFixture()
		f.convRepo.On("Get", mock.Anything, int64(10)).
			Return(nil, repositories.ConversationNotFoundError("get", 10))

		_, err := f.svc.Chat(ctx, 1, 10, "hello")
		assert.True(t, IsFailure(err, FailureNotFound))
	})

	t.Run("conversation owned by someone else", func(t *testing.T) {
		f := newChatFixture()
		f.conversation(10, 99)

		_, err := f.svc.Chat(ctx, 1, 10, "hello")
		assert.True(t, IsFailure(err, FailureAuth))
		f.convRepo.AssertNotCalled(t, "AppendMessage", mock.Anything, mock.Anything)
	})

	t.Run("successful turn persists user then assistant message", func(t *testing.T) {
		f := newChatFixture()
		f.conversation(10, 1)
		f.echoMessages()

		doc := &models.Document{
			ID:      7,
			Title:   "Ransomware playbook",
			Content: "Isolate affected hosts.",
			Metadata: models.DocumentMetadata{
				Category: models.CategoryIncidentResponse,
				Tags:     []string{"ransomware"},
			},
		}

		f.llm.On("Embed", mock.Anything, "ransomware response").Return([]float32{0.5}, nil)
		f.llm.On("CompleteJSON", mock.Anything, improverSystemPrompt, "ransomware response").
			Return(`{"query": "ransomware incident response containment"}`, nil)
		f.docRepo.On("NearestNeighbors", mock.Anything, []float32{0.5}, 3).
			Return([]*models.Document{doc}, nil)
		f.llm.On("CompleteJSON", mock.Anything, mock.MatchedBy(func(s string) bool {
			return s != improverSystemPrompt
		}), mock.Anything).Return(`{"answer": "Isolate affected hosts first."}`, nil)

		resp, err := f.svc.Chat(ctx, 1, 10, "ransomware response")
		require.NoError(t, err)
		require.Len(t, resp.Sources, 1)
		assert.Equal(t, int64(7), resp.Sources[0].ID)
		assert.Equal(t, models.CategoryIncidentResponse, resp.Sources[0].Category)

		msgs := appendedMessages(f.convRepo)
		require.Len(t, msgs, 2)
		assert.Equal(t, models.RoleUser, msgs[0].Role)
		assert.Equal(t, "ransomware response", msgs[0].Content)
		assert.Equal(t, models.RoleAssistant, msgs[1].Role)
		assert.Equal(t, "Isolate affected hosts first.", msgs[1].Content)
		require.Len(t, msgs[1].Sources, 1)
		assert.Equal(t, "Ransomware playbook", msgs[1].Sources[0].Title)

		assert.Equal(t, []TurnPhase{
			PhaseValidating, PhaseRetrieving, PhaseGenerating, PhasePersisting, PhaseResponded,
		}, f.tracer.phases)
	})

	t.Run("empty store still produces an answer with no sources", func(t *testing.T) {
		f := newChatFixture()
		f.conversation(10, 1)
		f.echoMessages()

		f.llm.On("Embed", mock.Anything, "what is xss").Return([]float32{0.5}, nil)
		f.llm.On("CompleteJSON", mock.Anything, improverSystemPrompt, "what is xss").
			Return(`{"query": "cross site scripting"}`, nil)
		f.docRepo.On("NearestNeighbors", mock.Anything, []float32{0.5}, 3).
			Return([]*models.Document{}, nil)
		f.llm.On("CompleteJSON", mock.Anything, mock.MatchedBy(func(s string) bool {
			return s != improverSystemPrompt
		}), mock.Anything).Return(`{"answer": "XSS is script injection into trusted pages."}`, nil)

		resp, err := f.svc.Chat(ctx, 1, 10, "what is xss")
		require.NoError(t, err)
		assert.NotNil(t, resp.Message)
		assert.Empty(t, resp.Sources)

		// The stored assistant message keeps an empty sources array rather
		// than dropping the field.
		msgs := appendedMessages(f.convRepo)
		require.Len(t, msgs, 2)
		assert.NotNil(t, msgs[1].Sources)
		encoded, err := json.Marshal(msgs[1])
		require.NoError(t, err)
		assert.Contains(t, string(encoded), `"sources":[]`)
	})

	t.Run("generation failure persists user then error message, no assistant", func(t *testing.T) {
		f := newChatFixture()
		f.conversation(10, 1)
		f.echoMessages()

		f.llm.On("Embed", mock.Anything, "q").Return([]float32{0.5}, nil)
		f.llm.On("CompleteJSON", mock.Anything, improverSystemPrompt, "q").
			Return(`{"query": "expanded"}`, nil)
		f.docRepo.On("NearestNeighbors", mock.Anything, []float32{0.5}, 3).
			Return([]*models.Document{}, nil)
		f.llm.On("CompleteJSON", mock.Anything, mock.MatchedBy(func(s string) bool {
			return s != improverSystemPrompt
		}), mock.Anything).Return("", errors.New("provider down"))

		_, err := f.svc.Chat(ctx, 1, 10, "q")
		require.Error(t, err)
		assert.True(t, IsFailure(err, FailureGeneration))

		msgs := appendedMessages(f.convRepo)
		require.Len(t, msgs, 2)
		assert.Equal(t, models.RoleUser, msgs[0].Role)
		assert.Equal(t, models.RoleError, msgs[1].Role)
		// The provider's error text must not leak into the stored message
		assert.NotContains(t, msgs[1].Content, "provider down")
		assert.Contains(t, f.tracer.phases, PhaseErrored)
	})

	t.Run("retrieval failure persists user then error message", func(t *testing.T) {
		f := newChatFixture()
		f.conversation(10, 1)
		f.echoMessages()

		f.llm.On("Embed", mock.Anything, "q").Return(nil, errors.New("embedding down"))
		f.llm.On("CompleteJSON", mock.Anything, improverSystemPrompt, "q").
			Return(`{"query": "expanded"}`, nil)

		_, err := f.svc.Chat(ctx, 1, 10, "q")
		require.Error(t, err)
		assert.True(t, IsFailure(err, FailureRetrieval))

		msgs := appendedMessages(f.convRepo)
		require.Len(t, msgs, 2)
		assert.Equal(t, models.RoleUser, msgs[0].Role)
		assert.Equal(t, models.RoleError, msgs[1].Role)
	})
}
