package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
)

const answerSystemPromptFormat = `You are a cybersecurity expert assistant. Use the following context from the knowledge base to inform your responses:

%s

If the context is empty or not relevant to the question, answer from general cybersecurity knowledge instead and say that the knowledge base did not cover the topic.
Respond with JSON in the format: {"answer": "your answer"}`

// AnswerService calls the language model with the assembled context and
// both query variants and parses the structured answer.
type AnswerService struct {
	llm         LLMClient
	logger      *log.Logger
	callTimeout time.Duration
}

// NewAnswerService creates a new answer service
func NewAnswerService(llm LLMClient, logger *log.Logger) *AnswerService {
	return &AnswerService{
		llm:         llm,
		logger:      logger,
		callTimeout: defaultCallTimeout,
	}
}

// Generate produces the assistant's answer. The improved query rides along
// in the user prompt as search context; the raw query stays the question
// being answered. A model response that cannot be parsed into the expected
// structure is fatal for the turn; there is no retry.
func (s *AnswerService) Generate(ctx context.Context, rawQuery, improvedQuery, contextBlock string) (string, error) {
	system := fmt.Sprintf(answerSystemPromptFormat, contextBlock)

	user := rawQuery
	if improvedQuery != "" && improvedQuery != rawQuery {
		user = fmt.Sprintf("%s\n\n(Expanded search terms: %s)", rawQuery, improvedQuery)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	raw, err := s.llm.CompleteJSON(callCtx, system, user)
	if err != nil {
		s.logger.Printf("Answer generation failed: %v", err)
		return "", NewFailure(FailureGeneration, "generate", "answer generation failed", err)
	}

	var parsed struct {
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return "", NewFailure(FailureMalformedResponse, "generate", "model returned malformed answer", err)
	}

	answer := strings.TrimSpace(parsed.Answer)
	if answer == "" {
		return "", NewFailure(FailureMalformedResponse, "generate", "model returned an empty answer", nil)
	}
	return answer, nil
}
