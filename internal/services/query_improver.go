package services

import (
	"context"
	"encoding/json"
	"strings"
)

const improverSystemPrompt = `You are a cybersecurity expert helping to improve search queries.
Expand this query to include relevant cybersecurity terminology and concepts.
Respond with JSON in the format: {"query": "improved search query"}`

// QueryImprover rewrites a raw user question into a domain-enriched query
// used in the generation prompt. The improved text never feeds the vector
// search; the raw query is embedded to preserve literal user intent.
type QueryImprover struct {
	llm LLMClient
}

// NewQueryImprover creates a new query improver
func NewQueryImprover(llm LLMClient) *QueryImprover {
	return &QueryImprover{llm: llm}
}

// Improve expands rawQuery with domain terminology. It fails only on
// provider or parse errors; ambiguity in the query itself still yields a
// usable string.
func (q *QueryImprover) Improve(ctx context.Context, rawQuery string) (string, error) {
	raw, err := q.llm.CompleteJSON(ctx, improverSystemPrompt, rawQuery)
	if err != nil {
		return "", NewFailure(FailureGeneration, "improve_query", "query improvement failed", err)
	}

	var parsed struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return "", NewFailure(FailureMalformedResponse, "improve_query", "query improver returned malformed response", err)
	}

	improved := strings.TrimSpace(parsed.Query)
	if improved == "" {
		return "", NewFailure(FailureMalformedResponse, "improve_query", "query improver returned an empty query", nil)
	}
	return improved, nil
}
