package services

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"secdocs/internal/models"
)

const classifierSystemPrompt = `Analyze this cybersecurity document and provide metadata in the following JSON format:
{
  "tags": string[],  // 3-5 relevant tags
  "category": string,  // One of: "best-practices", "frameworks", "incident-response", "compliance", "threat-intel"
  "summary": string,  // A 2-3 sentence summary
  "confidence": number  // Classification confidence 0-1
}`

const minClassifierTags = 3

// ClassifierService assigns category, tags and a summary to uploaded
// documents. The language model does the classification; when it returns
// fewer than three tags, keyword extraction fills the gap.
type ClassifierService struct {
	llm       LLMClient
	extractor *KeywordExtractor
	logger    *log.Logger
}

// NewClassifierService creates a new classifier service
func NewClassifierService(llm LLMClient, extractor *KeywordExtractor, logger *log.Logger) *ClassifierService {
	return &ClassifierService{
		llm:       llm,
		extractor: extractor,
		logger:    logger,
	}
}

// classification mirrors the model's JSON response; every field is treated
// as untrusted until validated.
type classification struct {
	Tags       []string `json:"tags"`
	Category   string   `json:"category"`
	Summary    string   `json:"summary"`
	Confidence float64  `json:"confidence"`
}

// Classify produces classification metadata for a document.
func (s *ClassifierService) Classify(ctx context.Context, title, content string) (*models.DocumentMetadata, error) {
	raw, err := s.llm.CompleteJSON(ctx, classifierSystemPrompt, content)
	if err != nil {
		return nil, NewFailure(FailureGeneration, "classify", "document classification failed", err)
	}

	var parsed classification
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, NewFailure(FailureMalformedResponse, "classify", "classifier returned malformed metadata", err)
	}

	metadata := &models.DocumentMetadata{
		Category: strings.ToLower(strings.TrimSpace(parsed.Category)),
		Tags:     normalizeTags(parsed.Tags),
		Summary:  strings.TrimSpace(parsed.Summary),
	}
	if !models.IsKnownCategory(metadata.Category) {
		s.logger.Printf("Classifier returned unknown category %q, using %q", parsed.Category, models.CategoryUncategorized)
		metadata.Category = models.CategoryUncategorized
	}

	if len(metadata.Tags) < minClassifierTags {
		metadata.Tags = s.enrichTags(title, content, metadata.Tags)
	}

	s.logger.Printf("Classified document %q: category=%s tags=%v confidence=%.2f",
		title, metadata.Category, metadata.Tags, parsed.Confidence)
	return metadata, nil
}

// enrichTags tops up a short tag list with extracted keywords. Extraction
// failures are logged and ignored; classification already succeeded.
func (s *ClassifierService) enrichTags(title, content string, tags []string) []string {
	keywords, err := s.extractor.Extract(title, content, 5)
	if err != nil {
		s.logger.Printf("Keyword extraction failed: %v", err)
		return tags
	}

	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		seen[tag] = true
	}
	for _, kw := range keywords {
		if len(tags) >= 5 {
			break
		}
		if !seen[kw] {
			tags = append(tags, kw)
			seen[kw] = true
		}
	}
	return tags
}

func normalizeTags(tags []string) []string {
	normalized := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		normalized = append(normalized, tag)
		seen[tag] = true
	}
	return normalized
}
