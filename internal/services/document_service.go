package services

import (
	"context"
	"log"
	"time"

	"secdocs/internal/models"
	"secdocs/internal/repositories"
)

// DocumentService handles document ingestion and management: normalize,
// classify, embed, store.
type DocumentService struct {
	llm         LLMClient
	classifier  *ClassifierService
	docRepo     repositories.DocumentRepository
	logger      *log.Logger
	callTimeout time.Duration
}

// NewDocumentService creates a new document service
func NewDocumentService(
	llm LLMClient,
	classifier *ClassifierService,
	docRepo repositories.DocumentRepository,
	logger *log.Logger,
) *DocumentService {
	return &DocumentService{
		llm:         llm,
		classifier:  classifier,
		docRepo:     docRepo,
		logger:      logger,
		callTimeout: defaultCallTimeout,
	}
}

// Upload ingests a new document: the content is normalized, classified,
// embedded and stored. The full original content is embedded so retrieval
// sees the same text generation will quote.
func (s *DocumentService) Upload(ctx context.Context, ownerID int64, title, content string) (*models.Document, error) {
	title = models.NormalizeContent(title)
	content = models.NormalizeContent(content)
	if title == "" {
		return nil, NewFailure(FailureValidation, "upload", "title is required", nil)
	}
	if content == "" {
		return nil, NewFailure(FailureValidation, "upload", "content is empty after normalization", nil)
	}

	metadata, err := s.classifier.Classify(ctx, title, content)
	if err != nil {
		return nil, err
	}

	embedCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	embedding, err := s.llm.Embed(embedCtx, content)
	if err != nil {
		return nil, NewFailure(FailureEmbedding, "upload", "failed to embed document", err)
	}

	doc, err := s.docRepo.Insert(ctx, &models.Document{
		Title:     title,
		Content:   content,
		Embedding: embedding,
		Metadata:  *metadata,
		OwnerID:   ownerID,
	})
	if err != nil {
		if repositories.IsInvalidDocument(err) {
			return nil, NewFailure(FailureValidation, "upload", err.Error(), err)
		}
		return nil, NewFailure(FailureRetrieval, "upload", "failed to store document", err)
	}

	s.logger.Printf("Uploaded document %d (%q, category=%s, %d chars)",
		doc.ID, doc.Title, doc.Metadata.Category, len(doc.Content))
	return doc, nil
}

// List returns all stored documents.
func (s *DocumentService) List(ctx context.Context) ([]*models.Document, error) {
	docs, err := s.docRepo.List(ctx)
	if err != nil {
		return nil, NewFailure(FailureRetrieval, "list", "failed to list documents", err)
	}
	return docs, nil
}

// Delete removes a document. Repeated deletes are not an error.
func (s *DocumentService) Delete(ctx context.Context, id int64) error {
	if err := s.docRepo.Delete(ctx, id); err != nil {
		return NewFailure(FailureRetrieval, "delete", "failed to delete document", err)
	}
	s.logger.Printf("Deleted document %d", id)
	return nil
}

// UpdateTags replaces a document's tags, leaving the rest of its
// classification metadata untouched.
func (s *DocumentService) UpdateTags(ctx context.Context, id int64, tags []string) (*models.Document, error) {
	doc, err := s.docRepo.UpdateTags(ctx, id, normalizeTags(tags))
	if err != nil {
		if repositories.IsDocumentNotFound(err) {
			return nil, NewFailure(FailureNotFound, "update_tags", "document not found", err)
		}
		return nil, NewFailure(FailureRetrieval, "update_tags", "failed to update tags", err)
	}
	return doc, nil
}
