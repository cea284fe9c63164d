package services

import (
	"context"
	"log"
	"sync"
	"time"

	"secdocs/internal/models"
	"secdocs/internal/repositories"
)

// DefaultTopK is the number of documents retrieved per chat turn.
const DefaultTopK = 3

// defaultCallTimeout bounds each external provider call so a hung provider
// cannot stall a turn indefinitely.
const defaultCallTimeout = 30 * time.Second

// RetrievalResult carries the ranked documents for a query plus the
// improved query string for use in the generation prompt. It lives for one
// turn and is never persisted.
type RetrievalResult struct {
	Documents     []*models.Document
	ImprovedQuery string
}

// RetrievalService orchestrates the retrieval half of a chat turn: query
// improvement and embedding run concurrently, then the store is asked for
// the nearest documents.
type RetrievalService struct {
	llm         LLMClient
	improver    *QueryImprover
	docRepo     repositories.DocumentRepository
	logger      *log.Logger
	callTimeout time.Duration
}

// NewRetrievalService creates a new retrieval service
func NewRetrievalService(llm LLMClient, improver *QueryImprover, docRepo repositories.DocumentRepository, logger *log.Logger) *RetrievalService {
	return &RetrievalService{
		llm:         llm,
		improver:    improver,
		docRepo:     docRepo,
		logger:      logger,
		callTimeout: defaultCallTimeout,
	}
}

// Retrieve returns the k documents nearest to rawQuery along with the
// improved query string. The raw query text is embedded, not the improved
// one, so the vector search matches literal user intent while the improved
// text enriches only the prompt. If either concurrent call fails the whole
// retrieval fails; no partial result is returned.
func (s *RetrievalService) Retrieve(ctx context.Context, rawQuery string, k int) (*RetrievalResult, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	start := time.Now()

	var (
		wg        sync.WaitGroup
		embedding []float32
		improved  string
	)
	errChan := make(chan error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
		vec, err := s.llm.Embed(callCtx, rawQuery)
		if err != nil {
			errChan <- NewFailure(FailureEmbedding, "retrieve", "failed to embed query", err)
			return
		}
		embedding = vec
	}()
	go func() {
		defer wg.Done()
		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
		q, err := s.improver.Improve(callCtx, rawQuery)
		if err != nil {
			errChan <- err
			return
		}
		improved = q
	}()

	wg.Wait()
	close(errChan)

	for err := range errChan {
		s.logger.Printf("Retrieval failed for query %q: %v", rawQuery, err)
		return nil, NewFailure(FailureRetrieval, "retrieve", "retrieval failed", err)
	}

	docs, err := s.docRepo.NearestNeighbors(ctx, embedding, k)
	if err != nil {
		s.logger.Printf("Nearest-neighbor search failed: %v", err)
		return nil, NewFailure(FailureRetrieval, "retrieve", "similarity search failed", err)
	}

	s.logger.Printf("Retrieved %d documents in %.2fms (query: %q)",
		len(docs), time.Since(start).Seconds()*1000, rawQuery)

	return &RetrievalResult{
		Documents:     docs,
		ImprovedQuery: improved,
	}, nil
}
