package repositories

import (
	"context"
	"errors"

	"secdocs/internal/models"
)

// DocumentRepository defines the interface for document persistence and
// nearest-neighbor search. The contract is "the k closest documents by
// Euclidean distance", not "linear scan": implementations may index however
// they like as long as ordering and tie-breaking stay stable.
type DocumentRepository interface {
	// Insert assigns an ID and stores the document. Content must be
	// non-empty after normalization and the embedding must match the
	// store's fixed dimensionality.
	Insert(ctx context.Context, doc *models.Document) (*models.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, id int64) (*models.Document, error)

	// List returns all documents in insertion order.
	List(ctx context.Context) ([]*models.Document, error)

	// NearestNeighbors returns up to k documents ordered by ascending
	// Euclidean distance from the query embedding. Ties break by insertion
	// order. An empty store yields an empty slice, not an error.
	NearestNeighbors(ctx context.Context, embedding []float32, k int) ([]*models.Document, error)

	// Delete removes a document. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id int64) error

	// UpdateTags replaces metadata.tags, leaving category and summary
	// untouched. Fails when the ID does not exist.
	UpdateTags(ctx context.Context, id int64, tags []string) (*models.Document, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	Ping(ctx context.Context) error
	Close() error
}

// DocumentRepositoryError represents errors from the document repository
type DocumentRepositoryError struct {
	Operation  string
	DocumentID int64
	Err        error
	Message    string
	NotFound   bool
	Invalid    bool
}

func (e *DocumentRepositoryError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Operation + ": " + e.Err.Error()
	}
	return e.Operation + ": unknown error"
}

func (e *DocumentRepositoryError) Unwrap() error {
	return e.Err
}

// NewDocumentRepositoryError creates a new document repository error
func NewDocumentRepositoryError(operation string, documentID int64, err error, message string) *DocumentRepositoryError {
	return &DocumentRepositoryError{
		Operation:  operation,
		DocumentID: documentID,
		Err:        err,
		Message:    message,
	}
}

// DocumentNotFoundError reports a lookup for a document that does not exist
func DocumentNotFoundError(operation string, documentID int64) error {
	return &DocumentRepositoryError{
		Operation:  operation,
		DocumentID: documentID,
		Message:    "document not found",
		NotFound:   true,
	}
}

// InvalidDocumentError reports a document that failed validation
func InvalidDocumentError(operation string, reason string) error {
	return &DocumentRepositoryError{
		Operation: operation,
		Message:   "invalid document: " + reason,
		Invalid:   true,
	}
}

// IsDocumentNotFound reports whether err is a document-not-found error
func IsDocumentNotFound(err error) bool {
	var repoErr *DocumentRepositoryError
	return errors.As(err, &repoErr) && repoErr.NotFound
}

// IsInvalidDocument reports whether err is a document validation error
func IsInvalidDocument(err error) bool {
	var repoErr *DocumentRepositoryError
	return errors.As(err, &repoErr) && repoErr.Invalid
}
