package repositories

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"secdocs/internal/models"
)

const (
	// Redis key layout
	documentKeyPrefix  = "document:"
	documentIndexKey   = "documents:index" // list of IDs in insertion order
	documentCounterKey = "documents:next_id"
)

// RedisDocumentRepository implements DocumentRepository on Redis. Documents
// are JSON blobs under document:{id}; documents:index is a list that
// preserves insertion order, which is also the distance tie-break order.
// Nearest-neighbor search is a linear scan with a bounded top-k selection,
// which holds up for a corpus of hundreds to low thousands.
type RedisDocumentRepository struct {
	client *redis.Client
	dim    int
}

// NewRedisDocumentRepository creates a Redis-backed document repository
// whose embeddings must all have dimensionality dim.
func NewRedisDocumentRepository(client *redis.Client, dim int) *RedisDocumentRepository {
	return &RedisDocumentRepository{
		client: client,
		dim:    dim,
	}
}

func documentKey(id int64) string {
	return documentKeyPrefix + strconv.FormatInt(id, 10)
}

// Insert stores a document, assigning its ID from a Redis counter.
func (r *RedisDocumentRepository) Insert(ctx context.Context, doc *models.Document) (*models.Document, error) {
	doc.Content = models.NormalizeContent(doc.Content)
	if doc.Content == "" {
		return nil, InvalidDocumentError("insert", "content is empty after normalization")
	}
	if len(doc.Embedding) != r.dim {
		return nil, InvalidDocumentError("insert",
			"embedding dimension "+strconv.Itoa(len(doc.Embedding))+" does not match store dimension "+strconv.Itoa(r.dim))
	}
	if doc.Metadata.Tags == nil {
		doc.Metadata.Tags = []string{}
	}

	id, err := r.client.Incr(ctx, documentCounterKey).Result()
	if err != nil {
		return nil, NewDocumentRepositoryError("insert", 0, err, "")
	}

	stored := *doc
	stored.ID = id
	stored.CreatedAt = time.Now().UTC()

	docJSON, err := json.Marshal(&stored)
	if err != nil {
		return nil, NewDocumentRepositoryError("insert", id, err, "failed to marshal document")
	}

	// Blob and index update must land together
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, documentKey(id), docJSON, 0)
	pipe.RPush(ctx, documentIndexKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, NewDocumentRepositoryError("insert", id, err, "failed to execute transaction")
	}

	return &stored, nil
}

// Get retrieves a document by ID.
func (r *RedisDocumentRepository) Get(ctx context.Context, id int64) (*models.Document, error) {
	docJSON, err := r.client.Get(ctx, documentKey(id)).Result()
	if err == redis.Nil {
		return nil, DocumentNotFoundError("get", id)
	}
	if err != nil {
		return nil, NewDocumentRepositoryError("get", id, err, "")
	}

	var doc models.Document
	if err := json.Unmarshal([]byte(docJSON), &doc); err != nil {
		return nil, NewDocumentRepositoryError("get", id, err, "failed to unmarshal document")
	}
	return &doc, nil
}

// List returns all documents in insertion order.
func (r *RedisDocumentRepository) List(ctx context.Context) ([]*models.Document, error) {
	ids, err := r.client.LRange(ctx, documentIndexKey, 0, -1).Result()
	if err != nil {
		return nil, NewDocumentRepositoryError("list", 0, err, "")
	}
	if len(ids) == 0 {
		return []*models.Document{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = documentKeyPrefix + id
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, NewDocumentRepositoryError("list", 0, err, "")
	}

	docs := make([]*models.Document, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Index entry without a blob: deleted concurrently, skip.
			continue
		}
		var doc models.Document
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, NewDocumentRepositoryError("list", 0, err, "failed to unmarshal document")
		}
		docs = append(docs, &doc)
	}
	return docs, nil
}

// NearestNeighbors returns up to k documents ordered by ascending Euclidean
// distance, ties broken by insertion order.
func (r *RedisDocumentRepository) NearestNeighbors(ctx context.Context, embedding []float32, k int) ([]*models.Document, error) {
	if len(embedding) != r.dim {
		return nil, InvalidDocumentError("nearest_neighbors",
			"query embedding dimension "+strconv.Itoa(len(embedding))+" does not match store dimension "+strconv.Itoa(r.dim))
	}

	docs, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return []*models.Document{}, nil
	}

	distances := make([]float64, len(docs))
	for i, doc := range docs {
		distances[i] = squaredEuclidean(embedding, doc.Embedding)
	}

	nearest := selectNearest(distances, k)
	result := make([]*models.Document, len(nearest))
	for i, idx := range nearest {
		result[i] = docs[idx]
	}
	return result, nil
}

// Delete removes a document. A missing ID is not an error.
func (r *RedisDocumentRepository) Delete(ctx context.Context, id int64) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, documentKey(id))
	pipe.LRem(ctx, documentIndexKey, 0, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return NewDocumentRepositoryError("delete", id, err, "failed to execute transaction")
	}
	return nil
}

// UpdateTags replaces metadata.tags in place; category and summary are
// preserved from the stored document.
func (r *RedisDocumentRepository) UpdateTags(ctx context.Context, id int64, tags []string) (*models.Document, error) {
	doc, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if tags == nil {
		tags = []string{}
	}
	doc.Metadata.Tags = tags

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, NewDocumentRepositoryError("update_tags", id, err, "failed to marshal document")
	}
	if err := r.client.Set(ctx, documentKey(id), docJSON, 0).Err(); err != nil {
		return nil, NewDocumentRepositoryError("update_tags", id, err, "")
	}
	return doc, nil
}

// Count returns the number of stored documents.
func (r *RedisDocumentRepository) Count(ctx context.Context) (int, error) {
	n, err := r.client.LLen(ctx, documentIndexKey).Result()
	if err != nil {
		return 0, NewDocumentRepositoryError("count", 0, err, "")
	}
	return int(n), nil
}

// Ping checks the Redis connection.
func (r *RedisDocumentRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close is a no-op; the shared client is closed by its owner.
func (r *RedisDocumentRepository) Close() error {
	return nil
}
