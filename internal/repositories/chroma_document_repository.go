package repositories

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"sync"
	"time"

	"secdocs/internal/db"
	"secdocs/internal/models"
)

// ChromaDocumentRepository implements DocumentRepository on ChromaDB,
// delegating nearest-neighbor ranking to the index (collections are created
// with the l2 distance function, matching the Redis implementation's
// Euclidean metric). Returned results are re-sorted by (distance, id) so
// distance ties still break by insertion order.
type ChromaDocumentRepository struct {
	client     *db.ChromaDBClient
	collection string
	dim        int

	mu           sync.Mutex
	collectionID string
	nextID       int64
}

// NewChromaDocumentRepository creates a ChromaDB-backed document repository.
func NewChromaDocumentRepository(client *db.ChromaDBClient, collection string, dim int) *ChromaDocumentRepository {
	return &ChromaDocumentRepository{
		client:     client,
		collection: collection,
		dim:        dim,
	}
}

// ensureCollection resolves the collection ID once and seeds the ID counter
// from the highest stored ID.
func (r *ChromaDocumentRepository) ensureCollection(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.collectionID != "" {
		return r.collectionID, nil
	}

	collection, err := r.client.GetOrCreateCollection(ctx, r.collection)
	if err != nil {
		return "", NewDocumentRepositoryError("ensure_collection", 0, err, "")
	}

	resp, err := r.client.Get(ctx, collection.ID, nil)
	if err != nil {
		return "", NewDocumentRepositoryError("ensure_collection", 0, err, "")
	}
	var maxID int64
	for _, id := range resp.IDs {
		if n, err := strconv.ParseInt(id, 10, 64); err == nil && n > maxID {
			maxID = n
		}
	}

	r.collectionID = collection.ID
	r.nextID = maxID
	return r.collectionID, nil
}

func (r *ChromaDocumentRepository) allocateID() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	return r.nextID
}

func chromaMetadata(doc *models.Document) map[string]interface{} {
	// Chroma metadata values are scalars, so tags travel JSON-encoded.
	tagsJSON, _ := json.Marshal(doc.Metadata.Tags)
	return map[string]interface{}{
		"title":      doc.Title,
		"category":   doc.Metadata.Category,
		"tags":       string(tagsJSON),
		"summary":    doc.Metadata.Summary,
		"created_at": doc.CreatedAt.Format(time.RFC3339Nano),
		"owner_id":   doc.OwnerID,
	}
}

func documentFromChroma(id string, content string, embedding []float32, metadata map[string]interface{}) *models.Document {
	doc := &models.Document{
		Content:   content,
		Embedding: embedding,
		Metadata:  models.DocumentMetadata{Tags: []string{}},
	}
	doc.ID, _ = strconv.ParseInt(id, 10, 64)

	if title, ok := metadata["title"].(string); ok {
		doc.Title = title
	}
	if category, ok := metadata["category"].(string); ok {
		doc.Metadata.Category = category
	}
	if summary, ok := metadata["summary"].(string); ok {
		doc.Metadata.Summary = summary
	}
	if tagsJSON, ok := metadata["tags"].(string); ok && tagsJSON != "" {
		var tags []string
		if err := json.Unmarshal([]byte(tagsJSON), &tags); err == nil && tags != nil {
			doc.Metadata.Tags = tags
		}
	}
	if createdAt, ok := metadata["created_at"].(string); ok {
		doc.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	}
	if ownerID, ok := metadata["owner_id"].(float64); ok {
		doc.OwnerID = int64(ownerID)
	}
	return doc
}

// Insert stores a document with its embedding in the collection.
func (r *ChromaDocumentRepository) Insert(ctx context.Context, doc *models.Document) (*models.Document, error) {
	doc.Content = models.NormalizeContent(doc.Content)
	if doc.Content == "" {
		return nil, InvalidDocumentError("insert", "content is empty after normalization")
	}
	if len(doc.Embedding) != r.dim {
		return nil, InvalidDocumentError("insert",
			"embedding dimension "+strconv.Itoa(len(doc.Embedding))+" does not match store dimension "+strconv.Itoa(r.dim))
	}

	collectionID, err := r.ensureCollection(ctx)
	if err != nil {
		return nil, err
	}

	stored := *doc
	stored.ID = r.allocateID()
	stored.CreatedAt = time.Now().UTC()
	if stored.Metadata.Tags == nil {
		stored.Metadata.Tags = []string{}
	}

	err = r.client.Add(ctx, collectionID,
		[]string{strconv.FormatInt(stored.ID, 10)},
		[][]float32{stored.Embedding},
		[]string{stored.Content},
		[]map[string]interface{}{chromaMetadata(&stored)},
	)
	if err != nil {
		return nil, NewDocumentRepositoryError("insert", stored.ID, err, "")
	}
	return &stored, nil
}

// Get retrieves a document by ID.
func (r *ChromaDocumentRepository) Get(ctx context.Context, id int64) (*models.Document, error) {
	collectionID, err := r.ensureCollection(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Get(ctx, collectionID, []string{strconv.FormatInt(id, 10)})
	if err != nil {
		return nil, NewDocumentRepositoryError("get", id, err, "")
	}
	if len(resp.IDs) == 0 {
		return nil, DocumentNotFoundError("get", id)
	}

	var embedding []float32
	if len(resp.Embeddings) > 0 {
		embedding = resp.Embeddings[0]
	}
	return documentFromChroma(resp.IDs[0], resp.Documents[0], embedding, resp.Metadatas[0]), nil
}

// List returns all documents in insertion (ID) order.
func (r *ChromaDocumentRepository) List(ctx context.Context) ([]*models.Document, error) {
	collectionID, err := r.ensureCollection(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Get(ctx, collectionID, nil)
	if err != nil {
		return nil, NewDocumentRepositoryError("list", 0, err, "")
	}

	docs := make([]*models.Document, 0, len(resp.IDs))
	for i, id := range resp.IDs {
		var embedding []float32
		if i < len(resp.Embeddings) {
			embedding = resp.Embeddings[i]
		}
		docs = append(docs, documentFromChroma(id, resp.Documents[i], embedding, resp.Metadatas[i]))
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// NearestNeighbors queries the index for the k closest documents.
func (r *ChromaDocumentRepository) NearestNeighbors(ctx context.Context, embedding []float32, k int) ([]*models.Document, error) {
	if len(embedding) != r.dim {
		return nil, InvalidDocumentError("nearest_neighbors",
			"query embedding dimension "+strconv.Itoa(len(embedding))+" does not match store dimension "+strconv.Itoa(r.dim))
	}
	if k <= 0 {
		return []*models.Document{}, nil
	}

	collectionID, err := r.ensureCollection(ctx)
	if err != nil {
		return nil, err
	}

	// Chroma rejects n_results larger than the collection size
	count, err := r.client.Count(ctx, collectionID)
	if err != nil {
		return nil, NewDocumentRepositoryError("nearest_neighbors", 0, err, "")
	}
	if count == 0 {
		return []*models.Document{}, nil
	}
	if k > count {
		k = count
	}

	resp, err := r.client.Query(ctx, collectionID, embedding, k)
	if err != nil {
		return nil, NewDocumentRepositoryError("nearest_neighbors", 0, err, "")
	}
	if len(resp.IDs) == 0 {
		return []*models.Document{}, nil
	}

	type ranked struct {
		doc      *models.Document
		distance float32
	}
	results := make([]ranked, 0, len(resp.IDs[0]))
	for i, id := range resp.IDs[0] {
		var emb []float32
		if len(resp.Embeddings) > 0 && i < len(resp.Embeddings[0]) {
			emb = resp.Embeddings[0][i]
		}
		doc := documentFromChroma(id, resp.Documents[0][i], emb, resp.Metadatas[0][i])
		results = append(results, ranked{doc: doc, distance: resp.Distances[0][i]})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].distance != results[j].distance {
			return results[i].distance < results[j].distance
		}
		return results[i].doc.ID < results[j].doc.ID
	})

	docs := make([]*models.Document, len(results))
	for i, res := range results {
		docs[i] = res.doc
	}
	return docs, nil
}

// Delete removes a document. A missing ID is not an error.
func (r *ChromaDocumentRepository) Delete(ctx context.Context, id int64) error {
	collectionID, err := r.ensureCollection(ctx)
	if err != nil {
		return err
	}
	if err := r.client.Delete(ctx, collectionID, []string{strconv.FormatInt(id, 10)}); err != nil {
		return NewDocumentRepositoryError("delete", id, err, "")
	}
	return nil
}

// UpdateTags replaces metadata.tags, preserving all other metadata.
func (r *ChromaDocumentRepository) UpdateTags(ctx context.Context, id int64, tags []string) (*models.Document, error) {
	doc, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if tags == nil {
		tags = []string{}
	}
	doc.Metadata.Tags = tags

	collectionID, err := r.ensureCollection(ctx)
	if err != nil {
		return nil, err
	}

	err = r.client.UpdateMetadata(ctx, collectionID,
		[]string{strconv.FormatInt(id, 10)},
		[]map[string]interface{}{chromaMetadata(doc)},
	)
	if err != nil {
		return nil, NewDocumentRepositoryError("update_tags", id, err, "")
	}
	return doc, nil
}

// Count returns the number of stored documents.
func (r *ChromaDocumentRepository) Count(ctx context.Context) (int, error) {
	collectionID, err := r.ensureCollection(ctx)
	if err != nil {
		return 0, err
	}
	count, err := r.client.Count(ctx, collectionID)
	if err != nil {
		return 0, NewDocumentRepositoryError("count", 0, err, "")
	}
	return count, nil
}

// Ping checks the ChromaDB connection.
func (r *ChromaDocumentRepository) Ping(ctx context.Context) error {
	return r.client.Heartbeat(ctx)
}

// Close is a no-op; the HTTP client needs no teardown.
func (r *ChromaDocumentRepository) Close() error {
	return nil
}
