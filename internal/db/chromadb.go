package db

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ChromaDBClient wraps HTTP calls to ChromaDB v2 API
// This avoids compatibility issues with the official Go client library
type ChromaDBClient struct {
	baseURL    string
	hostPort   string
	httpClient *http.Client
	tenant     string
	database   string
}

// ChromaDBConfig holds configuration for ChromaDB connection
type ChromaDBConfig struct {
	Host     string
	Port     int
	Tenant   string // default: "default_tenant"
	Database string // default: "default_database"
	Timeout  time.Duration
}

// Collection represents a ChromaDB collection
type Collection struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Metadata map[string]interface{} `json:"metadata"`
}

// GetResponse represents the response from a get request
type GetResponse struct {
	IDs        []string                 `json:"ids"`
	Documents  []string                 `json:"documents"`
	Metadatas  []map[string]interface{} `json:"metadatas"`
	Embeddings [][]float32              `json:"embeddings,omitempty"`
}

// QueryResponse represents the response from a query request. The outer
// slices are indexed by query embedding (we always send exactly one).
type QueryResponse struct {
	IDs        [][]string                 `json:"ids"`
	Documents  [][]string                 `json:"documents"`
	Metadatas  [][]map[string]interface{} `json:"metadatas"`
	Distances  [][]float32                `json:"distances"`
	Embeddings [][][]float32              `json:"embeddings,omitempty"`
}

// NewChromaDBClient creates a new ChromaDB client with v2 API support
func NewChromaDBClient(config ChromaDBConfig) *ChromaDBClient {
	if config.Tenant == "" {
		config.Tenant = "default_tenant"
	}
	if config.Database == "" {
		config.Database = "default_database"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	hostPort := fmt.Sprintf("%s:%d", config.Host, config.Port)

	// ChromaDB v2 API uses tenant and database in the path
	baseURL := fmt.Sprintf("http://%s/api/v2/tenants/%s/databases/%s",
		hostPort, config.Tenant, config.Database)

	return &ChromaDBClient{
		baseURL:  baseURL,
		hostPort: hostPort,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		tenant:   config.Tenant,
		database: config.Database,
	}
}

// do issues a request against the scoped API and decodes the response into
// out when out is non-nil.
func (c *ChromaDBClient) do(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s failed (status %d): %s", method, path, resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// Heartbeat checks if ChromaDB is alive
func (c *ChromaDBClient) Heartbeat(ctx context.Context) error {
	heartbeatURL := fmt.Sprintf("http://%s/api/v2/heartbeat", c.hostPort)
	req, err := http.NewRequestWithContext(ctx, "GET", heartbeatURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create heartbeat request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("heartbeat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("heartbeat failed with status: %d", resp.StatusCode)
	}
	return nil
}

// GetCollection retrieves a collection by name
func (c *ChromaDBClient) GetCollection(ctx context.Context, name string) (*Collection, error) {
	var collection Collection
	if err := c.do(ctx, "GET", "/collections/"+name, nil, &collection); err != nil {
		return nil, fmt.Errorf("get collection %s: %w", name, err)
	}
	return &collection, nil
}

// CreateCollection creates a new collection. The distance function is fixed
// to l2 so query distances are Euclidean.
func (c *ChromaDBClient) CreateCollection(ctx context.Context, name string, metadata map[string]interface{}) (*Collection, error) {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	metadata["hnsw:space"] = "l2"

	payload := map[string]interface{}{
		"name":     name,
		"metadata": metadata,
	}

	var collection Collection
	if err := c.do(ctx, "POST", "/collections", payload, &collection); err != nil {
		return nil, fmt.Errorf("create collection %s: %w", name, err)
	}
	return &collection, nil
}

// GetOrCreateCollection fetches a collection by name, creating it on first use
func (c *ChromaDBClient) GetOrCreateCollection(ctx context.Context, name string) (*Collection, error) {
	collection, err := c.GetCollection(ctx, name)
	if err == nil {
		return collection, nil
	}
	return c.CreateCollection(ctx, name, nil)
}

// Add inserts records into a collection
func (c *ChromaDBClient) Add(ctx context.Context, collectionID string, ids []string, embeddings [][]float32, documents []string, metadatas []map[string]interface{}) error {
	payload := map[string]interface{}{
		"ids":        ids,
		"embeddings": embeddings,
		"documents":  documents,
		"metadatas":  metadatas,
	}
	if err := c.do(ctx, "POST", "/collections/"+collectionID+"/add", payload, nil); err != nil {
		return fmt.Errorf("add to collection: %w", err)
	}
	return nil
}

// Query runs a nearest-neighbor query with a single query embedding
func (c *ChromaDBClient) Query(ctx context.Context, collectionID string, embedding []float32, nResults int) (*QueryResponse, error) {
	payload := map[string]interface{}{
		"query_embeddings": [][]float32{embedding},
		"n_results":        nResults,
		"include":          []string{"documents", "metadatas", "distances", "embeddings"},
	}

	var result QueryResponse
	if err := c.do(ctx, "POST", "/collections/"+collectionID+"/query", payload, &result); err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}
	return &result, nil
}

// Get fetches records by ID; with no IDs it fetches the whole collection
func (c *ChromaDBClient) Get(ctx context.Context, collectionID string, ids []string) (*GetResponse, error) {
	payload := map[string]interface{}{
		"include": []string{"documents", "metadatas", "embeddings"},
	}
	if len(ids) > 0 {
		payload["ids"] = ids
	}

	var result GetResponse
	if err := c.do(ctx, "POST", "/collections/"+collectionID+"/get", payload, &result); err != nil {
		return nil, fmt.Errorf("get from collection: %w", err)
	}
	return &result, nil
}

// UpdateMetadata replaces the metadata of existing records
func (c *ChromaDBClient) UpdateMetadata(ctx context.Context, collectionID string, ids []string, metadatas []map[string]interface{}) error {
	payload := map[string]interface{}{
		"ids":       ids,
		"metadatas": metadatas,
	}
	if err := c.do(ctx, "POST", "/collections/"+collectionID+"/update", payload, nil); err != nil {
		return fmt.Errorf("update collection records: %w", err)
	}
	return nil
}

// Delete removes records by ID
func (c *ChromaDBClient) Delete(ctx context.Context, collectionID string, ids []string) error {
	payload := map[string]interface{}{
		"ids": ids,
	}
	if err := c.do(ctx, "POST", "/collections/"+collectionID+"/delete", payload, nil); err != nil {
		return fmt.Errorf("delete from collection: %w", err)
	}
	return nil
}

// Count returns the number of records in a collection
func (c *ChromaDBClient) Count(ctx context.Context, collectionID string) (int, error) {
	var count int
	if err := c.do(ctx, "GET", "/collections/"+collectionID+"/count", nil, &count); err != nil {
		return 0, fmt.Errorf("count collection: %w", err)
	}
	return count, nil
}
