package db

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// TestNewChromaDBClient tests client initialization
func TestNewChromaDBClient(t *testing.T) {
	tests := []struct {
		name   string
		config ChromaDBConfig
	}{
		{
			name: "default config",
			config: ChromaDBConfig{
				Host: "localhost",
				Port: 8000,
			},
		},
		{
			name: "custom config with tenant and database",
			config: ChromaDBConfig{
				Host:     "chromadb.example.com",
				Port:     9000,
				Tenant:   "custom_tenant",
				Database: "custom_db",
				Timeout:  60 * time.Second,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewChromaDBClient(tt.config)

			if client == nil {
				t.Fatal("Expected non-nil client")
			}
			if client.httpClient == nil {
				t.Error("Expected non-nil HTTP client")
			}

			// Verify defaults are applied
			if client.tenant == "" {
				t.Error("Expected tenant to be set")
			}
			if client.database == "" {
				t.Error("Expected database to be set")
			}
		})
	}
}

func setupTestChroma(t *testing.T) *ChromaDBClient {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	client := NewChromaDBClient(ChromaDBConfig{
		Host: "localhost",
		Port: 8000,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Heartbeat(ctx); err != nil {
		t.Skipf("ChromaDB not reachable: %v", err)
	}
	return client
}

// TestChromaDBClient_Heartbeat tests heartbeat functionality
func TestChromaDBClient_Heartbeat(t *testing.T) {
	client := setupTestChroma(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Heartbeat(ctx); err != nil {
		t.Fatalf("Heartbeat failed: %v", err)
	}
}

// TestChromaDBClient_CollectionLifecycle tests create, get and count
func TestChromaDBClient_CollectionLifecycle(t *testing.T) {
	client := setupTestChroma(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	name := fmt.Sprintf("test_go_client_%d", time.Now().UnixNano())

	collection, err := client.CreateCollection(ctx, name, nil)
	if err != nil {
		t.Fatalf("Create collection failed: %v", err)
	}
	if collection.ID == "" {
		t.Error("Expected collection ID to be set")
	}

	fetched, err := client.GetCollection(ctx, name)
	if err != nil {
		t.Fatalf("Get collection failed: %v", err)
	}
	if fetched.Name != name {
		t.Errorf("Expected collection name %s, got %s", name, fetched.Name)
	}

	count, err := client.Count(ctx, collection.ID)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected empty collection, got %d records", count)
	}
}

// TestChromaDBClient_AddQueryDelete tests the record operations the document
// store is built on
func TestChromaDBClient_AddQueryDelete(t *testing.T) {
	client := setupTestChroma(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	name := fmt.Sprintf("test_records_%d", time.Now().UnixNano())
	collection, err := client.CreateCollection(ctx, name, nil)
	if err != nil {
		t.Fatalf("Create collection failed: %v", err)
	}

	ids := []string{"1", "2", "3"}
	documents := []string{
		"Patch management guidance",
		"Incident response playbook",
		"Access control policy",
	}
	embeddings := [][]float32{
		{0.1, 0.2, 0.3},
		{0.4, 0.5, 0.6},
		{0.7, 0.8, 0.9},
	}
	metadatas := []map[string]interface{}{
		{"title": "Patching", "category": "best-practices"},
		{"title": "IR playbook", "category": "incident-response"},
		{"title": "Access control", "category": "compliance"},
	}

	if err := client.Add(ctx, collection.ID, ids, embeddings, documents, metadatas); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	count, err := client.Count(ctx, collection.ID)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != len(ids) {
		t.Errorf("Expected %d records, got %d", len(ids), count)
	}

	// Nearest record to the first embedding is the first record
	result, err := client.Query(ctx, collection.ID, []float32{0.1, 0.2, 0.3}, 2)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(result.IDs) != 1 || len(result.IDs[0]) != 2 {
		t.Fatalf("Expected one result set with 2 hits, got %v", result.IDs)
	}
	if result.IDs[0][0] != "1" {
		t.Errorf("Expected nearest record 1, got %s", result.IDs[0][0])
	}

	if err := client.Delete(ctx, collection.ID, []string{"1"}); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	count, err = client.Count(ctx, collection.ID)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != len(ids)-1 {
		t.Errorf("Expected %d records after delete, got %d", len(ids)-1, count)
	}
}

// TestChromaDBClient_UpdateMetadata tests metadata replacement
func TestChromaDBClient_UpdateMetadata(t *testing.T) {
	client := setupTestChroma(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	name := fmt.Sprintf("test_update_%d", time.Now().UnixNano())
	collection, err := client.CreateCollection(ctx, name, nil)
	if err != nil {
		t.Fatalf("Create collection failed: %v", err)
	}

	if err := client.Add(ctx, collection.ID,
		[]string{"1"},
		[][]float32{{0.1, 0.2, 0.3}},
		[]string{"doc"},
		[]map[string]interface{}{{"tags": `["old"]`}},
	); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := client.UpdateMetadata(ctx, collection.ID,
		[]string{"1"},
		[]map[string]interface{}{{"tags": `["new"]`}},
	); err != nil {
		t.Fatalf("UpdateMetadata failed: %v", err)
	}

	got, err := client.Get(ctx, collection.ID, []string{"1"})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.Metadatas) != 1 || got.Metadatas[0]["tags"] != `["new"]` {
		t.Errorf("Expected updated tags, got %v", got.Metadatas)
	}
}

// TestChromaDBClient_ContextTimeout tests context timeout handling
func TestChromaDBClient_ContextTimeout(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	client := NewChromaDBClient(ChromaDBConfig{
		Host: "localhost",
		Port: 8000,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Nanosecond)
	defer cancel()

	if err := client.Heartbeat(ctx); err == nil {
		t.Error("Expected timeout error, got nil")
	}
}
