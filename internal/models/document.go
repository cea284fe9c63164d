package models

import (
	"strings"
	"time"
)

// Document categories assigned by the classifier.
const (
	CategoryBestPractices    = "best-practices"
	CategoryFrameworks       = "frameworks"
	CategoryIncidentResponse = "incident-response"
	CategoryCompliance       = "compliance"
	CategoryThreatIntel      = "threat-intel"
	CategoryUncategorized    = "uncategorized"
)

// KnownCategories lists every category the classifier may assign.
var KnownCategories = []string{
	CategoryBestPractices,
	CategoryFrameworks,
	CategoryIncidentResponse,
	CategoryCompliance,
	CategoryThreatIntel,
}

// IsKnownCategory reports whether category is one of the classifier's categories.
func IsKnownCategory(category string) bool {
	for _, c := range KnownCategories {
		if c == category {
			return true
		}
	}
	return false
}

// DocumentMetadata holds classification metadata attached to a document.
// Tags is the only field that may change after ingestion.
type DocumentMetadata struct {
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Summary  string   `json:"summary"`
}

// Document is a stored knowledge-base document with its embedding.
// Content is normalized (null-byte free, trimmed) before storage and every
// embedding in a store has the same dimensionality.
type Document struct {
	ID        int64            `json:"id"`
	Title     string           `json:"title"`
	Content   string           `json:"content"`
	Embedding []float32        `json:"embedding,omitempty"`
	Metadata  DocumentMetadata `json:"metadata"`
	CreatedAt time.Time        `json:"created_at"`
	OwnerID   int64            `json:"owner_id"`
}

// NormalizeContent strips null bytes and surrounding whitespace from
// document text. Postgres-style text columns reject embedded null bytes and
// extracted documents often carry them; this runs before any storage or
// embedding call.
func NormalizeContent(content string) string {
	return strings.TrimSpace(strings.ReplaceAll(content, "\x00", ""))
}

// CategoryOrDefault returns the document's category, or "uncategorized"
// when the classifier did not assign one.
func (d *Document) CategoryOrDefault() string {
	if d.Metadata.Category == "" {
		return CategoryUncategorized
	}
	return d.Metadata.Category
}
