package services

import (
	"strings"

	"secdocs/internal/models"
)

// contextDelimiter separates documents inside an assembled context block.
const contextDelimiter = "---"

// AssembleContext formats retrieved documents into the context block for
// the generation prompt. It is a pure function: identical input always
// yields byte-identical output. Documents keep the order given (nearest
// first) and an empty input yields an empty string.
func AssembleContext(docs []*models.Document) string {
	if len(docs) == 0 {
		return ""
	}

	sections := make([]string, len(docs))
	for i, doc := range docs {
		var b strings.Builder
		b.WriteString("Title: ")
		b.WriteString(doc.Title)
		b.WriteString("\nCategory: ")
		b.WriteString(doc.CategoryOrDefault())
		b.WriteString("\n\n")
		b.WriteString(doc.Content)
		sections[i] = b.String()
	}
	return strings.Join(sections, "\n"+contextDelimiter+"\n")
}
