package services

import (
	"sort"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
)

// KeywordExtractor pulls candidate tags out of document text with POS
// tagging and named-entity recognition. It backs up the LLM classifier when
// the model returns too few tags.
type KeywordExtractor struct {
	stopWords map[string]bool
	minLength int
}

// NewKeywordExtractor creates a new keyword extractor
func NewKeywordExtractor() *KeywordExtractor {
	stopWords := map[string]bool{
		"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
		"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
		"with": true, "by": true, "is": true, "are": true, "was": true, "were": true,
		"be": true, "been": true, "have": true, "has": true, "had": true, "do": true,
		"does": true, "did": true, "will": true, "would": true, "could": true, "should": true,
		"this": true, "that": true, "these": true, "those": true, "i": true, "you": true,
		"he": true, "she": true, "it": true, "we": true, "they": true, "my": true,
		"your": true, "his": true, "her": true, "its": true, "our": true, "their": true,
	}

	return &KeywordExtractor{
		stopWords: stopWords,
		minLength: 3,
	}
}

type keywordCandidate struct {
	word      string
	frequency int
	score     float64
}

// Extract returns up to limit keywords from title and content, highest
// scoring first. The title is weighted double since it names the topic.
func (ke *KeywordExtractor) Extract(title, content string, limit int) ([]string, error) {
	text := strings.Repeat(title+" ", 2) + " " + content

	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, err
	}

	candidates := make(map[string]*keywordCandidate)

	for _, tok := range doc.Tokens() {
		word := strings.ToLower(tok.Text)
		if ke.shouldSkipWord(word, tok.Tag) {
			continue
		}

		score := ke.scoreForTag(tok.Tag)
		if existing, ok := candidates[word]; ok {
			existing.frequency++
			existing.score += score
		} else {
			candidates[word] = &keywordCandidate{word: word, frequency: 1, score: score}
		}
	}

	// Named entities outrank plain nouns
	for _, ent := range doc.Entities() {
		word := strings.ToLower(ent.Text)
		if len(word) < ke.minLength || ke.stopWords[word] {
			continue
		}
		if existing, ok := candidates[word]; ok {
			existing.score += 2.0
		} else {
			candidates[word] = &keywordCandidate{word: word, frequency: 1, score: 2.0}
		}
	}

	ranked := make([]keywordCandidate, 0, len(candidates))
	for _, c := range candidates {
		c.score *= float64(c.frequency)
		ranked = append(ranked, *c)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].word < ranked[j].word
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	keywords := make([]string, len(ranked))
	for i, c := range ranked {
		keywords[i] = c.word
	}
	return keywords, nil
}

func (ke *KeywordExtractor) shouldSkipWord(word, tag string) bool {
	if len(word) < ke.minLength || ke.stopWords[word] {
		return true
	}
	for _, r := range word {
		if !unicode.IsLetter(r) && r != '-' {
			return true
		}
	}
	// Nouns, proper nouns and adjectives carry the topical signal
	switch {
	case strings.HasPrefix(tag, "NN"), strings.HasPrefix(tag, "JJ"):
		return false
	default:
		return true
	}
}

func (ke *KeywordExtractor) scoreForTag(tag string) float64 {
	switch {
	case strings.HasPrefix(tag, "NNP"):
		return 1.5
	case strings.HasPrefix(tag, "NN"):
		return 1.0
	case strings.HasPrefix(tag, "JJ"):
		return 0.5
	default:
		return 0.1
	}
}
