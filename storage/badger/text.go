package badger

import (
	"strings"

	"github.com/poiesic/medisearch/core"
)

// stopwords are common words excluded from keyword scoring.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "he": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
	"or": true, "she": true, "that": true, "the": true, "to": true, "was": true,
	"were": true, "will": true, "with": true,
}

// tokenizeAndFilter lowercases text, splits it into alphanumeric tokens, and
// drops stopwords and single-character tokens.
func tokenizeAndFilter(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	})

	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if len(field) < 2 || stopwords[field] {
			continue
		}
		tokens = append(tokens, field)
	}
	return tokens
}

// tokenSet builds a presence set from text.
func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range tokenizeAndFilter(text) {
		set[token] = true
	}
	return set
}

// scoreKeywords scores a document against query terms. Title matches weigh
// double; a document containing every term in its title scores 1.0.
func scoreKeywords(document *core.Document, terms []string) float32 {
	titleTokens := tokenSet(document.Title)
	contentTokens := tokenSet(document.Content)

	var hits float32
	for _, term := range terms {
		if titleTokens[term] {
			hits += 2
		}
		if contentTokens[term] {
			hits += 1
		}
	}
	return hits / (3 * float32(len(terms)))
}
