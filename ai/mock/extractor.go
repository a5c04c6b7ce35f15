package mock

import (
	"context"
	"strings"

	"github.com/poiesic/medisearch/ai"
)

// knownTerms maps lowercase terms to entity labels for the default mock
// behavior. The table is intentionally tiny; tests needing specific entities
// inject ExtractEntitiesFunc instead.
var knownTerms = map[string]string{
	"aspirin":      "MEDICATION",
	"metformin":    "MEDICATION",
	"lisinopril":   "MEDICATION",
	"diabetes":     "CONDITION",
	"hypertension": "CONDITION",
	"pneumonia":    "CONDITION",
	"appendectomy": "PROCEDURE",
	"biopsy":       "PROCEDURE",
	"heart":        "ANATOMY",
	"lung":         "ANATOMY",
	"fever":        "SYMPTOM",
	"cough":        "SYMPTOM",
}

// MockEntityExtractor is a test double for ai.EntityExtractor.
// It allows custom behavior injection via function fields.
type MockEntityExtractor struct {
	// ExtractEntitiesFunc is called by ExtractEntities if set.
	// If nil, uses default dictionary-based tagging.
	ExtractEntitiesFunc func(ctx context.Context, text string) (*ai.ExtractionResult, error)

	callCount int
}

var _ ai.EntityExtractor = (*MockEntityExtractor)(nil)

// NewMockEntityExtractor creates a mock extractor with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockEntityExtractor() *MockEntityExtractor {
	return &MockEntityExtractor{}
}

// ExtractEntities tags terms from a small built-in dictionary.
// Spans are located by case-insensitive substring search.
func (m *MockEntityExtractor) ExtractEntities(ctx context.Context, text string) (*ai.ExtractionResult, error) {
	m.callCount++

	if m.ExtractEntitiesFunc != nil {
		return m.ExtractEntitiesFunc(ctx, text)
	}

	lower := strings.ToLower(text)
	var entities []ai.ExtractedEntity
	for term, label := range knownTerms {
		idx := strings.Index(lower, term)
		if idx < 0 {
			continue
		}
		entities = append(entities, ai.ExtractedEntity{
			Text:       text[idx : idx+len(term)],
			Label:      label,
			Confidence: 0.9,
			Start:      idx,
			End:        idx + len(term),
		})
	}

	return &ai.ExtractionResult{Entities: entities, Confidence: 0.9}, nil
}

// CallCount returns the number of times ExtractEntities was called.
func (m *MockEntityExtractor) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockEntityExtractor) Reset() {
	m.callCount = 0
	m.ExtractEntitiesFunc = nil
}
