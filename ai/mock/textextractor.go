package mock

import (
	"context"

	"github.com/poiesic/medisearch/ai"
)

// MockTextExtractor is a test double for ai.TextExtractor.
// It allows custom behavior injection via function fields.
type MockTextExtractor struct {
	// ExtractFunc is called by Extract if set. If nil, the extractor
	// returns Texts[fileRef], or an empty low-confidence result when the
	// reference is unknown.
	ExtractFunc func(ctx context.Context, fileRef, hint string) (*ai.ExtractedText, error)

	// Texts maps file references to canned extraction output.
	Texts map[string]string

	callCount int
}

var _ ai.TextExtractor = (*MockTextExtractor)(nil)

// NewMockTextExtractor creates a mock text extractor with no canned texts.
func NewMockTextExtractor() *MockTextExtractor {
	return &MockTextExtractor{Texts: make(map[string]string)}
}

// Extract returns the canned text for a file reference.
// Unknown references yield an empty text with zero confidence, matching the
// collaborator contract of never reporting text as absent.
func (m *MockTextExtractor) Extract(ctx context.Context, fileRef, hint string) (*ai.ExtractedText, error) {
	m.callCount++

	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, fileRef, hint)
	}

	text, ok := m.Texts[fileRef]
	if !ok {
		return &ai.ExtractedText{Text: "", Confidence: 0}, nil
	}
	return &ai.ExtractedText{
		Text:       text,
		Confidence: 0.95,
		PageCount:  1,
		Metadata:   map[string]string{"engine": "mock"},
	}, nil
}

// CallCount returns the number of times Extract was called.
func (m *MockTextExtractor) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockTextExtractor) Reset() {
	m.callCount = 0
	m.ExtractFunc = nil
}
