package ai

// EntityLabels defines the closed set of labels the entity extractor is
// prompted with. Extractors may still emit labels outside this set; those
// are passed through opaquely.
var EntityLabels = []string{
	"MEDICATION",
	"CONDITION",
	"PROCEDURE",
	"ANATOMY",
	"SYMPTOM",
	"PERSON",
	"DATE",
	"MEASUREMENT",
}

// ExtractedEntity represents a labeled span identified in text.
type ExtractedEntity struct {
	// Text is the exact span as it appears in the source.
	Text string

	// Label categorizes the span, normally one of EntityLabels.
	Label string

	// Confidence is the extractor's confidence in this span, 0..1.
	Confidence float32

	// Start and End are byte offsets of the span within the source text.
	// Both are -1 when the span could not be located.
	Start int
	End   int
}

// ExtractionResult is the output of an entity extraction call.
type ExtractionResult struct {
	Entities   []ExtractedEntity
	Confidence float32
}

// ExtractedText is the output of a text extraction (OCR / PDF parse) call.
type ExtractedText struct {
	// Text is the recognized text. Empty string on total failure, never
	// reported as absent.
	Text string

	// Confidence is the extractor's overall confidence, 0..1.
	Confidence float32

	// PageCount is the number of pages in the source, or 0 when the
	// source has no page structure.
	PageCount int

	// Metadata carries extractor-specific details (engine name, language).
	Metadata map[string]string
}
