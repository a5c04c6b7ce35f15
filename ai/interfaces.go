package ai

import "context"

// ModelInfo describes an embedding model. Dimension must be stable for the
// lifetime of a process so the retrieval layer can detect cross-model
// vector mismatches.
type ModelInfo struct {
	// Name is the model identifier, e.g. "embeddinggemma".
	Name string

	// Dimension is the length of every vector the model produces.
	Dimension int

	// Remote is true when the model is reached over a rate-limited API
	// rather than running in-process.
	Remote bool
}

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// ModelInfo reports the model's name and fixed output dimension.
	ModelInfo() ModelInfo
}

// EntityExtractor tags medical entities in text.
// Implementations must be thread-safe for concurrent use.
type EntityExtractor interface {
	// ExtractEntities analyzes text and returns the labeled entity spans
	// found in it, together with an overall extraction confidence.
	// Returns an empty entity list (not an error) when nothing is found.
	ExtractEntities(ctx context.Context, text string) (*ExtractionResult, error)
}

// TextExtractor resolves raw text from a file reference (scanned image via
// OCR, PDF via parsing). Implementations never return a nil result on
// success; total failure to recognize anything yields an empty Text with a
// zero confidence rather than a nil.
type TextExtractor interface {
	// Extract produces text from the referenced file. The hint, when
	// non-empty, tells the extractor what kind of source to expect
	// ("pdf", "image", "text").
	Extract(ctx context.Context, fileRef, hint string) (*ExtractedText, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle
// management. A provider creates and manages the collaborator instances,
// ensuring they share configuration and resources appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// EntityExtractor returns the medical entity tagging service.
	EntityExtractor() EntityExtractor

	// TextExtractor returns the OCR / document parsing service.
	TextExtractor() TextExtractor

	// Close releases resources held by the provider and its services.
	Close() error
}
