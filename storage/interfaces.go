package storage

import (
	"context"

	"github.com/poiesic/medisearch/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// DocumentRepository provides operations for managing medical documents.
type DocumentRepository interface {
	Repository
	// AddDocuments adds one or more documents to storage.
	// For documents with ID=0, derives content-based IDs.
	// Sets InsertedAt timestamp if not already set.
	// Returns the documents with IDs and timestamps populated.
	AddDocuments(ctx context.Context, documents ...*core.Document) ([]*core.Document, error)

	// UpdateDocuments updates existing documents.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any document doesn't exist.
	UpdateDocuments(ctx context.Context, documents ...*core.Document) ([]*core.Document, error)

	// DeleteDocuments removes documents by their IDs.
	// Also removes associated indices.
	// Returns ErrNotFound if any document doesn't exist.
	DeleteDocuments(ctx context.Context, ids ...core.ID) error

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocuments retrieves multiple documents by their IDs.
	// Returns only the documents that exist (no error for missing documents).
	GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error)

	// ListDocuments retrieves documents ordered by upload date descending.
	// The filter narrows results when non-zero; offset and limit paginate.
	ListDocuments(ctx context.Context, offset, limit int, filter *core.SearchFilter) ([]*core.Document, error)

	// CountDocuments reports the total number of stored documents.
	CountDocuments(ctx context.Context) (int, error)

	// FindSimilar finds documents whose vectors are similar to the given vector.
	// Scans up to numCandidates stored vectors, skipping any whose dimension
	// differs from the query vector. Returns documents with similarity >=
	// minSimilarity matching the filter, up to limit results, ordered by
	// similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit, numCandidates int, filter *core.SearchFilter) ([]*core.SearchResult, error)

	// SearchText performs scored keyword search over title and content.
	// Returns documents matching the filter, up to limit results, ordered
	// by lexical score (highest first).
	SearchText(ctx context.Context, query string, limit int, filter *core.SearchFilter) ([]*core.SearchResult, error)
}

// ChunkRepository provides operations for managing document chunks.
type ChunkRepository interface {
	Repository
	// AddChunks adds one or more chunks to storage.
	// For chunks with ID=0, derives content-based IDs.
	// Returns the chunks with IDs populated.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// GetChunksByDocument retrieves all chunks of a document, ordered by
	// chunk index ascending.
	GetChunksByDocument(ctx context.Context, documentID core.ID) ([]*core.Chunk, error)

	// DeleteChunksByDocument removes all chunks of a document.
	// Missing chunks are not an error; re-ingestion calls this first to
	// bulk-replace prior chunk sets.
	DeleteChunksByDocument(ctx context.Context, documentID core.ID) error
}
