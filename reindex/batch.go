package reindex

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/medisearch/core"
	"github.com/poiesic/medisearch/embedding"
	"github.com/poiesic/medisearch/storage"
)

// BatchProcessor handles embedding generation for batches of documents.
type BatchProcessor struct {
	repo           storage.DocumentRepository
	orchestrator   *embedding.Orchestrator
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.DocumentRepository, orchestrator *embedding.Orchestrator, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		orchestrator:   orchestrator,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process re-embeds a batch of documents and updates them in the database.
// Vectors are normalized after embedding to ensure compatibility with cosine
// similarity.
func (bp *BatchProcessor) Process(ctx context.Context, documents []*core.Document) error {
	if len(documents) == 0 {
		return nil
	}

	// Embed the same composed representation ingestion uses
	texts := make([]string, len(documents))
	for i, document := range documents {
		texts[i] = document.EmbeddingText()
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		vectors, err = bp.orchestrator.EmbedBatch(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(vectors) != len(documents) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(documents), len(vectors))
	}

	for i := range documents {
		documents[i].Vector = NormalizeVector(vectors[i])
		documents[i].Metadata.Processed = true
	}

	_, err = bp.repo.UpdateDocuments(ctx, documents...)
	if err != nil {
		return fmt.Errorf("failed to update documents: %w", err)
	}

	return nil
}
