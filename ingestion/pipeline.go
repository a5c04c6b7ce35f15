package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/medisearch/ai"
	"github.com/poiesic/medisearch/chunker"
	"github.com/poiesic/medisearch/core"
	"github.com/poiesic/medisearch/embedding"
	"github.com/poiesic/medisearch/storage"
)

// Pipeline orchestrates document ingestion: text extraction, entity tagging,
// embedding, and persistence. Stages run sequentially so every failure
// surfaces to the caller instead of vanishing into a background worker.
type Pipeline struct {
	documents    storage.DocumentRepository
	chunks       storage.ChunkRepository
	orchestrator *embedding.Orchestrator
	provider     ai.Provider
	chunker      *chunker.Chunker
	logger       *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithChunker sets a custom chunker for chunked ingestion.
// Default is a chunker with package defaults.
func WithChunker(c *chunker.Chunker) Option {
	return func(p *Pipeline) error {
		if c == nil {
			return chunker.ErrInvalidChunkSize
		}
		p.chunker = c
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	documents storage.DocumentRepository,
	chunks storage.ChunkRepository,
	orchestrator *embedding.Orchestrator,
	provider ai.Provider,
	opts ...Option,
) (*Pipeline, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if orchestrator == nil {
		return nil, ErrOrchestratorRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	defaultChunker, err := chunker.New()
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		documents:    documents,
		chunks:       chunks,
		orchestrator: orchestrator,
		provider:     provider,
		chunker:      defaultChunker,
		logger:       slog.Default().With("component", "ingestion-pipeline"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			return nil, optErr
		}
	}

	return p, nil
}

// IngestRequest describes a document to ingest. Either Content or FileRef
// must be set; FileHint optionally names the file format for extraction.
type IngestRequest struct {
	Title    string
	Content  string
	FileRef  string
	FileHint string
	Metadata core.DocumentMetadata
}

// ChunkReport summarizes a chunked ingestion run.
type ChunkReport struct {
	DocumentId       core.ID
	TotalChunks      int
	SuccessfulChunks int
	FailedChunks     []int
}

// Ingest runs the full pipeline for a single document: resolve text, tag
// entities, embed the composed representation, and persist. The document is
// marked processed only after every stage has succeeded.
func (p *Pipeline) Ingest(ctx context.Context, req *IngestRequest) (core.ID, error) {
	document, err := p.prepare(ctx, req)
	if err != nil {
		return 0, err
	}

	vector, err := p.orchestrator.EmbedText(ctx, document.EmbeddingText())
	if err != nil {
		return 0, err
	}
	document.Vector = vector
	document.Metadata.Processed = true

	added, err := p.documents.AddDocuments(ctx, document)
	if err != nil {
		return 0, err
	}

	p.logger.Info("ingested document",
		"id", added[0].Id,
		"title", document.Title,
		"entities", len(document.Entities))
	return added[0].Id, nil
}

// IngestChunked runs the pipeline with per-chunk embedding for long
// documents. The parent document is embedded and persisted first; its prior
// chunk set is then replaced wholesale. A chunk whose embedding fails is
// logged and skipped, and the report records which indexes failed.
func (p *Pipeline) IngestChunked(ctx context.Context, req *IngestRequest) (*ChunkReport, error) {
	document, err := p.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := core.ValidateChunkSource(document.Content); err != nil {
		return nil, err
	}

	vector, err := p.orchestrator.EmbedText(ctx, document.EmbeddingText())
	if err != nil {
		return nil, err
	}
	document.Vector = vector
	document.Metadata.Processed = true

	added, err := p.documents.AddDocuments(ctx, document)
	if err != nil {
		return nil, err
	}
	documentID := added[0].Id

	// Re-ingestion replaces the previous chunk set
	if err := p.chunks.DeleteChunksByDocument(ctx, documentID); err != nil {
		return nil, err
	}

	pieces := p.chunker.Chunk(document.Content)
	report := &ChunkReport{
		DocumentId:  documentID,
		TotalChunks: len(pieces),
	}

	modelInfo, err := p.orchestrator.ModelInfo()
	if err != nil {
		return nil, err
	}

	for i, piece := range pieces {
		chunkVector, err := p.orchestrator.EmbedText(ctx, piece)
		if err != nil {
			p.logger.Warn("chunk embedding failed, skipping",
				"document", documentID,
				"chunk", i,
				"err", err)
			report.FailedChunks = append(report.FailedChunks, i)
			continue
		}

		chunk := &core.Chunk{
			DocumentId:  documentID,
			ChunkIndex:  i,
			TotalChunks: len(pieces),
			Text:        piece,
			Vector:      chunkVector,
			WordCount:   len(strings.Fields(piece)),
			Metadata: core.ChunkMetadata{
				PatientID:      document.Metadata.PatientID,
				DocumentType:   document.Metadata.DocumentType,
				EmbeddingModel: modelInfo.Name,
				Dimension:      len(chunkVector),
				CreatedAt:      document.InsertedAt,
			},
		}

		if _, err := p.chunks.AddChunks(ctx, chunk); err != nil {
			p.logger.Warn("chunk persistence failed, skipping",
				"document", documentID,
				"chunk", i,
				"err", err)
			report.FailedChunks = append(report.FailedChunks, i)
			continue
		}
		report.SuccessfulChunks++
	}

	p.logger.Info("chunked ingestion complete",
		"document", documentID,
		"total", report.TotalChunks,
		"successful", report.SuccessfulChunks,
		"failed", len(report.FailedChunks))
	return report, nil
}

// prepare resolves the request text, validates the document, and tags
// entities. Shared by both ingestion paths.
func (p *Pipeline) prepare(ctx context.Context, req *IngestRequest) (*core.Document, error) {
	text, err := p.resolveText(ctx, req)
	if err != nil {
		return nil, err
	}

	document := &core.Document{
		Title:    req.Title,
		Content:  text,
		Metadata: req.Metadata,
	}
	if err := core.ValidateDocument(document); err != nil {
		return nil, err
	}

	extraction, err := p.provider.EntityExtractor().ExtractEntities(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrExtraction, err)
	}
	document.Entities = toMedicalEntities(extraction.Entities)

	return document, nil
}

// resolveText returns the document text, extracting it from the referenced
// file when inline content is absent.
func (p *Pipeline) resolveText(ctx context.Context, req *IngestRequest) (string, error) {
	if text := strings.TrimSpace(req.Content); text != "" {
		return text, nil
	}

	if req.FileRef == "" {
		return "", fmt.Errorf("%w: no content or file reference", core.ErrExtraction)
	}

	extracted, err := p.provider.TextExtractor().Extract(ctx, req.FileRef, req.FileHint)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrExtraction, err)
	}

	text := strings.TrimSpace(extracted.Text)
	if text == "" {
		return "", fmt.Errorf("%w: extractor produced no text for %s", core.ErrExtraction, req.FileRef)
	}
	return text, nil
}

// toMedicalEntities converts extractor output to stored entities.
// Confidence is stored as reported; filtering is a query-time concern.
func toMedicalEntities(extracted []ai.ExtractedEntity) []core.MedicalEntity {
	entities := make([]core.MedicalEntity, 0, len(extracted))
	for _, e := range extracted {
		entities = append(entities, core.MedicalEntity{
			Text:       e.Text,
			Label:      e.Label,
			Confidence: e.Confidence,
			Start:      e.Start,
			End:        e.End,
		})
	}
	return entities
}
