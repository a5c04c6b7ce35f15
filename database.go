// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package medisearch

import (
	"io"
	"log/slog"

	"github.com/poiesic/medisearch/ai"
	"github.com/poiesic/medisearch/ai/openai"
	"github.com/poiesic/medisearch/chunker"
	"github.com/poiesic/medisearch/config"
	"github.com/poiesic/medisearch/embedding"
	"github.com/poiesic/medisearch/ingestion"
	"github.com/poiesic/medisearch/reindex"
	"github.com/poiesic/medisearch/search"
	"github.com/poiesic/medisearch/storage"
	"github.com/poiesic/medisearch/storage/badger"
)

// Database wires storage, AI services, and the pipelines on top of them into
// one handle. It is the entry point for embedding this module.
type Database struct {
	backend      *badger.Backend
	documents    storage.DocumentRepository
	chunks       storage.ChunkRepository
	provider     ai.Provider
	orchestrator *embedding.Orchestrator
	cfg          *config.Config
	logger       *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	cfg      *config.Config
	provider ai.Provider
	logger   *slog.Logger
	inMemory bool
}

// WithConfig supplies a full application config. Defaults are used otherwise.
func WithConfig(cfg *config.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.cfg = cfg
	}
}

// WithProvider injects an AI provider, replacing the OpenAI-compatible one
// built from the config. Useful for tests and alternative backends.
func WithProvider(provider ai.Provider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithLogger sets the logger used by the database and its pipelines.
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// WithInMemory keeps all data in memory. Intended for tests.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// NewDatabase opens the store at filePath and wires the AI provider and
// embedding orchestrator around it.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		cfg:    config.Default(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	documents, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	chunks, err := badger.NewChunkRepository(backend)
	if err != nil {
		documents.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.cfg.AIConfig())
		if err != nil {
			chunks.Close()
			documents.Close()
			backend.Close()
			return nil, err
		}
	}

	orchestrator := embedding.NewOrchestrator(
		func() (ai.Embedder, error) { return provider.Embedder(), nil },
		embedding.WithBatchSize(options.cfg.Embedding.BatchSize),
		embedding.WithBatchDelay(options.cfg.Embedding.BatchDelay()),
		embedding.WithMaxTextLength(options.cfg.Embedding.MaxTextLength),
		embedding.WithLogger(options.logger),
	)

	return &Database{
		backend:      backend,
		documents:    documents,
		chunks:       chunks,
		provider:     provider,
		orchestrator: orchestrator,
		cfg:          options.cfg,
		logger:       options.logger,
	}, nil
}

func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.chunks.Close(); err != nil {
		db.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	if err := db.documents.Close(); err != nil {
		db.logger.Error("error closing document repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) DocumentRepository() storage.DocumentRepository {
	return db.documents
}

func (db *Database) ChunkRepository() storage.ChunkRepository {
	return db.chunks
}

func (db *Database) Orchestrator() *embedding.Orchestrator {
	return db.orchestrator
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	chunkerOpts := db.cfg.ChunkerOptions()
	documentChunker, err := chunker.New(chunkerOpts...)
	if err != nil {
		return nil, err
	}
	defaults := []ingestion.Option{
		ingestion.WithChunker(documentChunker),
		ingestion.WithLogger(db.logger),
	}
	return ingestion.NewPipeline(db.documents, db.chunks, db.orchestrator, db.provider, append(defaults, opts...)...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	weights := search.DefaultWeights()
	weights.Vector = db.cfg.Search.VectorWeight
	weights.Text = db.cfg.Search.TextWeight
	weights.RelaxedThreshold = db.cfg.Search.RelaxedThreshold
	defaults := []search.Option{
		search.WithWeights(weights),
		search.WithLogger(db.logger),
	}
	return search.NewSearcher(db.documents, db.orchestrator, append(defaults, opts...)...)
}

func (db *Database) NewFormatter() *search.Formatter {
	return search.NewFormatter(
		search.WithPreviewLengths(db.cfg.Format.SearchPreviewLength, db.cfg.Format.ListPreviewLength),
		search.WithMaxEntities(db.cfg.Format.MaxEntities),
	)
}

func (db *Database) NewReindexer(progress io.Writer) *reindex.Reindexer {
	return reindex.NewReindexer(db.documents, db.orchestrator, reindex.DefaultConfig(), progress)
}
