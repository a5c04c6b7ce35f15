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


package reindex

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/medisearch/core"
	"github.com/poiesic/medisearch/embedding"
	"github.com/poiesic/medisearch/storage"
)

// Config holds configuration for the reindexing operation.
type Config struct {
	// BatchSize is the number of documents to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of documents)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Workers is the number of batches embedded concurrently
	Workers int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
		Workers:        2,
	}
}

// Reindexer re-embeds every stored document, typically after switching
// embedding models. Batches fan out on a worker pool; each batch retries
// transient failures with exponential backoff.
type Reindexer struct {
	repo      storage.DocumentRepository
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *DocumentIterator
}

// NewReindexer creates a new reindexer.
// progress: where to write progress output (typically os.Stderr)
func NewReindexer(repo storage.DocumentRepository, orchestrator *embedding.Orchestrator, config *Config, progress io.Writer) *Reindexer {
	if config == nil {
		config = DefaultConfig()
	}

	processor := NewBatchProcessor(repo, orchestrator, config.MaxRetries, config.RetryDelay)
	iterator := NewDocumentIterator(repo, config.BatchSize)

	return &Reindexer{
		repo:      repo,
		config:    config,
		progress:  progress,
		processor: processor,
		iterator:  iterator,
	}
}

// Run executes the reindexing operation.
// All documents in the database are re-embedded with the configured
// orchestrator. Progress is reported to the configured writer.
func (r *Reindexer) Run(ctx context.Context) error {
	total, err := r.repo.CountDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to count documents: %w", err)
	}

	if total == 0 {
		fmt.Fprintf(r.progress, "No documents found in database (0 documents)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reindex of %d documents (batch size: %d, workers: %d)\n",
		total, r.config.BatchSize, r.config.Workers)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	workers := r.config.Workers
	if workers < 1 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return err
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	err = r.iterator.ForEach(ctx, func(documents []*core.Document) error {
		// Stop feeding the pool once a batch has failed
		mu.Lock()
		failed := firstErr
		mu.Unlock()
		if failed != nil {
			return failed
		}

		batch := documents
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if procErr := r.processor.Process(ctx, batch); procErr != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = procErr
				}
				mu.Unlock()
				return
			}
			tracker.Increment(len(batch))
		})
		if submitErr != nil {
			wg.Done()
			return submitErr
		}
		return nil
	})

	wg.Wait()

	if err != nil {
		return err
	}
	if firstErr != nil {
		return firstErr
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reindex complete. Processed %d documents in %v (%.1f documents/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}
