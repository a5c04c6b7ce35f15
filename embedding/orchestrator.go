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


package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/poiesic/medisearch/ai"
	"github.com/poiesic/medisearch/core"
)

const (
	// DefaultBatchSize is the number of texts sent to the model per batch.
	DefaultBatchSize = 5

	// DefaultBatchDelay is the pause between consecutive batches, giving
	// local model servers room to breathe.
	DefaultBatchDelay = 100 * time.Millisecond

	// DefaultMaxTextLength is the character limit applied before embedding.
	DefaultMaxTextLength = 8000
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	charsetRe    = regexp.MustCompile(`[^\w \-.,;:!?()]`)
)

// Factory produces the embedding collaborator on first use. Loading a model
// (or dialing a remote service) is expensive, so the orchestrator defers it
// until an embedding is actually requested.
type Factory func() (ai.Embedder, error)

// Orchestrator coordinates text preprocessing, batched embedding, and
// similarity computation on top of a lazily initialized ai.Embedder.
// Concurrent first calls share a single initialization.
type Orchestrator struct {
	factory Factory

	once     sync.Once
	embedder ai.Embedder
	initErr  error

	batchSize     int
	batchDelay    time.Duration
	maxTextLength int
	logger        *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithBatchSize sets the number of texts embedded per batch.
func WithBatchSize(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithBatchDelay sets the pause between consecutive batches.
func WithBatchDelay(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.batchDelay = d
		}
	}
}

// WithMaxTextLength sets the character limit applied during preprocessing.
func WithMaxTextLength(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxTextLength = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator creates an orchestrator around the given embedder factory.
func NewOrchestrator(factory Factory, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		factory:       factory,
		batchSize:     DefaultBatchSize,
		batchDelay:    DefaultBatchDelay,
		maxTextLength: DefaultMaxTextLength,
		logger:        slog.Default().With("component", "embedding-orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewOrchestratorFor wraps an already constructed embedder.
func NewOrchestratorFor(embedder ai.Embedder, opts ...Option) *Orchestrator {
	return NewOrchestrator(func() (ai.Embedder, error) { return embedder, nil }, opts...)
}

func (o *Orchestrator) init() (ai.Embedder, error) {
	o.once.Do(func() {
		o.logger.Debug("initializing embedding collaborator")
		o.embedder, o.initErr = o.factory()
		if o.initErr != nil {
			o.logger.Error("embedder initialization failed", "err", o.initErr)
		}
	})
	return o.embedder, o.initErr
}

// Preprocess normalizes text before embedding: collapses whitespace runs to
// single spaces, strips characters outside the model-safe set, trims, and
// truncates to the configured length.
func (o *Orchestrator) Preprocess(text string) string {
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = charsetRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	if len(text) > o.maxTextLength {
		text = text[:o.maxTextLength]
	}
	return text
}

// EmbedText preprocesses and embeds a single text.
func (o *Orchestrator) EmbedText(ctx context.Context, text string) ([]float32, error) {
	embedder, err := o.init()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrEmbedding, err)
	}
	vector, err := embedder.EmbedText(ctx, o.Preprocess(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrEmbedding, err)
	}
	return vector, nil
}

// EmbedBatch preprocesses and embeds texts in fixed-size batches with a
// context-aware delay between batches. The returned slice is index-aligned
// with the input.
func (o *Orchestrator) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embedder, err := o.init()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrEmbedding, err)
	}

	cleaned := make([]string, len(texts))
	for i, t := range texts {
		cleaned[i] = o.Preprocess(t)
	}

	vectors := make([][]float32, 0, len(cleaned))
	for start := 0; start < len(cleaned); start += o.batchSize {
		end := start + o.batchSize
		if end > len(cleaned) {
			end = len(cleaned)
		}

		if start > 0 && o.batchDelay > 0 {
			timer := time.NewTimer(o.batchDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		o.logger.Debug("embedding batch", "from", start, "to", end, "total", len(cleaned))
		batch, err := embedder.EmbedTexts(ctx, cleaned[start:end])
		if err != nil {
			return nil, fmt.Errorf("%w: batch %d-%d: %v", core.ErrEmbedding, start, end, err)
		}
		vectors = append(vectors, batch...)
	}

	return vectors, nil
}

// EmbedQuery embeds a search query, optionally composed with surrounding
// context to steer the model.
func (o *Orchestrator) EmbedQuery(ctx context.Context, query string, queryContext string) ([]float32, error) {
	text := query
	if queryContext != "" {
		text = fmt.Sprintf("Context: %s\n\nQuery: %s", queryContext, query)
	}
	return o.EmbedText(ctx, text)
}

// ModelInfo reports the underlying model, initializing it if needed.
func (o *Orchestrator) ModelInfo() (ai.ModelInfo, error) {
	embedder, err := o.init()
	if err != nil {
		return ai.ModelInfo{}, err
	}
	return embedder.ModelInfo(), nil
}

// Similarity computes the cosine similarity of two vectors. Vectors of
// different lengths come from different models and cannot be compared.
func Similarity(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", core.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB))), nil
}
