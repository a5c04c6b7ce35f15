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


package chunker

import (
	"fmt"
	"strings"
)

const (
	// DefaultChunkSize is the window size in words.
	DefaultChunkSize = 500

	// DefaultOverlap is the number of words shared between adjacent windows.
	DefaultOverlap = 50

	// DefaultMinChunkChars filters out windows too small to be worth
	// embedding. Zero disables the filter.
	DefaultMinChunkChars = 50
)

// Chunker splits document text into overlapping word windows for embedding.
type Chunker struct {
	chunkSize     int
	overlap       int
	minChunkChars int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithChunkSize sets the window size in words.
func WithChunkSize(n int) Option {
	return func(c *Chunker) {
		c.chunkSize = n
	}
}

// WithOverlap sets the number of words shared between adjacent windows.
func WithOverlap(n int) Option {
	return func(c *Chunker) {
		c.overlap = n
	}
}

// WithMinChunkChars sets the minimum character count a window must exceed
// to be kept. Zero disables the filter.
func WithMinChunkChars(n int) Option {
	return func(c *Chunker) {
		c.minChunkChars = n
	}
}

// New creates a Chunker. The window must advance by at least one word per
// step, so overlap >= chunkSize is a configuration error, not a runtime
// condition to limp through.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		chunkSize:     DefaultChunkSize,
		overlap:       DefaultOverlap,
		minChunkChars: DefaultMinChunkChars,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d", ErrInvalidChunkSize, c.chunkSize)
	}
	if c.overlap < 0 {
		return nil, fmt.Errorf("%w: overlap %d", ErrOverlapTooLarge, c.overlap)
	}
	if c.overlap >= c.chunkSize {
		return nil, fmt.Errorf("%w: overlap %d >= chunk size %d", ErrOverlapTooLarge, c.overlap, c.chunkSize)
	}

	return c, nil
}

// Chunk splits text into overlapping windows of words. Each window after the
// first starts chunkSize-overlap words past the previous one, so consecutive
// chunks share exactly overlap words. Windows at or under the minimum
// character count are dropped.
func (c *Chunker) Chunk(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := c.chunkSize - c.overlap
	chunks := make([]string, 0, (len(words)+step-1)/step)

	for start := 0; start < len(words); start += step {
		end := start + c.chunkSize
		if end > len(words) {
			end = len(words)
		}

		piece := strings.Join(words[start:end], " ")
		if c.minChunkChars == 0 || len(piece) > c.minChunkChars {
			chunks = append(chunks, piece)
		}

		if end == len(words) {
			break
		}
	}

	return chunks
}

// ChunkSize reports the configured window size in words.
func (c *Chunker) ChunkSize() int { return c.chunkSize }

// Overlap reports the configured overlap in words.
func (c *Chunker) Overlap() int { return c.overlap }
