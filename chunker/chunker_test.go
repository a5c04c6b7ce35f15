package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, err := New()
		require.NoError(t, err)
		assert.Equal(t, DefaultChunkSize, c.ChunkSize())
		assert.Equal(t, DefaultOverlap, c.Overlap())
	})

	t.Run("overlap equal to chunk size fails", func(t *testing.T) {
		_, err := New(WithChunkSize(50), WithOverlap(50))
		assert.ErrorIs(t, err, ErrOverlapTooLarge)
	})

	t.Run("overlap larger than chunk size fails", func(t *testing.T) {
		_, err := New(WithChunkSize(50), WithOverlap(60))
		assert.ErrorIs(t, err, ErrOverlapTooLarge)
	})

	t.Run("negative overlap fails", func(t *testing.T) {
		_, err := New(WithChunkSize(50), WithOverlap(-1))
		assert.ErrorIs(t, err, ErrOverlapTooLarge)
	})

	t.Run("zero chunk size fails", func(t *testing.T) {
		_, err := New(WithChunkSize(0))
		assert.ErrorIs(t, err, ErrInvalidChunkSize)
	})
}

func TestChunk(t *testing.T) {
	t.Run("deterministic windows", func(t *testing.T) {
		c, err := New(WithChunkSize(3), WithOverlap(1), WithMinChunkChars(0))
		require.NoError(t, err)

		chunks := c.Chunk("w1 w2 w3 w4 w5 w6")
		assert.Equal(t, []string{"w1 w2 w3", "w3 w4 w5", "w5 w6"}, chunks)
	})

	t.Run("text shorter than window yields one chunk", func(t *testing.T) {
		c, err := New(WithChunkSize(100), WithOverlap(10), WithMinChunkChars(0))
		require.NoError(t, err)

		chunks := c.Chunk("short clinical note")
		assert.Equal(t, []string{"short clinical note"}, chunks)
	})

	t.Run("empty text yields no chunks", func(t *testing.T) {
		c, err := New()
		require.NoError(t, err)
		assert.Empty(t, c.Chunk("   \n\t "))
	})

	t.Run("adjacent chunks share overlap words", func(t *testing.T) {
		c, err := New(WithChunkSize(10), WithOverlap(3), WithMinChunkChars(0))
		require.NoError(t, err)

		words := make([]string, 40)
		for i := range words {
			words[i] = strings.Repeat("w", 3)
		}
		chunks := c.Chunk(strings.Join(words, " "))
		require.Greater(t, len(chunks), 1)

		for i := 1; i < len(chunks); i++ {
			prev := strings.Fields(chunks[i-1])
			cur := strings.Fields(chunks[i])
			shared := prev[len(prev)-3:]
			assert.Equal(t, shared, cur[:3])
		}
	})

	t.Run("small tail filtered by min chars", func(t *testing.T) {
		c, err := New(WithChunkSize(3), WithOverlap(1), WithMinChunkChars(5))
		require.NoError(t, err)

		// Tail window "w5 w6" has 5 chars, not above the threshold
		chunks := c.Chunk("wordone wordtwo wordthree wordfour w5 w6")
		for _, chunk := range chunks {
			assert.Greater(t, len(chunk), 5)
		}
	})

	t.Run("whitespace normalization", func(t *testing.T) {
		c, err := New(WithChunkSize(2), WithOverlap(0), WithMinChunkChars(0))
		require.NoError(t, err)

		chunks := c.Chunk("a\n\nb\t c   d")
		assert.Equal(t, []string{"a b", "c d"}, chunks)
	})
}
