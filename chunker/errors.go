package chunker

import "errors"

var (
	// ErrOverlapTooLarge indicates the overlap leaves no forward progress
	// between windows.
	ErrOverlapTooLarge = errors.New("chunk overlap must be smaller than chunk size")

	// ErrInvalidChunkSize indicates a non-positive window size.
	ErrInvalidChunkSize = errors.New("chunk size must be positive")
)
