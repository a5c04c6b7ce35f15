package openai

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/medisearch/ai"
)

// PlainTextExtractor implements ai.TextExtractor for plain-text document
// files. Binary formats (scans, PDFs) need an OCR-capable extractor plugged
// in via the provider instead.
type PlainTextExtractor struct {
	logger *slog.Logger
}

var _ ai.TextExtractor = (*PlainTextExtractor)(nil)

// NewPlainTextExtractor creates a text extractor for plain-text files.
func NewPlainTextExtractor() *PlainTextExtractor {
	return &PlainTextExtractor{
		logger: slog.Default().With("component", "plaintext-extractor"),
	}
}

// Extract reads the referenced file and returns its text content.
// The hint, when set, overrides extension-based format detection.
func (x *PlainTextExtractor) Extract(ctx context.Context, fileRef string, hint string) (*ai.ExtractedText, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format := strings.ToLower(strings.TrimSpace(hint))
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(fileRef)), ".")
	}

	switch format {
	case "", "txt", "text", "md", "markdown":
		// Plain text formats handled below
	default:
		return nil, fmt.Errorf("unsupported document format %q", format)
	}

	data, err := os.ReadFile(fileRef)
	if err != nil {
		x.logger.Error("failed to read document file", "ref", fileRef, "err", err)
		return nil, err
	}

	text := strings.TrimSpace(string(data))
	x.logger.Debug("extracted text from file", "ref", fileRef, "length", len(text))

	return &ai.ExtractedText{
		Text:       text,
		Confidence: 1.0,
		PageCount:  1,
		Metadata:   map[string]string{"format": "text", "source": fileRef},
	}, nil
}
