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


package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/poiesic/medisearch/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// EntityExtractor implements ai.EntityExtractor using OpenAI-compatible chat APIs.
type EntityExtractor struct {
	client llms.Model
	logger *slog.Logger
}

var _ ai.EntityExtractor = (*EntityExtractor)(nil)

// entity is an internal type used for JSON unmarshaling.
// It matches the structure expected from the LLM.
type entity struct {
	Text       string  `json:"text"`
	Label      string  `json:"label"`
	Confidence float32 `json:"confidence"`
}

// tagging is the wrapper structure for the LLM's JSON response.
type tagging struct {
	Entities   []entity `json:"entities"`
	Confidence float32  `json:"confidence"`
}

// newEntityExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEntityExtractor(config *ai.Config) (*EntityExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ExtractorHost),
		openai.WithToken("none"),
		openai.WithModel(config.ExtractorModel),
	)
	if err != nil {
		return nil, err
	}

	return &EntityExtractor{
		client: client,
		logger: slog.Default().With("component", "openai-entity-extractor"),
	}, nil
}

// NewEntityExtractor creates a new entity extractor using the provided configuration.
//
// Returns ai.EntityExtractor interface to enforce abstraction.
func NewEntityExtractor(config *ai.Config) (ai.EntityExtractor, error) {
	return newEntityExtractor(config)
}

// ExtractEntities tags medical entity spans in text using an LLM.
// Span offsets are located in the source text after tagging; spans the model
// paraphrased (not literally present in the text) get offsets of -1.
func (e *EntityExtractor) ExtractEntities(ctx context.Context, text string) (*ai.ExtractionResult, error) {
	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildSystemPrompt())},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(text)},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result tagging
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			e.logger.Debug("no choices returned from model")
			return &ai.ExtractionResult{Entities: []ai.ExtractedEntity{}}, nil
		}

		responseText := stripCodeFences(response.Choices[0].Content)
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			e.logger.Warn("error parsing extractor response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		e.logger.Error("failed to parse extractor response after retries", "err", lastErr)
		return nil, lastErr
	}

	// Locate spans and convert. Unknown labels pass through untouched.
	entities := make([]ai.ExtractedEntity, 0, len(result.Entities))
	for _, ent := range result.Entities {
		if ent.Text == "" {
			continue
		}
		start, end := locateSpan(text, ent.Text)
		entities = append(entities, ai.ExtractedEntity{
			Text:       ent.Text,
			Label:      strings.ToUpper(strings.TrimSpace(ent.Label)),
			Confidence: ent.Confidence,
			Start:      start,
			End:        end,
		})
	}

	confidence := result.Confidence
	if confidence == 0 && len(entities) > 0 {
		// Older models omit the overall confidence; average the spans.
		var sum float32
		for _, ent := range entities {
			sum += ent.Confidence
		}
		confidence = sum / float32(len(entities))
	}

	e.logger.Debug("extracted entities", "count", len(entities))

	return &ai.ExtractionResult{Entities: entities, Confidence: confidence}, nil
}

// locateSpan finds the byte offsets of a tagged span in the source text,
// case-insensitively. Returns (-1, -1) when the span is not present verbatim.
func locateSpan(text, span string) (int, int) {
	idx := strings.Index(text, span)
	if idx < 0 {
		idx = strings.Index(strings.ToLower(text), strings.ToLower(span))
	}
	if idx < 0 {
		return -1, -1
	}
	return idx, idx + len(span)
}

// stripCodeFences removes markdown code fences some models wrap JSON in.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
