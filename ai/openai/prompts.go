package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/medisearch/ai"
)

const taggingResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "entities": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "text": {
            "type": "string"
          },
          "label": {
            "type": "string"
          },
          "confidence": {
            "type": "number",
            "minimum": 0,
            "maximum": 1
          }
        },
        "required": ["text", "label", "confidence"],
        "additionalProperties": false
      }
    },
    "confidence": {
      "type": "number",
      "minimum": 0,
      "maximum": 1
    }
  },
  "required": ["entities"],
  "additionalProperties": false
}`

const taggingPromptTemplate = `Extract medical entities from the given clinical text and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- The "text" field must be the exact span as it appears in the source text. Do not paraphrase or normalize.
- The "label" field must be one of: %s.
- Confidence is a number from 0.0 (uncertain) to 1.0 (certain) reflecting how sure you are about the span and its label.
- Include only entities that are explicitly mentioned in the text. Do not hallucinate.
- Dosages and vital sign readings are MEASUREMENT.
- If no entities can be identified, return "entities": [].
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.



Example (clinical note):
Input: "Patient presents with hypertension, prescribed lisinopril 10mg daily."
Output:
{
  "entities": [
    {"text":"hypertension","label":"CONDITION","confidence":0.98},
    {"text":"lisinopril","label":"MEDICATION","confidence":0.97},
    {"text":"10mg daily","label":"MEASUREMENT","confidence":0.9}
  ],
  "confidence": 0.95
}

Example (lab report, terse):
Input: "CBC drawn 2024-03-01. WBC 11.2. Mild fever noted."
Output:
{
  "entities": [
    {"text":"CBC","label":"PROCEDURE","confidence":0.92},
    {"text":"2024-03-01","label":"DATE","confidence":0.99},
    {"text":"WBC 11.2","label":"MEASUREMENT","confidence":0.9},
    {"text":"fever","label":"SYMPTOM","confidence":0.95}
  ],
  "confidence": 0.94
}

Example (no entities):
Input: "Follow-up scheduled as discussed."
Output:
{
  "entities": [],
  "confidence": 0.8
}`

// buildSystemPrompt creates the system prompt with the entity label set embedded.
func buildSystemPrompt() string {
	return fmt.Sprintf(taggingPromptTemplate,
		taggingResponseSchema,
		strings.Join(ai.EntityLabels, ", "))
}
