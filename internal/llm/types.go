package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Command is one candidate shell command proposed by the model
type Command struct {
	Command              string  `json:"command" validate:"required"`
	ShortExplanation     string  `json:"short_explanation"`
	IsDangerous          bool    `json:"is_dangerous"`
	DangerousExplanation *string `json:"dangerous_explanation,omitempty"`
}

// DangerNote returns the explanation of why the command is dangerous, if any
func (c Command) DangerNote() string {
	if c.DangerousExplanation == nil {
		return ""
	}
	return *c.DangerousExplanation
}

// OptionsResponse is the structured reply a backend produces for one query
type OptionsResponse struct {
	Commands []Command `json:"commands" validate:"dive"`
	IsValid  bool      `json:"is_valid"`
}

// Validate checks the response against the schema constraints that JSON
// decoding alone does not enforce.
func (r OptionsResponse) Validate() error {
	return validate.Struct(r)
}

// ParseOptions decodes a model reply into an OptionsResponse. Both top-level
// fields must be present and every command must be non-empty.
func ParseOptions(text string) (*OptionsResponse, error) {
	text = stripCodeFence(text)
	if text == "" {
		return nil, &ParseError{Input: text, Err: ErrEmptyResponse}
	}

	var wire struct {
		Commands *[]Command `json:"commands"`
		IsValid  *bool      `json:"is_valid"`
	}
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		return nil, &ParseError{Input: text, Err: err}
	}
	if wire.Commands == nil {
		return nil, &ParseError{Input: text, Err: errors.New(`missing field "commands"`)}
	}
	if wire.IsValid == nil {
		return nil, &ParseError{Input: text, Err: errors.New(`missing field "is_valid"`)}
	}

	resp := &OptionsResponse{Commands: *wire.Commands, IsValid: *wire.IsValid}
	if err := resp.Validate(); err != nil {
		return nil, &ParseError{Input: text, Err: fmt.Errorf("schema validation failed: %w", err)}
	}
	return resp, nil
}

// stripCodeFence removes a markdown code fence some local models wrap JSON in
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// OptionsSchema returns the JSON Schema for OptionsResponse in the strict
// dialect accepted by OpenAI-compatible structured outputs.
func OptionsSchema() map[string]any {
	command := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"command":               map[string]any{"type": "string"},
			"short_explanation":     map[string]any{"type": "string"},
			"is_dangerous":          map[string]any{"type": "boolean"},
			"dangerous_explanation": map[string]any{"type": []string{"string", "null"}},
		},
		"required":             []string{"command", "short_explanation", "is_dangerous", "dangerous_explanation"},
		"additionalProperties": false,
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"commands": map[string]any{"type": "array", "items": command},
			"is_valid": map[string]any{"type": "boolean"},
		},
		"required":             []string{"commands", "is_valid"},
		"additionalProperties": false,
	}
}

// GeminiSchema returns the OptionsResponse schema in the OpenAPI subset used by
// Gemini's responseSchema.
func GeminiSchema() map[string]any {
	command := map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"command":               map[string]any{"type": "STRING"},
			"short_explanation":     map[string]any{"type": "STRING"},
			"is_dangerous":          map[string]any{"type": "BOOLEAN"},
			"dangerous_explanation": map[string]any{"type": "STRING", "nullable": true},
		},
		"required":         []string{"command", "short_explanation", "is_dangerous"},
		"propertyOrdering": []string{"command", "short_explanation", "is_dangerous", "dangerous_explanation"},
	}
	return map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"commands": map[string]any{"type": "ARRAY", "items": command},
			"is_valid": map[string]any{"type": "BOOLEAN"},
		},
		"required":         []string{"commands", "is_valid"},
		"propertyOrdering": []string{"commands", "is_valid"},
	}
}
