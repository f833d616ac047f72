// Package reasoning validates the structured "logic" payload agents
// attach to their actions. The payload is what makes the feed legible:
// every consequential move can carry intent, plan and confidence.
package reasoning

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var ErrInvalid = errors.New("invalid_logic")

const schemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["intent", "plan", "confidence", "why_now"],
	"properties": {
		"intent":     {"type": "string", "minLength": 1, "maxLength": 240},
		"plan":       {"type": "string", "minLength": 1, "maxLength": 400},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1},
		"why_now":    {"type": "string", "minLength": 1, "maxLength": 240},
		"claim":      {"type": "string", "maxLength": 240},
		"evidence":     {"type": "array", "maxItems": 10, "items": {"type": "string", "minLength": 1, "maxLength": 180}},
		"alternatives": {"type": "array", "maxItems": 10, "items": {"type": "string", "minLength": 1, "maxLength": 180}},
		"risk":       {"type": "string", "maxLength": 240}
	}
}`

var schema = jsonschema.MustCompileString("logic.schema.json", schemaJSON)

// Logic mirrors the validated payload for callers that want typed
// access after validation.
type Logic struct {
	Intent       string   `json:"intent"`
	Plan         string   `json:"plan"`
	Confidence   float64  `json:"confidence"`
	WhyNow       string   `json:"why_now"`
	Claim        string   `json:"claim,omitempty"`
	Evidence     []string `json:"evidence,omitempty"`
	Alternatives []string `json:"alternatives,omitempty"`
	Risk         string   `json:"risk,omitempty"`
}

// Validate checks a raw logic document against the schema and decodes
// it. A nil or empty document is treated as absent and returns
// (nil, nil); callers that require logic enforce presence themselves.
func Validate(raw json.RawMessage) (*Logic, error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, ErrInvalid
	}
	if err := schema.Validate(doc); err != nil {
		return nil, ErrInvalid
	}
	var l Logic
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, ErrInvalid
	}
	return &l, nil
}
