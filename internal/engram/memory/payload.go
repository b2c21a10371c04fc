package memory

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrMalformedPayload is returned by ParsePayload when the text-generation
// output is not the expected extraction object. It is the trigger for the
// rule-based fallback strategy, never a crash.
var ErrMalformedPayload = errors.New("memory: malformed extraction payload")

// Payload is the fixed-shape object the generative extraction strategy is
// instructed to return. Every field is an optional array of strings; absent
// fields are treated as empty.
type Payload struct {
	Facts       []string `json:"facts"`
	Preferences []string `json:"preferences"`
	Emotions    []string `json:"emotions"`
	Topics      []string `json:"topics"`
	Entities    []string `json:"entities"`
	Questions   []string `json:"questions"`
	Goals       []string `json:"goals"`
}

// payloadSchema rejects any shape deviation: the payload must be a JSON
// object and each known field, when present, must be an array of strings.
var payloadSchema = jsonschema.MustCompileString("extraction.json", `{
	"type": "object",
	"properties": {
		"facts":       {"type": "array", "items": {"type": "string"}},
		"preferences": {"type": "array", "items": {"type": "string"}},
		"emotions":    {"type": "array", "items": {"type": "string"}},
		"topics":      {"type": "array", "items": {"type": "string"}},
		"entities":    {"type": "array", "items": {"type": "string"}},
		"questions":   {"type": "array", "items": {"type": "string"}},
		"goals":       {"type": "array", "items": {"type": "string"}}
	}
}`)

// ParsePayload decodes and validates a generative extraction payload.
// On any deviation (not JSON, not an object, wrongly typed fields) it
// returns an error wrapping ErrMalformedPayload so callers can fall back to
// rule-based extraction. It never guesses at a partially matching shape.
func ParsePayload(raw string) (Payload, error) {
	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if err := payloadSchema.Validate(decoded); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return p, nil
}
