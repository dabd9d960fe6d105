package events

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrInvalidEvent is returned when a payload does not match its published schema.
var ErrInvalidEvent = errors.New("event payload does not match schema")

const sizeResolvedSchemaURL = "urn:sleeveselector:events:sizing.resolved"

// SizeResolvedSchema is the contract consumers of the sizing topic rely on.
const SizeResolvedSchema = `{
  "type": "object",
  "title": "SizeResolved",
  "properties": {
    "event_id": {"type": "string", "minLength": 1},
    "request_id": {"type": "string"},
    "table": {"type": "string", "minLength": 1},
    "label": {"type": "string", "minLength": 1},
    "fit": {"enum": ["exact", "ambiguous", "nearest"]},
    "distance": {"type": "number", "minimum": 0},
    "unit": {"enum": ["cm", "mm", "in"]},
    "measurements": {
      "type": "object",
      "additionalProperties": {"type": "number", "exclusiveMinimum": 0}
    },
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["event_id", "table", "label", "fit", "distance", "unit", "measurements", "occurred_at"],
  "additionalProperties": false
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func sizeResolvedSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(SizeResolvedSchema)))
		if err != nil {
			schemaErr = fmt.Errorf("unmarshal event schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(sizeResolvedSchemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add event schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(sizeResolvedSchemaURL)
	})
	return compiledSchema, schemaErr
}

// validatePayload checks an encoded SizeResolved against SizeResolvedSchema.
func validatePayload(body []byte) error {
	schema, err := sizeResolvedSchema()
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if err := schema.Validate(inst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	return nil
}
