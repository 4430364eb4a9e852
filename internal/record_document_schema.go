package internal

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

// recordDocumentSchema is the JSON Schema every record document must satisfy.
const recordDocumentSchema = `{
  "type": "object",
  "required": ["name"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "table": {"type": "string"},
    "relationshipsRequiredByDefault": {"type": "boolean"},
    "columns": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["nullable"],
        "properties": {"nullable": {"type": "boolean"}}
      }
    },
    "validations": {
      "type": "object",
      "additionalProperties": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["kind"],
          "properties": {
            "kind": {"type": "string", "minLength": 1},
            "conditions": {"type": "array", "items": {"enum": ["if", "unless", "on"]}}
          }
        }
      }
    },
    "relationships": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "cardinality"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "cardinality": {"enum": ["belongs_to", "has_one", "has_many"]},
          "foreignKey": {"type": "string"},
          "className": {"type": "string"},
          "required": {"type": ["boolean", "null"]},
          "optional": {"type": ["boolean", "null"]},
          "polymorphic": {"type": "boolean"}
        }
      }
    }
  }
}`

var resolvedRecordDocumentSchema = sync.OnceValues(func() (*jsonschema.Resolved, error) {
	var schema jsonschema.Schema
	if err := json.Unmarshal([]byte(recordDocumentSchema), &schema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record document schema: %w", err)
	}
	resolved, err := schema.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve record document schema: %w", err)
	}
	return resolved, nil
})

// validateRecordDocument checks a decoded JSON document against recordDocumentSchema.
func validateRecordDocument(instance any) error {
	resolved, err := resolvedRecordDocumentSchema()
	if err != nil {
		return err
	}
	if err := resolved.Validate(instance); err != nil {
		return fmt.Errorf("JSON validation failed: %w", err)
	}
	return nil
}
