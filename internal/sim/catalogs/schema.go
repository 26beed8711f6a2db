package catalogs

import (
	"encoding/json"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const blocksSchemaURL = "blocks.schema.json"

const blocksSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "additionalProperties": false,
    "required": ["id"],
    "properties": {
      "id": {"type": "string", "pattern": "^[A-Z][A-Z0-9_]*$"},
      "solid": {"type": "boolean"},
      "fluid": {"type": "boolean"},
      "rotatable": {"type": "boolean"},
      "y_rotatable": {"type": "boolean"},
      "boxes": {
        "type": "array",
        "items": {
          "type": "array",
          "minItems": 6,
          "maxItems": 6,
          "items": {"type": "number", "minimum": 0, "maximum": 1}
        }
      }
    }
  }
}`

var (
	blocksSchemaOnce sync.Once
	blocksSchemaC    *jsonschema.Schema
	blocksSchemaErr  error
)

func validateBlocks(raw []byte) error {
	blocksSchemaOnce.Do(func() {
		blocksSchemaC, blocksSchemaErr = jsonschema.CompileString(blocksSchemaURL, blocksSchema)
	})
	if blocksSchemaErr != nil {
		return blocksSchemaErr
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	return blocksSchemaC.Validate(doc)
}
