package fixtures

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

// Schema is the JSON schema every fixture file must satisfy.
const Schema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["routes"],
  "additionalProperties": false,
  "properties": {
    "baseUrl": {"type": "string"},
    "headers": {"$ref": "#/definitions/headers"},
    "routes": {
      "type": "array",
      "items": {"$ref": "#/definitions/route"}
    }
  },
  "definitions": {
    "headers": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    },
    "scalar": {"type": ["string", "number", "boolean"]},
    "route": {
      "type": "object",
      "required": ["url"],
      "additionalProperties": false,
      "not": {"required": ["body", "json"]},
      "properties": {
        "name": {"type": "string"},
        "url": {"type": "string", "minLength": 1},
        "method": {"type": "string", "pattern": "^[A-Za-z]+$"},
        "status": {"type": "integer", "minimum": 100, "maximum": 599},
        "headers": {"$ref": "#/definitions/headers"},
        "query": {
          "type": "object",
          "additionalProperties": {
            "anyOf": [
              {"$ref": "#/definitions/scalar"},
              {"type": "array", "items": {"$ref": "#/definitions/scalar"}, "minItems": 1}
            ]
          }
        },
        "body": {"type": "string"},
        "json": {}
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(Schema)

// Validate checks a YAML or JSON fixture document against Schema.
func Validate(data []byte) error {
	doc, err := toJSON(data)
	if err != nil {
		return err
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return errors.Wrap(err, "schema validation error")
	}

	if result.Valid() {
		return nil
	}

	var problems []string
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return errors.Errorf("schema validation failed: %s", strings.Join(problems, "; "))
}
