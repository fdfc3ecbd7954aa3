package tools

import (
	"context"
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// ToolFunc handles one invocation with its raw JSON arguments.
type ToolFunc func(ctx context.Context, input json.RawMessage) (string, error)

type ToolDefinition struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
	Function    ToolFunc
}

// GenerateSchema reflects T into an inlined object schema. Fields without
// omitempty are required.
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// RawInputSchema renders the input schema as a bare JSON object schema,
// without the $schema/$id envelope.
func (d ToolDefinition) RawInputSchema() (json.RawMessage, error) {
	out := map[string]any{"type": "object"}
	if d.InputSchema != nil {
		if d.InputSchema.Properties != nil {
			out["properties"] = d.InputSchema.Properties
		}
		if len(d.InputSchema.Required) > 0 {
			out["required"] = d.InputSchema.Required
		}
	}
	if _, ok := out["properties"]; !ok {
		out["properties"] = map[string]any{}
	}
	return json.Marshal(out)
}
