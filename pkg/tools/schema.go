package tools

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
)

// Descriptor is the public description of a tool as returned by tools/list.
type Descriptor struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
}

// Descriptor renders the ToolDef with a freshly built input schema.
func (d ToolDef) Descriptor() Descriptor {
	return Descriptor{
		Name:        d.Name,
		Description: d.Description,
		InputSchema: d.InputSchema(),
	}
}

// InputSchema builds the JSON schema of the tool's arguments.
func (d ToolDef) InputSchema() *jsonschema.Schema {
	properties := make(map[string]*jsonschema.Schema, len(d.Params))
	var required []string

	for _, param := range d.Params {
		schema := &jsonschema.Schema{
			Type:        string(param.Type),
			Description: param.Description,
		}
		for _, v := range param.Enum {
			schema.Enum = append(schema.Enum, v)
		}
		if param.Default != "" {
			// marshaling a string cannot fail
			schema.Default, _ = json.Marshal(param.Default)
		}

		properties[param.Name] = schema

		if param.Required {
			required = append(required, param.Name)
		}
	}

	inputSchema := &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
	}

	if len(required) > 0 {
		inputSchema.Required = required
	}

	return inputSchema
}
