package tools

// ToolDef defines a tool that can be converted to different formats (MCP, JSON schema, docs)
type ToolDef struct {
	Name        string
	Description string
	Title       string
	Params      []ParamDef
	ReadOnly    bool
	Destructive bool
	Idempotent  bool
	OpenWorld   bool
}

// ParamDef defines a tool parameter
type ParamDef struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	// Enum restricts the accepted values when non-empty.
	Enum []string
	// Default is substituted when the argument is absent or empty.
	Default string
}

// ParamType represents the type of a parameter
type ParamType string

const (
	ParamTypeString ParamType = "string"
)

// Param returns the parameter with the given name.
func (d ToolDef) Param(name string) (ParamDef, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamDef{}, false
}
