package tools

import "github.com/mark3labs/mcp-go/mcp"

// ToMCPTool converts a ToolDef to an mcp.Tool
func (d ToolDef) ToMCPTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription(d.Description),
		mcp.WithReadOnlyHintAnnotation(d.ReadOnly),
		mcp.WithDestructiveHintAnnotation(d.Destructive),
		mcp.WithIdempotentHintAnnotation(d.Idempotent),
		mcp.WithOpenWorldHintAnnotation(d.OpenWorld),
	}
	if d.Title != "" {
		opts = append(opts, mcp.WithTitleAnnotation(d.Title))
	}

	for _, param := range d.Params {
		switch param.Type {
		case ParamTypeString:
			stringOpts := []mcp.PropertyOption{mcp.Description(param.Description)}
			if param.Required {
				stringOpts = append(stringOpts, mcp.Required())
			}
			if len(param.Enum) > 0 {
				stringOpts = append(stringOpts, mcp.Enum(param.Enum...))
			}
			if param.Default != "" {
				stringOpts = append(stringOpts, mcp.DefaultString(param.Default))
			}
			opts = append(opts, mcp.WithString(param.Name, stringOpts...))
		}
	}

	return mcp.NewTool(d.Name, opts...)
}
