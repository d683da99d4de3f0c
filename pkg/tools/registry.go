package tools

import (
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// Registry is an immutable, ordered set of tools.
type Registry struct {
	tools  []Tool
	byName map[string]int
}

// New builds a registry from tools, keeping their order. Names must be
// unique and every tool needs a handler.
func New(tools ...Tool) (*Registry, error) {
	r := &Registry{
		tools:  make([]Tool, 0, len(tools)),
		byName: make(map[string]int, len(tools)),
	}
	for _, t := range tools {
		if t.Name == "" {
			return nil, errors.New("tool name must not be empty")
		}
		if t.Handler == nil {
			return nil, fmt.Errorf("tool %s has no handler", t.Name)
		}
		if _, dup := r.byName[t.Name]; dup {
			return nil, fmt.Errorf("duplicate tool name: %s", t.Name)
		}
		r.byName[t.Name] = len(r.tools)
		r.tools = append(r.tools, t)
	}
	return r, nil
}

// NewRegistry returns the registry of the built-in tools: calculator and
// text_analyzer, in that order.
func NewRegistry() *Registry {
	r, err := New(Calculator(), TextAnalyzer())
	if err != nil {
		panic(err)
	}
	return r
}

// List returns the descriptors of all tools. It is side-effect free and
// returns equal, independently allocated sequences on every call.
func (r *Registry) List() []Descriptor {
	descriptors := make([]Descriptor, 0, len(r.tools))
	for _, t := range r.tools {
		descriptors = append(descriptors, t.Descriptor())
	}
	return descriptors
}

// Names returns the tool names in registry order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for _, t := range r.tools {
		names = append(names, t.Name)
	}
	return names
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Tool{}, false
	}
	return r.tools[i], true
}

// MCPTools returns the tools as MCP tool definitions, in registry order.
func (r *Registry) MCPTools() []mcp.Tool {
	result := make([]mcp.Tool, 0, len(r.tools))
	for _, t := range r.tools {
		result = append(result, t.ToMCPTool())
	}
	return result
}
