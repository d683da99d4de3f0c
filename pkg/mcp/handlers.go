package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rhobs/simple-mcp/pkg/dispatch"
)

// ToolHandler adapts the dispatcher to an MCP tool handler for the named tool.
// Tool failures are encoded in the result, never in the error return.
func ToolHandler(d *dispatch.Dispatcher, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return d.Call(ctx, name, req.GetArguments()).ToMCPResult()
	}
}
