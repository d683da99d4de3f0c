package resultutil

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// ContentTypeText is the only content type tools produce.
const ContentTypeText = "text"

// Content is a single entry of a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is the envelope returned for every tool call, success or failure.
// It always holds at least one content entry. Failures have the same shape
// as successes and are only distinguishable through IsError.
type Result struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// NewTextResult creates a successful result with a single text entry.
func NewTextResult(text string) *Result {
	return &Result{
		Content: []Content{{Type: ContentTypeText, Text: text}},
	}
}

// NewErrorResult creates an error result for a failed call of the named tool.
// The message of err is embedded unmodified.
func NewErrorResult(toolName string, err error) *Result {
	return &Result{
		Content: []Content{{Type: ContentTypeText, Text: fmt.Sprintf("Error executing tool %s: %s", toolName, err.Error())}},
		IsError: true,
	}
}

// Text returns the text of all content entries joined by newlines.
func (r *Result) Text() string {
	texts := make([]string, 0, len(r.Content))
	for _, c := range r.Content {
		texts = append(texts, c.Text)
	}
	return strings.Join(texts, "\n")
}

// ToMCPResult converts the Result to an MCP CallToolResult.
// Returns (result, nil) following the MCP pattern where errors
// are encoded in the result, not the error return value.
func (r *Result) ToMCPResult() (*mcp.CallToolResult, error) {
	content := make([]mcp.Content, 0, len(r.Content))
	for _, c := range r.Content {
		content = append(content, mcp.NewTextContent(c.Text))
	}
	return &mcp.CallToolResult{
		Content: content,
		IsError: r.IsError,
	}, nil
}
