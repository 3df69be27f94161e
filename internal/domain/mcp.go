package domain

import "context"

// ToolDefinition represents an MCP tool definition as returned by
// tools/list. Both schemas are the raw document form with $ref pointers
// left intact: callers introspect contracts, resolution stays internal.
type ToolDefinition struct {
	Name         string                 `json:"name"`
	Description  string                 `json:"description"`
	InputSchema  map[string]interface{} `json:"inputSchema"`
	OutputSchema map[string]interface{} `json:"outputSchema"`
}

// ToolRequest represents an MCP tool call request.
// This is the request format when a client invokes a tool.
type ToolRequest struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// ToolResponse represents an MCP tool call response.
// This is the response format returned to the client after tool execution.
type ToolResponse struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// ContentBlock represents a piece of content in the response.
type ContentBlock struct {
	Type string `json:"type"` // currently always "text"
	Text string `json:"text,omitempty"`
}

// HandlerFunc is the unit of work behind one tool. It receives arguments
// that already passed input schema validation and returns the raw result
// to be checked against the tool's output schema. Any error it returns
// is treated as an upstream failure.
type HandlerFunc func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error)
