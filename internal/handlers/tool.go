package handlers

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// ToolHandler answers one tools/call request. Returning a *ProtocolError
// rejects the request at the protocol level; any other error is an
// unclassified fault.
type ToolHandler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// MCPTool pairs a tool descriptor with the handler that serves it.
type MCPTool struct {
	tool    mcp.Tool
	handler ToolHandler
}

// NewMCPTool creates a new MCPTool with the given tool definition and handler
func NewMCPTool(tool mcp.Tool, handler ToolHandler) MCPTool {
	return MCPTool{
		tool:    tool,
		handler: handler,
	}
}

// Tool returns the tool definition
func (t MCPTool) Tool() mcp.Tool {
	return t.tool
}

// Name returns the tool's name
func (t MCPTool) Name() string {
	return t.tool.Name
}

// Handler returns the tool handler function
func (t MCPTool) Handler() ToolHandler {
	return t.handler
}

// ToolRegistrator is implemented by handler structs that provide MCP tools.
type ToolRegistrator interface {
	GetTools() []MCPTool
}
