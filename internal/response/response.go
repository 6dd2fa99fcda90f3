// Package response builds the tool results returned by get_logs. Successful
// calls carry a single text block with the JSON body; handled failures carry a
// single text block with the message and IsError set.
package response

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// JSON returns a successful tool result whose only content is the compact
// JSON encoding of data. If data can't be encoded, the encoding error is
// reported as a tool error instead.
func JSON(data any) *mcp.CallToolResult {
	content, err := json.Marshal(data)
	if err != nil {
		return Errorf("failed to encode response: %s", err)
	}

	return mcp.NewToolResultText(string(content))
}

// Error returns a tool result flagged with IsError carrying message.
func Error(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

// Errorf is Error with printf-style formatting.
func Errorf(format string, args ...any) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf(format, args...))
}

// Text returns the text of the first content block of result, or an empty
// string when the result has no text content.
func Text(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	switch c := result.Content[0].(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	default:
		return ""
	}
}
