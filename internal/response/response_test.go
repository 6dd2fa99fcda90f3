package response

import (
	"math"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	result := JSON(map[string]any{"logs": []map[string]string{{"message": "hello"}}, "count": 1})
	require.NotNil(t, result)

	assert.False(t, result.IsError)
	require.Len(t, result.Content, 1)
	assert.Equal(t, `{"count":1,"logs":[{"message":"hello"}]}`, Text(result))
}

func TestJSON_EncodingFailure(t *testing.T) {
	result := JSON(math.Inf(1))

	assert.True(t, result.IsError)
	assert.Contains(t, Text(result), "failed to encode response")
}

func TestError(t *testing.T) {
	result := Error("fetch logs failed: quota exceeded")

	assert.True(t, result.IsError)
	assert.Equal(t, "fetch logs failed: quota exceeded", Text(result))
}

func TestErrorf(t *testing.T) {
	result := Errorf("fetch logs failed: %s", "timeout")

	assert.True(t, result.IsError)
	assert.Equal(t, "fetch logs failed: timeout", Text(result))
}

func TestText_NoContent(t *testing.T) {
	assert.Empty(t, Text(nil))
	assert.Empty(t, Text(&mcp.CallToolResult{}))
}
