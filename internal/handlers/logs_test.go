package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	aliyun "github.com/aliyun/aliyun-log-go-sdk"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/patrickdappollonio/mcp-sls-logs/internal/logquery"
	"github.com/patrickdappollonio/mcp-sls-logs/internal/response"
	"github.com/patrickdappollonio/mcp-sls-logs/internal/sls"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spyFetcher struct {
	queries []logquery.Query
	resp    *sls.Response
	err     error
}

func (s *spyFetcher) FetchLogs(_ context.Context, q logquery.Query) (*sls.Response, error) {
	s.queries = append(s.queries, q)
	return s.resp, s.err
}

func callRequest(name string, args any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func toolSchema(t *testing.T, tool mcp.Tool) map[string]any {
	t.Helper()

	raw, err := json.Marshal(tool)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	schema, ok := decoded["inputSchema"].(map[string]any)
	require.True(t, ok, "tool has no inputSchema: %s", raw)
	return schema
}

func TestGetLogsTool_Schema(t *testing.T) {
	tool := GetLogsTool()
	assert.Equal(t, "get_logs", tool.Name)
	assert.NotEmpty(t, tool.Description)

	schema := toolSchema(t, tool)
	assert.Equal(t, "object", schema["type"])
	assert.ElementsMatch(t, []any{"from", "to"}, schema["required"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	require.Len(t, props, 5)

	tests := []struct {
		name       string
		typ        string
		def        any
		hasDefault bool
	}{
		{name: "from", typ: "number"},
		{name: "to", typ: "number"},
		{name: "line", typ: "number", def: float64(10), hasDefault: true},
		{name: "topic", typ: "string", def: "", hasDefault: true},
		{name: "query", typ: "string", def: "", hasDefault: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prop, ok := props[tt.name].(map[string]any)
			require.True(t, ok, "missing property %q", tt.name)

			assert.Equal(t, tt.typ, prop["type"])
			assert.NotEmpty(t, prop["description"])

			def, found := prop["default"]
			assert.Equal(t, tt.hasDefault, found)
			if tt.hasDefault {
				assert.Equal(t, tt.def, def)
			}
		})
	}
}

func TestListTools_Deterministic(t *testing.T) {
	first := ListTools()
	second := ListTools()

	require.Len(t, first, 1)
	assert.Equal(t, first, second)
	assert.Equal(t, toolSchema(t, first[0]), toolSchema(t, second[0]))
}

func TestGetLogs_Success(t *testing.T) {
	body := &sls.Response{
		Progress: "Complete",
		Count:    1,
		Logs:     []map[string]string{{"__time__": "1700000001", "message": "GET /healthz 200"}},
	}
	fetcher := &spyFetcher{resp: body}
	h := NewLogHandler(fetcher)

	result, err := h.GetLogs(context.Background(), callRequest("get_logs", map[string]any{
		"from": float64(1700000000),
		"to":   float64(1700003600),
	}))
	require.NoError(t, err)
	require.NotNil(t, result)

	expected, err := json.Marshal(body)
	require.NoError(t, err)

	assert.False(t, result.IsError)
	require.Len(t, result.Content, 1)
	assert.Equal(t, string(expected), response.Text(result))

	require.Len(t, fetcher.queries, 1)
	assert.Equal(t, logquery.Query{From: 1700000000, To: 1700003600, Line: 10}, fetcher.queries[0])
}

func TestGetLogs_RemoteFailureIsToolError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "plain error",
			err:      errors.New("quota exceeded"),
			expected: "fetch logs failed: quota exceeded",
		},
		{
			name:     "service error",
			err:      &aliyun.Error{HTTPCode: 404, Code: "LogStoreNotExist", Message: "logstore app-logs does not exist"},
			expected: "fetch logs failed: logstore app-logs does not exist",
		},
		{
			name:     "canceled request",
			err:      context.Canceled,
			expected: "fetch logs failed: context canceled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewLogHandler(&spyFetcher{err: tt.err})

			result, err := h.GetLogs(context.Background(), callRequest("get_logs", map[string]any{
				"from": float64(1), "to": float64(2),
			}))
			require.NoError(t, err)
			require.NotNil(t, result)

			assert.True(t, result.IsError)
			assert.Equal(t, tt.expected, response.Text(result))
		})
	}
}

func TestGetLogs_FaultIsReturned(t *testing.T) {
	fault := &sls.FaultError{Value: "runtime error: invalid memory address"}
	h := NewLogHandler(&spyFetcher{err: fault})

	result, err := h.GetLogs(context.Background(), callRequest("get_logs", map[string]any{
		"from": float64(1), "to": float64(2),
	}))
	assert.Nil(t, result)
	assert.Same(t, fault, err)

	_, isProtocol := AsProtocolError(err)
	assert.False(t, isProtocol)
}

func TestGetLogs_InvalidArgumentsNeverFetch(t *testing.T) {
	tests := []struct {
		name string
		args any
	}{
		{name: "no arguments", args: nil},
		{name: "arguments not an object", args: "from=1"},
		{name: "missing from", args: map[string]any{"to": float64(2)}},
		{name: "missing to", args: map[string]any{"from": float64(1)}},
		{name: "non numeric from", args: map[string]any{"from": "yesterday", "to": float64(2)}},
		{name: "non numeric to", args: map[string]any{"from": float64(1), "to": []any{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &spyFetcher{}
			h := NewLogHandler(fetcher)

			result, err := h.GetLogs(context.Background(), callRequest("get_logs", tt.args))
			assert.Nil(t, result)

			perr, ok := AsProtocolError(err)
			require.True(t, ok, "expected protocol error, got %v", err)
			assert.Equal(t, CodeInvalidParams, perr.Code)
			assert.NotEmpty(t, perr.Message)
			assert.Empty(t, fetcher.queries)
		})
	}
}
