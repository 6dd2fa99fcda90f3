package handlers

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/patrickdappollonio/mcp-sls-logs/internal/logquery"
	"github.com/patrickdappollonio/mcp-sls-logs/internal/response"
	"github.com/patrickdappollonio/mcp-sls-logs/internal/sls"
)

// GetLogsToolName is the only tool this server exposes.
const GetLogsToolName = "get_logs"

// FetchFailedPrefix starts the text of every handled remote failure.
const FetchFailedPrefix = "fetch logs failed: "

// LogFetcher runs a validated query against the log service.
type LogFetcher interface {
	FetchLogs(ctx context.Context, q logquery.Query) (*sls.Response, error)
}

type LogHandler struct {
	fetcher LogFetcher
}

func NewLogHandler(fetcher LogFetcher) *LogHandler {
	return &LogHandler{
		fetcher: fetcher,
	}
}

// GetLogsTool describes get_logs. The defaults advertised here are the ones
// logquery.Validate applies.
func GetLogsTool() mcp.Tool {
	return mcp.NewTool(GetLogsToolName,
		mcp.WithDescription("Fetch logs from an Alibaba Cloud Log Service (SLS) logstore for a time range, optionally filtered by topic and query"),
		mcp.WithNumber(logquery.ArgFrom,
			mcp.Required(),
			mcp.Description("Start of the time range, unix timestamp in seconds"),
		),
		mcp.WithNumber(logquery.ArgTo,
			mcp.Required(),
			mcp.Description("End of the time range, unix timestamp in seconds"),
		),
		mcp.WithNumber(logquery.ArgLine,
			mcp.Description("Maximum number of log lines to return"),
			mcp.DefaultNumber(float64(logquery.DefaultLine)),
		),
		mcp.WithString(logquery.ArgTopic,
			mcp.Description("Log topic"),
			mcp.DefaultString(logquery.DefaultTopic),
		),
		mcp.WithString(logquery.ArgQuery,
			mcp.Description("Query expression or keywords used to filter logs"),
			mcp.DefaultString(logquery.DefaultQuery),
		),
	)
}

// ListTools returns the descriptors of every tool this server can serve.
func ListTools() []mcp.Tool {
	return []mcp.Tool{GetLogsTool()}
}

// GetLogs validates the arguments, performs one fetch and converts the
// outcome. Bad arguments are a protocol error and never reach the network;
// a failed fetch is a tool error the caller can read; a client fault is
// returned as-is.
func (h *LogHandler) GetLogs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := logquery.Validate(request.Params.Arguments)
	if err != nil {
		return nil, invalidParams(err)
	}

	logs, err := h.fetcher.FetchLogs(ctx, query)
	if err != nil {
		var fault *sls.FaultError
		if errors.As(err, &fault) {
			return nil, err
		}

		return response.Error(FetchFailedPrefix + sls.ErrorMessage(err)), nil
	}

	return response.JSON(logs), nil
}

// GetTools returns all log-related MCP tools
func (h *LogHandler) GetTools() []MCPTool {
	return []MCPTool{
		NewMCPTool(GetLogsTool(), h.GetLogs),
	}
}
