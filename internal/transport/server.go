// Package transport serves MCP over a single stream such as stdin/stdout.
// Messages are newline-delimited JSON-RPC 2.0 objects, one per line. Tool listing and tool
// calls go to the dispatcher; lifecycle methods such as initialize and ping
// are answered by an mcp-go server.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/patrickdappollonio/mcp-sls-logs/internal/handlers"
	"github.com/sourcegraph/jsonrpc2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Dispatcher is what the transport needs from the tool dispatcher.
type Dispatcher interface {
	ListTools() []mcp.Tool
	CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// Server routes JSON-RPC requests arriving on one connection.
type Server struct {
	dispatcher Dispatcher
	lifecycle  *server.MCPServer
	logger     *zap.Logger
}

// NewServer creates a Server. lifecycle answers every method other than
// tools/list and tools/call.
func NewServer(dispatcher Dispatcher, lifecycle *server.MCPServer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		dispatcher: dispatcher,
		lifecycle:  lifecycle,
		logger:     logger,
	}
}

// Serve handles requests from rwc one at a time, in arrival order, until the
// peer disconnects or ctx is done. Either way the connection is closed
// before Serve returns. Malformed lines are answered with a parse or
// invalid-request error and don't end the session.
func (s *Server) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	rpcLog, err := zap.NewStdLogAt(s.logger.Named("jsonrpc2"), zapcore.WarnLevel)
	if err != nil {
		return fmt.Errorf("failed to create jsonrpc2 logger: %w", err)
	}

	stream := jsonrpc2.NewBufferedStream(rwc, &lineCodec{out: rwc, logger: s.logger})
	conn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(s.handle), jsonrpc2.SetLogger(rpcLog))

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down connection")
		if err := conn.Close(); err != nil && err != jsonrpc2.ErrClosed {
			return fmt.Errorf("failed to close connection: %w", err)
		}
		return nil
	case <-conn.DisconnectNotify():
		s.logger.Info("client disconnected")
		return nil
	}
}

func (s *Server) handle(ctx context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	switch req.Method {
	case string(mcp.MethodToolsList):
		return mcp.ListToolsResult{Tools: s.dispatcher.ListTools()}, nil

	case string(mcp.MethodToolsCall):
		return s.callTool(ctx, req)

	default:
		return s.delegate(ctx, req)
	}
}

func (s *Server) callTool(ctx context.Context, req *jsonrpc2.Request) (any, error) {
	var request mcp.CallToolRequest
	request.Method = req.Method

	if req.Params == nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "missing params"}
	}
	if err := json.Unmarshal(*req.Params, &request.Params); err != nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: fmt.Sprintf("invalid params: %s", err)}
	}

	result, err := s.dispatcher.CallTool(ctx, request)
	if err != nil {
		if perr, ok := handlers.AsProtocolError(err); ok {
			return nil, &jsonrpc2.Error{Code: int64(perr.Code), Message: perr.Message}
		}

		s.logger.Error("unhandled tool call error", zap.String("tool", request.Params.Name), zap.Error(err))
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInternalError, Message: err.Error()}
	}

	return result, nil
}

// delegate hands the request to the mcp-go server and unwraps its reply so
// jsonrpc2 can frame it again.
func (s *Server) delegate(ctx context.Context, req *jsonrpc2.Request) (any, error) {
	raw, err := req.MarshalJSON()
	if err != nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInternalError, Message: err.Error()}
	}

	reply := s.lifecycle.HandleMessage(ctx, raw)
	if reply == nil {
		return nil, nil
	}

	encoded, err := json.Marshal(reply)
	if err != nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInternalError, Message: err.Error()}
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *jsonrpc2.Error `json:"error"`
	}
	if err := json.Unmarshal(encoded, &envelope); err != nil {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInternalError, Message: err.Error()}
	}

	if envelope.Error != nil {
		return nil, envelope.Error
	}

	if len(envelope.Result) == 0 {
		return struct{}{}, nil
	}

	return envelope.Result, nil
}

// StdioStream joins a reader and a writer, typically os.Stdin and os.Stdout,
// into the io.ReadWriteCloser Serve expects.
type StdioStream struct {
	io.Reader
	io.Writer
}

// Close closes whichever halves are closable.
func (s StdioStream) Close() error {
	var firstErr error
	if c, ok := s.Reader.(io.Closer); ok {
		firstErr = c.Close()
	}
	if c, ok := s.Writer.(io.Closer); ok {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
