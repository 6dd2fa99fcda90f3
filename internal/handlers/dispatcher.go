// Package handlers holds the get_logs tool and the dispatcher that routes
// tools/list and tools/call requests to it.
package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/patrickdappollonio/mcp-sls-logs/internal/metrics"
	"github.com/patrickdappollonio/mcp-sls-logs/internal/toolfilter"
	"go.uber.org/zap"
)

// Dispatcher answers tools/list and routes tools/call by tool name. It keeps
// no state between requests.
type Dispatcher struct {
	tools   []MCPTool
	byName  map[string]MCPTool
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*dispatcherOptions)

type dispatcherOptions struct {
	filter  *toolfilter.Filter
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// WithFilter hides the tools filter disables.
func WithFilter(filter *toolfilter.Filter) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.filter = filter
	}
}

// WithMetrics counts every tools/call outcome.
func WithMetrics(m *metrics.Metrics) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.metrics = m
	}
}

// WithLogger logs every tools/call.
func WithLogger(logger *zap.Logger) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.logger = logger
	}
}

// NewDispatcher collects the tools of every registrator, in order, leaving
// out disabled ones. When two tools share a name the first one wins.
func NewDispatcher(registrators []ToolRegistrator, opts ...DispatcherOption) *Dispatcher {
	o := dispatcherOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	d := &Dispatcher{
		byName:  make(map[string]MCPTool),
		metrics: o.metrics,
		logger:  o.logger,
	}

	for _, r := range registrators {
		for _, t := range r.GetTools() {
			if o.filter.IsDisabled(t.Name()) {
				d.logger.Info("tool disabled by configuration", zap.String("tool", t.Name()))
				continue
			}
			if _, exists := d.byName[t.Name()]; exists {
				continue
			}
			d.byName[t.Name()] = t
			d.tools = append(d.tools, t)
		}
	}

	return d
}

// Tools returns the enabled tools in registration order.
func (d *Dispatcher) Tools() []MCPTool {
	return append([]MCPTool(nil), d.tools...)
}

// ListTools returns the descriptors of the enabled tools.
func (d *Dispatcher) ListTools() []mcp.Tool {
	out := make([]mcp.Tool, 0, len(d.tools))
	for _, t := range d.tools {
		out = append(out, t.Tool())
	}
	return out
}

// CallTool routes request to the named tool. An unknown name is rejected with
// a method-not-found *ProtocolError before anything else runs. Handler results
// and errors are returned unchanged.
func (d *Dispatcher) CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := request.Params.Name

	tool, found := d.byName[name]
	if !found {
		d.logger.Warn("call to unknown tool", zap.String("tool", name))
		d.metrics.ObserveToolCall(name, metrics.OutcomeProtocolError)
		return nil, methodNotFound(name)
	}

	callID := uuid.NewString()
	logger := d.logger.With(zap.String("tool", name), zap.String("call_id", callID))
	logger.Debug("tool call started", zap.Any("arguments", request.Params.Arguments))

	start := time.Now()
	result, err := tool.Handler()(ctx, request)
	elapsed := zap.Duration("duration", time.Since(start))

	switch {
	case err != nil:
		if perr, ok := AsProtocolError(err); ok {
			logger.Warn("tool call rejected", zap.Int("code", perr.Code), zap.String("reason", perr.Message), elapsed)
			d.metrics.ObserveToolCall(name, metrics.OutcomeProtocolError)
			return nil, err
		}

		logger.Error("tool call fault", zap.Error(err), elapsed)
		d.metrics.ObserveToolCall(name, metrics.OutcomeFault)
		return nil, err

	case result == nil:
		err := errors.New("tool returned no result")
		logger.Error("tool call fault", zap.Error(err), elapsed)
		d.metrics.ObserveToolCall(name, metrics.OutcomeFault)
		return nil, err

	case result.IsError:
		logger.Warn("tool call failed", elapsed)
		d.metrics.ObserveToolCall(name, metrics.OutcomeToolError)
		return result, nil
	}

	logger.Info("tool call completed", elapsed)
	d.metrics.ObserveToolCall(name, metrics.OutcomeSuccess)
	return result, nil
}
