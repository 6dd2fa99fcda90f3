package sls

import (
	"context"
	"errors"
	"fmt"
	"time"

	aliyun "github.com/aliyun/aliyun-log-go-sdk"
	"github.com/patrickdappollonio/mcp-sls-logs/internal/logquery"
	"golang.org/x/time/rate"
)

var errEmptyResponse = errors.New("log service returned an empty response")

// Request is the fully resolved GetLogs call: the configured destination
// merged with one validated query.
type Request struct {
	Project  string
	Logstore string
	Topic    string
	From     int64
	To       int64
	Query    string
	Line     int64
	Offset   int64
	Reverse  bool
}

// Response is the body of a GetLogs call as returned to MCP clients.
type Response struct {
	Progress string              `json:"progress"`
	Count    int64               `json:"count"`
	Logs     []map[string]string `json:"logs"`
	HasSQL   bool                `json:"hasSQL,omitempty"`
}

// FaultError is an unclassified failure of the collaborator, such as a panic
// inside the SDK. Unlike ordinary errors it is not reported back to the
// caller as a tool result.
type FaultError struct {
	Value any
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("log service client fault: %v", e.Value)
}

// RemoteObserver receives the outcome and duration of every remote call.
type RemoteObserver interface {
	ObserveRemoteCall(status string, duration time.Duration)
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithRateLimit caps outbound calls to limit per second with the given burst.
// A non-positive limit leaves calls unthrottled.
func WithRateLimit(limit float64, burst int) FetcherOption {
	return func(f *Fetcher) {
		if limit <= 0 {
			f.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(limit), burst)
	}
}

// WithObserver reports remote call outcomes to o.
func WithObserver(o RemoteObserver) FetcherOption {
	return func(f *Fetcher) {
		f.observer = o
	}
}

// Fetcher turns validated queries into GetLogs calls. It holds no per-request
// state and is safe for concurrent use.
type Fetcher struct {
	api      LogsAPI
	dest     Destination
	limiter  *rate.Limiter
	observer RemoteObserver
}

// NewFetcher creates a Fetcher that sends every query to dest through api.
func NewFetcher(api LogsAPI, dest Destination, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		api:  api,
		dest: dest,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// BuildRequest merges the configured destination with q.
func (f *Fetcher) BuildRequest(q logquery.Query) Request {
	return Request{
		Project:  f.dest.Project,
		Logstore: f.dest.Logstore,
		Topic:    q.Topic,
		From:     q.From,
		To:       q.To,
		Query:    q.Query,
		Line:     q.Line,
	}
}

type settlement struct {
	resp *aliyun.GetLogsResponse
	err  error
}

// FetchLogs performs exactly one GetLogs call for q. It returns the response
// body when the service reports no error and the service's error otherwise,
// untouched. A panic in the client is returned as a *FaultError. If ctx ends
// first, ctx.Err() is returned and the in-flight call's result is discarded.
func (f *Fetcher) FetchLogs(ctx context.Context, q logquery.Query) (*Response, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req := f.BuildRequest(q)
	start := time.Now()

	// One slot: the goroutine always settles without blocking, even when
	// nobody is left to receive.
	settled := make(chan settlement, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				settled <- settlement{err: &FaultError{Value: r}}
			}
		}()

		resp, err := f.api.GetLogs(req.Project, req.Logstore, req.Topic, req.From, req.To, req.Query, req.Line, req.Offset, req.Reverse)
		settled <- settlement{resp: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		f.observe("canceled", start)
		return nil, ctx.Err()

	case s := <-settled:
		if s.err != nil {
			f.observe("error", start)
			return nil, s.err
		}

		if s.resp == nil {
			f.observe("error", start)
			return nil, errEmptyResponse
		}

		f.observe("success", start)
		return &Response{
			Progress: s.resp.Progress,
			Count:    s.resp.Count,
			Logs:     s.resp.Logs,
			HasSQL:   s.resp.HasSQL,
		}, nil
	}
}

func (f *Fetcher) observe(status string, start time.Time) {
	if f.observer == nil {
		return
	}
	f.observer.ObserveRemoteCall(status, time.Since(start))
}

// ErrorMessage extracts the human readable message from a remote error. SLS
// service errors carry their own message; anything else uses Error().
func ErrorMessage(err error) string {
	var serviceErr *aliyun.Error
	if errors.As(err, &serviceErr) && serviceErr.Message != "" {
		return serviceErr.Message
	}
	return err.Error()
}
