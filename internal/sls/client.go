// Package sls talks to Alibaba Cloud Log Service (SLS). It wraps the official
// SDK client behind a small interface and adapts its blocking GetLogs call into
// a single-settlement fetch that the MCP handlers can await.
package sls

import (
	"errors"
	"fmt"

	aliyun "github.com/aliyun/aliyun-log-go-sdk"
)

// ErrMissingCredentials is returned by NewClient when either half of the
// access key pair is empty.
var ErrMissingCredentials = errors.New("access key id and secret access key are required")

// Config holds the connection settings for the log service. It is built once
// at startup from flags and environment variables and never mutated.
type Config struct {
	// Endpoint is the regional SLS endpoint, e.g. "cn-hangzhou.log.aliyuncs.com".
	// It is passed through to the SDK as-is.
	Endpoint string

	// AccessKeyID and AccessKeySecret authenticate every request. Both are
	// required.
	AccessKeyID     string
	AccessKeySecret string

	// SecurityToken is an optional STS token used with temporary credentials.
	SecurityToken string

	// ProjectName and LogstoreName identify where logs are read from.
	ProjectName  string
	LogstoreName string
}

// Destination returns the project and logstore every query is sent to.
func (c Config) Destination() Destination {
	return Destination{
		Project:  c.ProjectName,
		Logstore: c.LogstoreName,
	}
}

// Destination names the project and logstore a query targets.
type Destination struct {
	Project  string
	Logstore string
}

// LogsAPI is the subset of the SLS SDK used by this server. The SDK's
// ClientInterface satisfies it, and so does Client.
type LogsAPI interface {
	GetLogs(project, logstore, topic string, from, to int64, queryExp string, maxLineNum, offset int64, reverse bool) (*aliyun.GetLogsResponse, error)
}

// Client is a thin wrapper over the SDK client that owns its lifecycle.
type Client struct {
	api aliyun.ClientInterface
	cfg Config
}

// NewClient creates a log service client from cfg. It refuses to build a
// client without both access key halves; every other field is passed through.
func NewClient(cfg Config) (*Client, error) {
	if cfg.AccessKeyID == "" || cfg.AccessKeySecret == "" {
		return nil, ErrMissingCredentials
	}

	api := aliyun.CreateNormalInterface(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret, cfg.SecurityToken)
	if api == nil {
		return nil, fmt.Errorf("failed to create log service client for endpoint %q", cfg.Endpoint)
	}

	return &Client{api: api, cfg: cfg}, nil
}

// GetLogs forwards to the SDK client.
func (c *Client) GetLogs(project, logstore, topic string, from, to int64, queryExp string, maxLineNum, offset int64, reverse bool) (*aliyun.GetLogsResponse, error) {
	return c.api.GetLogs(project, logstore, topic, from, to, queryExp, maxLineNum, offset, reverse)
}

// Config returns the configuration the client was built with.
func (c *Client) Config() Config {
	return c.cfg
}

// Close releases the SDK client's resources.
func (c *Client) Close() error {
	return c.api.Close()
}

var _ LogsAPI = (*Client)(nil)
