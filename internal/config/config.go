// Package config parses the server's settings from flags, SLS_-prefixed
// environment variables and an optional plain-text config file.
package config

import (
	"flag"
	"fmt"

	"github.com/patrickdappollonio/mcp-sls-logs/internal/env"
	"github.com/patrickdappollonio/mcp-sls-logs/internal/sls"
	"github.com/peterbourgon/ff/v3"
)

// EnvPrefix is prepended to every flag name to form its environment variable,
// e.g. -access-key-id is read from SLS_ACCESS_KEY_ID.
const EnvPrefix = "SLS"

// Config holds everything main needs to start the server.
type Config struct {
	// SLS is the log service connection and destination.
	SLS sls.Config

	// Outbound rate limiting; a non-positive limit disables it.
	RequestRateLimit float64
	RequestRateBurst int

	DisabledTools string
	MetricsAddr   string
	LogLevel      string
	ShowVersion   bool
}

// Parse reads the configuration from args and the environment. It fails when
// the access key pair is incomplete, since no request could ever succeed.
func Parse(args []string) (Config, error) {
	fs := flag.NewFlagSet("mcp-sls-logs", flag.ContinueOnError)

	var cfg Config
	fs.StringVar(&cfg.SLS.AccessKeyID, "access-key-id", env.FirstDefault("", "ALIBABA_CLOUD_ACCESS_KEY_ID"), "Log service access key id")
	fs.StringVar(&cfg.SLS.AccessKeySecret, "secret-access-key", env.FirstDefault("", "ALIBABA_CLOUD_ACCESS_KEY_SECRET"), "Log service secret access key")
	fs.StringVar(&cfg.SLS.SecurityToken, "security-token", env.FirstDefault("", "ALIBABA_CLOUD_SECURITY_TOKEN"), "Optional STS security token")
	fs.StringVar(&cfg.SLS.Endpoint, "endpoint", "", "Log service endpoint, e.g. cn-hangzhou.log.aliyuncs.com")
	fs.StringVar(&cfg.SLS.ProjectName, "project-name", "", "Project to read logs from")
	fs.StringVar(&cfg.SLS.LogstoreName, "logstore-name", "", "Logstore to read logs from")
	fs.Float64Var(&cfg.RequestRateLimit, "rate", 0, "Maximum log service requests per second (0 for unlimited)")
	fs.IntVar(&cfg.RequestRateBurst, "burst", 1, "Burst capacity for log service requests")
	fs.StringVar(&cfg.DisabledTools, "disabled-tools", env.FirstDefault("", "DISABLED_TOOLS"), "Comma separated list of tools to disable")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", "", "Address to serve Prometheus metrics on (disabled when empty)")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "Log level: debug, info, warn or error")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Print the version and exit")

	var configFile string
	fs.StringVar(&configFile, "config", "", "config file path")

	err := ff.Parse(fs, args,
		ff.WithEnvVarPrefix(EnvPrefix),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
	)
	if err != nil {
		return cfg, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if cfg.ShowVersion {
		return cfg, nil
	}

	if cfg.SLS.AccessKeyID == "" || cfg.SLS.AccessKeySecret == "" {
		return cfg, fmt.Errorf("%w: set SLS_ACCESS_KEY_ID and SLS_SECRET_ACCESS_KEY", sls.ErrMissingCredentials)
	}

	return cfg, nil
}
