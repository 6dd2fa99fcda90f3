package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/patrickdappollonio/mcp-sls-logs/internal/config"
	"github.com/patrickdappollonio/mcp-sls-logs/internal/handlers"
	"github.com/patrickdappollonio/mcp-sls-logs/internal/logging"
	"github.com/patrickdappollonio/mcp-sls-logs/internal/metrics"
	"github.com/patrickdappollonio/mcp-sls-logs/internal/sls"
	"github.com/patrickdappollonio/mcp-sls-logs/internal/toolfilter"
	"github.com/patrickdappollonio/mcp-sls-logs/internal/transport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.ShowVersion {
		fmt.Println(version)
		return
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := sls.NewClient(cfg.SLS)
	if err != nil {
		return fmt.Errorf("failed to create log service client: %w", err)
	}
	defer client.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	fetcher := sls.NewFetcher(client, cfg.SLS.Destination(),
		sls.WithRateLimit(cfg.RequestRateLimit, cfg.RequestRateBurst),
		sls.WithObserver(m),
	)

	logHandler := handlers.NewLogHandler(fetcher)

	dispatcher := handlers.NewDispatcher(
		[]handlers.ToolRegistrator{logHandler},
		handlers.WithFilter(toolfilter.New(cfg.DisabledTools)),
		handlers.WithMetrics(m),
		handlers.WithLogger(logger),
	)

	s := server.NewMCPServer(
		"sls-log-server",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(
			"This MCP server reads logs from an Alibaba Cloud Log Service (SLS) logstore. Use get_logs with a unix-seconds time range and, optionally, a topic and a query expression to narrow the results. It is read-only.",
		),
	)

	for _, tool := range dispatcher.Tools() {
		s.AddTool(tool.Tool(), server.ToolHandlerFunc(tool.Handler()))
	}

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, registry, logger); err != nil {
				logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	logger.Info("SLS log MCP server started",
		zap.String("version", version),
		zap.String("endpoint", cfg.SLS.Endpoint),
		zap.String("project", cfg.SLS.ProjectName),
		zap.String("logstore", cfg.SLS.LogstoreName),
	)

	srv := transport.NewServer(dispatcher, s, logger)
	return srv.Serve(ctx, transport.StdioStream{Reader: os.Stdin, Writer: os.Stdout})
}
