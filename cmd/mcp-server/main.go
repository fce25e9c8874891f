// Command mcp-server is a standalone HTTP MCP server for gowick.
//
// It exposes the gowick tools as an HTTP endpoint for AI agent frameworks.
//
// Usage:
//
//	go run ./cmd/mcp-server -port 8080 -config wick.yaml
//
// Tool call endpoint: POST /tool
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
// Metrics endpoint:   GET  /metrics
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/njchilds90/gowick/internal/config"
	"github.com/njchilds90/gowick/internal/logging"
	"github.com/njchilds90/gowick/internal/metrics"
)

func main() {
	port := flag.Int("port", 0, "Port to listen on (overrides the config file)")
	cfgPath := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	level, _ := logging.ParseLevel(cfg.Log.Level)
	logger := logging.New(logging.Config{Level: level, JSON: cfg.Log.JSON, Service: "mcp-server"})

	m := metrics.New()
	srv := newServer(cfg, logger, m)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("gowick MCP server listening", "addr", srv.Addr)
	logger.Info("routes", "tool", "POST /tool", "schema", "GET /schema", "health", "GET /health", "metrics", "GET /metrics")

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}
}

func newServer(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           newMux(cfg, logger, m),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
