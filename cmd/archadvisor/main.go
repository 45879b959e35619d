// ArchAdvisor orchestrator server — multi-agent architecture design over
// HTTP and WebSocket.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/archadvisor/archadvisor/pkg/api"
	"github.com/archadvisor/archadvisor/pkg/bus"
	"github.com/archadvisor/archadvisor/pkg/config"
	"github.com/archadvisor/archadvisor/pkg/llm"
	"github.com/archadvisor/archadvisor/pkg/session"
	"github.com/archadvisor/archadvisor/pkg/workflow"
)

const (
	startupPingTimeout  = 5 * time.Second
	httpShutdownTimeout = 10 * time.Second
)

func main() {
	envFile := flag.String("env-file", ".env", "Path to .env file")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		slog.Warn("Could not load .env file, continuing with existing environment",
			"path", *envFile, "error", err)
	} else {
		slog.Info("Loaded environment", "path", *envFile)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting ArchAdvisor",
		"http_port", cfg.HTTPPort,
		"max_debate_rounds", cfg.MaxDebateRounds,
		"architect_model", cfg.ArchitectModel,
	)

	store, err := session.NewStoreFromURL(cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to configure session store", "error", err)
		os.Exit(1)
	}

	pingCtx, cancelPing := context.WithTimeout(context.Background(), startupPingTimeout)
	if latency, err := store.Ping(pingCtx); err != nil {
		// The server still starts; session creation fails until Redis
		// comes back and /health reports degraded in the meantime.
		slog.Warn("Redis unreachable at startup", "url", cfg.RedisURL, "error", err)
	} else {
		slog.Info("Redis connected", "latency_ms", float64(latency.Microseconds())/1000)
	}
	cancelPing()

	client := llm.NewOpenAIClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.LLMTimeout)
	eventBus := bus.New()
	engine := workflow.NewEngine(cfg, client, store, eventBus)
	server := api.NewServer(cfg, store, eventBus, engine)

	httpServer := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("Server error triggered shutdown", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
