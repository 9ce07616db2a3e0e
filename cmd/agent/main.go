// Package main is the entry point for the push agent daemon host.
//
// The daemon receives platform events over HTTP (push deliveries,
// notification interactions, subscription invalidations), dispatches them
// onto the agent core, and holds each response until the event's scope has
// settled -- the HTTP analog of the platform's lifetime-extension contract.
//
// Startup: load configuration, resolve the backend base URL (launch-URL
// override > compiled default > own origin), build the engagement reporter
// and the display bridge, wire the agent, and serve the ingress router.
// Graceful shutdown is handled via OS signal interception (SIGINT, SIGTERM).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"pushagent/internal/agent"
	"pushagent/internal/config"
	"pushagent/internal/ingress"
	"pushagent/internal/platform"
	"pushagent/internal/report"
	"pushagent/internal/types"
)

// slogAdapter wraps *slog.Logger to implement the types.Logger interface.
// slog.Logger satisfies Info/Warn/Error directly, but its With returns
// *slog.Logger rather than types.Logger, so an adapter is necessary.
type slogAdapter struct {
	logger *slog.Logger
}

func (a *slogAdapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a *slogAdapter) With(args ...any) types.Logger {
	return &slogAdapter{logger: a.logger.With(args...)}
}

// Compile-time assertion that slogAdapter implements types.Logger.
var _ types.Logger = (*slogAdapter)(nil)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	baseURL := cfg.ReportBaseURL()
	logger.Info("push agent starting",
		"environment", cfg.Environment,
		"port", cfg.Server.Port,
		"report_base_url", baseURL,
	)

	typedLogger := &slogAdapter{logger: logger}

	reporter, err := report.NewReporter(baseURL, cfg.Backend, typedLogger)
	if err != nil {
		return fmt.Errorf("creating reporter: %w", err)
	}

	bridge, err := platform.NewBridge(cfg.Bridge, typedLogger)
	if err != nil {
		return fmt.Errorf("creating display bridge: %w", err)
	}

	a, err := agent.New(bridge, bridge, bridge, bridge, reporter, typedLogger)
	if err != nil {
		return fmt.Errorf("creating agent: %w", err)
	}

	router := ingress.NewRouter(a, report.NoopEngagementMetrics{}, typedLogger)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router.Handler(),
	}

	// Serve until interrupted, then drain in-flight event scopes.
	errCh := make(chan error, 1)
	go func() {
		if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("serving: %w", err)
	case sig := <-stop:
		logger.Info("shutdown signal received", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	logger.Info("push agent stopped")
	return nil
}

// newLogger builds the process-wide JSON logger at the configured level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
