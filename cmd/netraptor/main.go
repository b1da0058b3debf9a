package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lcalzada-xor/netraptor/internal/app"
	"github.com/lcalzada-xor/netraptor/internal/config"
	"github.com/lcalzada-xor/netraptor/internal/core/domain"
	"github.com/lcalzada-xor/netraptor/internal/telemetry"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if errors.Is(err, flag.ErrHelp) {
		config.Usage(os.Stdout)
		return 0
	}
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "netraptor: %v\n\n", err)
		config.Usage(os.Stderr)
		return 2
	}

	// Setup Structured Logging
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// Initialize Tracing
	if cfg.Trace {
		shutdownTracer, err := telemetry.InitTracer(os.Stderr)
		if err != nil {
			logger.Error("Failed to init tracer", "error", err)
		} else {
			defer func() {
				if err := shutdownTracer(context.Background()); err != nil {
					logger.Error("Failed to shutdown tracer", "error", err)
				}
			}()
		}
	}

	// Root Context with cancellation on Interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("netraptor starting", "config", cfg.ConfigPath)

	if err := app.New(cfg, logger).Run(ctx); err != nil {
		logger.Error("netraptor aborted", "error", err)
		if errors.Is(err, domain.ErrNotRoot) {
			fmt.Fprintln(os.Stderr, "netraptor must be run as root (sudo)")
		}
		return 1
	}
	if ctx.Err() != nil {
		logger.Warn("interrupted by user")
	}
	return 0
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.Verbose {
		opts.Level = slog.LevelDebug
	}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
