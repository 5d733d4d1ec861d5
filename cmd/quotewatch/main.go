// Command quotewatch runs one monitoring cycle of the primary venue's
// option and perpetual books: it loads configuration, wires dependencies,
// fetches every venue, and dispatches the resulting alert digest. Exit
// status 1 means the run did not complete; schedulers should retry.
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

	"github.com/vivirisk/quotewatch/internal/app"
	"github.com/vivirisk/quotewatch/internal/config"
	"github.com/vivirisk/quotewatch/internal/domain"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to configuration file")
	dryRun := flag.Bool("dry-run", false, "log the digest instead of delivering it")
	onlyCritical := flag.Bool("only-critical", false, "drop warning-tier alerts before delivery")
	flag.Parse()

	// Setup structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config",
			slog.String("path", *configPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}
	if *dryRun {
		cfg.Notify.DryRun = true
	}
	if *onlyCritical {
		cfg.Notify.OnlyCritical = true
	}

	// Set log level from config.
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("quotewatch starting",
		slog.String("env", cfg.Env),
		slog.String("config", *configPath),
		slog.Bool("dry_run", cfg.Notify.DryRun),
	)

	// Setup signal handling for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, cleanup, err := app.Wire(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to wire dependencies", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()

	application := app.New(cfg, deps, logger)
	if err := application.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("run interrupted")
			return
		}
		if errors.Is(err, domain.ErrPrimaryUnavailable) {
			logger.Error("primary venue unavailable", slog.String("error", err.Error()))
		} else {
			logger.Error("run failed", slog.String("error", err.Error()))
		}
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}

	logger.Info("quotewatch finished")
}
