// BCE - Booking code exception validation service.
// Copyright (c) 2025 opensource.finance
// Licensed under the Apache License 2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opensource-finance/bce/internal/api"
	"github.com/opensource-finance/bce/internal/bus"
	"github.com/opensource-finance/bce/internal/cache"
	"github.com/opensource-finance/bce/internal/config"
	"github.com/opensource-finance/bce/internal/domain"
	"github.com/opensource-finance/bce/internal/repository"
	"github.com/opensource-finance/bce/internal/rules"
	"github.com/opensource-finance/bce/internal/service"
	"github.com/opensource-finance/bce/internal/worker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default $BCE_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(os.Stdout, cfg.Logging))

	slog.Info("starting bce",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)
	slog.Info("configuration loaded",
		"tier", cfg.Tier,
		"repository", cfg.Repository.Driver,
		"cache", cfg.Cache.Type,
		"eventbus", cfg.EventBus.Type,
		"exception_index", cfg.Validator.UseExceptionIndex,
	)

	if cfg.Tracing.Enabled {
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("bce stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("bce shutdown complete")
}

func run(ctx context.Context, cfg *domain.Config) error {
	repo, err := repository.New(cfg.Repository)
	if err != nil {
		return fmt.Errorf("failed to initialize repository: %w", err)
	}
	defer repo.Close()
	slog.Info("repository initialized", "driver", cfg.Repository.Driver)

	cacheImpl, err := cache.New(cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	defer cacheImpl.Close()
	slog.Info("cache initialized", "type", cfg.Cache.Type)

	busImpl, err := bus.New(cfg.EventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize event bus: %w", err)
	}
	defer busImpl.Close()
	slog.Info("event bus initialized", "type", cfg.EventBus.Type)

	engine, err := rules.NewEngine()
	if err != nil {
		return fmt.Errorf("failed to initialize tsi engine: %w", err)
	}
	defer engine.Close()

	svc := service.New(repo, cacheImpl, engine, service.Options{
		Validator:   cfg.Validator,
		SequenceTTL: cfg.Cache.SequenceTTL,
	})

	var asyncWorker *worker.Worker
	if cfg.Worker.Enabled {
		asyncWorker = worker.NewWorker(busImpl, svc)
		err := asyncWorker.Start(worker.Config{
			TenantIDs:   cfg.Worker.TenantIDs,
			WorkerCount: cfg.Worker.WorkerCount,
		})
		if err != nil {
			return fmt.Errorf("failed to start worker: %w", err)
		}
		slog.Info("async worker started",
			"tenant_count", len(cfg.Worker.TenantIDs),
			"worker_count", cfg.Worker.WorkerCount,
		)
	}

	srv := api.NewServer(cfg.Server, svc, busImpl, Version)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	slog.Info("bce is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)
	printBanner(os.Stdout, cfg, Version)

	var serveErr error
	select {
	case <-ctx.Done():
		slog.Info("shutting down...")
	case serveErr = <-errCh:
		slog.Error("server failed", "error", serveErr)
	}

	// Stop taking HTTP traffic before draining the worker.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	if asyncWorker != nil {
		if err := asyncWorker.Stop(); err != nil {
			slog.Error("failed to stop async worker", "error", err)
		}
		stats := asyncWorker.GetStats()
		slog.Info("async worker stopped", "processed", stats.Processed, "failed", stats.Failed)
	}

	return serveErr
}

func newLogger(w io.Writer, cfg domain.LoggingConfig) *slog.Logger {
	level, _ := config.ParseLevel(cfg.Level)
	if os.Getenv("BCE_DEBUG") == "true" {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func printBanner(w io.Writer, cfg *domain.Config, version string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  BCE - Booking Code Exception validator")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Version:  %s\n", version)
	fmt.Fprintf(w, "  Tier:     %s\n", cfg.Tier)
	fmt.Fprintf(w, "  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Endpoints:")
	fmt.Fprintln(w, "    POST /validate              - Validate booking codes of a fare")
	fmt.Fprintln(w, "    GET  /verdicts/{id}         - Get verdict by ID")
	fmt.Fprintln(w, "    PUT  /sequences/{item}      - Store an exception item")
	fmt.Fprintln(w, "    GET  /sequences/{item}      - Get an exception item")
	fmt.Fprintln(w, "    POST /cabins                - Store booking code cabins")
	fmt.Fprintln(w, "    PUT  /zones/{zone}          - Store a zone")
	fmt.Fprintln(w, "    GET  /tsi                   - List travel segment indicators")
	fmt.Fprintln(w, "    POST /tsi                   - Create a travel segment indicator")
	fmt.Fprintln(w, "    POST /tsi/reload            - Hot-reload indicators")
	fmt.Fprintln(w, "    GET  /health                - Health check")
	fmt.Fprintln(w)
}
