package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/locator/internal/api"
	"github.com/UnknownOlympus/locator/internal/config"
	"github.com/UnknownOlympus/locator/internal/metrics"
	"github.com/UnknownOlympus/locator/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

const (
	readTimeout     = 5 * time.Second
	writeMargin     = 10 * time.Second
	shutdownTimeout = 15 * time.Second
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serves POST /api/v1/resolve for the address form, plus /healthz and /metrics.

When DB_HOST is set, stored vocabularies can be referenced by name and the
default one is taken from LOCATOR_VOCABULARY.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

var errVocabularyWithoutStore = errors.New("LOCATOR_VOCABULARY is set but the vocabulary store is not configured, set DB_HOST")

// checkServeConfig rejects settings the API could only fail on at request time.
func checkServeConfig(cfg *config.Config) error {
	if cfg.Vocabulary != "" && !cfg.Database.Enabled() {
		return errVocabularyWithoutStore
	}

	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Cancelled on SIGINT/SIGTERM for graceful shutdown.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cmd.SetContext(ctx)

	cfg := config.MustLoad()
	if err := checkServeConfig(cfg); err != nil {
		return err
	}
	logger := setupLogger(cfg.Env, os.Stdout)

	// Create a separate registry for metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	resolver, err := newResolver(cfg, logger, appMetrics)
	if err != nil {
		return fmt.Errorf("failed to create geocoding provider: %w", err)
	}
	logger.InfoContext(ctx, "Geocoding provider initialized", "type", cfg.ProviderType)

	var (
		store repository.Interface
		db    api.Pinger
	)
	if cfg.Database.Enabled() {
		pool, repo, err := openStore(cmd, cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to open vocabulary store: %w", err)
		}
		defer pool.Close()
		store, db = repo, pool
	} else {
		logger.WarnContext(ctx, "DB_HOST is not set, requests must carry their candidates inline")
	}

	if cfg.Env != envLocal {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(logger, api.NewHandler(logger, resolver, store, cfg.Vocabulary), reg, db)

	// A resolution may wait for the rate limiter before the provider call.
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: cfg.RequestTimeout + writeMargin,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
		logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}

	logger.Info("Application stopped gracefully.")
	return nil
}
