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
	"time"

	"github.com/lysyi3m/rss-press/app/api"
	"github.com/lysyi3m/rss-press/app/cfg"
	"github.com/lysyi3m/rss-press/app/database"
	"github.com/lysyi3m/rss-press/app/feed"
	"github.com/lysyi3m/rss-press/app/fetcher"
	"github.com/lysyi3m/rss-press/app/sources"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	setupLogging(appCfg.Debug)

	slog.Info("Starting RSS Press server", "version", appCfg.Version)

	configs, err := sources.LoadScrapeConfigs(appCfg.SourcesDir)
	if err != nil {
		slog.Error("Failed to load source configurations", "dir", appCfg.SourcesDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Source configurations loaded", "dir", appCfg.SourcesDir, "count", len(configs))

	httpFetcher := fetcher.NewHTTPFetcher(&http.Client{}, appCfg.UserAgent)
	registry := sources.NewRegistry(httpFetcher, sources.Options{
		RootTimeout:       appCfg.RootTimeout,
		FetchTimeout:      appCfg.FetchTimeout,
		FanoutLimit:       appCfg.FanoutLimit,
		SerialConcurrency: appCfg.SerialConcurrency,
	}, configs)
	slog.Info("Sources registered", "sources", registry.IDs())

	var runs database.RunStore
	if appCfg.DBPath != "" {
		db, err := database.NewConnection(appCfg.DBPath)
		if err != nil {
			slog.Error("Failed to open run log", "path", appCfg.DBPath, "error", err)
			os.Exit(1)
		}
		defer db.Close()

		version, dirty, err := database.RunMigrations(db)
		if err != nil {
			slog.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("Run log ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

		runs = database.NewRunRepository(db)
	} else {
		slog.Info("Run log disabled")
	}

	generator := feed.NewGenerator(appCfg.BaseUrl, appCfg.Version)
	handler := api.NewHandler(registry, generator, runs, appCfg.Version)

	httpServer := &http.Server{
		Addr:        ":" + appCfg.Port,
		Handler:     api.NewServer(handler),
		ReadTimeout: 30 * time.Second,
		// Fan-out sources may need several fetch timeouts end to end.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig)
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("RSS Press server shutdown complete")
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}
