package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arvelez/sentrycam/internal/config"
	"github.com/arvelez/sentrycam/internal/database"
	"github.com/arvelez/sentrycam/internal/fanout"
	"github.com/arvelez/sentrycam/internal/metrics"
	"github.com/arvelez/sentrycam/internal/server"
	"github.com/arvelez/sentrycam/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/telemetryd.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting telemetryd",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"site", cfg.Instance.Site,
		"port", cfg.Server.Port,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Telemetry engine
	engine := metrics.NewEngine(metrics.Config{
		PersistInterval: cfg.Metrics.PersistInterval,
		WindowCapacity:  cfg.Metrics.WindowCapacity,
		LogDir:          cfg.Metrics.LogDir,
	}, logger)

	// Optional snapshot history database
	var sinks []metrics.SnapshotSink
	if cfg.Database.Enabled {
		logger.Info("connecting to snapshot history database",
			"host", cfg.Database.History.Host,
			"port", cfg.Database.History.Port,
			"database", cfg.Database.History.Name,
		)

		pool, err := database.Connect(ctx, cfg.Database.History)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		sinks = append(sinks, database.NewSnapshotStore(pool, logger))
		logger.Info("database connected")
	}

	// Subscriber registry and heartbeat
	registry := fanout.NewRegistry(logger, fanout.WithQueueSize(cfg.Fanout.QueueSize))
	heartbeat := fanout.NewHeartbeat(registry, cfg.Fanout.HeartbeatInterval, logger)
	if err := heartbeat.Start(ctx); err != nil {
		logger.Error("failed to start heartbeat", "error", err)
		os.Exit(1)
	}

	// Periodic snapshot persistence
	persister := metrics.NewPersister(engine, cfg.Metrics.CheckInterval, logger, sinks...)
	if err := persister.Start(ctx); err != nil {
		logger.Error("failed to start persister", "error", err)
		os.Exit(1)
	}

	// HTTP/WebSocket ingress
	srv := server.New(cfg.Server, engine, registry, logger)
	if err := srv.Start(ctx); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}

	logger.Info("telemetryd running",
		"instance_id", cfg.Instance.ID,
		"snapshot_log", engine.SnapshotPath(),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Warn("server shutdown error", "error", err)
	}
	if err := persister.Stop(shutdownCtx); err != nil {
		logger.Warn("persister shutdown error", "error", err)
	}
	if err := heartbeat.Stop(shutdownCtx); err != nil {
		logger.Warn("heartbeat shutdown error", "error", err)
	}
	registry.CloseAll()

	logger.Info("telemetryd stopped")
}
