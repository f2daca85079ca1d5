package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkzt/ytsubs/app/api"
	"github.com/mkzt/ytsubs/app/cfg"
	"github.com/mkzt/ytsubs/app/database"
	"github.com/mkzt/ytsubs/app/ingest"
	"github.com/mkzt/ytsubs/app/registry"
	"github.com/mkzt/ytsubs/app/subscriptions"
	"github.com/mkzt/ytsubs/app/tasks"
	"github.com/mkzt/ytsubs/app/youtube"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting ytsubs server", "version", appCfg.Version)

	// Database connection and migrations
	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer db.Close()

	migrationVersion, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", migrationVersion, "dirty", dirty)

	// Repositories
	channelRepo := database.NewChannelRepository(db)
	videoRepo := database.NewVideoRepository(db)
	watchRepo := database.NewWatchRepository(db)
	settingsRepo := database.NewSettingsRepository(db)

	// Upstream clients
	requestTimeout := time.Duration(appCfg.RequestTimeout) * time.Second
	httpClient := &http.Client{Timeout: requestTimeout}

	ytClient, err := youtube.NewClient(context.Background(), appCfg.YouTubeAPIKey, appCfg.BackfillPageSize, requestTimeout)
	if err != nil {
		log.Fatal("Failed to create YouTube client:", err)
	}
	feedClient := youtube.NewFeedClient(httpClient, appCfg.UserAgent, requestTimeout)

	// Ingestion engine
	backfiller := ingest.NewBackfiller(ytClient, channelRepo, videoRepo)
	syncer := ingest.NewFeedSyncer(feedClient, channelRepo, videoRepo)

	// Background scheduler (daily sweep: retention purge + backfills)
	scheduler := tasks.NewScheduler(channelRepo, videoRepo, backfiller)
	scheduler.Start()
	defer scheduler.Stop()

	// Channel registry
	reg := registry.New(channelRepo, ytClient, backfiller, scheduler)

	seedSubscriptions(reg, channelRepo, appCfg.SubscriptionsFile)

	// HTTP server
	handler := api.NewHandler(reg, syncer, channelRepo, videoRepo, watchRepo, settingsRepo)
	server := api.NewServer(handler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	// Graceful shutdown
	slog.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}

// seedSubscriptions registers channels from the optional seed file. Channels
// already present and active are skipped so a restart does not reset their
// backfill progress.
func seedSubscriptions(reg *registry.Registry, channels database.ChannelRepository, path string) {
	loader := subscriptions.NewLoader(path)
	subs, err := loader.Load()
	if err != nil {
		slog.Warn("Failed to load subscriptions file", "path", path, "error", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	slog.Info("Seeding subscriptions", "path", path, "count", len(subs))

	for _, sub := range subs {
		if id, err := youtube.ParseChannelRef(sub.Channel); err == nil {
			if existing, err := channels.GetChannel(id); err == nil && existing != nil && existing.Active() {
				continue
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		result, err := reg.Register(ctx, sub.Channel, sub.Group)
		cancel()
		if err != nil {
			slog.Warn("Failed to register seeded channel", "channel", sub.Channel, "error", err)
			continue
		}

		slog.Info("Seeded channel", "channel", result.ChannelID, "name", result.Name, "restored", result.Restored)
	}
}
