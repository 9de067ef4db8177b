// Package main provides the HTTP server for the Krishi advisory backend.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/krishi-ai/krishi-go/internal/advisory"
	"github.com/krishi-ai/krishi-go/internal/blob"
	"github.com/krishi-ai/krishi-go/internal/chat"
	"github.com/krishi-ai/krishi-go/internal/config"
	"github.com/krishi-ai/krishi-go/internal/db"
	"github.com/krishi-ai/krishi-go/internal/market"
	"github.com/krishi-ai/krishi-go/internal/metrics"
	"github.com/krishi-ai/krishi-go/internal/notify"
	"github.com/krishi-ai/krishi-go/internal/server"
	"github.com/krishi-ai/krishi-go/internal/speech"
	"github.com/krishi-ai/krishi-go/internal/vision"
	"github.com/krishi-ai/krishi-go/internal/weather"
)

func main() {
	wipeDB := flag.Bool("wipe", false, "wipe all data from database on startup (testing only)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, closeLogger := config.SetupLogger(cfg.LogFile, cfg.Level())
	slog.SetDefault(logger)
	defer func() {
		if err := closeLogger(); err != nil {
			slog.Error("failed to close log file", "error", err)
		}
	}()

	logger.Info("starting krishi-server", "port", cfg.Port, "llm_provider", cfg.LLMProvider)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	dbClient, err := db.NewClient(ctx, db.Config{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		AuthLevel: cfg.SurrealDBAuthLevel,
	}, logger)
	if err != nil {
		cancel()
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := dbClient.InitSchema(ctx); err != nil {
		cancel()
		logger.Error("failed to initialize schema", "error", err)
		os.Exit(1)
	}
	if *wipeDB {
		if err := dbClient.WipeData(ctx); err != nil {
			cancel()
			logger.Error("failed to wipe database", "error", err)
			os.Exit(1)
		}
		logger.Warn("database wiped")
	}
	cancel()
	defer func() {
		if err := dbClient.Close(context.Background()); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	collector := metrics.NewCollector()
	dbClient.SetMetrics(collector)

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelInit()

	advisor, err := advisory.NewClient(initCtx, cfg, logger, collector)
	if err != nil {
		logger.Error("failed to initialize llm client", "error", err)
		os.Exit(1)
	}

	deepgram := speech.NewDeepgram(cfg.DeepgramAPIKey, logger, collector)
	roboflow := vision.New(cfg.RoboflowAPIKey, cfg.RoboflowWorkspace, cfg.RoboflowWorkflow, logger, collector)

	var blobs blob.Store
	if cfg.BlobBucket != "" {
		s3Store, err := blob.NewS3Store(initCtx, cfg.BlobBucket, cfg.AWSRegion, logger)
		if err != nil {
			logger.Error("failed to initialize blob store", "error", err)
			os.Exit(1)
		}
		blobs = s3Store
	} else {
		logger.Warn("no blob bucket configured, media is held in memory")
		blobs = blob.NewMemoryStore()
	}

	history := db.NewHistoryStore(dbClient)
	orchestrator := chat.New(history, advisor, deepgram, deepgram, roboflow, blobs, cfg.HistoryWindow, logger)

	marketClient := market.New(cfg.OGDAPIKey, advisor, logger)
	weatherClient := weather.New(cfg.WeatherAPIKey, advisor, logger)

	// Push notifications are optional: without Firebase credentials the
	// server runs with the alert sweep disabled.
	var notifier *notify.FCM
	if _, err := os.Stat(cfg.FirebaseCredentialsPath); err == nil {
		notifier, err = notify.NewFCM(initCtx, cfg.FirebaseCredentialsPath, logger)
		if err != nil {
			logger.Error("failed to initialize firebase messaging", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Warn("firebase credentials not found, weather alerts disabled",
			"path", cfg.FirebaseCredentialsPath)
	}

	var alerts *weather.AlertService
	if notifier != nil {
		alerts = weather.NewAlertService(weatherClient, dbClient, advisor, notifier, cfg.DefaultLanguage, logger)
		if err := alerts.Start(); err != nil {
			logger.Error("failed to schedule weather alerts", "error", err)
			os.Exit(1)
		}
		defer alerts.Stop()
	}

	var subscriber server.Subscriber
	if notifier != nil {
		subscriber = notifier
	}
	srv := server.New(orchestrator, dbClient, dbClient, marketClient, weatherClient, subscriber, blobs, collector, logger)

	go func() {
		if err := srv.Start(cfg.Port); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
