package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"smartspend/internal/amqp"
	"smartspend/internal/config"
	"smartspend/internal/export/sheets"
	applog "smartspend/internal/log"
	"smartspend/internal/storage"
	"smartspend/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: "alerts-worker",
	})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Without a broker the worker still runs its periodic pass, it just
	// loses the low-latency path.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, running on periodic passes only", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
		}
	}

	var exporter worker.AlertExporter
	if cfg.SheetsEnabled() {
		sheetsExporter, err := sheets.New(ctx, cfg)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets exporter", "error", err)
			os.Exit(1)
		}
		exporter = sheetsExporter
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		logger.Info("Google Sheets export disabled")
	}

	w := worker.NewAlertWorker(repo, amqpClient, exporter, worker.Config{
		Interval: cfg.AlertInterval,
		Backlog:  cfg.AlertBacklog,
	})

	logger.Info("Starting alerts worker",
		"interval", cfg.AlertInterval.String(),
		"backlog", cfg.AlertBacklog.String(),
		"amqp", amqpClient != nil)

	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
