package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"wallet/internal/amqp"
	"wallet/internal/backend"
	"wallet/internal/config"
	"wallet/internal/log"
	"wallet/internal/report"
	"wallet/internal/sheets"
	gsheet "wallet/internal/sheets/google"
	"wallet/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentWorker,
	})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the report worker")
		os.Exit(1)
	}

	infra, err := backend.Build(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer infra.Close()
	if infra.Events == nil {
		logger.Error("Failed to connect to AMQP broker", "url", cfg.AMQPURL)
		os.Exit(1)
	}

	var sink sheets.ReportWriter
	if cfg.SheetsEnabled() {
		client, err := gsheet.New(context.Background(), cfg, logger)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err.Error())
			os.Exit(1)
		}
		sink = client
		logger.Info("Google Sheets sink enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets sink disabled, writing CSV exports only")
	}

	reportWorker := worker.NewReportWorker(report.NewReporter(infra.Store), sink, cfg.ExportDir, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("Consuming ledger events",
			"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		return infra.Events.ConsumeEvents(ctx, func(msg *amqp.LedgerEventMessage) error {
			return reportWorker.HandleEvent(ctx, msg)
		})
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
