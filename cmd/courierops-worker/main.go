package main

import (
	"context"
	"os"
	"time"

	"courierops/internal/amqp"
	"courierops/internal/cli"
	"courierops/internal/sheets"
	gsheet "courierops/internal/sheets/google"
	sheetsmem "courierops/internal/sheets/memory"
	"courierops/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting courierops-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	store := cli.InitStore(logger, cfg)
	defer store.Cleanup()

	// Without a spreadsheet the worker still drains the queue and the
	// pending sweep, recording rows in the in-memory exporter.
	var ledger sheets.LedgerWriter
	if cfg.GoogleSpreadsheetID != "" {
		sheetsClient, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		ledger = sheetsClient
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		ledger = sheetsmem.New()
		logger.Warn("No GOOGLE_SPREADSHEET_ID provided - mirroring parcels to in-memory ledger")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	syncWorker := worker.NewSyncWorker(store.Store, ledger, cfg.SyncBatchSize)

	// Catch up on anything missed while the worker was down.
	logger.Info("Performing startup sync check...")
	if err := syncWorker.ProcessPending(ctx); err != nil {
		logger.Error("Startup sync check failed", "error", err)
	}

	go func() {
		err := amqpClient.ConsumeParcelSync(ctx, func(msg *amqp.ParcelSyncMessage) error {
			return syncWorker.HandleSyncMessage(ctx, msg)
		})
		if err != nil && err != context.Canceled {
			logger.Error("Message consumption failed", "error", err)
		}
		cancel()
	}()

	go syncWorker.RunPendingSweep(ctx, cfg.SyncInterval)

	_, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		logger.Info("Shutting down worker...")
		cancel()
	})

	select {
	case <-ctx.Done():
	case <-done:
	}

	// Give in-flight handlers a moment before the process exits.
	time.Sleep(2 * time.Second)
	logger.Info("Worker shutdown complete")
}
