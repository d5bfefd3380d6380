package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"courierops/internal/cli"
	"courierops/internal/services"
	"courierops/internal/sheets"
	gsheet "courierops/internal/sheets/google"
	sheetsmem "courierops/internal/sheets/memory"
)

// report-exporter appends the daily financial report to the report
// sheet on a cron schedule.
func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting report-exporter")

	cfg := cli.LoadAndValidateConfig(logger)

	store := cli.InitStore(logger, cfg)
	defer store.Cleanup()

	var writer sheets.ReportWriter
	if cfg.GoogleSpreadsheetID != "" {
		sheetsClient, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		writer = sheetsClient
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		writer = sheetsmem.New()
		logger.Warn("No GOOGLE_SPREADSHEET_ID provided - exporting reports to in-memory sink")
	}

	reports := services.NewReportService(store.Store)

	export := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		daily, err := reports.Daily(ctx)
		if err != nil {
			logger.Error("Failed to build daily report", "error", err)
			return
		}
		if err := writer.AppendDailyReport(ctx, daily); err != nil {
			logger.Error("Failed to export daily report", "error", err)
			return
		}
		logger.Info("Exported daily report",
			"days", len(daily.Days),
			"total_parcels", daily.TotalParcels,
			"grand_total", daily.GrandTotal)
	}

	scheduler := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(cronLogger{logger})))
	if _, err := scheduler.AddFunc(cfg.ExportSchedule, export); err != nil {
		logger.Error("Invalid export schedule", "schedule", cfg.ExportSchedule, "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	logger.Info("Export scheduled", "schedule", cfg.ExportSchedule)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		stopped := scheduler.Stop()
		<-stopped.Done()
	})
	cli.WaitForShutdown(ctx, done)
	logger.Info("Report-exporter stopped")
}

// cronLogger adapts slog to cron's Printf-style logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Printf(format string, args ...any) {
	l.logger.Debug("cron", "msg", format, "args", args)
}
