package main

import (
	"context"
	"errors"
	"os"

	"welth/internal/amqp"
	"welth/internal/cli"
	"welth/internal/config"
	lgoogle "welth/internal/ledger/google"
	applog "welth/internal/log"
	"welth/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentWorker)
	logger.Info("Starting welth-worker")

	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateWorker)

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("Invalid timezone", applog.FieldError, err, "timezone", cfg.Timezone)
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	sheets, err := lgoogle.New(context.Background(), lgoogle.Options{
		SpreadsheetID:     cfg.GoogleSpreadsheetID,
		AccountsSheet:     cfg.GoogleAccountsSheetName,
		TransactionsSheet: cfg.GoogleTransactionsSheet,
		CredentialsJSON:   cfg.GoogleServiceAccountJSON,
		CredentialsFile:   cfg.GoogleServiceAccountFile,
		Location:          loc,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	mirror := worker.NewMirrorWorker(repo, sheets)

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, nil)

	logger.Info("Performing startup sync")
	if err := mirror.StartupSync(ctx); err != nil {
		// Not fatal: the next message repairs the sheet.
		logger.Error("Startup sync failed", applog.FieldError, err, applog.FieldOperation, applog.OpMirror)
	}

	if err := amqpClient.ConsumeDefaultChanged(ctx, mirror.HandleDefaultChanged); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
