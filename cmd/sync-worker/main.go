package main

import (
	"context"
	"os"
	"time"

	"mensalidades/internal/amqp"
	"mensalidades/internal/cli"
	gsheet "mensalidades/internal/sheets/google"
	"mensalidades/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the sync worker")
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err, "url", cfg.AMQPURL)
		os.Exit(1)
	}
	defer amqpClient.Close()

	mirror, err := gsheet.NewFromEnv(context.Background())
	if err != nil {
		logger.Error("Failed to initialize Google Sheets mirror", "error", err)
		os.Exit(1)
	}

	w := worker.NewSyncWorker(amqpClient, mirror)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	logger.Info("Starting sync worker",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue,
		"sheet", cfg.GoogleSheetName)

	if err := w.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("Sync worker stopped with error", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Sync worker stopped gracefully")
}
