package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"mensalidades/internal/cli"
	"mensalidades/internal/config"
	"mensalidades/internal/ledger"
	"mensalidades/internal/report"
	"mensalidades/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.NewRepository(logger, cfg)

	engine := services.NewEngine()
	engine.OverdueAfterDays = cfg.OverdueAfterDays
	engine.ReferenceDay = cfg.OverdueReferenceDay

	logger.Info("Report worker configured",
		"schedule", cfg.ReportCron,
		"output_dir", cfg.ReportOutputDir,
		"backend", cfg.DataBackend)

	run := func() { generateReport(repo, engine, cfg, logger) }

	c := cron.New()
	if _, err := c.AddFunc(cfg.ReportCron, run); err != nil {
		logger.Error("Failed to schedule report job", "error", err, "schedule", cfg.ReportCron)
		os.Exit(1)
	}
	c.Start()

	// One immediate run so a fresh deployment produces a report without
	// waiting for the next scheduled tick.
	run()

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		cronCtx := c.Stop()
		<-cronCtx.Done()
	})
	cli.WaitForShutdown(ctx, done)
}

// generateReport reloads the records from the backend and writes the
// delinquency PDF. Runs with a fresh snapshot each time so reports reflect
// changes made by the main server.
func generateReport(repo ledger.Repository, engine services.Engine, cfg *config.Config, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	records, err := repo.Load(ctx)
	if err != nil {
		logger.Error("Failed to load payment records", "error", err)
		return
	}

	now := time.Now()
	rows := engine.Delinquents(records, now)
	if len(rows) == 0 {
		logger.Info("No delinquent payments, skipping report")
		return
	}

	path, err := report.SaveDelinquents(cfg.ReportOutputDir, rows, now)
	if err != nil {
		logger.Error("Failed to write delinquency report", "error", err)
		return
	}
	logger.Info("Delinquency report written", "path", path, "delinquents", len(rows))
}
