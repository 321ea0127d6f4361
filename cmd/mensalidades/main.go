package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mensalidades/internal/amqp"
	"mensalidades/internal/cli"
	apphttp "mensalidades/internal/http"
	"mensalidades/internal/ledger"
	"mensalidades/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.NewRepository(logger, cfg)

	led, err := ledger.Open(context.Background(), repo)
	if err != nil {
		logger.Error("Failed to load payment records", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	logger.Info("Payment records loaded", "count", led.Len(), "backend", cfg.DataBackend)

	// AMQP is optional. Without it mutations are persisted locally only.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without event publishing", "error", err)
			amqpClient = nil
		} else {
			logger.Info("AMQP client initialized - payment events will be published")
		}
	} else {
		logger.Info("AMQP disabled - payment events will not be published")
	}

	paymentService := services.NewPaymentService(led, repo, amqpClient)
	defer paymentService.Close()

	engine := services.NewEngine()
	engine.OverdueAfterDays = cfg.OverdueAfterDays
	engine.ReferenceDay = cfg.OverdueReferenceDay

	srv := apphttp.NewServer(":"+cfg.Port, paymentService, engine)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting mensalidades server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
