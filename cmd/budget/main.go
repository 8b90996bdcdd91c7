package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"budget/internal/amqp"
	"budget/internal/cli"
	apphttp "budget/internal/http"
	applog "budget/internal/log"
	"budget/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Events are best-effort; the API runs without a broker.
	var publisher services.EventPublisher
	var amqpClient *amqp.Client
	if cfg.EventsEnabled() {
		amqpLogger := logger.WithComponent(applog.ComponentAMQP)
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			amqpLogger.Warn("AMQP unavailable, transaction events disabled", applog.FieldError, err)
		} else {
			amqpClient = client
			publisher = client
			amqpLogger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	accounts := services.NewAccountService(repo)
	transactions := services.NewTransactionService(repo, publisher)
	srv := apphttp.NewServer(":"+cfg.Port, accounts, transactions, repo, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		m := srv.Metrics()
		logger.Info("Request totals",
			applog.FieldOperation, applog.OpShutdown,
			"requests", m.TotalRequests,
			"server_errors", m.ServerErrors)
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", applog.FieldError, err)
			}
		}
	})

	logger.Info("Starting budget server", applog.FieldOperation, applog.OpStartup, "port", cfg.Port, "db", cfg.SQLiteDBPath, "events", publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
