package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"budget/internal/amqp"
	"budget/internal/backend"
	"budget/internal/cli"
	applog "budget/internal/log"
	"budget/internal/services"
	"budget/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting budget-worker", applog.FieldOperation, applog.OpStartup, "interval", cfg.ExportInterval)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	writer, backendType, err := backend.NewSavingsWriter(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize savings backend", applog.FieldError, err)
		os.Exit(1)
	}

	exporter := worker.NewExportWorker(
		services.NewTransactionService(repo, nil),
		services.NewAccountService(repo),
		writer,
	)

	var amqpClient *amqp.Client
	if cfg.EventsEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.WithComponent(applog.ComponentAMQP).Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		amqpClient = client
	} else {
		logger.Info("AMQP disabled - relying on periodic export only")
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", applog.FieldError, err)
			}
		}
	})

	logger.Info("Export worker ready", "backend", backendType, "events", amqpClient != nil)

	g, gctx := errgroup.WithContext(ctx)

	if amqpClient != nil {
		g.Go(func() error {
			return amqpClient.ConsumeTransactionEvents(gctx, exporter.HandleTransactionEvent)
		})
	}

	g.Go(func() error {
		// Catch up on anything missed while the worker was down.
		if err := exporter.ExportAll(gctx); err != nil {
			logger.Error("Startup export failed", applog.FieldError, err)
		}

		ticker := time.NewTicker(cfg.ExportInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if err := exporter.ExportAll(gctx); err != nil {
					logger.Error("Periodic export failed", applog.FieldError, err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
