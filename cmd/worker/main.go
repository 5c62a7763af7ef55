package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/cmd"
	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/jobs"
	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/messaging"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, logger := cmd.Setup()
	if cfg.RabbitMQURL == "" {
		log.Fatal().Msg("RABBITMQ_URL must be set for the worker")
	}
	logger.Info().Msg("starting worker process")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := cmd.CreateDatabase(cfg)
	runner := cmd.CreateRunner(ctx, cfg, db, logger)

	// Jobs reach the worker already queued, so it never dispatches.
	controller := jobs.NewController(cmd.CreateJobStore(cfg, db), runner, nil, logger)

	reciever, err := messaging.NewRabbitMQReceiver(cfg.RabbitMQURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to rabbitmq")
	}

	processor := jobs.NewTaskProcessor(controller, reciever, logger)
	go processor.Start()

	logger.Info().Msg("worker started, waiting for tasks")
	<-ctx.Done()

	logger.Info().Msg("shutdown signal received, stopping worker")
	processor.Stop()
	logger.Info().Msg("worker process stopped")
}
