package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/cmd"
	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/api"
	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/config"
	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/jobs"
	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/messaging"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, logger := cmd.Setup()
	logger.Info().Str("dispatch_mode", cfg.DispatchMode).Str("grader", cfg.GraderProvider).Msg("starting api server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := cmd.CreateDatabase(cfg)
	runner := cmd.CreateRunner(ctx, cfg, db, logger)

	var dispatcher jobs.Dispatcher
	switch cfg.DispatchMode {
	case config.DispatchHTTP:
		dispatcher = jobs.NewHTTPDispatcher(cfg.PublicOrigin, cfg.TriggerTimeout)
	case config.DispatchQueue:
		publisher, err := messaging.NewRabbitMQPublisher(cfg.RabbitMQURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to rabbitmq")
		}
		defer publisher.Close()
		dispatcher = jobs.NewQueueDispatcher(publisher)
	}

	controller := jobs.NewController(cmd.CreateJobStore(cfg, db), runner, dispatcher, logger)

	cleanup := cmd.StartCleanup(cfg, db, logger)
	defer cleanup.Stop()

	service := api.NewEvaluationService(db, runner, controller, cfg.AdminAccessSecret, logger)

	if err := cmd.Serve(ctx, cmd.CreateServer(cfg.APIPort, service)); err != nil {
		log.Fatal().Err(err).Msg("api server failed")
	}

	logger.Info().Msg("server stopped")
}
