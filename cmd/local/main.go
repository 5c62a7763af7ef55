package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/cmd"
	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/api"
	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/jobs"
	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/messaging"
	"github.com/rs/zerolog/log"
)

// local runs the api and a job processor in one process, connected by an in-memory queue.
// DATABASE_URL is ignored in favour of the sqlite file at SQLITE_PATH.
func main() {
	cfg, logger := cmd.Setup()
	cfg.DatabaseURL = ""
	logger.Info().Str("sqlite_path", cfg.SQLitePath).Msg("starting local backend")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := cmd.CreateDatabase(cfg)
	runner := cmd.CreateRunner(ctx, cfg, db, logger)
	store := cmd.CreateJobStore(cfg, db)

	queue := messaging.NewInMemoryQueue()

	controller := jobs.NewController(store, runner, jobs.NewQueueDispatcher(queue), logger)

	processor := jobs.NewTaskProcessor(controller, queue, logger)
	go processor.Start()
	defer processor.Stop()

	cleanup := cmd.StartCleanup(cfg, db, logger)
	defer cleanup.Stop()

	service := api.NewEvaluationService(db, runner, controller, cfg.AdminAccessSecret, logger)

	if err := cmd.Serve(ctx, cmd.CreateServer(cfg.APIPort, service)); err != nil {
		log.Fatal().Err(err).Msg("local backend failed")
	}

	logger.Info().Msg("local backend stopped")
}
