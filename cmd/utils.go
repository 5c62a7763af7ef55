package cmd

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/api"
	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/config"
	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/database"
	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/evaluation"
	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/jobs"
	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/llm"
	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/logger"
	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/metrics"
	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Synchronous evaluations make several sequential grader calls.
const requestTimeout = 10 * time.Minute

func LoadEnvFile() {
	var configPath string

	flag.StringVar(&configPath, "env", "", "path to load env from")
	flag.Parse()

	if configPath == "" {
		log.Info().Msg("no env file specified, using os.Environ only")
		return
	}

	log.Info().Str("path", configPath).Msg("loading env from file")
	if err := godotenv.Load(configPath); err != nil {
		log.Fatal().Err(err).Str("path", configPath).Msg("error loading .env file")
	}
}

// Setup loads the env file and configuration and builds the root logger.
func Setup() (config.Config, zerolog.Logger) {
	LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("error loading config")
	}

	return cfg, logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
}

func CreateDatabase(cfg config.Config) *gorm.DB {
	db, err := database.NewDatabase(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	return db
}

func CreateGrader(cfg config.Config, baseLog zerolog.Logger) evaluation.Grader {
	llmCfg := llm.Config{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.GraderModel,
		Temperature: cfg.GraderTemperature,
		Timeout:     cfg.GraderTimeout,
	}

	switch cfg.GraderProvider {
	case config.ProviderLangChain:
		grader, err := llm.NewLangChainGrader(llmCfg, baseLog)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create langchain grader")
		}
		return grader
	default:
		return llm.NewOpenAIGrader(llmCfg, baseLog)
	}
}

// CreateVerdictStore returns the database verdict store, wrapped with an object storage
// archive when one is configured.
func CreateVerdictStore(ctx context.Context, cfg config.Config, db *gorm.DB, baseLog zerolog.Logger) evaluation.VerdictStore {
	store := database.NewVerdictStore(db)
	if !cfg.ArchiveEnabled() {
		return store
	}

	var provider storage.Provider
	if cfg.ArchiveDir != "" {
		provider = storage.NewLocalProvider(cfg.ArchiveDir)
	} else {
		s3p, err := storage.NewS3Provider(ctx, storage.S3ProviderConfig{
			S3EndpointURL:     cfg.S3EndpointURL,
			S3AccessKeyID:     cfg.S3AccessKeyID,
			S3SecretAccessKey: cfg.S3SecretAccessKey,
			S3Region:          cfg.S3Region,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create s3 provider")
		}
		provider = s3p
	}

	if err := provider.CreateBucket(ctx, cfg.ArchiveBucket); err != nil {
		log.Warn().Err(err).Str("bucket", cfg.ArchiveBucket).Msg("unable to create archive bucket")
	}

	log.Info().Str("bucket", cfg.ArchiveBucket).Msg("archiving evaluations to object storage")
	return evaluation.NewArchivingVerdictStore(store, provider, cfg.ArchiveBucket, baseLog)
}

func CreateRunner(ctx context.Context, cfg config.Config, db *gorm.DB, baseLog zerolog.Logger) *evaluation.Runner {
	return evaluation.NewRunner(
		database.NewDecisionHistory(db),
		CreateGrader(cfg, baseLog),
		CreateVerdictStore(ctx, cfg, db, baseLog),
		baseLog,
		evaluation.WithModelName(cfg.GraderModel),
	)
}

func CreateJobStore(cfg config.Config, db *gorm.DB) *jobs.Store {
	return jobs.NewStore(database.NewKVStore(db), cfg.JobTTL)
}

// StartCleanup schedules removal of expired job records.
func StartCleanup(cfg config.Config, db *gorm.DB, baseLog zerolog.Logger) *cron.Cron {
	c, err := jobs.NewCleanupJob(database.NewKVStore(db), baseLog).Schedule(cfg.CleanupSchedule)
	if err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.CleanupSchedule).Msg("failed to schedule kv cleanup")
	}
	return c
}

func CreateServer(port string, service *api.EvaluationService) *http.Server {
	r := chi.NewRouter()

	httpMetrics := metrics.NewMiddleware("trade-evaluation-api")
	httpMetrics.MustRegister(nil)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(httpMetrics.Handler)
	r.Use(middleware.Timeout(requestTimeout))

	r.Route("/api/v1", service.AddRoutes)

	return &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
}

// Serve runs the server until ctx is cancelled, then shuts it down gracefully.
func Serve(ctx context.Context, server *http.Server) error {
	errs := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("api server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- fmt.Errorf("could not listen on %s: %w", server.Addr, err)
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
