package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/database"
	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/evaluation"
	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/internal/jobs"
	"github.com/Mayesss/ai-trade-decision-pipeline-sub003/pkg/api"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DefaultLimit     = 30
	MinLimit         = 5
	MaxLimit         = 30
	DefaultBatchSize = 5
	MinBatchSize     = 2
	MaxBatchSize     = 10

	maxRequestBody = 1 << 20
)

type EvaluationRunner interface {
	Run(ctx context.Context, symbol string, limit, batchSize int, includePartials bool) (*evaluation.Result, error)
}

type JobController interface {
	Create(ctx context.Context, symbol string, params jobs.Params, trigger jobs.Trigger) (*jobs.Record, error)
	Poll(ctx context.Context, id string, execute bool) (*jobs.Record, error)
}

type EvaluationService struct {
	db          *gorm.DB
	runner      EvaluationRunner
	controller  JobController
	verdicts    *database.VerdictStore
	adminSecret string
	log         zerolog.Logger
}

func NewEvaluationService(db *gorm.DB, runner EvaluationRunner, controller JobController, adminSecret string, log zerolog.Logger) *EvaluationService {
	return &EvaluationService{
		db:          db,
		runner:      runner,
		controller:  controller,
		verdicts:    database.NewVerdictStore(db),
		adminSecret: adminSecret,
		log:         log.With().Str("component", "evaluation_api").Logger(),
	}
}

func (s *EvaluationService) AddRoutes(r chi.Router) {
	r.Get("/health", RestHandler(func(r *http.Request) (any, error) {
		return nil, nil
	}))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(AdminGuard(s.adminSecret))

		r.Route("/evaluations", func(r chi.Router) {
			r.Get("/", RestHandler(s.Evaluate))
			r.Post("/", RestHandler(s.Evaluate))
			r.Get("/jobs/{job_id}", RestHandler(s.GetJob))
			r.Get("/{symbol}/latest", RestHandler(s.GetLatest))
		})

		r.Post("/decisions", RestHandler(s.RecordDecision))
	})
}

func (s *EvaluationService) parseEvaluateRequest(r *http.Request) (api.EvaluateRequest, error) {
	req, err := ParseRequestQueryParams[api.EvaluateRequest](r)
	if err != nil {
		return req, err
	}

	if r.Body == nil {
		return req, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		return req, CodedErrorf(http.StatusBadRequest, "unable to read request body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return req, nil
	}
	// Body fields override query params; absent body fields keep the query value.
	if err := json.Unmarshal(body, &req); err != nil {
		s.log.Warn().Err(err).Msg("error parsing evaluate request body")
		return req, CodedErrorf(http.StatusBadRequest, "unable to parse request body")
	}
	return req, nil
}

func (s *EvaluationService) Evaluate(r *http.Request) (any, error) {
	req, err := s.parseEvaluateRequest(r)
	if err != nil {
		return nil, err
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "symbol is required")
	}

	params := jobs.Params{
		Limit:           clamp(req.Limit.Int(DefaultLimit), MinLimit, MaxLimit),
		BatchSize:       clamp(req.BatchSize.Int(DefaultBatchSize), MinBatchSize, MaxBatchSize),
		IncludePartials: req.IncludeBatches.Bool(false),
	}

	if req.Async.Bool(false) {
		trigger := jobs.Trigger{
			Origin:      requestOrigin(r),
			AdminSecret: r.Header.Get(api.AdminSecretHeader),
		}
		if cookie, err := r.Cookie(api.AdminSessionCookie); err == nil {
			trigger.Cookie = cookie.Value
		}

		record, err := s.controller.Create(r.Context(), symbol, params, trigger)
		if err != nil {
			return nil, CodedErrorf(http.StatusInternalServerError, "error creating evaluation job: %w", err)
		}
		return api.EvaluateJobResponse{
			JobId:  record.Id,
			Status: string(record.Status),
			Poll:   api.JobPath(record.Id),
		}, nil
	}

	result, err := s.runner.Run(r.Context(), symbol, params.Limit, params.BatchSize, params.IncludePartials)
	if err != nil {
		return nil, evaluationError(err)
	}
	return result, nil
}

func evaluationError(err error) error {
	var gerr *evaluation.GradingError
	switch {
	case errors.Is(err, evaluation.ErrNoHistory):
		return CodedError(http.StatusNotFound, evaluation.ErrNoHistory)
	case errors.As(err, &gerr):
		return CodedError(http.StatusBadGateway, gerr)
	default:
		return CodedErrorf(http.StatusInternalServerError, "evaluation failed: %w", err)
	}
}

func (s *EvaluationService) GetJob(r *http.Request) (any, error) {
	params, err := ParseRequestQueryParams[api.PollParams](r)
	if err != nil {
		return nil, err
	}
	execute := params.Execute.Bool(false)

	ctx := r.Context()
	if execute {
		// The trigger request may be abandoned by its sender; the run must finish regardless.
		ctx = context.WithoutCancel(ctx)
	}

	record, err := s.controller.Poll(ctx, chi.URLParam(r, "job_id"), execute)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "job not found")
		}
		return nil, CodedErrorf(http.StatusInternalServerError, "error loading job: %w", err)
	}
	return record, nil
}

func (s *EvaluationService) GetLatest(r *http.Request) (any, error) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))

	latest, err := s.verdicts.GetLatest(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "no evaluation for symbol %s", symbol)
		}
		return nil, CodedErrorf(http.StatusInternalServerError, "error loading evaluation: %w", err)
	}

	return api.LatestEvaluationResponse{
		Symbol:     latest.Symbol,
		Evaluation: json.RawMessage(latest.Verdict),
		UpdatedAt:  latest.UpdatedAt,
	}, nil
}

func (s *EvaluationService) RecordDecision(r *http.Request) (any, error) {
	req, err := ParseRequest[api.RecordDecisionRequest](r)
	if err != nil {
		return nil, err
	}
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	decision := database.Decision{
		Symbol:          strings.ToUpper(req.Symbol),
		Timestamp:       req.Timestamp.UTC(),
		Timeframe:       req.Timeframe,
		Prompt:          req.Prompt,
		Action:          req.Action,
		SignalStrength:  req.SignalStrength,
		Bias:            req.Bias,
		Summary:         req.Summary,
		Reason:          req.Reason,
		DryRun:          req.DryRun,
		Snapshot:        jsonOrNull(req.Snapshot),
		ExecutionResult: jsonOrNull(req.ExecutionResult),
		Model:           req.Model,
	}

	if err := database.SaveDecision(r.Context(), s.db, &decision); err != nil {
		return nil, CodedErrorf(http.StatusInternalServerError, "error saving decision: %w", err)
	}

	s.log.Info().Str("symbol", decision.Symbol).Uint("decision_id", decision.Id).Msg("recorded decision")

	return api.RecordDecisionResponse{Id: decision.Id}, nil
}

func jsonOrNull(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(raw)
}
