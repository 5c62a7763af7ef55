package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangChainGrader grades through langchaingo, for OpenAI compatible endpoints that
// the official client does not handle well.
type LangChainGrader struct {
	client  *openai.LLM
	model   string
	temp    float64
	timeout time.Duration
	log     zerolog.Logger
}

func NewLangChainGrader(cfg Config, log zerolog.Logger) (*LangChainGrader, error) {
	opts := []openai.Option{openai.WithModel(cfg.Model)}
	if cfg.APIKey != "" {
		opts = append(opts, openai.WithToken(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating langchain openai client: %w", err)
	}

	return &LangChainGrader{
		client:  client,
		model:   cfg.Model,
		temp:    cfg.Temperature,
		timeout: cfg.timeout(),
		log:     log.With().Str("component", "langchain_grader").Logger(),
	}, nil
}

func (g *LangChainGrader) Model() string {
	return g.model
}

func (g *LangChainGrader) Grade(ctx context.Context, systemPrompt, userPrompt string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	resp, err := g.client.GenerateContent(ctx, messages, llms.WithJSONMode(), llms.WithTemperature(g.temp))
	if err != nil {
		g.log.Error().Err(err).Str("model", g.model).Msg("generate content failed")
		return nil, fmt.Errorf("langchain grading failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	return ParseVerdict(resp.Choices[0].Content)
}
