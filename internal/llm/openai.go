package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog"
)

const defaultCallTimeout = 120 * time.Second

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

func (c Config) requestOptions() []option.RequestOption {
	var opts []option.RequestOption
	if c.APIKey != "" {
		opts = append(opts, option.WithAPIKey(c.APIKey))
	}
	if c.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(c.BaseURL))
	}
	return opts
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultCallTimeout
	}
	return c.Timeout
}

// OpenAIGrader calls the chat completions API in JSON object mode.
type OpenAIGrader struct {
	client  openai.Client
	model   string
	temp    float64
	timeout time.Duration
	log     zerolog.Logger
}

func NewOpenAIGrader(cfg Config, log zerolog.Logger, opts ...option.RequestOption) *OpenAIGrader {
	return &OpenAIGrader{
		client:  openai.NewClient(append(cfg.requestOptions(), opts...)...),
		model:   cfg.Model,
		temp:    cfg.Temperature,
		timeout: cfg.timeout(),
		log:     log.With().Str("component", "openai_grader").Logger(),
	}
}

func (g *OpenAIGrader) Model() string {
	return g.model
}

func (g *OpenAIGrader) Grade(ctx context.Context, systemPrompt, userPrompt string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if len(systemPrompt) > 0 {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(userPrompt))

	req := openai.ChatCompletionNewParams{
		Model:       g.model,
		Messages:    messages,
		Temperature: openai.Float(g.temp),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		},
	}

	start := time.Now()
	res, err := g.client.Chat.Completions.New(ctx, req)
	if err != nil {
		g.log.Error().Err(err).Str("model", g.model).Msg("chat completion failed")
		return nil, fmt.Errorf("openai grading failed: %w", err)
	}

	g.log.Info().
		Str("model", g.model).
		Int64("prompt_tokens", res.Usage.PromptTokens).
		Int64("completion_tokens", res.Usage.CompletionTokens).
		Int64("total_tokens", res.Usage.TotalTokens).
		Dur("took", time.Since(start)).
		Msg("chat completion")

	if len(res.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	return ParseVerdict(res.Choices[0].Message.Content)
}
