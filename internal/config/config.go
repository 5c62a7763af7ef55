package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

const (
	DispatchHTTP   = "http"
	DispatchQueue  = "queue"
	DispatchInline = "inline"

	ProviderOpenAI    = "openai"
	ProviderLangChain = "langchain"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"./data/evaluations.db"`
	APIPort     string `env:"API_PORT" envDefault:"8001"`

	OpenAIAPIKey      string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL     string        `env:"OPENAI_BASE_URL"`
	GraderProvider    string        `env:"GRADER_PROVIDER" envDefault:"openai" validate:"oneof=openai langchain"`
	GraderModel       string        `env:"GRADER_MODEL" envDefault:"gpt-4o-mini" validate:"required"`
	GraderTemperature float64       `env:"GRADER_TEMPERATURE" envDefault:"0.2" validate:"gte=0,lte=2"`
	GraderTimeout     time.Duration `env:"GRADER_TIMEOUT" envDefault:"2m"`

	DispatchMode      string        `env:"DISPATCH_MODE" envDefault:"http" validate:"oneof=http queue inline"`
	RabbitMQURL       string        `env:"RABBITMQ_URL" validate:"required_if=DispatchMode queue"`
	PublicOrigin      string        `env:"PUBLIC_ORIGIN" validate:"omitempty,url"`
	AdminAccessSecret string        `env:"ADMIN_ACCESS_SECRET"`
	TriggerTimeout    time.Duration `env:"TRIGGER_TIMEOUT" envDefault:"15m"`
	JobTTL            time.Duration `env:"JOB_TTL" envDefault:"24h" validate:"gt=0"`
	CleanupSchedule   string        `env:"KV_CLEANUP_SCHEDULE" envDefault:"@hourly"`

	S3EndpointURL     string `env:"S3_ENDPOINT_URL"`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Region          string `env:"AWS_REGION" envDefault:"us-east-1"`
	ArchiveBucket     string `env:"ARCHIVE_BUCKET"`
	ArchiveDir        string `env:"ARCHIVE_DIR"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json console"`
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("error parsing config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ArchiveEnabled reports whether final verdicts should also be archived to object storage.
func (c Config) ArchiveEnabled() bool {
	return c.ArchiveBucket != "" && (c.S3EndpointURL != "" || c.S3AccessKeyID != "" || c.ArchiveDir != "")
}
