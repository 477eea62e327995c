// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"dev"`
	Port   int    `env:"PORT" envDefault:"8080"`

	// DatabaseURL enables the Postgres run archive when non-empty.
	DatabaseURL string `env:"DATABASE_URL"`
	// RedisURL enables the shared interview-question cache when non-empty.
	RedisURL string `env:"REDIS_URL"`
	// KafkaBrokers enables run lifecycle events when non-empty.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"candidate-run-events"`

	// AIProvider selects the chat backend: openrouter or stub.
	AIProvider        string        `env:"AI_PROVIDER" envDefault:"openrouter"`
	OpenRouterAPIKey  string        `env:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL string        `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	OpenRouterReferer string        `env:"OPENROUTER_REFERER"`
	OpenRouterTitle   string        `env:"OPENROUTER_TITLE" envDefault:"AI Candidate Ranker"`
	ChatModel         string        `env:"CHAT_MODEL" envDefault:"openai/gpt-4o-mini"`
	ChatTemperature   float64       `env:"CHAT_TEMPERATURE" envDefault:"0.1"`
	ChatMaxTokens     int           `env:"CHAT_MAX_TOKENS" envDefault:"1024"`
	AIRequestTimeout  time.Duration `env:"AI_REQUEST_TIMEOUT" envDefault:"60s"`

	// Pipeline
	BatchSize         int           `env:"PIPELINE_BATCH_SIZE" envDefault:"5"`
	ExtractMaxRetries int           `env:"EXTRACT_MAX_RETRIES" envDefault:"2"`
	ExtractRetryDelay time.Duration `env:"EXTRACT_RETRY_DELAY" envDefault:"1s"`
	OutputDir         string        `env:"OUTPUT_DIR" envDefault:"out"`
	ProfilePath       string        `env:"PROFILE_PATH" envDefault:"configs/profile.yaml"`
	QuestionCacheTTL  time.Duration `env:"QUESTION_CACHE_TTL" envDefault:"168h"`

	// AI transport backoff
	AIBackoffMaxElapsedTime  time.Duration `env:"AI_BACKOFF_MAX_ELAPSED_TIME" envDefault:"90s"`
	AIBackoffInitialInterval time.Duration `env:"AI_BACKOFF_INITIAL_INTERVAL" envDefault:"2s"`
	AIBackoffMaxInterval     time.Duration `env:"AI_BACKOFF_MAX_INTERVAL" envDefault:"20s"`
	AIBackoffMultiplier      float64       `env:"AI_BACKOFF_MULTIPLIER" envDefault:"1.5"`

	// HTTP server
	MaxUploadMB           int64         `env:"MAX_UPLOAD_MB" envDefault:"10"`
	CORSAllowOrigins      string        `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	RateLimitPerMin       int           `env:"RATE_LIMIT_PER_MIN" envDefault:"30"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	HTTPIdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`

	// Observability
	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"ai-candidate-ranker"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	return cfg, nil
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// IsTest reports whether the app is running in test mode.
func (c Config) IsTest() bool { return strings.ToLower(c.AppEnv) == "test" }

// ArchiveEnabled reports whether the Postgres run archive is configured.
func (c Config) ArchiveEnabled() bool { return c.DatabaseURL != "" }

// QuestionCacheEnabled reports whether the Redis question cache is configured.
func (c Config) QuestionCacheEnabled() bool { return c.RedisURL != "" }

// EventsEnabled reports whether the Kafka lifecycle publisher is configured.
func (c Config) EventsEnabled() bool { return len(c.KafkaBrokers) > 0 }

// GetAIBackoffConfig returns transport backoff settings appropriate for the
// current environment. Test environments use much shorter intervals so suites
// never sleep for real.
func (c Config) GetAIBackoffConfig() (maxElapsedTime, initialInterval, maxInterval time.Duration, multiplier float64) {
	if c.IsTest() {
		return 2 * time.Second, 10 * time.Millisecond, 100 * time.Millisecond, 2.0
	}
	return c.AIBackoffMaxElapsedTime, c.AIBackoffInitialInterval, c.AIBackoffMaxInterval, c.AIBackoffMultiplier
}
