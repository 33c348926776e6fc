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

	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	// OpenAIModel overrides the default chat model for both pipelines.
	OpenAIModel string `env:"OPENAI_MODEL" envDefault:"gpt-4o"`

	// ScorerTemperature is kept low so keyword extraction stays consistent
	// across runs for the same job description.
	ScorerTemperature float64 `env:"SCORER_TEMPERATURE" envDefault:"0.1"`
	WriterTemperature float64 `env:"WRITER_TEMPERATURE" envDefault:"0.2"`
	ScorerMaxTokens   int     `env:"SCORER_MAX_TOKENS" envDefault:"2000"`
	WriterMaxTokens   int     `env:"WRITER_MAX_TOKENS" envDefault:"3000"`
	// LLMTimeout bounds the single provider round trip per request.
	LLMTimeout time.Duration `env:"LLM_TIMEOUT" envDefault:"25s"`

	// GapSchema picks the missing-keyword schema for this deployment:
	// "risk" (rule-based risk/points) or "confidence" (model-evidenced).
	GapSchema string `env:"GAP_SCHEMA" envDefault:"risk"`

	// RedisURL enables the shared analysis response cache when set; empty
	// keeps the in-process FIFO cache.
	RedisURL          string        `env:"REDIS_URL"`
	AnalysisCacheSize int           `env:"ANALYSIS_CACHE_SIZE" envDefault:"256"`
	AnalysisCacheTTL  time.Duration `env:"ANALYSIS_CACHE_TTL" envDefault:"1h"`

	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"resume-tailor"`

	MaxUploadMB           int64         `env:"MAX_UPLOAD_MB" envDefault:"5"`
	CORSAllowOrigins      string        `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	RateLimitPerMin       int           `env:"RATE_LIMIT_PER_MIN" envDefault:"30"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	HTTPIdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	if cfg.GapSchema != "risk" && cfg.GapSchema != "confidence" {
		return Config{}, fmt.Errorf("op=config.Load: GAP_SCHEMA must be risk or confidence, got %q", cfg.GapSchema)
	}
	return cfg, nil
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// IsTest reports whether the app is running in test mode.
func (c Config) IsTest() bool { return strings.ToLower(c.AppEnv) == "test" }
