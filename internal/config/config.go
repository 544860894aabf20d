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
	Port   int    `env:"PORT" envDefault:"3000"`

	// Gemini credentials. The numbered variables mirror the desktop build's
	// .env layout; GEMINI_API_KEYS accepts any number of extra keys.
	GeminiAPIKey   string   `env:"GEMINI_API_KEY"`
	GeminiAPIKey1  string   `env:"GEMINI_API_KEY_1"`
	GeminiAPIKey2  string   `env:"GEMINI_API_KEY_2"`
	GeminiAPIKeys  []string `env:"GEMINI_API_KEYS" envSeparator:","`
	GeminiBaseURL  string   `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
	DeepSeekAPIKey string   `env:"DEEPSEEK_API_KEY"`
	// DeepSeekAPIKeys lists additional secondary-provider keys.
	DeepSeekAPIKeys []string `env:"DEEPSEEK_API_KEYS" envSeparator:","`
	DeepSeekBaseURL string   `env:"DEEPSEEK_BASE_URL" envDefault:"https://api.deepseek.com"`

	DefaultModel  string `env:"DEFAULT_MODEL" envDefault:"gemini-2.0-flash"`
	FallbackModel string `env:"FALLBACK_MODEL" envDefault:"gemini-2.0-flash"`
	// FailoverEnabled switches between 2×keys attempts and a single attempt.
	FailoverEnabled       bool `env:"FAILOVER_ENABLED" envDefault:"true"`
	ModelDowngradeEnabled bool `env:"MODEL_DOWNGRADE_ENABLED" envDefault:"true"`

	AttemptTimeout       time.Duration `env:"ATTEMPT_TIMEOUT" envDefault:"30s"`
	RequestTimeout       time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5m"`
	RetryInitialInterval time.Duration `env:"RETRY_INITIAL_INTERVAL" envDefault:"1s"`
	RetryMaxInterval     time.Duration `env:"RETRY_MAX_INTERVAL" envDefault:"2s"`

	// Rate governor: a soft pressure heuristic, not a limiter.
	RateCeiling       int           `env:"RATE_CEILING" envDefault:"100"`
	RateDecayAmount   int           `env:"RATE_DECAY_AMOUNT" envDefault:"5"`
	RateDecayInterval time.Duration `env:"RATE_DECAY_INTERVAL" envDefault:"15s"`
	RateResetInterval time.Duration `env:"RATE_RESET_INTERVAL" envDefault:"60s"`
	RateThrottleDelay time.Duration `env:"RATE_THROTTLE_DELAY" envDefault:"2s"`

	// AdminRateLimitPerMin caps /reset and /switch-key per client IP.
	AdminRateLimitPerMin int `env:"ADMIN_RATE_LIMIT_PER_MIN" envDefault:"30"`

	CORSAllowOrigins string `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	// StaticDir points at the prebuilt front-end; empty disables static serving.
	StaticDir string `env:"STATIC_DIR"`

	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"ai-legal-research"`

	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	// HTTPWriteTimeout must outlive RequestTimeout so the 408 can still be written.
	HTTPWriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"330s"`
	HTTPIdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	return cfg, nil
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// IsTest reports whether the app is running in test mode.
func (c Config) IsTest() bool { return strings.ToLower(c.AppEnv) == "test" }
