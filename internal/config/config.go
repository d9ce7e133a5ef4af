package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	BackendHTTP   = "http"
	BackendGemini = "gemini"
	BackendOpenAI = "openai"
)

// Config holds application configuration
type Config struct {
	Backend string `env:"ALGOCHAT_BACKEND" envDefault:"http"`

	// Platform chat endpoint
	APIBaseURL string `env:"ALGOCHAT_API_BASE_URL" envDefault:"http://localhost:3000"`
	AuthToken  string `env:"ALGOCHAT_AUTH_TOKEN"`

	// Direct model access
	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiModel   string `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	// Zero means wait for the backend indefinitely
	RequestTimeout time.Duration `env:"ALGOCHAT_REQUEST_TIMEOUT" envDefault:"0s"`
	CacheResponses bool          `env:"ALGOCHAT_CACHE_RESPONSES" envDefault:"false"`
	MinInputLength int           `env:"ALGOCHAT_MIN_INPUT_LENGTH" envDefault:"2"`

	SeedPath    string `env:"ALGOCHAT_SEED_PATH"`
	ProblemPath string `env:"ALGOCHAT_PROBLEM_PATH"`
	JournalPath string `env:"ALGOCHAT_JOURNAL_PATH" envDefault:"algochat.db"`

	LogDir           string `env:"ALGOCHAT_LOG_DIR" envDefault:"logs"`
	LogLevel         string `env:"ALGOCHAT_LOG_LEVEL" envDefault:"info"`
	TelemetryEnabled bool   `env:"ALGOCHAT_TELEMETRY" envDefault:"true"`
	Debug            bool   `env:"ALGOCHAT_DEBUG" envDefault:"false"`
}

// Load reads an optional .env file and parses the environment into a Config
func Load(dotenvFiles ...string) (Config, error) {
	if len(dotenvFiles) > 0 {
		// A missing .env is not an error; the environment may be set directly.
		_ = godotenv.Load(dotenvFiles...)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks that the selected backend has what it needs
func (c Config) Validate() error {
	switch c.Backend {
	case BackendHTTP:
		if c.APIBaseURL == "" {
			return fmt.Errorf("api base url is required for %s backend", c.Backend)
		}
	case BackendGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY not set")
		}
	case BackendOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY not set")
		}
	default:
		return fmt.Errorf("unknown backend: %s", c.Backend)
	}
	if c.MinInputLength < 1 {
		return fmt.Errorf("min input length must be positive, got %d", c.MinInputLength)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative")
	}
	return nil
}
