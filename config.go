package quizzify

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DefaultSessionSecret signs web cookies when SESSION_SECRET is unset. It is
// public, so it is only fit for local development.
const DefaultSessionSecret = "quizzify-dev-session-secret"

// Config holds settings shared by the command line tool and the web server.
type Config struct {
	Provider string `validate:"oneof=openai gemini ollama"`

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string `validate:"omitempty,url"`

	GeminiKey   string
	GeminiModel string

	OllamaURL   string `validate:"omitempty,url"`
	OllamaModel string `validate:"required_if=Provider ollama"`

	HistoryDB     string // empty disables generation history
	TranscriptDir string // empty disables transcripts

	LogLevel  string `validate:"oneof=trace debug info warn error fatal panic disabled"`
	LogFormat string `validate:"oneof=json pretty"`

	Port            string        `validate:"required,numeric"`
	SessionSecret   string        `validate:"required,min=16"`
	GenerateTimeout time.Duration `validate:"gt=0"`
}

// LoadConfig reads .env if present, then the environment, with defaults.
func LoadConfig() *Config {
	_ = godotenv.Load() // .env is optional

	return &Config{
		Provider:        getenvDefault("QUIZZIFY_PROVIDER", "openai"),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:     getenvDefault("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		GeminiKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     getenvDefault("GEMINI_MODEL", DefaultGeminiModel),
		OllamaURL:       getenvDefault("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:     getenvDefault("OLLAMA_MODEL", "llama3.1"),
		HistoryDB:       getenvDefault("QUIZZIFY_HISTORY_DB", "quizzify.db"),
		TranscriptDir:   os.Getenv("QUIZZIFY_TRANSCRIPT_DIR"),
		LogLevel:        getenvDefault("LOG_LEVEL", "info"),
		LogFormat:       getenvDefault("LOG_FORMAT", "pretty"),
		Port:            getenvDefault("PORT", "8180"),
		SessionSecret:   getenvDefault("SESSION_SECRET", DefaultSessionSecret),
		GenerateTimeout: getenvDuration("GENERATE_TIMEOUT", 2*time.Minute),
	}
}

// Validate checks the configuration, including that the selected provider
// has the credentials it needs.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	switch c.Provider {
	case "openai":
		if c.OpenAIKey == "" && c.OpenAIBaseURL == "" {
			return fmt.Errorf("invalid config: OPENAI_API_KEY is required for provider openai")
		}
	case "gemini":
		if c.GeminiKey == "" {
			return fmt.Errorf("invalid config: GEMINI_API_KEY is required for provider gemini")
		}
	}
	return nil
}

// UsesDefaultSessionSecret reports whether cookies are signed with the
// public development secret.
func (c *Config) UsesDefaultSessionSecret() bool {
	return c.SessionSecret == DefaultSessionSecret
}

func getenvDefault(k, fallback string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return fallback
}

func getenvDuration(k string, fallback time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
