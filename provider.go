package quizzify

import (
	"context"
	"fmt"
	"io"
)

// NewCompleter builds the Completer for cfg.Provider.
func NewCompleter(ctx context.Context, cfg *Config) (Completer, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAICompleter(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL), nil
	case "gemini":
		return NewGeminiCompleter(ctx, cfg.GeminiKey, cfg.GeminiModel)
	case "ollama":
		return NewOllamaCompleter(cfg.OllamaURL, cfg.OllamaModel)
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

// CloseCompleter releases c if it holds resources.
func CloseCompleter(c Completer) error {
	if closer, ok := c.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
