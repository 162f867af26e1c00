package quizzify

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// OllamaCompleter calls a locally hosted model through Ollama
type OllamaCompleter struct {
	llm   llms.Model
	model string
}

var _ Completer = (*OllamaCompleter)(nil)

// NewOllamaCompleter creates a completer for the Ollama server at url.
func NewOllamaCompleter(url, model string) (*OllamaCompleter, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(url),
		ollama.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}
	return &OllamaCompleter{llm: llm, model: model}, nil
}

// Complete sends the system and user prompt as a single prompt.
func (c *OllamaCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	completion, err := llms.GenerateFromSinglePrompt(ctx, c.llm, systemPrompt+"\n\n"+prompt, llms.WithTemperature(0.2))
	if err != nil {
		return "", fmt.Errorf("failed to generate completion with %s: %w", c.model, err)
	}
	if completion == "" {
		return "", fmt.Errorf("empty response from %s", c.model)
	}
	return completion, nil
}
