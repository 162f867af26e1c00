package quizzify

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Transcript records the prompt and raw model response of one generation
// for later debugging. It is never read back as quiz content.
type Transcript struct {
	file *os.File
	mu   sync.Mutex
}

// NewTranscript creates <dir>/<generationID>.log and writes its header.
func NewTranscript(dir, generationID, topic, provider string) (*Transcript, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create transcript directory: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s.log", generationID))
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcript file: %w", err)
	}

	t := &Transcript{file: file}

	t.Logf("=== Quiz Generation Transcript ===\n")
	t.Logf("Generation ID: %s\n", generationID)
	t.Logf("Topic: %s\n", topic)
	t.Logf("Provider: %s\n", provider)
	t.Logf("Started: %s\n", time.Now().Format(time.RFC3339))
	t.Logf("==================================\n\n")

	return t, nil
}

// Logf writes a formatted entry with timestamp
func (t *Transcript) Logf(format string, args ...interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.file == nil {
		return
	}

	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(t.file, "[%s] %s", timestamp, fmt.Sprintf(format, args...))
	t.file.Sync()
}

// LogRequest logs the prompt sent to the model
func (t *Transcript) LogRequest(prompt string) {
	t.Logf("=== LLM REQUEST ===\n")
	t.Logf("Prompt:\n%s\n", prompt)
	t.Logf("===================\n\n")
}

// LogResponse logs the raw text returned by the model
func (t *Transcript) LogResponse(response string) {
	t.Logf("=== LLM RESPONSE ===\n")
	t.Logf("Response:\n%s\n", response)
	t.Logf("====================\n\n")
}

// LogOutcome logs how the generation ended
func (t *Transcript) LogOutcome(outcome GenerationOutcome, err error) {
	if err != nil {
		t.Logf("Outcome: %s - %v\n", outcome, err)
		return
	}
	t.Logf("Outcome: %s\n", outcome)
}

// Close writes the footer and closes the file
func (t *Transcript) Close() error {
	t.Logf("=== Generation Complete: %s ===\n", time.Now().Format(time.RFC3339))

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.file == nil {
		return nil
	}
	err := t.file.Close()
	t.file = nil
	return err
}
