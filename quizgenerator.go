package quizzify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const systemPrompt = "You are an expert quiz question generator. You answer with JSON only, never with prose or markdown."

// Completer is the text generation backend. Implementations may block and
// must honour ctx cancellation.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Recorder stores metadata about generation attempts.
type Recorder interface {
	RecordGeneration(ctx context.Context, rec GenerationRecord) error
}

// QuizGenerator turns a topic into a validated QuestionSet using a Completer
type QuizGenerator struct {
	completer     Completer
	provider      string
	recorder      Recorder
	transcriptDir string
}

// NewQuizGenerator creates a generator. provider names the backend in
// logs and history.
func NewQuizGenerator(completer Completer, provider string) *QuizGenerator {
	return &QuizGenerator{
		completer: completer,
		provider:  provider,
	}
}

// SetRecorder makes the generator record every attempt.
func (qg *QuizGenerator) SetRecorder(r Recorder) {
	qg.recorder = r
}

// SetTranscriptDir enables per-generation transcripts in dir.
func (qg *QuizGenerator) SetTranscriptDir(dir string) {
	qg.transcriptDir = dir
}

// Generate asks the model for a quiz on topic. Failures are returned as
// *GenerationError and are never retried.
func (qg *QuizGenerator) Generate(ctx context.Context, topic string) (QuestionSet, error) {
	topic = strings.TrimSpace(topic)
	rec := GenerationRecord{
		ID:        uuid.NewString(),
		Topic:     topic,
		Provider:  qg.provider,
		CreatedAt: time.Now(),
	}

	questions, err := qg.generate(ctx, rec)

	rec.Duration = time.Since(rec.CreatedAt)
	rec.Outcome = OutcomeOK
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		rec.Outcome = genErr.Kind.outcome()
		rec.Error = err.Error()
	}
	qg.record(ctx, rec)

	if err != nil {
		logger.Warn().Err(err).Str("topic", topic).Str("provider", qg.provider).Msg("quiz generation failed")
		return nil, err
	}

	logger.Info().Str("topic", topic).Str("provider", qg.provider).Dur("duration", rec.Duration).Msg("quiz generated")
	return questions, nil
}

func (qg *QuizGenerator) generate(ctx context.Context, rec GenerationRecord) (QuestionSet, error) {
	if rec.Topic == "" {
		return nil, &GenerationError{Kind: EmptyTopic}
	}

	var transcript *Transcript
	if qg.transcriptDir != "" {
		t, err := NewTranscript(qg.transcriptDir, rec.ID, rec.Topic, qg.provider)
		if err != nil {
			logger.Warn().Err(err).Msg("continuing without transcript")
		} else {
			transcript = t
			defer transcript.Close()
		}
	}

	prompt := BuildPrompt(rec.Topic)
	if transcript != nil {
		transcript.LogRequest(prompt)
	}

	VerboseLog("requesting quiz on %q from %s", rec.Topic, qg.provider)
	raw, err := qg.completer.Complete(ctx, prompt)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		genErr := &GenerationError{Kind: UpstreamFailure, Cause: err}
		if transcript != nil {
			transcript.LogOutcome(OutcomeUpstreamFailure, err)
		}
		return nil, genErr
	}

	if transcript != nil {
		transcript.LogResponse(raw)
	}

	questions, err := ParseQuestions(raw)
	if err != nil {
		if transcript != nil {
			transcript.LogOutcome(OutcomeInvalidOutput, err)
		}
		return nil, &GenerationError{Kind: InvalidOutput, Cause: err}
	}

	if transcript != nil {
		transcript.LogOutcome(OutcomeOK, nil)
	}
	return questions, nil
}

// GenerateInto generates a quiz and loads it into session. The session is
// left untouched if generation fails or ctx is cancelled first.
func (qg *QuizGenerator) GenerateInto(ctx context.Context, session *Session, topic string) error {
	questions, err := qg.Generate(ctx, topic)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &GenerationError{Kind: UpstreamFailure, Cause: err}
	}
	return session.Load(questions)
}

func (qg *QuizGenerator) record(ctx context.Context, rec GenerationRecord) {
	if qg.recorder == nil {
		return
	}
	// Record even when the caller's context is already cancelled.
	if err := qg.recorder.RecordGeneration(context.WithoutCancel(ctx), rec); err != nil {
		logger.Warn().Err(err).Str("generation_id", rec.ID).Msg("failed to record generation")
	}
}

// BuildPrompt returns the instruction sent to the model for topic.
func BuildPrompt(topic string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Generate a technical quiz about \"%s\".\n\n", topic))
	sb.WriteString(fmt.Sprintf("Output MUST be a JSON array of exactly %d objects. No other text.\n\n", QuestionCount))

	sb.WriteString("Requirements:\n")
	sb.WriteString(fmt.Sprintf("- Each object has a \"question\" string, an \"options\" array of exactly %d distinct strings and an \"answer\" string\n", OptionCount))
	sb.WriteString("- \"answer\" must be copied exactly, character for character, from one of the options\n")
	sb.WriteString("- Incorrect options should be plausible but clearly wrong\n")
	sb.WriteString("- Do not wrap the JSON in markdown or add commentary\n\n")

	sb.WriteString("Format:\n")
	sb.WriteString("[\n")
	sb.WriteString("  {\n")
	sb.WriteString("    \"question\": \"The question text\",\n")
	sb.WriteString("    \"options\": [\"Option A\", \"Option B\", \"Option C\", \"Option D\"],\n")
	sb.WriteString("    \"answer\": \"The exact correct option string\"\n")
	sb.WriteString("  }\n")
	sb.WriteString("]\n")

	return sb.String()
}
