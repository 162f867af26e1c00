package quizzify_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quizzify"
)

type fakeRecorder struct {
	records []quizzify.GenerationRecord
}

func (r *fakeRecorder) RecordGeneration(_ context.Context, rec quizzify.GenerationRecord) error {
	r.records = append(r.records, rec)
	return nil
}

func staticCompleter(t *testing.T) (quizzify.Completer, *[]string) {
	t.Helper()
	raw := "```json\n" + encode(t, rawQuestions()) + "\n```"
	var prompts []string
	return quizzify.CompleterFunc(func(_ context.Context, prompt string) (string, error) {
		prompts = append(prompts, prompt)
		return raw, nil
	}), &prompts
}

func TestGenerate_Success(t *testing.T) {
	completer, prompts := staticCompleter(t)
	rec := &fakeRecorder{}
	gen := quizzify.NewQuizGenerator(completer, "fake")
	gen.SetRecorder(rec)

	qs, err := gen.Generate(context.Background(), "  Go channels \n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != quizzify.QuestionCount {
		t.Errorf("expected %d questions, got %d", quizzify.QuestionCount, len(qs))
	}

	if len(*prompts) != 1 {
		t.Fatalf("expected one completer call, got %d", len(*prompts))
	}
	if !strings.Contains((*prompts)[0], `"Go channels"`) {
		t.Errorf("prompt does not embed the trimmed topic:\n%s", (*prompts)[0])
	}

	if len(rec.records) != 1 {
		t.Fatalf("expected one history record, got %d", len(rec.records))
	}
	got := rec.records[0]
	if got.Outcome != quizzify.OutcomeOK || got.Topic != "Go channels" || got.Provider != "fake" || got.ID == "" {
		t.Errorf("unexpected record: %+v", got)
	}
}

func TestGenerate_EmptyTopic(t *testing.T) {
	called := false
	completer := quizzify.CompleterFunc(func(context.Context, string) (string, error) {
		called = true
		return "", nil
	})
	rec := &fakeRecorder{}
	gen := quizzify.NewQuizGenerator(completer, "fake")
	gen.SetRecorder(rec)

	for _, topic := range []string{"", "   ", "\t\n"} {
		_, err := gen.Generate(context.Background(), topic)
		if !errors.Is(err, quizzify.ErrEmptyTopic) {
			t.Errorf("topic %q: expected empty topic error, got %v", topic, err)
		}
	}

	if called {
		t.Error("completer must not be called for an empty topic")
	}
	if len(rec.records) != 3 || rec.records[0].Outcome != quizzify.OutcomeEmptyTopic {
		t.Errorf("expected empty_topic records, got %+v", rec.records)
	}
}

func TestGenerate_UpstreamFailure(t *testing.T) {
	upstream := errors.New("quota exceeded")
	completer := quizzify.CompleterFunc(func(context.Context, string) (string, error) {
		return "", upstream
	})
	gen := quizzify.NewQuizGenerator(completer, "fake")

	_, err := gen.Generate(context.Background(), "Rust")
	if !errors.Is(err, quizzify.ErrUpstreamFailure) {
		t.Fatalf("expected upstream failure, got %v", err)
	}
	if !errors.Is(err, upstream) {
		t.Errorf("expected cause to be wrapped, got %v", err)
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("expected cause message in error, got %q", err.Error())
	}
}

func TestGenerate_InvalidOutput(t *testing.T) {
	completer := quizzify.CompleterFunc(func(context.Context, string) (string, error) {
		return `[{"question": "Only one?", "options": ["a", "b", "c", "d"], "answer": "a"}]`, nil
	})
	rec := &fakeRecorder{}
	gen := quizzify.NewQuizGenerator(completer, "fake")
	gen.SetRecorder(rec)

	_, err := gen.Generate(context.Background(), "SQL")
	if !errors.Is(err, quizzify.ErrInvalidOutput) {
		t.Fatalf("expected invalid output, got %v", err)
	}

	var perr *quizzify.ParseError
	if !errors.As(err, &perr) || perr.Kind != quizzify.SchemaViolation {
		t.Errorf("expected wrapped schema violation, got %v", err)
	}
	if len(rec.records) != 1 || rec.records[0].Outcome != quizzify.OutcomeInvalidOutput || rec.records[0].Error == "" {
		t.Errorf("unexpected records: %+v", rec.records)
	}
}

func TestGenerateInto_LoadsOnSuccess(t *testing.T) {
	completer, _ := staticCompleter(t)
	gen := quizzify.NewQuizGenerator(completer, "fake")
	s := quizzify.NewSession()

	if err := gen.GenerateInto(context.Background(), s, "Python"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.State() != quizzify.StateAwaitingAnswers {
		t.Errorf("expected state %s, got %s", quizzify.StateAwaitingAnswers, s.State())
	}
}

func TestGenerateInto_FailureKeepsPreviousQuiz(t *testing.T) {
	s := loadedSession(t)
	if err := s.RecordAnswer(0, "def"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := s.Questions()

	completer := quizzify.CompleterFunc(func(context.Context, string) (string, error) {
		return "not json", nil
	})
	gen := quizzify.NewQuizGenerator(completer, "fake")

	if err := gen.GenerateInto(context.Background(), s, "Haskell"); !errors.Is(err, quizzify.ErrInvalidOutput) {
		t.Fatalf("expected invalid output, got %v", err)
	}

	if s.Questions()[0].Text != before[0].Text {
		t.Error("previous quiz was replaced")
	}
	if s.Answers()[0] != "def" {
		t.Error("previous answers were cleared")
	}
}

func TestGenerateInto_CaseVariantKeysAreInvalidOutput(t *testing.T) {
	completer := quizzify.CompleterFunc(func(context.Context, string) (string, error) {
		return caseVariantPayload(), nil
	})
	gen := quizzify.NewQuizGenerator(completer, "fake")
	s := quizzify.NewSession()

	err := gen.GenerateInto(context.Background(), s, "Go")
	if !errors.Is(err, quizzify.ErrInvalidOutput) {
		t.Fatalf("expected invalid output, got %v", err)
	}
	if errors.Is(err, quizzify.ErrInvalidSet) {
		t.Error("parser let an invalid set reach the session")
	}
	if s.State() != quizzify.StateEmpty {
		t.Errorf("expected state %s, got %s", quizzify.StateEmpty, s.State())
	}
}

func TestGenerateInto_CancelledLeavesSessionUntouched(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	raw := encode(t, rawQuestions())
	completer := quizzify.CompleterFunc(func(context.Context, string) (string, error) {
		// The backend finishes but the caller has already gone away.
		cancel()
		return raw, nil
	})
	gen := quizzify.NewQuizGenerator(completer, "fake")
	s := quizzify.NewSession()

	err := gen.GenerateInto(ctx, s, "Kotlin")
	if !errors.Is(err, quizzify.ErrUpstreamFailure) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled upstream failure, got %v", err)
	}
	if s.State() != quizzify.StateEmpty {
		t.Errorf("expected state %s, got %s", quizzify.StateEmpty, s.State())
	}
}

func TestGenerate_WritesTranscript(t *testing.T) {
	dir := t.TempDir()
	completer, _ := staticCompleter(t)
	rec := &fakeRecorder{}
	gen := quizzify.NewQuizGenerator(completer, "fake")
	gen.SetRecorder(rec)
	gen.SetTranscriptDir(dir)

	if _, err := gen.Generate(context.Background(), "Elixir"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, rec.records[0].ID+".log"))
	if err != nil {
		t.Fatalf("transcript not written: %v", err)
	}
	for _, want := range []string{"Topic: Elixir", "LLM REQUEST", "LLM RESPONSE", "Outcome: ok"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("transcript missing %q", want)
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := quizzify.BuildPrompt(`C "the language"`)

	if !strings.Contains(prompt, `C "the language"`) {
		t.Errorf("topic not embedded verbatim:\n%s", prompt)
	}
	for _, want := range []string{"exactly 5", `"question"`, `"options"`, `"answer"`, "No other text"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
