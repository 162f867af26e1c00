package quizzify_test

import (
	"errors"
	"reflect"
	"testing"

	"quizzify"
)

func loadedSession(t *testing.T) *quizzify.Session {
	t.Helper()
	s := quizzify.NewSession()
	if err := s.Load((quizzify.StaticProvider{}).Get()); err != nil {
		t.Fatalf("failed to load static quiz: %v", err)
	}
	return s
}

func answerAll(t *testing.T, s *quizzify.Session, answers []string) {
	t.Helper()
	for i, a := range answers {
		if err := s.RecordAnswer(i, a); err != nil {
			t.Fatalf("failed to record answer %d: %v", i, err)
		}
	}
}

func TestNewSession_Empty(t *testing.T) {
	s := quizzify.NewSession()

	if s.State() != quizzify.StateEmpty {
		t.Errorf("expected state %s, got %s", quizzify.StateEmpty, s.State())
	}
	if s.Questions() != nil {
		t.Error("expected no questions")
	}
	if _, ok := s.Result(); ok {
		t.Error("expected no result")
	}
}

func TestSession_OperationsInWrongState(t *testing.T) {
	s := quizzify.NewSession()

	if err := s.RecordAnswer(0, "def"); !errors.Is(err, quizzify.ErrWrongState) {
		t.Errorf("RecordAnswer on empty session: expected wrong state, got %v", err)
	}
	if _, err := s.Submit(); !errors.Is(err, quizzify.ErrWrongState) {
		t.Errorf("Submit on empty session: expected wrong state, got %v", err)
	}
	if _, err := s.Review(); !errors.Is(err, quizzify.ErrWrongState) {
		t.Errorf("Review on empty session: expected wrong state, got %v", err)
	}

	s = loadedSession(t)
	if _, err := s.Review(); !errors.Is(err, quizzify.ErrWrongState) {
		t.Errorf("Review before submit: expected wrong state, got %v", err)
	}
}

func TestSession_LoadRejectsInvalidSets(t *testing.T) {
	static := (quizzify.StaticProvider{}).Get()

	badAnswer := (quizzify.StaticProvider{}).Get()
	badAnswer[0].CorrectAnswer = "lambda"

	sets := map[string]quizzify.QuestionSet{
		"nil":        nil,
		"empty":      {},
		"four":       static[:4],
		"six":        append(static, static[0]),
		"bad answer": badAnswer,
	}

	for name, qs := range sets {
		t.Run(name, func(t *testing.T) {
			s := quizzify.NewSession()
			err := s.Load(qs)
			if !errors.Is(err, quizzify.ErrInvalidSet) {
				t.Fatalf("expected invalid set, got %v", err)
			}
			if s.State() != quizzify.StateEmpty {
				t.Errorf("expected state to stay %s, got %s", quizzify.StateEmpty, s.State())
			}
		})
	}
}

func TestSession_LoadCopiesQuestions(t *testing.T) {
	qs := (quizzify.StaticProvider{}).Get()
	s := quizzify.NewSession()
	if err := s.Load(qs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	qs[0].Options[2] = "fn"

	if err := s.RecordAnswer(0, "def"); err != nil {
		t.Errorf("caller mutation leaked into session: %v", err)
	}
}

func TestSession_RecordAnswer(t *testing.T) {
	s := loadedSession(t)

	if err := s.RecordAnswer(0, "func"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.RecordAnswer(0, "def"); err != nil {
		t.Fatalf("re-answering should be allowed: %v", err)
	}

	if got := s.Answers()[0]; got != "def" {
		t.Errorf("expected answer %q, got %q", "def", got)
	}
	if s.State() != quizzify.StateAwaitingAnswers {
		t.Errorf("RecordAnswer must not change state, got %s", s.State())
	}
}

func TestSession_RecordAnswerOutOfRange(t *testing.T) {
	s := loadedSession(t)

	for _, idx := range []int{-1, 5, 100} {
		if err := s.RecordAnswer(idx, "def"); !errors.Is(err, quizzify.ErrOutOfRange) {
			t.Errorf("index %d: expected out of range, got %v", idx, err)
		}
	}
	if len(s.Answers()) != 0 {
		t.Errorf("expected no answers, got %v", s.Answers())
	}
}

func TestSession_RecordAnswerInvalidChoice(t *testing.T) {
	s := loadedSession(t)
	if err := s.RecordAnswer(1, "Tuple"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// "def" belongs to question 0, "tuple" has the wrong case.
	for _, choice := range []string{"def", "tuple", "", "Tuple "} {
		if err := s.RecordAnswer(1, choice); !errors.Is(err, quizzify.ErrInvalidChoice) {
			t.Errorf("choice %q: expected invalid choice, got %v", choice, err)
		}
	}

	want := quizzify.AnswerMap{1: "Tuple"}
	if got := s.Answers(); !reflect.DeepEqual(got, want) {
		t.Errorf("answers changed by rejected choice: got %v, want %v", got, want)
	}
}

func TestSession_SubmitIncomplete(t *testing.T) {
	s := loadedSession(t)
	answerAll(t, s, []string{"def", "Tuple", ".py", "'''"})

	result, err := s.Submit()
	if !errors.Is(err, quizzify.ErrIncompleteAnswers) {
		t.Fatalf("expected incomplete answers, got %v", err)
	}
	if result != (quizzify.ScoreResult{}) {
		t.Errorf("expected no partial score, got %+v", result)
	}
	if _, ok := s.Result(); ok {
		t.Error("expected no stored result")
	}
	if s.State() != quizzify.StateAwaitingAnswers {
		t.Errorf("expected state %s, got %s", quizzify.StateAwaitingAnswers, s.State())
	}
}

func TestSession_SubmitScoring(t *testing.T) {
	tests := []struct {
		name    string
		answers []string
		want    int
		perQ    [quizzify.QuestionCount]bool
	}{
		{
			name:    "all correct",
			answers: []string{"def", "Tuple", ".py", "'''", "8"},
			want:    5,
			perQ:    [quizzify.QuestionCount]bool{true, true, true, true, true},
		},
		{
			name:    "all wrong",
			answers: []string{"func", "List", ".pt", "#", "6"},
			want:    0,
		},
		{
			name:    "mixed",
			answers: []string{"def", "List", ".py", "#", "8"},
			want:    3,
			perQ:    [quizzify.QuestionCount]bool{true, false, true, false, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := loadedSession(t)
			answerAll(t, s, tt.answers)

			result, err := s.Submit()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.CorrectCount != tt.want {
				t.Errorf("expected %d correct, got %d", tt.want, result.CorrectCount)
			}
			if result.PerQuestionCorrect != tt.perQ {
				t.Errorf("expected per-question %v, got %v", tt.perQ, result.PerQuestionCorrect)
			}
			if s.State() != quizzify.StateSubmitted {
				t.Errorf("expected state %s, got %s", quizzify.StateSubmitted, s.State())
			}
			if stored, ok := s.Result(); !ok || stored != result {
				t.Errorf("expected stored result %+v, got %+v", result, stored)
			}
		})
	}
}

func TestSession_SubmittedIsTerminal(t *testing.T) {
	s := loadedSession(t)
	answerAll(t, s, []string{"def", "Tuple", ".py", "'''", "8"})
	if _, err := s.Submit(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.RecordAnswer(0, "func"); !errors.Is(err, quizzify.ErrWrongState) {
		t.Errorf("expected wrong state after submit, got %v", err)
	}
	if _, err := s.Submit(); !errors.Is(err, quizzify.ErrWrongState) {
		t.Errorf("expected wrong state on resubmit, got %v", err)
	}
}

func TestSession_LoadResetsAfterSubmit(t *testing.T) {
	s := loadedSession(t)
	answerAll(t, s, []string{"def", "Tuple", ".py", "'''", "8"})
	if _, err := s.Submit(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.Load((quizzify.StaticProvider{}).Get()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.State() != quizzify.StateAwaitingAnswers {
		t.Errorf("expected state %s, got %s", quizzify.StateAwaitingAnswers, s.State())
	}
	if len(s.Answers()) != 0 {
		t.Errorf("expected answers to be cleared, got %v", s.Answers())
	}
	if _, ok := s.Result(); ok {
		t.Error("expected result to be discarded")
	}
}

func TestSession_ReviewIsIdempotent(t *testing.T) {
	s := loadedSession(t)
	answerAll(t, s, []string{"def", "List", ".py", "#", "8"})
	result, err := s.Submit()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	answersBefore := s.Answers()

	first, err := s.Review()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := s.Review()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("review changed between calls:\n%v\n%v", first, second)
	}
	if len(first) != quizzify.QuestionCount {
		t.Fatalf("expected %d review items, got %d", quizzify.QuestionCount, len(first))
	}
	if first[3].CorrectAnswer != "'''" {
		t.Errorf("expected correct answer %q, got %q", "'''", first[3].CorrectAnswer)
	}

	if stored, _ := s.Result(); stored != result {
		t.Errorf("review mutated result: %+v", stored)
	}
	if !reflect.DeepEqual(answersBefore, s.Answers()) {
		t.Errorf("review mutated answers: %v", s.Answers())
	}
}

func TestStaticProvider_ReturnsFreshCopies(t *testing.T) {
	p := quizzify.StaticProvider{}

	first := p.Get()
	if err := first.Validate(); err != nil {
		t.Fatalf("static quiz is invalid: %v", err)
	}

	first[0].Text = "changed"
	first[0].Options[0] = "changed"

	second := p.Get()
	if second[0].Text == "changed" || second[0].Options[0] == "changed" {
		t.Error("mutating one copy changed the static quiz")
	}
}
