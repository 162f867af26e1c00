package quizzify

import (
	"fmt"
	"time"

	"github.com/samber/lo"
)

// QuestionCount is the number of questions in every quiz.
const QuestionCount = 5

// OptionCount is the number of choices offered for each question.
const OptionCount = 4

// Question represents a single multiple choice question
type Question struct {
	Text          string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"answer"` // exact text of one of Options
}

// Validate checks the question invariant: non-empty text, four distinct
// options and a correct answer that is one of them.
func (q Question) Validate() error {
	if q.Text == "" {
		return fmt.Errorf("question text is empty")
	}
	if len(q.Options) != OptionCount {
		return fmt.Errorf("expected %d options, got %d", OptionCount, len(q.Options))
	}
	if len(lo.Uniq(q.Options)) != len(q.Options) {
		return fmt.Errorf("options are not distinct")
	}
	if !lo.Contains(q.Options, q.CorrectAnswer) {
		return fmt.Errorf("answer is not one of the options")
	}
	return nil
}

// QuestionSet is an ordered quiz. Display order is scoring order.
type QuestionSet []Question

// Validate checks the set length and every question in it.
func (qs QuestionSet) Validate() error {
	if len(qs) != QuestionCount {
		return fmt.Errorf("expected %d questions, got %d", QuestionCount, len(qs))
	}
	for i, q := range qs {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
	}
	return nil
}

// clone deep-copies the set so callers cannot mutate a loaded quiz.
func (qs QuestionSet) clone() QuestionSet {
	out := make(QuestionSet, len(qs))
	for i, q := range qs {
		out[i] = Question{
			Text:          q.Text,
			Options:       append([]string(nil), q.Options...),
			CorrectAnswer: q.CorrectAnswer,
		}
	}
	return out
}

// AnswerMap holds the user's selections keyed by question index.
// A missing key means the question is unanswered.
type AnswerMap map[int]string

// ScoreResult is the outcome of a submitted quiz
type ScoreResult struct {
	CorrectCount       int                 `json:"correct_count"`
	PerQuestionCorrect [QuestionCount]bool `json:"per_question_correct"`
}

// ReviewItem pairs a question with its correct answer for the review screen.
type ReviewItem struct {
	Question      string `json:"question"`
	CorrectAnswer string `json:"correct_answer"`
}

// GenerationOutcome is how a generation attempt ended
type GenerationOutcome string

const (
	OutcomeOK              GenerationOutcome = "ok"
	OutcomeEmptyTopic      GenerationOutcome = "empty_topic"
	OutcomeUpstreamFailure GenerationOutcome = "upstream_failure"
	OutcomeInvalidOutput   GenerationOutcome = "invalid_output"
)

// GenerationRecord describes one generation attempt. It never carries
// question content.
type GenerationRecord struct {
	ID        string            `json:"id"`
	Topic     string            `json:"topic"`
	Provider  string            `json:"provider"`
	Outcome   GenerationOutcome `json:"outcome"`
	Error     string            `json:"error,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	Duration  time.Duration     `json:"duration"`
}
