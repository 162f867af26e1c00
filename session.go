package quizzify

import (
	"fmt"

	"github.com/samber/lo"
)

// State is the lifecycle stage of a Session
type State int

const (
	StateEmpty State = iota
	StateAwaitingAnswers
	StateSubmitted
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateAwaitingAnswers:
		return "awaiting_answers"
	case StateSubmitted:
		return "submitted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session holds one user's quiz: the loaded questions, the answers given
// so far and the score once submitted.
//
// A Session is driven by a single caller and is not safe for concurrent use.
type Session struct {
	state     State
	questions QuestionSet
	answers   AnswerMap
	result    *ScoreResult
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{
		state:   StateEmpty,
		answers: make(AnswerMap),
	}
}

// Load installs a new quiz, discarding any previous answers and score.
// It is valid from every state and is the only way back to AwaitingAnswers.
func (s *Session) Load(qs QuestionSet) error {
	if err := qs.Validate(); err != nil {
		return &SessionError{Kind: InvalidSet, Reason: err.Error()}
	}

	s.questions = qs.clone()
	s.answers = make(AnswerMap)
	s.result = nil
	s.state = StateAwaitingAnswers

	VerboseLog("session loaded %d questions", len(s.questions))
	return nil
}

// RecordAnswer stores the user's choice for question index, replacing any
// earlier choice. It does not change the state.
func (s *Session) RecordAnswer(index int, choice string) error {
	if s.state != StateAwaitingAnswers {
		return &SessionError{Kind: WrongState, Reason: fmt.Sprintf("cannot record an answer while %s", s.state)}
	}
	if index < 0 || index >= len(s.questions) {
		return &SessionError{Kind: OutOfRange, Reason: fmt.Sprintf("index %d", index)}
	}
	if !lo.Contains(s.questions[index].Options, choice) {
		return &SessionError{Kind: InvalidChoice, Reason: fmt.Sprintf("question %d", index)}
	}

	s.answers[index] = choice
	return nil
}

// Submit scores the quiz. Every question must be answered.
func (s *Session) Submit() (ScoreResult, error) {
	if s.state != StateAwaitingAnswers {
		return ScoreResult{}, &SessionError{Kind: WrongState, Reason: fmt.Sprintf("cannot submit while %s", s.state)}
	}

	var missing []int
	for i := range s.questions {
		if _, ok := s.answers[i]; !ok {
			missing = append(missing, i)
		}
	}
	if len(missing) > 0 {
		return ScoreResult{}, &SessionError{
			Kind:   IncompleteAnswers,
			Reason: fmt.Sprintf("%d of %d questions unanswered", len(missing), len(s.questions)),
		}
	}

	var result ScoreResult
	for i, q := range s.questions {
		if s.answers[i] == q.CorrectAnswer {
			result.PerQuestionCorrect[i] = true
			result.CorrectCount++
		}
	}

	s.result = &result
	s.state = StateSubmitted

	VerboseLog("session submitted: %d/%d correct", result.CorrectCount, len(s.questions))
	return result, nil
}

// Review lists each question with its correct answer. It is only
// available after Submit and never changes the session.
func (s *Session) Review() ([]ReviewItem, error) {
	if s.state != StateSubmitted {
		return nil, &SessionError{Kind: WrongState, Reason: fmt.Sprintf("cannot review while %s", s.state)}
	}

	return lo.Map(s.questions, func(q Question, _ int) ReviewItem {
		return ReviewItem{Question: q.Text, CorrectAnswer: q.CorrectAnswer}
	}), nil
}

// State returns the current lifecycle stage.
func (s *Session) State() State {
	return s.state
}

// Questions returns a copy of the loaded quiz, or nil when empty.
func (s *Session) Questions() QuestionSet {
	if s.questions == nil {
		return nil
	}
	return s.questions.clone()
}

// Answers returns a copy of the answers recorded so far.
func (s *Session) Answers() AnswerMap {
	out := make(AnswerMap, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// Result returns the score of the last submission. ok is false until the
// current quiz has been submitted.
func (s *Session) Result() (result ScoreResult, ok bool) {
	if s.result == nil {
		return ScoreResult{}, false
	}
	return *s.result, true
}
