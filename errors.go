package quizzify

import (
	"errors"
	"fmt"
)

var (
	ErrMalformed       = errors.New("malformed model output")
	ErrSchemaViolation = errors.New("model output does not match the quiz schema")

	ErrEmptyTopic      = errors.New("topic is empty")
	ErrUpstreamFailure = errors.New("quiz generation failed upstream")
	ErrInvalidOutput   = errors.New("model returned an invalid quiz")

	ErrInvalidSet        = errors.New("invalid question set")
	ErrOutOfRange        = errors.New("question index out of range")
	ErrInvalidChoice     = errors.New("choice is not one of the options")
	ErrIncompleteAnswers = errors.New("not all questions are answered")
	ErrWrongState        = errors.New("operation not allowed in current state")
)

// ParseErrorKind classifies a ParseError
type ParseErrorKind int

const (
	Malformed ParseErrorKind = iota + 1
	SchemaViolation
)

func (k ParseErrorKind) sentinel() error {
	if k == Malformed {
		return ErrMalformed
	}
	return ErrSchemaViolation
}

// ParseError is returned when raw model output cannot become a QuestionSet.
// Reason never contains the raw model text.
type ParseError struct {
	Kind   ParseErrorKind
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Reason == "" {
		return e.Kind.sentinel().Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.sentinel(), e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// GenerationErrorKind classifies a GenerationError
type GenerationErrorKind int

const (
	EmptyTopic GenerationErrorKind = iota + 1
	UpstreamFailure
	InvalidOutput
)

func (k GenerationErrorKind) sentinel() error {
	switch k {
	case EmptyTopic:
		return ErrEmptyTopic
	case UpstreamFailure:
		return ErrUpstreamFailure
	default:
		return ErrInvalidOutput
	}
}

func (k GenerationErrorKind) outcome() GenerationOutcome {
	switch k {
	case EmptyTopic:
		return OutcomeEmptyTopic
	case UpstreamFailure:
		return OutcomeUpstreamFailure
	default:
		return OutcomeInvalidOutput
	}
}

// GenerationError is returned by QuizGenerator. For InvalidOutput the
// Cause is a *ParseError.
type GenerationError struct {
	Kind  GenerationErrorKind
	Cause error
}

func (e *GenerationError) Error() string {
	if e.Cause == nil {
		return e.Kind.sentinel().Error()
	}
	return fmt.Sprintf("%s: %v", e.Kind.sentinel(), e.Cause)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

func (e *GenerationError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// SessionErrorKind classifies a SessionError
type SessionErrorKind int

const (
	InvalidSet SessionErrorKind = iota + 1
	OutOfRange
	InvalidChoice
	IncompleteAnswers
	WrongState
)

func (k SessionErrorKind) sentinel() error {
	switch k {
	case InvalidSet:
		return ErrInvalidSet
	case OutOfRange:
		return ErrOutOfRange
	case InvalidChoice:
		return ErrInvalidChoice
	case IncompleteAnswers:
		return ErrIncompleteAnswers
	default:
		return ErrWrongState
	}
}

// SessionError is returned by Session transitions
type SessionError struct {
	Kind   SessionErrorKind
	Reason string
}

func (e *SessionError) Error() string {
	if e.Reason == "" {
		return e.Kind.sentinel().Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.sentinel(), e.Reason)
}

func (e *SessionError) Is(target error) bool {
	return target == e.Kind.sentinel()
}
