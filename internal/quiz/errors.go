package quiz

import "errors"

var (
	// ErrInvalidState signals an operation attempted in a session state
	// that forbids it, e.g. answering after completion or answering a
	// question other than the current one. Never retried.
	ErrInvalidState = errors.New("invalid session state")

	// ErrNotAnswered signals Advance without a recorded response for the
	// current question. User-correctable, never retried.
	ErrNotAnswered = errors.New("current question has no recorded answer")

	// ErrNoQuestions signals Start with an empty question set.
	ErrNoQuestions = errors.New("question set is empty")
)
