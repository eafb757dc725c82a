package research

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTopic is the reason of a run requested before a topic was set.
	ErrNoTopic = errors.New("no research topic set")

	// ErrNoArtifact is the reason of a summary or question requested before
	// a report exists.
	ErrNoArtifact = errors.New("no research report yet, generate a report first")

	// ErrEmptyQuestion is returned by Ask for a blank question.
	ErrEmptyQuestion = errors.New("question must not be empty")
)

// PreconditionError reports a stage invoked before its prerequisite
// exists. It is a user-actionable warning and leaves the session unchanged.
type PreconditionError struct {
	Stage  string
	Reason error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Reason)
}

func (e *PreconditionError) Unwrap() error {
	return e.Reason
}

// IsPreconditionError reports whether err is (or wraps) a PreconditionError.
func IsPreconditionError(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}
