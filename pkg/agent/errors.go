package agent

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrStepBudgetExhausted is returned when a run reaches its step budget
	// without any usable answer.
	ErrStepBudgetExhausted = errors.New("step budget exhausted without a final answer")

	// ErrLLMCall wraps failures of the LLM boundary (network, quota,
	// authentication, malformed output).
	ErrLLMCall = errors.New("LLM call failed")

	// ErrEmptyResponse is returned when the model produced neither text nor tool calls.
	ErrEmptyResponse = errors.New("LLM returned an empty response")

	// ErrNoResult is returned for a failed run that recorded no cause.
	ErrNoResult = errors.New("agent produced no result")
)

// Error is the AgentError of the pipeline: an Agent Runner's LLM call
// failed, or its step budget ran out without a final answer. It is fatal to
// that run only; the caller decides whether to continue with partial results.
type Error struct {
	Agent      string
	Iterations int
	Err        error
}

func (e *Error) Error() string {
	if e.Agent == "" {
		return fmt.Sprintf("agent failed after %d iteration(s): %v", e.Iterations, e.Err)
	}
	return fmt.Sprintf("agent %q failed after %d iteration(s): %v", e.Agent, e.Iterations, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsAgentError reports whether err is (or wraps) an agent error.
func IsAgentError(err error) bool {
	var ae *Error
	return errors.As(err, &ae)
}

// StatusForError maps a run error to a terminal status.
func StatusForError(err error) ExecutionStatus {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ExecutionStatusTimedOut
	case errors.Is(err, context.Canceled):
		return ExecutionStatusCancelled
	default:
		return ExecutionStatusFailed
	}
}
