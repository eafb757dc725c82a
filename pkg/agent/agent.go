// Package agent provides the Agent Runner contracts: an LLM wrapped in a
// bounded "reason, call a tool, observe, repeat" loop. Controllers in
// pkg/agent/controller implement the loop; pkg/llm and pkg/mcp provide the
// LLM and tool sides.
package agent

import "context"

// Controller runs one agent execution.
//
// Returns (*ExecutionResult, nil) once the run has an outcome; agent-level
// failures (LLM errors, exhausted budget) are reported through
// Result.Status and Result.Error. Returns (nil, error) only when the run
// could not start (missing LLM client, tool listing failure).
type Controller interface {
	Run(ctx context.Context, execCtx *ExecutionContext) (*ExecutionResult, error)
}

// ExecutionStatus represents the status of an agent execution.
type ExecutionStatus string

const (
	ExecutionStatusCompleted ExecutionStatus = "completed"
	// ExecutionStatusPartial marks a run that hit its step budget and
	// returned its best intermediate answer instead of a final one.
	ExecutionStatusPartial   ExecutionStatus = "partial"
	ExecutionStatusFailed    ExecutionStatus = "failed"
	ExecutionStatusTimedOut  ExecutionStatus = "timed_out"
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
)

// ExecutionResult is returned by Controller.Run.
type ExecutionResult struct {
	Status      ExecutionStatus
	FinalAnswer string
	// Iterations is the number of LLM calls made, forced conclusion included.
	Iterations int
	// ToolCalls records every tool invocation in order (provenance).
	ToolCalls  []ToolCallRecord
	Error      error
	TokensUsed TokenUsage
}

// ToolCallRecord is one tool invocation made during a run.
type ToolCallRecord struct {
	Name    string
	IsError bool
}

// Err returns the run's error, or nil when the run produced an answer.
// Partial answers count as answers; callers that need a final answer check
// Status themselves.
func (r *ExecutionResult) Err() error {
	switch r.Status {
	case ExecutionStatusCompleted, ExecutionStatusPartial:
		return nil
	default:
		if r.Error != nil {
			return r.Error
		}
		return &Error{Iterations: r.Iterations, Err: ErrNoResult}
	}
}

// TokenUsage aggregates token consumption across multiple LLM calls.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Add accumulates u into t.
func (t *TokenUsage) Add(u *TokenUsage) {
	if u == nil {
		return
	}
	t.InputTokens += u.InputTokens
	t.OutputTokens += u.OutputTokens
	t.TotalTokens += u.TotalTokens
}
