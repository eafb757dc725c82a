package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/scout/pkg/agent"
	"github.com/codeready-toolchain/scout/pkg/metrics"
)

// withOptionalTimeout derives a cancellable context, bounded by timeout when positive.
func withOptionalTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	return context.WithCancel(ctx)
}

// isTimeoutError checks if an error is a context deadline timeout.
func isTimeoutError(err error) bool {
	return err != nil && errors.Is(err, context.DeadlineExceeded)
}

// generateCallID creates a tool call ID for providers that omit one.
func generateCallID() string {
	return "call_" + uuid.NewString()
}

// generateInput assembles a GenerateInput with the run's LLM overrides.
func generateInput(execCtx *agent.ExecutionContext, messages []agent.ConversationMessage, tools []agent.ToolDefinition) *agent.GenerateInput {
	return &agent.GenerateInput{
		SessionID:   execCtx.SessionID,
		ExecutionID: execCtx.ExecutionID,
		Messages:    messages,
		Tools:       tools,
		Temperature: execCtx.Config.Temperature,
		MaxTokens:   execCtx.Config.MaxTokens,
		JSONOutput:  execCtx.Config.JSONOutput,
	}
}

// executeToolCall runs one tool call under the run's tool timeout. Every
// failure, including a broken executor, comes back as an error observation
// for the model. Nothing is retried here.
func executeToolCall(ctx context.Context, execCtx *agent.ExecutionContext, call agent.ToolCall) *agent.ToolResult {
	if execCtx.ToolExecutor == nil {
		return &agent.ToolResult{
			CallID:  call.ID,
			Name:    call.Name,
			Content: fmt.Sprintf("Tool %q is not available: this agent has no tools.", call.Name),
			IsError: true,
		}
	}

	toolCtx, cancel := withOptionalTimeout(ctx, execCtx.Config.ToolTimeout)
	defer cancel()

	result, err := execCtx.ToolExecutor.Execute(toolCtx, call)
	switch {
	case err != nil && isTimeoutError(err):
		result = &agent.ToolResult{
			Content: fmt.Sprintf("Tool execution timed out after %s: %s", execCtx.Config.ToolTimeout, err),
			IsError: true,
		}
	case err != nil:
		result = &agent.ToolResult{
			Content: fmt.Sprintf("Tool execution failed: %s", err),
			IsError: true,
		}
	case result == nil:
		result = &agent.ToolResult{
			Content: "Tool execution returned no result",
			IsError: true,
		}
	}
	result.CallID = call.ID
	result.Name = call.Name

	if result.IsError {
		slog.Debug("Tool call failed, returning error to model",
			"session_id", execCtx.SessionID, "agent", execCtx.AgentName,
			"tool", call.Name, "error", result.Content)
	}
	metrics.ObserveToolCall(call.Name, result.IsError)
	return result
}

// failedResult builds the result of a run that ended on err.
func failedResult(execCtx *agent.ExecutionContext, state *agent.IterationState, usage agent.TokenUsage, err error) *agent.ExecutionResult {
	return &agent.ExecutionResult{
		Status:     agent.StatusForError(err),
		Iterations: state.CurrentIteration,
		ToolCalls:  state.ToolCalls,
		Error: &agent.Error{
			Agent:      execCtx.AgentName,
			Iterations: state.CurrentIteration,
			Err:        err,
		},
		TokensUsed: usage,
	}
}

// finish logs and records metrics for a finished run.
func finish(execCtx *agent.ExecutionContext, result *agent.ExecutionResult, started time.Time) *agent.ExecutionResult {
	log := slog.With(
		"session_id", execCtx.SessionID,
		"execution_id", execCtx.ExecutionID,
		"agent", execCtx.AgentName,
		"status", result.Status,
		"iterations", result.Iterations,
		"tool_calls", len(result.ToolCalls),
		"total_tokens", result.TokensUsed.TotalTokens,
		"duration", time.Since(started).Round(time.Millisecond))
	if result.Error != nil {
		log.Warn("Agent run failed", "error", result.Error)
	} else {
		log.Info("Agent run finished")
	}
	metrics.ObserveAgentRun(execCtx.AgentName, string(result.Status), result.Iterations)
	return result
}

// validateExecCtx checks the dependencies every controller needs.
func validateExecCtx(execCtx *agent.ExecutionContext) error {
	switch {
	case execCtx == nil:
		return errors.New("execution context is nil")
	case execCtx.LLMClient == nil:
		return errors.New("LLMClient is nil")
	case execCtx.Config == nil:
		return errors.New("resolved agent config is nil")
	case execCtx.Config.MaxIterations < 1:
		return fmt.Errorf("max iterations must be at least 1, got %d", execCtx.Config.MaxIterations)
	}
	return nil
}
