// Package controller implements the agent loops: the bounded tool-calling
// loop behind every research agent, and a single tool-less completion used
// for merging, summarizing, Q&A and classification.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/codeready-toolchain/scout/pkg/agent"
)

// IteratingController implements the multi-turn tool-calling loop.
// Tool calls come as structured ToolCallChunk values (native function
// calling). Completion signal: a response without any ToolCalls.
//
// MaxIterations counts LLM calls. Calls 1..N-1 carry the tool list; if the
// model has still not answered, call N is a forced conclusion without tools.
// A run therefore makes at most N LLM calls however many tools the model
// requests.
type IteratingController struct{}

// NewIteratingController creates a new iterating controller.
func NewIteratingController() *IteratingController {
	return &IteratingController{}
}

// Run executes the iteration loop.
func (c *IteratingController) Run(ctx context.Context, execCtx *agent.ExecutionContext) (*agent.ExecutionResult, error) {
	if err := validateExecCtx(execCtx); err != nil {
		return nil, err
	}
	if execCtx.PromptBuilder == nil {
		return nil, errors.New("PromptBuilder is nil: cannot build messages")
	}
	started := time.Now()

	// 1. Get available tools
	var tools []agent.ToolDefinition
	if execCtx.ToolExecutor != nil {
		var err error
		tools, err = execCtx.ToolExecutor.ListTools(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list tools: %w", err)
		}
	}

	// 2. Build initial conversation
	messages := execCtx.PromptBuilder.BuildMessages(execCtx, tools)

	state := &agent.IterationState{MaxIterations: execCtx.Config.MaxIterations}
	totalUsage := agent.TokenUsage{}

	// 3. Tool-carrying iterations
	for state.RemainingToolIterations() > 0 {
		state.CurrentIteration++

		resp, err := callLLM(ctx, execCtx.LLMClient, generateInput(execCtx, messages, tools),
			execCtx.Config.IterationTimeout)
		if err != nil {
			return finish(execCtx, failedResult(execCtx, state, totalUsage, fmt.Errorf("%w: %w", agent.ErrLLMCall, err)), started), nil
		}
		totalUsage.Add(resp.Usage)

		if len(resp.ToolCalls) == 0 {
			if strings.TrimSpace(resp.Text) == "" {
				return finish(execCtx, failedResult(execCtx, state, totalUsage, fmt.Errorf("%w: %w", agent.ErrLLMCall, agent.ErrEmptyResponse)), started), nil
			}
			return finish(execCtx, &agent.ExecutionResult{
				Status:      agent.ExecutionStatusCompleted,
				FinalAnswer: resp.Text,
				Iterations:  state.CurrentIteration,
				ToolCalls:   state.ToolCalls,
				TokensUsed:  totalUsage,
			}, started), nil
		}

		state.RecordText(resp.Text)
		for i := range resp.ToolCalls {
			if resp.ToolCalls[i].ID == "" {
				resp.ToolCalls[i].ID = generateCallID()
			}
		}
		messages = append(messages, agent.ConversationMessage{
			Role:      agent.RoleAssistant,
			Content:   resp.Text,
			ToolCalls: resp.ToolCalls,
		})

		// Tool failures are observations; the model decides what to do next.
		for _, tc := range resp.ToolCalls {
			result := executeToolCall(ctx, execCtx, tc)
			state.RecordToolCall(tc.Name, result.IsError)
			messages = append(messages, agent.ConversationMessage{
				Role:       agent.RoleTool,
				Content:    result.Content,
				ToolCallID: tc.ID,
				ToolName:   tc.Name,
			})
		}

		if ctx.Err() != nil {
			return finish(execCtx, failedResult(execCtx, state, totalUsage, ctx.Err()), started), nil
		}
	}

	// 4. Budget for tool use spent: force a conclusion
	return finish(execCtx, c.forceConclusion(ctx, execCtx, messages, state, totalUsage), started), nil
}

// forceConclusion makes the last LLM call of the budget without tools. When
// it yields nothing usable the best partial answer seen so far is returned;
// without one the run fails with ErrStepBudgetExhausted.
func (c *IteratingController) forceConclusion(
	ctx context.Context,
	execCtx *agent.ExecutionContext,
	messages []agent.ConversationMessage,
	state *agent.IterationState,
	totalUsage agent.TokenUsage,
) *agent.ExecutionResult {
	toolIterations := state.CurrentIteration
	state.CurrentIteration++

	if toolIterations > 0 {
		messages = append(messages, agent.ConversationMessage{
			Role:    agent.RoleUser,
			Content: execCtx.PromptBuilder.BuildForcedConclusionPrompt(toolIterations),
		})
	}

	resp, err := callLLM(ctx, execCtx.LLMClient, generateInput(execCtx, messages, nil),
		execCtx.Config.IterationTimeout)
	if err == nil {
		totalUsage.Add(resp.Usage)
		if strings.TrimSpace(resp.Text) != "" {
			return &agent.ExecutionResult{
				Status:      agent.ExecutionStatusCompleted,
				FinalAnswer: resp.Text,
				Iterations:  state.CurrentIteration,
				ToolCalls:   state.ToolCalls,
				TokensUsed:  totalUsage,
			}
		}
		err = agent.ErrEmptyResponse
	}

	if ctx.Err() != nil {
		return failedResult(execCtx, state, totalUsage, ctx.Err())
	}
	if state.BestPartial != "" {
		return &agent.ExecutionResult{
			Status:      agent.ExecutionStatusPartial,
			FinalAnswer: state.BestPartial,
			Iterations:  state.CurrentIteration,
			ToolCalls:   state.ToolCalls,
			TokensUsed:  totalUsage,
		}
	}
	if toolIterations == 0 {
		// Budget of one: the only call was this one.
		return failedResult(execCtx, state, totalUsage, fmt.Errorf("%w: %w", agent.ErrLLMCall, err))
	}
	return failedResult(execCtx, state, totalUsage, fmt.Errorf("%w: %w", agent.ErrStepBudgetExhausted, err))
}
