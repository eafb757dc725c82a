package controller

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codeready-toolchain/scout/pkg/agent"
)

// SingleCallController makes one LLM call without tools and returns the
// response. Used for merging, summarizing, Q&A and feedback classification.
type SingleCallController struct{}

// NewSingleCallController creates a new single-call controller.
func NewSingleCallController() *SingleCallController {
	return &SingleCallController{}
}

// Run executes a single LLM call without tools.
func (c *SingleCallController) Run(ctx context.Context, execCtx *agent.ExecutionContext) (*agent.ExecutionResult, error) {
	if err := validateExecCtx(execCtx); err != nil {
		return nil, err
	}
	started := time.Now()

	var messages []agent.ConversationMessage
	if execCtx.PromptBuilder != nil {
		messages = execCtx.PromptBuilder.BuildMessages(execCtx, nil)
	} else {
		messages = defaultMessages(execCtx)
	}

	state := &agent.IterationState{CurrentIteration: 1, MaxIterations: 1}
	resp, err := callLLM(ctx, execCtx.LLMClient, generateInput(execCtx, messages, nil),
		execCtx.Config.IterationTimeout)
	if err != nil {
		return finish(execCtx, failedResult(execCtx, state, agent.TokenUsage{}, fmt.Errorf("%w: %w", agent.ErrLLMCall, err)), started), nil
	}

	usage := agent.TokenUsage{}
	usage.Add(resp.Usage)
	if strings.TrimSpace(resp.Text) == "" {
		return finish(execCtx, failedResult(execCtx, state, usage, fmt.Errorf("%w: %w", agent.ErrLLMCall, agent.ErrEmptyResponse)), started), nil
	}

	return finish(execCtx, &agent.ExecutionResult{
		Status:      agent.ExecutionStatusCompleted,
		FinalAnswer: resp.Text,
		Iterations:  1,
		TokensUsed:  usage,
	}, started), nil
}

// defaultMessages lays out system instructions, history and task in order.
func defaultMessages(execCtx *agent.ExecutionContext) []agent.ConversationMessage {
	messages := make([]agent.ConversationMessage, 0, len(execCtx.History)+2)
	if execCtx.Instructions != "" {
		messages = append(messages, agent.ConversationMessage{Role: agent.RoleSystem, Content: execCtx.Instructions})
	}
	messages = append(messages, execCtx.History...)
	messages = append(messages, agent.ConversationMessage{Role: agent.RoleUser, Content: execCtx.Task})
	return messages
}
