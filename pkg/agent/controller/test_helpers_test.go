package controller

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/scout/pkg/agent"
)

type mockLLMResponse struct {
	chunks []agent.Chunk
	err    error
	// block makes Generate return a channel that never produces, so the
	// call ends only through the context.
	block bool
}

// mockLLMClient is a test mock for agent.LLMClient.
// NOTE: Not safe for concurrent use. Controllers call Generate sequentially.
type mockLLMClient struct {
	responses []mockLLMResponse
	callCount int
	lastInput *agent.GenerateInput

	capture        bool
	capturedInputs []*agent.GenerateInput
}

func (m *mockLLMClient) Generate(_ context.Context, input *agent.GenerateInput) (<-chan agent.Chunk, error) {
	idx := m.callCount
	m.callCount++
	m.lastInput = input
	if m.capture {
		m.capturedInputs = append(m.capturedInputs, input)
	}

	if idx >= len(m.responses) {
		return nil, fmt.Errorf("no more mock responses (call %d)", idx+1)
	}

	r := m.responses[idx]
	if r.err != nil {
		return nil, r.err
	}
	if r.block {
		return make(chan agent.Chunk), nil
	}

	ch := make(chan agent.Chunk, len(r.chunks))
	for _, c := range r.chunks {
		ch <- c
	}
	close(ch)
	return ch, nil
}

func (m *mockLLMClient) Close() error { return nil }

// mockToolExecutor is a test mock for agent.ToolExecutor.
type mockToolExecutor struct {
	tools   []agent.ToolDefinition
	results map[string]*agent.ToolResult

	mu    sync.Mutex
	calls []agent.ToolCall
}

func (m *mockToolExecutor) Execute(_ context.Context, call agent.ToolCall) (*agent.ToolResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()

	result, ok := m.results[call.Name]
	if !ok {
		return nil, fmt.Errorf("unexpected tool call: %s", call.Name)
	}
	return &agent.ToolResult{
		CallID:  call.ID,
		Name:    call.Name,
		Content: result.Content,
		IsError: result.IsError,
	}, nil
}

func (m *mockToolExecutor) ListTools(_ context.Context) ([]agent.ToolDefinition, error) {
	return m.tools, nil
}

func (m *mockToolExecutor) Close() error { return nil }

// mockToolExecutorFunc is a flexible test mock that allows custom execute functions.
type mockToolExecutorFunc struct {
	tools     []agent.ToolDefinition
	executeFn func(ctx context.Context, call agent.ToolCall) (*agent.ToolResult, error)
}

func (m *mockToolExecutorFunc) Execute(ctx context.Context, call agent.ToolCall) (*agent.ToolResult, error) {
	return m.executeFn(ctx, call)
}

func (m *mockToolExecutorFunc) ListTools(_ context.Context) ([]agent.ToolDefinition, error) {
	return m.tools, nil
}

func (m *mockToolExecutorFunc) Close() error { return nil }

// testPromptBuilder builds a minimal system + user conversation.
type testPromptBuilder struct{}

func (testPromptBuilder) BuildMessages(execCtx *agent.ExecutionContext, _ []agent.ToolDefinition) []agent.ConversationMessage {
	return defaultMessages(execCtx)
}

func (testPromptBuilder) BuildForcedConclusionPrompt(iterations int) string {
	return fmt.Sprintf("You have used %d iterations. Give your final answer now.", iterations)
}

// newTestExecCtx creates a test ExecutionContext.
// Defaults: MaxIterations=15, IterationTimeout=30s, ToolTimeout=10s.
func newTestExecCtx(t *testing.T, llm agent.LLMClient, toolExec agent.ToolExecutor) *agent.ExecutionContext {
	t.Helper()
	return &agent.ExecutionContext{
		SessionID:    uuid.NewString(),
		ExecutionID:  uuid.NewString(),
		AgentName:    "report",
		Instructions: "You are a research agent.",
		Task:         "Research the topic: quantum computing",
		Config: &agent.ResolvedAgentConfig{
			AgentName:        "report",
			MaxIterations:    15,
			IterationTimeout: 30 * time.Second,
			ToolTimeout:      10 * time.Second,
		},
		LLMClient:     llm,
		ToolExecutor:  toolExec,
		PromptBuilder: testPromptBuilder{},
	}
}

func toolCallResponse(id, name, args string) mockLLMResponse {
	return mockLLMResponse{chunks: []agent.Chunk{
		&agent.ToolCallChunk{CallID: id, Name: name, Arguments: args},
	}}
}

func textResponse(text string) mockLLMResponse {
	return mockLLMResponse{chunks: []agent.Chunk{&agent.TextChunk{Content: text}}}
}
