package agent

import "time"

// ExecutionContext carries everything one agent run needs. Created per run
// and never shared between runs, so transcripts cannot leak across sessions.
type ExecutionContext struct {
	// Identity
	SessionID   string
	ExecutionID string
	AgentName   string

	// Instructions is the agent's system prompt.
	Instructions string

	// Task is the topic-specific user message.
	Task string

	// History holds earlier conversation turns placed between the system
	// prompt and Task (Q&A only).
	History []ConversationMessage

	// Configuration (resolved from config.AgentConfig and call site)
	Config *ResolvedAgentConfig

	// Dependencies
	LLMClient    LLMClient
	ToolExecutor ToolExecutor // nil = no tools

	// Prompt builder, stateless and shared across executions.
	// Implemented by prompt.Builder; the interface avoids an import cycle.
	PromptBuilder PromptBuilder

	// FailedServers maps serverID -> error for tool servers that failed to
	// initialize. Used by the prompt builder to warn the LLM.
	FailedServers map[string]string
}

// ResolvedAgentConfig is the fully-resolved configuration for one run.
type ResolvedAgentConfig struct {
	AgentName string

	// MaxIterations bounds the number of LLM calls. The last call is a
	// forced conclusion without tools.
	MaxIterations int

	// IterationTimeout bounds each LLM call.
	IterationTimeout time.Duration

	// ToolTimeout bounds each tool call.
	ToolTimeout time.Duration

	// Optional LLM overrides
	Temperature *float64
	MaxTokens   int
	JSONOutput  bool
}

// PromptBuilder builds the prompt text controllers need.
type PromptBuilder interface {
	// BuildMessages returns the initial system + user messages for a run.
	BuildMessages(execCtx *ExecutionContext, tools []ToolDefinition) []ConversationMessage
	// BuildForcedConclusionPrompt asks for a final answer after iterations LLM calls.
	BuildForcedConclusionPrompt(iterations int) string
}
