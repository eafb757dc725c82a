package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/codeready-toolchain/scout/pkg/agent"
	"github.com/codeready-toolchain/scout/pkg/config"
)

var instructionsByAgent = map[string]string{
	config.AgentReport:     reportInstructions,
	config.AgentNews:       newsInstructions,
	config.AgentSummary:    summaryInstructions,
	config.AgentSearch:     searchInstructions,
	config.AgentNewsSearch: newsSearchInstructions,
}

var _ agent.PromptBuilder = (*Builder)(nil)

// Builder builds all prompt text for agent controllers. Stateless and
// safe for concurrent use. Implements agent.PromptBuilder.
type Builder struct {
	mcpRegistry *config.MCPServerRegistry
}

// NewBuilder creates a Builder. The registry supplies per-server
// instructions for the tools an agent is given; nil means none.
func NewBuilder(mcpRegistry *config.MCPServerRegistry) *Builder {
	if mcpRegistry == nil {
		mcpRegistry = config.NewMCPServerRegistry(nil)
	}
	return &Builder{mcpRegistry: mcpRegistry}
}

// Instructions composes the system prompt of a named agent: its built-in
// instructions followed by any custom instructions from configuration.
func (b *Builder) Instructions(agentName, custom string) string {
	base, ok := instructionsByAgent[agentName]
	if !ok {
		base = searchInstructions
	}
	if strings.TrimSpace(custom) == "" {
		return base
	}
	return base + "\n\n## Agent-Specific Instructions\n\n" + custom
}

// BuildMessages builds the initial conversation of a run: the system
// prompt (instructions, tools, tool server notes), any history, then the task.
func (b *Builder) BuildMessages(execCtx *agent.ExecutionContext, tools []agent.ToolDefinition) []agent.ConversationMessage {
	sections := []string{execCtx.Instructions}

	if len(tools) > 0 {
		sections = append(sections, "## Available Tools\n\n"+FormatToolDescriptions(tools))
		sections = append(sections, b.serverInstructions(tools)...)
	}
	if warning := FormatFailedServers(execCtx.FailedServers); warning != "" {
		sections = append(sections, warning)
	}

	messages := make([]agent.ConversationMessage, 0, len(execCtx.History)+2)
	messages = append(messages, agent.ConversationMessage{
		Role:    agent.RoleSystem,
		Content: strings.Join(nonEmpty(sections), "\n\n"),
	})
	messages = append(messages, execCtx.History...)
	messages = append(messages, agent.ConversationMessage{Role: agent.RoleUser, Content: execCtx.Task})
	return messages
}

// BuildForcedConclusionPrompt asks for a final answer without tools.
func (b *Builder) BuildForcedConclusionPrompt(iterations int) string {
	return fmt.Sprintf(forcedConclusionTemplate, iterations)
}

func (b *Builder) serverInstructions(tools []agent.ToolDefinition) []string {
	var sections []string
	for _, serverID := range toolServers(tools) {
		server, err := b.mcpRegistry.Get(serverID)
		if err != nil || server.Instructions == "" {
			continue
		}
		sections = append(sections, "## "+serverID+" Instructions\n\n"+server.Instructions)
	}
	return sections
}

// FormatFailedServers warns the model about tool servers that could not be
// reached, so it does not wait on tools it was never given.
func FormatFailedServers(failed map[string]string) string {
	if len(failed) == 0 {
		return ""
	}
	ids := make([]string, 0, len(failed))
	for id := range failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var sb strings.Builder
	sb.WriteString("## Unavailable Tool Servers\n\nThe following tool servers failed to start and their tools are not available:\n")
	for _, id := range ids {
		fmt.Fprintf(&sb, "- %s: %s\n", id, failed[id])
	}
	sb.WriteString("\nWork with the remaining tools and your own knowledge.")
	return sb.String()
}

func nonEmpty(sections []string) []string {
	out := sections[:0:0]
	for _, s := range sections {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// ReportTask is the user message of the report agent.
func ReportTask(topic string) string { return "Gather info on " + topic }

// NewsTask is the user message of the news agent.
func NewsTask(topic string) string { return "Gather news on " + topic }

// SummaryTask is the user message of the summary agent.
func SummaryTask(report string) string { return "Summarize the following:\n" + report }

// SearchTask is the user message of the gateway search agent.
func SearchTask(topic string) string {
	return fmt.Sprintf("Gather reliable information on the topic: %s", topic)
}

// NewsSearchTask is the user message of the gateway news agent.
func NewsSearchTask(topic string) string {
	return fmt.Sprintf("Gather the latest news about: %s", topic)
}

// MergeInstructions is the system prompt of the synthesis call.
func MergeInstructions() string { return mergeInstructions }

// MergeTask is the user message of the synthesis call.
func MergeTask(report, news string) string {
	return fmt.Sprintf(mergeTemplate, report, news)
}

// UnavailableInput stands in for a research input that failed.
func UnavailableInput(reason string) string {
	return fmt.Sprintf(unavailableInput, reason)
}

// SummarizeInstructions is the system prompt of the summarize_topic tool.
func SummarizeInstructions() string { return summarizeToolInstructions }

// QAInstructions is the Q&A system prompt carrying the research report.
func QAInstructions(report string) string {
	return fmt.Sprintf(qaInstructions, report)
}

// ClassifyTask asks for a structured sentiment of feedback.
func ClassifyTask(feedback string) string {
	return fmt.Sprintf(classifyTemplate, feedback)
}

// ClassifyRetry re-prompts after a rejected classification.
func ClassifyRetry(previous, problem string) string {
	return fmt.Sprintf(classifyRetryTemplate, previous, problem)
}

// PositiveReplyTask asks for a thank-you reply to positive feedback.
func PositiveReplyTask(feedback string) string {
	return fmt.Sprintf(positiveReplyTemplate, feedback)
}

// NegativeReplyTask asks for an empathetic reply to negative feedback.
func NegativeReplyTask(feedback string) string {
	return fmt.Sprintf(negativeReplyTemplate, feedback)
}
