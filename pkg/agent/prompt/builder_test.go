package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/scout/pkg/agent"
	"github.com/codeready-toolchain/scout/pkg/config"
)

func newTestBuilder() *Builder {
	return NewBuilder(config.NewMCPServerRegistry(map[string]*config.MCPServerConfig{
		"duckduckgo-search": {Instructions: "Prefer recent sources."},
		"bright_data":       {},
	}))
}

func TestBuilder_Instructions(t *testing.T) {
	b := newTestBuilder()

	report := b.Instructions(config.AgentReport, "")
	for _, section := range []string{"Title", "Introduction", "Key Findings", "Sources", "Conclusion"} {
		assert.Contains(t, report, section)
	}
	assert.NotContains(t, report, "Agent-Specific Instructions")

	news := b.Instructions(config.AgentNews, "Only cover the last week.")
	assert.Contains(t, news, "Key Details")
	assert.True(t, strings.HasSuffix(news, "## Agent-Specific Instructions\n\nOnly cover the last week."))

	assert.Contains(t, b.Instructions(config.AgentSummary, ""), "Key Highlights")
	assert.Equal(t, searchInstructions, b.Instructions("unknown", "  "))
}

func TestBuilder_BuildMessages(t *testing.T) {
	b := newTestBuilder()
	execCtx := &agent.ExecutionContext{
		Instructions:  "SYSTEM",
		Task:          "Gather info on Go",
		FailedServers: map[string]string{"bright_data": "npx not found"},
	}
	tools := []agent.ToolDefinition{
		{Name: "duckduckgo-search.search", Description: "Search the web"},
		{Name: "web.fetch_page", Description: "Fetch a page"},
	}

	msgs := b.BuildMessages(execCtx, tools)
	require.Len(t, msgs, 2)
	assert.Equal(t, agent.RoleSystem, msgs[0].Role)
	system := msgs[0].Content
	assert.True(t, strings.HasPrefix(system, "SYSTEM\n\n## Available Tools"))
	assert.Contains(t, system, "**duckduckgo-search.search**")
	assert.Contains(t, system, "## duckduckgo-search Instructions\n\nPrefer recent sources.")
	assert.Contains(t, system, "- bright_data: npx not found")
	assert.Equal(t, agent.ConversationMessage{Role: agent.RoleUser, Content: "Gather info on Go"}, msgs[1])
}

func TestBuilder_BuildMessages_WithHistory(t *testing.T) {
	b := NewBuilder(nil)
	execCtx := &agent.ExecutionContext{
		Instructions: QAInstructions("# Report"),
		Task:         "And the second?",
		History: []agent.ConversationMessage{
			{Role: agent.RoleUser, Content: "First?"},
			{Role: agent.RoleAssistant, Content: "One."},
		},
	}

	msgs := b.BuildMessages(execCtx, nil)
	require.Len(t, msgs, 4)
	assert.Contains(t, msgs[0].Content, "# Report")
	assert.Contains(t, msgs[0].Content, "never say you cannot answer")
	assert.NotContains(t, msgs[0].Content, "Available Tools")
	assert.Equal(t, "First?", msgs[1].Content)
	assert.Equal(t, "One.", msgs[2].Content)
	assert.Equal(t, "And the second?", msgs[3].Content)
}

func TestBuilder_BuildForcedConclusionPrompt(t *testing.T) {
	p := NewBuilder(nil).BuildForcedConclusionPrompt(14)
	assert.Contains(t, p, "(14 iterations)")
	assert.Contains(t, p, "Stop calling tools")
}

func TestMergeTask(t *testing.T) {
	task := MergeTask("REPORT BODY", UnavailableInput("news agent failed"))
	assert.Contains(t, task, "Report Content:\nREPORT BODY")
	assert.Contains(t, task, "News Content:\n(unavailable: news agent failed)")
	assert.Contains(t, task, "Title, Introduction, Merged Insights, Key Highlights, Conclusion, Sources")
}

func TestFeedbackPrompts(t *testing.T) {
	assert.Contains(t, ClassifyTask("great tool"), "Feedback: great tool")
	assert.Contains(t, ClassifyTask("great tool"), `{"sentiment": "negative"}`)
	assert.Contains(t, ClassifyRetry("neutral", "unexpected value"), `"neutral" was rejected: unexpected value`)
	assert.Contains(t, PositiveReplyTask("love it"), `"love it"`)
	assert.Contains(t, NegativeReplyTask("slow"), "acknowledge their concerns")
}

func TestFormatFailedServers(t *testing.T) {
	assert.Empty(t, FormatFailedServers(nil))
	out := FormatFailedServers(map[string]string{"b": "down", "a": "timeout"})
	assert.Less(t, strings.Index(out, "- a: timeout"), strings.Index(out, "- b: down"))
}
