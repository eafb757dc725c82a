package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/scout/pkg/agent"
)

func TestFormatToolDescriptions(t *testing.T) {
	assert.Equal(t, "No tools available.", FormatToolDescriptions(nil))

	tools := []agent.ToolDefinition{
		{
			Name:        "research.search_topic",
			Description: "Search for a topic",
			ParametersSchema: `{
				"type": "object",
				"properties": {
					"topic": {"type": "string", "description": "The topic to search"},
					"limit": {"type": "integer", "default": 5}
				},
				"required": ["topic"]
			}`,
		},
		{Name: "news.headlines", Description: "Latest headlines"},
		{Name: "web.fetch_page", Description: "Fetch a page", ParametersSchema: "not json"},
	}

	result := FormatToolDescriptions(tools)
	assert.Contains(t, result, "1. **research.search_topic**: Search for a topic")
	assert.Contains(t, result, "Parameters: limit (optional integer) [default: 5]; topic (required string): The topic to search")
	assert.Contains(t, result, "2. **news.headlines**: Latest headlines\n    Parameters: none")
	assert.Contains(t, result, "3. **web.fetch_page**")
}

func TestExtractParameters(t *testing.T) {
	assert.Nil(t, extractParameters(nil))
	assert.Nil(t, extractParameters(map[string]any{"type": "object"}))

	params := extractParameters(map[string]any{
		"properties": map[string]any{
			"z": map[string]any{"type": "string"},
			"a": map[string]any{"type": "string"},
			"m": "not an object",
		},
		"required": []any{"z"},
	})
	require.Len(t, params, 2)
	assert.Equal(t, "a (optional string)", params[0])
	assert.Equal(t, "z (required string)", params[1])
}

func TestToolServers(t *testing.T) {
	servers := toolServers([]agent.ToolDefinition{
		{Name: "duckduckgo-search.search"},
		{Name: "web.fetch_page"},
		{Name: "duckduckgo-search.fetch_content"},
		{Name: "bare"},
	})
	assert.Equal(t, []string{"duckduckgo-search", "web"}, servers)
}
