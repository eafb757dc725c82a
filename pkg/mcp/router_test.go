package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeToolName(t *testing.T) {
	assert.Equal(t, "bright_data.search_engine", NormalizeToolName("bright_data__search_engine"))
	assert.Equal(t, "research.search_topic", NormalizeToolName(" research.search_topic "))
	assert.Equal(t, "server.tool__x", NormalizeToolName("server.tool__x"))
	assert.Equal(t, "a.b__c", NormalizeToolName("a__b__c"))
	assert.Equal(t, "plain", NormalizeToolName("plain"))
}

func TestSplitToolName(t *testing.T) {
	valid := map[string][2]string{
		"research.search_topic":    {"research", "search_topic"},
		"duckduckgo-search.search": {"duckduckgo-search", "search"},
		"web.fetch-page":           {"web", "fetch-page"},
	}
	for name, want := range valid {
		server, tool, err := SplitToolName(name)
		require.NoError(t, err, name)
		assert.Equal(t, want[0], server)
		assert.Equal(t, want[1], tool)
		assert.Equal(t, name, JoinToolName(server, tool))
	}

	for _, name := range []string{"", "search", "a.b.c", ".tool", "server.", "-x.y", "my server.tool"} {
		_, _, err := SplitToolName(name)
		assert.Error(t, err, name)
	}
}
