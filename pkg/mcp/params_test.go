package mcp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArguments(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		soleParam string
		want      map[string]any
	}{
		{"empty", "  ", "topic", map[string]any{}},
		{"json object", `{"topic":"go","limit":3}`, "topic", map[string]any{"topic": "go", "limit": float64(3)}},
		{"json null", "null", "topic", map[string]any{}},
		{"json string", `"golang generics"`, "topic", map[string]any{"topic": "golang generics"}},
		{"json number without sole param", "42", "", map[string]any{"input": float64(42)}},
		{"yaml mapping", "topic: go\nlimit: 3", "", map[string]any{"topic": "go", "limit": 3}},
		{"prose with a colon stays a string", "Go 1.22: what changed", "topic", map[string]any{"topic": "Go 1.22: what changed"}},
		{"bare text", "latest AI news", "topic", map[string]any{"topic": "latest AI news"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArguments(tt.raw, tt.soleParam)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseArguments_MalformedJSON(t *testing.T) {
	_, err := ParseArguments(`{"topic": `, "topic")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed JSON")
}

func TestSoleParameter(t *testing.T) {
	assert.Equal(t, "topic", soleParameter(topicSchema))
	assert.Equal(t, "context", soleParameter(map[string]any{
		"type":       "object",
		"properties": map[string]any{"context": map[string]any{"type": "string"}},
	}))
	assert.Empty(t, soleParameter(json.RawMessage(`{"type":"object","properties":{"a":{},"b":{}}}`)))
	assert.Empty(t, soleParameter(nil))
}
