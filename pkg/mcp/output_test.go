package mcp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("abc"))
	assert.Equal(t, 2, EstimateTokens("abcdefgh"))
}

func TestTruncateOutput(t *testing.T) {
	short := "fits easily"
	assert.Equal(t, short, TruncateOutput(short, 10))
	assert.Equal(t, short, TruncateOutput(short, 0))

	long := strings.Repeat("0123456789\n", 100)
	out := TruncateOutput(long, 10)
	head, marker, found := strings.Cut(out, "\n\n[output truncated:")
	assert.True(t, found)
	assert.True(t, strings.HasSuffix(head, "0123456789"), "cut at a line break")
	assert.LessOrEqual(t, len(head), 40)
	assert.Contains(t, marker, "of 1KB shown]")

	// Never splits a multi-byte rune.
	runes := strings.Repeat("é", 50)
	out = TruncateOutput(runes, 5)
	head, _, _ = strings.Cut(out, "\n\n[output truncated:")
	assert.Equal(t, strings.Repeat("é", 10), head)
}
