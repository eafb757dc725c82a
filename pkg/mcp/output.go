package mcp

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Roughly four characters per token for English text. Good enough for a
// soft cap; no tokenizer is involved.
const charsPerToken = 4

// DefaultMaxOutputTokens caps a single tool result handed back to the model.
// Scraping tools can return whole pages of markup.
const DefaultMaxOutputTokens = 8000

// EstimateTokens approximates the token count of text.
func EstimateTokens(text string) int {
	return (len(text) + charsPerToken - 1) / charsPerToken
}

// TruncateOutput cuts content to about maxTokens, at the last line break
// before the limit, and appends a marker saying how much was dropped.
// maxTokens <= 0 disables truncation.
func TruncateOutput(content string, maxTokens int) string {
	limit := maxTokens * charsPerToken
	if maxTokens <= 0 || len(content) <= limit {
		return content
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	truncated := content[:cut]
	if idx := strings.LastIndex(truncated, "\n"); idx > 0 {
		truncated = truncated[:idx]
	}
	return truncated + fmt.Sprintf("\n\n[output truncated: %s of %s shown]",
		formatSize(len(truncated)), formatSize(len(content)))
}

func formatSize(n int) string {
	if n < 1024 {
		return fmt.Sprintf("%dB", n)
	}
	return fmt.Sprintf("%dKB", n/1024)
}
