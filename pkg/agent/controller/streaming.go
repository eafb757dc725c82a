package controller

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/codeready-toolchain/scout/pkg/agent"
)

// LLMResponse holds the fully-collected response from an LLM call.
type LLMResponse struct {
	Text      string
	ToolCalls []agent.ToolCall
	Usage     *agent.TokenUsage
}

// callLLM performs a single LLM call bounded by timeout and returns the
// complete collected response.
func callLLM(
	ctx context.Context,
	llmClient agent.LLMClient,
	input *agent.GenerateInput,
	timeout time.Duration,
) (*LLMResponse, error) {
	// Derive a cancellable context so the producer goroutine in Generate
	// is always cleaned up when we return.
	llmCtx, llmCancel := withOptionalTimeout(ctx, timeout)
	defer llmCancel()

	stream, err := llmClient.Generate(llmCtx, input)
	if err != nil {
		return nil, fmt.Errorf("LLM Generate failed: %w", err)
	}

	resp, err := collectStream(llmCtx, stream)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// collectStream drains an LLM chunk channel into a complete LLMResponse.
// Returns an error if an ErrorChunk is received or ctx ends first.
func collectStream(ctx context.Context, stream <-chan agent.Chunk) (*LLMResponse, error) {
	resp := &LLMResponse{}
	var textBuf strings.Builder

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("LLM stream interrupted: %w", ctx.Err())
		case chunk, ok := <-stream:
			if !ok {
				resp.Text = textBuf.String()
				return resp, nil
			}
			switch c := chunk.(type) {
			case *agent.TextChunk:
				textBuf.WriteString(c.Content)
			case *agent.ToolCallChunk:
				resp.ToolCalls = append(resp.ToolCalls, agent.ToolCall{
					ID:        c.CallID,
					Name:      c.Name,
					Arguments: c.Arguments,
				})
			case *agent.UsageChunk:
				resp.Usage = &agent.TokenUsage{
					InputTokens:  c.InputTokens,
					OutputTokens: c.OutputTokens,
					TotalTokens:  c.TotalTokens,
				}
			case *agent.ErrorChunk:
				return nil, fmt.Errorf("LLM error (retryable: %v): %w", c.Retryable, c.Err)
			}
		}
	}
}
