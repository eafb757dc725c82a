// Package llm implements agent.LLMClient against an OpenAI-compatible chat
// completions endpoint (Gemini's by default).
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"golang.org/x/time/rate"

	"github.com/codeready-toolchain/scout/pkg/agent"
	"github.com/codeready-toolchain/scout/pkg/config"
	"github.com/codeready-toolchain/scout/pkg/credential"
	"github.com/codeready-toolchain/scout/pkg/metrics"
)

// ErrRateLimited is returned when the provider answers 429.
var ErrRateLimited = errors.New("LLM provider rate limit exceeded")

var _ agent.LLMClient = (*Client)(nil)

// Client calls the chat completions API for one API key. Safe for
// concurrent use; all calls share one rate limiter.
type Client struct {
	api         openai.Client
	model       string
	temperature float64
	maxTokens   int
	maskedKey   string
	limiter     *rate.Limiter // nil = unlimited
}

// NewClient creates a client authenticated with apiKey.
func NewClient(cfg *config.LLMConfig, apiKey string, opts ...option.RequestOption) *Client {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(cfg.ResolvedMaxRetries()),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(cfg.Timeout))
	}
	reqOpts = append(reqOpts, opts...)

	var limiter *rate.Limiter
	if rpm := cfg.RequestsPerMinute; rpm > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm)
	}

	return &Client{
		api:         openai.NewClient(reqOpts...),
		model:       cfg.Model,
		temperature: cfg.ResolvedTemperature(),
		maxTokens:   cfg.MaxTokens,
		maskedKey:   credential.Mask(apiKey),
		limiter:     limiter,
	}
}

// Generate performs one chat completion and streams the result as chunks:
// text, tool calls, usage. Provider failures arrive as an ErrorChunk.
func (c *Client) Generate(ctx context.Context, input *agent.GenerateInput) (<-chan agent.Chunk, error) {
	params, err := c.buildParams(input)
	if err != nil {
		return nil, err
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for LLM rate limiter: %w", err)
		}
	}

	ch := make(chan agent.Chunk, 8)
	go func() {
		defer close(ch)

		start := time.Now()
		resp, err := c.api.Chat.Completions.New(ctx, params)
		metrics.ObserveLLMRequest(c.model, err, time.Since(start))
		if err != nil {
			classified, retryable := c.classifyError(err)
			slog.Debug("LLM request failed",
				"session_id", input.SessionID, "model", c.model,
				"retryable", retryable, "error", classified)
			send(ctx, ch, &agent.ErrorChunk{Err: classified, Retryable: retryable})
			return
		}

		for _, chunk := range responseChunks(resp) {
			if !send(ctx, ch, chunk) {
				return
			}
		}
	}()
	return ch, nil
}

// Close releases client resources. The HTTP client is shared and needs none.
func (c *Client) Close() error { return nil }

func send(ctx context.Context, ch chan<- agent.Chunk, chunk agent.Chunk) bool {
	select {
	case ch <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Client) buildParams(input *agent.GenerateInput) (openai.ChatCompletionNewParams, error) {
	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(c.model),
		Messages:    toMessages(input.Messages),
		Temperature: openai.Float(c.temperature),
	}
	if input.Temperature != nil {
		params.Temperature = openai.Float(*input.Temperature)
	}
	maxTokens := c.maxTokens
	if input.MaxTokens > 0 {
		maxTokens = input.MaxTokens
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}
	if input.JSONOutput {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	tools, err := toTools(input.Tools)
	if err != nil {
		return params, err
	}
	params.Tools = tools
	return params, nil
}

func toMessages(msgs []agent.ConversationMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case agent.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case agent.RoleAssistant:
			out = append(out, assistantMessage(m))
		case agent.RoleTool:
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func assistantMessage(m agent.ConversationMessage) openai.ChatCompletionMessageParamUnion {
	msg := &openai.ChatCompletionAssistantMessageParam{}
	if m.Content != "" {
		msg.Content.OfString = openai.String(m.Content)
	}
	for _, tc := range m.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, openai.ChatCompletionMessageToolCallParam{
			ID: tc.ID,
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      EncodeToolName(tc.Name),
				Arguments: tc.Arguments,
			},
		})
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: msg}
}

func toTools(defs []agent.ToolDefinition) ([]openai.ChatCompletionToolParam, error) {
	if len(defs) == 0 {
		return nil, nil
	}
	tools := make([]openai.ChatCompletionToolParam, 0, len(defs))
	for _, d := range defs {
		schema := shared.FunctionParameters{"type": "object", "properties": map[string]any{}}
		if d.ParametersSchema != "" {
			schema = shared.FunctionParameters{}
			if err := json.Unmarshal([]byte(d.ParametersSchema), &schema); err != nil {
				return nil, fmt.Errorf("tool %q has an invalid parameters schema: %w", d.Name, err)
			}
		}
		fn := shared.FunctionDefinitionParam{
			Name:       EncodeToolName(d.Name),
			Parameters: schema,
		}
		if d.Description != "" {
			fn.Description = openai.String(d.Description)
		}
		tools = append(tools, openai.ChatCompletionToolParam{Function: fn})
	}
	return tools, nil
}

func responseChunks(resp *openai.ChatCompletion) []agent.Chunk {
	var chunks []agent.Chunk
	if len(resp.Choices) > 0 {
		msg := resp.Choices[0].Message
		if msg.Content != "" {
			chunks = append(chunks, &agent.TextChunk{Content: msg.Content})
		}
		for _, tc := range msg.ToolCalls {
			chunks = append(chunks, &agent.ToolCallChunk{
				CallID:    tc.ID,
				Name:      DecodeToolName(tc.Function.Name),
				Arguments: tc.Function.Arguments,
			})
		}
	}
	if resp.Usage.TotalTokens > 0 {
		chunks = append(chunks, &agent.UsageChunk{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:  int(resp.Usage.TotalTokens),
		})
	}
	return chunks
}

// classifyError maps provider errors onto the error taxonomy: rejected
// keys become credential errors, 429 becomes ErrRateLimited.
func (c *Client) classifyError(err error) (error, bool) {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return err, !errors.Is(err, context.Canceled)
	}
	switch {
	case apiErr.StatusCode == http.StatusUnauthorized, apiErr.StatusCode == http.StatusForbidden:
		return &credential.Error{
			Masked: c.maskedKey,
			Err:    fmt.Errorf("%w (HTTP %d): %s", credential.ErrRejected, apiErr.StatusCode, apiErr.Message),
		}, false
	case apiErr.StatusCode == http.StatusBadRequest && apiErr.Message != "" && isInvalidKeyMessage(apiErr.Message):
		// Gemini reports bad keys as 400 API_KEY_INVALID.
		return &credential.Error{
			Masked: c.maskedKey,
			Err:    fmt.Errorf("%w: %s", credential.ErrRejected, apiErr.Message),
		}, false
	case apiErr.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", ErrRateLimited, err), true
	case apiErr.StatusCode >= 500:
		return err, true
	default:
		return err, false
	}
}
