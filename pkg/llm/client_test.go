package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/scout/pkg/agent"
	"github.com/codeready-toolchain/scout/pkg/config"
	"github.com/codeready-toolchain/scout/pkg/credential"
)

const testKey = "AIzaSyTestKey0123456789abcdefghij"

// fakeProvider is an OpenAI-compatible chat completions endpoint.
type fakeProvider struct {
	mu       sync.Mutex
	requests []map[string]any
	authz    []string
	status   int
	body     string
}

func (p *fakeProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var req map[string]any
	_ = json.Unmarshal(raw, &req)

	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.authz = append(p.authz, r.Header.Get("Authorization"))
	status, body := p.status, p.body
	p.mu.Unlock()

	if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (p *fakeProvider) lastRequest(t *testing.T) map[string]any {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	require.NotEmpty(t, p.requests)
	return p.requests[len(p.requests)-1]
}

func completionBody(message string) string {
	return `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gemini-2.0-flash",
		"choices":[{"index":0,"finish_reason":"stop","message":` + message + `}],
		"usage":{"prompt_tokens":11,"completion_tokens":7,"total_tokens":18}}`
}

func newTestLLMConfig(baseURL string) *config.LLMConfig {
	return &config.LLMConfig{
		Model:             "gemini-2.0-flash",
		BaseURL:           baseURL + "/v1beta/openai/",
		Temperature:       func() *float64 { v := 0.7; return &v }(),
		MaxTokens:         256,
		Timeout:           5 * time.Second,
		RequestsPerMinute: -1,
		MaxRetries:        config.IntPtr(0),
	}
}

func collect(t *testing.T, ch <-chan agent.Chunk) []agent.Chunk {
	t.Helper()
	var chunks []agent.Chunk
	timeout := time.After(5 * time.Second)
	for {
		select {
		case c, ok := <-ch:
			if !ok {
				return chunks
			}
			chunks = append(chunks, c)
		case <-timeout:
			t.Fatal("timed out waiting for chunks")
		}
	}
}

func TestClient_GenerateText(t *testing.T) {
	provider := &fakeProvider{body: completionBody(`{"role":"assistant","content":"Go is a language."}`)}
	srv := httptest.NewServer(provider)
	defer srv.Close()

	c := NewClient(newTestLLMConfig(srv.URL), testKey)
	temp := 0.1
	ch, err := c.Generate(context.Background(), &agent.GenerateInput{
		Messages: []agent.ConversationMessage{
			{Role: agent.RoleSystem, Content: "sys"},
			{Role: agent.RoleUser, Content: "What is Go?"},
		},
		Temperature: &temp,
		JSONOutput:  true,
	})
	require.NoError(t, err)

	chunks := collect(t, ch)
	require.Len(t, chunks, 2)
	assert.Equal(t, &agent.TextChunk{Content: "Go is a language."}, chunks[0])
	assert.Equal(t, &agent.UsageChunk{InputTokens: 11, OutputTokens: 7, TotalTokens: 18}, chunks[1])

	req := provider.lastRequest(t)
	assert.Equal(t, "gemini-2.0-flash", req["model"])
	assert.InDelta(t, 0.1, req["temperature"], 1e-9)
	assert.EqualValues(t, 256, req["max_tokens"])
	assert.Equal(t, map[string]any{"type": "json_object"}, req["response_format"])
	assert.NotContains(t, req, "tools")
	assert.Equal(t, "Bearer "+testKey, provider.authz[0])
}

func TestClient_GenerateToolCalls(t *testing.T) {
	provider := &fakeProvider{body: completionBody(`{"role":"assistant","content":null,
		"tool_calls":[{"id":"call_1","type":"function","function":{"name":"research__search_topic","arguments":"{\"topic\":\"go\"}"}}]}`)}
	srv := httptest.NewServer(provider)
	defer srv.Close()

	c := NewClient(newTestLLMConfig(srv.URL), testKey)
	ch, err := c.Generate(context.Background(), &agent.GenerateInput{
		Messages: []agent.ConversationMessage{
			{Role: agent.RoleUser, Content: "Research go"},
			{Role: agent.RoleAssistant, ToolCalls: []agent.ToolCall{{ID: "call_0", Name: "web.fetch_page", Arguments: `{"url":"https://go.dev"}`}}},
			{Role: agent.RoleTool, Content: "page text", ToolCallID: "call_0", ToolName: "web.fetch_page"},
		},
		Tools: []agent.ToolDefinition{{
			Name:             "research.search_topic",
			Description:      "Search a topic",
			ParametersSchema: `{"type":"object","properties":{"topic":{"type":"string"}},"required":["topic"]}`,
		}},
	})
	require.NoError(t, err)

	chunks := collect(t, ch)
	require.NotEmpty(t, chunks)
	assert.Equal(t, &agent.ToolCallChunk{CallID: "call_1", Name: "research.search_topic", Arguments: `{"topic":"go"}`}, chunks[0])

	req := provider.lastRequest(t)
	tools := req["tools"].([]any)
	require.Len(t, tools, 1)
	fn := tools[0].(map[string]any)["function"].(map[string]any)
	assert.Equal(t, "research__search_topic", fn["name"])
	assert.Equal(t, "Search a topic", fn["description"])

	msgs := req["messages"].([]any)
	require.Len(t, msgs, 3)
	assistant := msgs[1].(map[string]any)
	call := assistant["tool_calls"].([]any)[0].(map[string]any)
	assert.Equal(t, "web__fetch_page", call["function"].(map[string]any)["name"])
	tool := msgs[2].(map[string]any)
	assert.Equal(t, "tool", tool["role"])
	assert.Equal(t, "call_0", tool["tool_call_id"])
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		retryable bool
		check     func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized key",
			status: http.StatusUnauthorized,
			body:   `{"error":{"message":"bad key","type":"invalid_request_error","code":"invalid_api_key"}}`,
			check: func(t *testing.T, err error) {
				assert.True(t, credential.IsCredentialError(err))
				assert.ErrorIs(t, err, credential.ErrRejected)
			},
		},
		{
			name:      "rate limited",
			status:    http.StatusTooManyRequests,
			body:      `{"error":{"message":"quota","type":"rate_limit","code":"429"}}`,
			retryable: true,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrRateLimited)
			},
		},
		{
			name:      "server error",
			status:    http.StatusInternalServerError,
			body:      `{"error":{"message":"boom","type":"server_error","code":"500"}}`,
			retryable: true,
			check: func(t *testing.T, err error) {
				assert.False(t, credential.IsCredentialError(err))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(&fakeProvider{status: tt.status, body: tt.body})
			defer srv.Close()

			c := NewClient(newTestLLMConfig(srv.URL), testKey)
			ch, err := c.Generate(context.Background(), &agent.GenerateInput{
				Messages: []agent.ConversationMessage{{Role: agent.RoleUser, Content: "hi"}},
			})
			require.NoError(t, err)

			chunks := collect(t, ch)
			require.Len(t, chunks, 1)
			errChunk, ok := chunks[0].(*agent.ErrorChunk)
			require.True(t, ok, "expected ErrorChunk, got %T", chunks[0])
			assert.Equal(t, tt.retryable, errChunk.Retryable)
			tt.check(t, errChunk.Err)
		})
	}
}

func TestClient_InvalidToolSchema(t *testing.T) {
	c := NewClient(newTestLLMConfig("http://127.0.0.1:1"), testKey)
	_, err := c.Generate(context.Background(), &agent.GenerateInput{
		Tools: []agent.ToolDefinition{{Name: "a.b", ParametersSchema: "{"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `tool "a.b"`)
}

func TestToolNameEncoding(t *testing.T) {
	assert.Equal(t, "duckduckgo-search__search", EncodeToolName("duckduckgo-search.search"))
	assert.Equal(t, "bright_data__search_engine", EncodeToolName("bright_data.search_engine"))
	assert.Equal(t, "bright_data.search_engine", DecodeToolName("bright_data__search_engine"))
	assert.Equal(t, "plain", DecodeToolName("plain"))
	assert.Equal(t, "web.fetch_page", DecodeToolName(EncodeToolName("web.fetch_page")))
}
