package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/codeready-toolchain/scout/pkg/agent"
)

var _ agent.ToolExecutor = (*ToolExecutor)(nil)

// ToolExecutor exposes the tools of a fixed set of servers to one agent run.
// It is cheap to create per run; the Client behind it is shared.
type ToolExecutor struct {
	client          *Client
	serverIDs       []string
	maxOutputTokens int
}

// NewToolExecutor creates an executor over serverIDs. maxOutputTokens caps
// each result (0 means DefaultMaxOutputTokens, negative means no cap).
func NewToolExecutor(client *Client, serverIDs []string, maxOutputTokens int) *ToolExecutor {
	if maxOutputTokens == 0 {
		maxOutputTokens = DefaultMaxOutputTokens
	}
	return &ToolExecutor{
		client:          client,
		serverIDs:       slices.Clone(serverIDs),
		maxOutputTokens: maxOutputTokens,
	}
}

// ListTools returns the tools of every connected server as "server.tool".
// A server that cannot list is skipped; the call fails only when all do.
func (e *ToolExecutor) ListTools(ctx context.Context) ([]agent.ToolDefinition, error) {
	var (
		defs    []agent.ToolDefinition
		lastErr error
		listed  int
	)
	for _, serverID := range e.serverIDs {
		tools, err := e.client.ListTools(ctx, serverID)
		if err != nil {
			lastErr = err
			slog.Warn("Failed to list tools from MCP server", "server", serverID, "error", err)
			continue
		}
		listed++
		for _, tool := range tools {
			defs = append(defs, agent.ToolDefinition{
				Name:             JoinToolName(serverID, tool.Name),
				Description:      tool.Description,
				ParametersSchema: marshalSchema(tool.InputSchema),
			})
		}
	}
	if listed == 0 && lastErr != nil {
		return nil, fmt.Errorf("no MCP server could list tools: %w", lastErr)
	}
	return defs, nil
}

// Execute calls the tool on its server. Every failure, from an unknown
// name to a broken transport, comes back as an IsError result.
func (e *ToolExecutor) Execute(ctx context.Context, call agent.ToolCall) (*agent.ToolResult, error) {
	result := &agent.ToolResult{CallID: call.ID, Name: call.Name}
	fail := func(format string, args ...any) (*agent.ToolResult, error) {
		result.Content = fmt.Sprintf(format, args...)
		result.IsError = true
		return result, nil
	}

	serverID, toolName, err := SplitToolName(NormalizeToolName(call.Name))
	if err != nil {
		return fail("%s", err)
	}
	if !slices.Contains(e.serverIDs, serverID) {
		return fail("MCP server %q is not available. Available servers: %s", serverID, strings.Join(e.serverIDs, ", "))
	}

	args, err := ParseArguments(call.Arguments, e.soleParameter(ctx, serverID, toolName))
	if err != nil {
		return fail("Failed to parse tool arguments: %s", err)
	}

	res, err := e.client.CallTool(ctx, serverID, toolName, args)
	if err != nil {
		return fail("MCP tool execution failed: %s", err)
	}

	result.Content = TruncateOutput(extractTextContent(res), e.maxOutputTokens)
	result.IsError = res.IsError
	if result.IsError && result.Content == "" {
		result.Content = fmt.Sprintf("Tool %s reported an error without details", call.Name)
	}
	return result, nil
}

// FailedServers returns the connect errors of this executor's servers.
func (e *ToolExecutor) FailedServers() map[string]string {
	failed := e.client.FailedServers()
	for id := range failed {
		if !slices.Contains(e.serverIDs, id) {
			delete(failed, id)
		}
	}
	return failed
}

// Close is a no-op: the Client outlives the run and is closed by its owner.
func (e *ToolExecutor) Close() error { return nil }

func (e *ToolExecutor) soleParameter(ctx context.Context, serverID, toolName string) string {
	tools, err := e.client.ListTools(ctx, serverID)
	if err != nil {
		return ""
	}
	for _, t := range tools {
		if t.Name == toolName {
			return soleParameter(t.InputSchema)
		}
	}
	return ""
}

// extractTextContent joins the text parts of a result. Images and embedded
// resources are skipped.
func extractTextContent(result *mcpsdk.CallToolResult) string {
	var parts []string
	for _, c := range result.Content {
		if tc, ok := c.(*mcpsdk.TextContent); ok {
			parts = append(parts, tc.Text)
			continue
		}
		slog.Debug("Skipping non-text MCP content", "content_type", fmt.Sprintf("%T", c))
	}
	return strings.Join(parts, "\n")
}

func marshalSchema(schema any) string {
	if schema == nil {
		return ""
	}
	if raw, ok := schema.(json.RawMessage); ok {
		return string(raw)
	}
	data, err := json.Marshal(schema)
	if err != nil {
		slog.Debug("Failed to marshal tool input schema", "error", err)
		return ""
	}
	return string(data)
}
