package mcp

import (
	"context"
	"encoding/json"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/scout/pkg/config"
)

var topicSchema = json.RawMessage(`{"type":"object","properties":{"topic":{"type":"string"}},"required":["topic"]}`)

func textResult(text string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: text}}}
}

// connectTestServer starts an in-memory MCP server offering tools and
// injects a session to it into client under serverID.
func connectTestServer(t *testing.T, client *Client, serverID string, tools map[string]mcpsdk.ToolHandler) {
	t.Helper()
	ctx := context.Background()

	server := mcpsdk.NewServer(&mcpsdk.Implementation{Name: serverID, Version: "test"}, nil)
	for name, handler := range tools {
		server.AddTool(&mcpsdk.Tool{
			Name:        name,
			Description: "test tool " + name,
			InputSchema: topicSchema,
		}, handler)
	}

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	sdkClient := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "scout-test", Version: "test"}, nil)
	session, err := sdkClient.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	client.InjectSession(serverID, session)
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c := NewClient(config.NewMCPServerRegistry(nil))
	t.Cleanup(func() { _ = c.Close() })
	return c
}
