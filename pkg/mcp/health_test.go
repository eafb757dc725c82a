package mcp

import (
	"context"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthMonitor_CheckAll(t *testing.T) {
	client := newTestClient(t)
	connectTestServer(t, client, "research", map[string]mcpsdk.ToolHandler{
		"search_topic": func(context.Context, *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
			return textResult("ok"), nil
		},
	})

	m := NewHealthMonitor(client, []string{"research"}, time.Hour)
	assert.False(t, m.IsHealthy(), "unknown before the first check")

	m.CheckAll(context.Background())
	status := m.Statuses()["research"]
	assert.True(t, status.Healthy)
	assert.Equal(t, 1, status.ToolCount)
	assert.True(t, m.IsHealthy())
}

func TestHealthMonitor_UnreachableServer(t *testing.T) {
	m := NewHealthMonitor(newTestClient(t), []string{"research"}, time.Hour)
	m.CheckAll(context.Background())

	status := m.Statuses()["research"]
	assert.False(t, status.Healthy)
	assert.NotEmpty(t, status.Error)
	assert.False(t, m.IsHealthy())
}

func TestHealthMonitor_StartStop(t *testing.T) {
	client := newTestClient(t)
	connectTestServer(t, client, "research", map[string]mcpsdk.ToolHandler{
		"search_topic": func(context.Context, *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
			return textResult("ok"), nil
		},
	})

	m := NewHealthMonitor(client, []string{"research"}, 20*time.Millisecond)
	m.Start(context.Background())
	m.Start(context.Background())
	require.Eventually(t, m.IsHealthy, 2*time.Second, 10*time.Millisecond)
	m.Stop()
	m.Stop()
}
