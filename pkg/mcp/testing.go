package mcp

import (
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// InjectSession registers a pre-connected session for serverID, bypassing
// transport creation. Used to wire in-memory MCP servers in tests.
func (c *Client) InjectSession(serverID string, session *mcpsdk.ClientSession) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[serverID] = session
	delete(c.failedServers, serverID)
}
