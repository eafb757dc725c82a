// Package mcp is scout's MCP client side: it connects to the external search
// servers (inside the gateway) and to the gateway itself (from the
// orchestrator), and presents their tools to agents as an agent.ToolExecutor.
package mcp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/codeready-toolchain/scout/pkg/config"
	"github.com/codeready-toolchain/scout/pkg/version"
)

// Client holds one MCP session per configured server. It is long-lived and
// shared by every agent run of the process, so it is safe for concurrent use.
type Client struct {
	registry  *config.MCPServerRegistry
	opTimeout time.Duration
	logger    *slog.Logger

	mu            sync.RWMutex
	sessions      map[string]*mcpsdk.ClientSession
	failedServers map[string]string // serverID -> connect error

	// Tool lists per server. Dropped whenever the server's session is
	// recreated, so a restarted server re-advertises its tools.
	toolCacheMu sync.RWMutex
	toolCache   map[string][]*mcpsdk.Tool

	// Serializes connect/reconnect per server.
	reinitMu sync.Map // serverID -> *sync.Mutex
}

// Option customizes a Client.
type Option func(*Client)

// WithOperationTimeout bounds every ListTools and CallTool round-trip.
// Gateway calls wrap whole inner agent runs and need far more than the default.
func WithOperationTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.opTimeout = d
		}
	}
}

// WithLogger sets the client's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for the servers in registry. No connection is
// made until Initialize or InitializeServer.
func NewClient(registry *config.MCPServerRegistry, opts ...Option) *Client {
	if registry == nil {
		registry = config.NewMCPServerRegistry(nil)
	}
	c := &Client{
		registry:      registry,
		opTimeout:     OperationTimeout,
		logger:        slog.Default(),
		sessions:      make(map[string]*mcpsdk.ClientSession),
		failedServers: make(map[string]string),
		toolCache:     make(map[string][]*mcpsdk.Tool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize connects to each server in serverIDs. A server that fails is
// recorded in FailedServers and skipped; agents run with whatever connected.
func (c *Client) Initialize(ctx context.Context, serverIDs []string) {
	for _, serverID := range serverIDs {
		if err := c.InitializeServer(ctx, serverID); err != nil {
			c.mu.Lock()
			c.failedServers[serverID] = err.Error()
			c.mu.Unlock()
			c.logger.Warn("MCP server failed to initialize", "server", serverID, "error", err)
		}
	}
}

// InitializeServer connects to one server. Returns nil if already connected.
func (c *Client) InitializeServer(ctx context.Context, serverID string) error {
	mu := c.serverMutex(serverID)
	mu.Lock()
	defer mu.Unlock()
	return c.connectLocked(ctx, serverID)
}

func (c *Client) serverMutex(serverID string) *sync.Mutex {
	mu, _ := c.reinitMu.LoadOrStore(serverID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// connectLocked dials serverID. Caller holds the server's reinit mutex.
func (c *Client) connectLocked(ctx context.Context, serverID string) error {
	if c.HasSession(serverID) {
		return nil
	}

	serverCfg, err := c.registry.Get(serverID)
	if err != nil {
		return err
	}
	transport, err := createTransport(serverCfg.Transport)
	if err != nil {
		return fmt.Errorf("transport for %q: %w", serverID, err)
	}

	initCtx, cancel := context.WithTimeout(ctx, InitTimeout)
	defer cancel()

	sdkClient := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    version.AppName,
		Version: version.GitCommit,
	}, nil)
	session, err := sdkClient.Connect(initCtx, transport, nil)
	if err != nil {
		// stdio transports own a child process
		if closer, ok := transport.(io.Closer); ok {
			_ = closer.Close()
		}
		return fmt.Errorf("connect to %q: %w", serverID, err)
	}

	c.mu.Lock()
	c.sessions[serverID] = session
	delete(c.failedServers, serverID)
	c.mu.Unlock()

	c.logger.Info("MCP server connected", "server", serverID)
	return nil
}

func (c *Client) session(serverID string) (*mcpsdk.ClientSession, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sessions[serverID]
	if !ok {
		return nil, fmt.Errorf("no session for server %q", serverID)
	}
	return s, nil
}

// ListTools returns the tools of one server, from cache when possible.
func (c *Client) ListTools(ctx context.Context, serverID string) ([]*mcpsdk.Tool, error) {
	c.toolCacheMu.RLock()
	cached, ok := c.toolCache[serverID]
	c.toolCacheMu.RUnlock()
	if ok {
		return cached, nil
	}

	session, err := c.session(serverID)
	if err != nil {
		return nil, err
	}

	opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()
	result, err := session.ListTools(opCtx, nil)
	if err != nil {
		return nil, fmt.Errorf("list tools from %q: %w", serverID, err)
	}

	tools := result.Tools
	if tools == nil {
		tools = []*mcpsdk.Tool{}
	}
	c.toolCacheMu.Lock()
	c.toolCache[serverID] = tools
	c.toolCacheMu.Unlock()
	return tools, nil
}

// CallTool invokes toolName on serverID. Transport failures get one retry
// after a jittered backoff, on a fresh session when the old one looks dead.
func (c *Client) CallTool(ctx context.Context, serverID, toolName string, args map[string]any) (*mcpsdk.CallToolResult, error) {
	params := &mcpsdk.CallToolParams{Name: toolName, Arguments: args}

	result, err := c.callToolOnce(ctx, serverID, params)
	if err == nil {
		return result, nil
	}

	action := ClassifyError(err)
	if action == NoRetry {
		return nil, err
	}
	c.logger.Info("MCP call failed, retrying",
		"server", serverID, "tool", toolName, "action", action, "error", err)

	backoff := RetryBackoffMin + time.Duration(rand.Int64N(int64(RetryBackoffMax-RetryBackoffMin)))
	select {
	case <-time.After(backoff):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if action == RetryNewSession {
		if err := c.recreateSession(ctx, serverID); err != nil {
			return nil, fmt.Errorf("reconnect to %q: %w", serverID, err)
		}
	}

	result, err = c.callToolOnce(ctx, serverID, params)
	if err != nil {
		return nil, fmt.Errorf("retry of %s.%s failed: %w", serverID, toolName, err)
	}
	return result, nil
}

func (c *Client) callToolOnce(ctx context.Context, serverID string, params *mcpsdk.CallToolParams) (*mcpsdk.CallToolResult, error) {
	session, err := c.session(serverID)
	if err != nil {
		return nil, err
	}
	opCtx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()
	return session.CallTool(opCtx, params)
}

// Ping checks that serverID answers, reconnecting once if it does not.
func (c *Client) Ping(ctx context.Context, serverID string) error {
	pingCtx, cancel := context.WithTimeout(ctx, HealthPingTimeout)
	defer cancel()

	session, err := c.session(serverID)
	if err == nil {
		if err = session.Ping(pingCtx, nil); err == nil {
			return nil
		}
	}

	c.logger.Debug("MCP ping failed, reconnecting", "server", serverID, "error", err)
	if rerr := c.recreateSession(ctx, serverID); rerr != nil {
		return fmt.Errorf("ping %q: %w", serverID, rerr)
	}
	session, err = c.session(serverID)
	if err != nil {
		return err
	}
	retryCtx, retryCancel := context.WithTimeout(ctx, HealthPingTimeout)
	defer retryCancel()
	return session.Ping(retryCtx, nil)
}

// recreateSession drops the server's session and dials it again. Two
// callers racing here may reconnect twice; that costs a handshake only.
func (c *Client) recreateSession(ctx context.Context, serverID string) error {
	mu := c.serverMutex(serverID)
	mu.Lock()
	defer mu.Unlock()

	c.mu.Lock()
	if s, ok := c.sessions[serverID]; ok {
		_ = s.Close()
		delete(c.sessions, serverID)
	}
	c.mu.Unlock()
	c.InvalidateToolCache(serverID)

	reinitCtx, cancel := context.WithTimeout(ctx, ReinitTimeout)
	defer cancel()
	if err := c.connectLocked(reinitCtx, serverID); err != nil {
		c.mu.Lock()
		c.failedServers[serverID] = err.Error()
		c.mu.Unlock()
		return err
	}
	return nil
}

// InvalidateToolCache forgets the cached tool list of a server.
func (c *Client) InvalidateToolCache(serverID string) {
	c.toolCacheMu.Lock()
	delete(c.toolCache, serverID)
	c.toolCacheMu.Unlock()
}

// HasSession reports whether serverID is connected.
func (c *Client) HasSession(serverID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.sessions[serverID]
	return ok
}

// FailedServers returns a copy of serverID -> connect error.
func (c *Client) FailedServers() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.failedServers))
	for k, v := range c.failedServers {
		out[k] = v
	}
	return out
}

// Close ends every session; stdio servers are terminated.
func (c *Client) Close() error {
	c.mu.Lock()
	var firstErr error
	for id, s := range c.sessions {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close session %q: %w", id, err)
		}
	}
	c.sessions = make(map[string]*mcpsdk.ClientSession)
	c.failedServers = make(map[string]string)
	c.mu.Unlock()

	c.toolCacheMu.Lock()
	c.toolCache = make(map[string][]*mcpsdk.Tool)
	c.toolCacheMu.Unlock()
	return firstErr
}
