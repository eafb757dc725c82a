package mcp

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// HealthStatus is the last probe result of one server.
type HealthStatus struct {
	ServerID  string    `json:"server_id"`
	Healthy   bool      `json:"healthy"`
	LastCheck time.Time `json:"last_check"`
	Error     string    `json:"error,omitempty"`
	ToolCount int       `json:"tool_count"`
}

// HealthMonitor pings a set of servers in the background. A failed ping
// reconnects the server, so the monitor also heals dropped sessions.
type HealthMonitor struct {
	client    *Client
	serverIDs []string
	interval  time.Duration

	mu       sync.RWMutex
	statuses map[string]*HealthStatus

	cancel context.CancelFunc
	done   chan struct{}
}

// NewHealthMonitor creates a monitor; interval <= 0 means HealthInterval.
func NewHealthMonitor(client *Client, serverIDs []string, interval time.Duration) *HealthMonitor {
	if interval <= 0 {
		interval = HealthInterval
	}
	return &HealthMonitor{
		client:    client,
		serverIDs: serverIDs,
		interval:  interval,
		statuses:  make(map[string]*HealthStatus),
	}
}

// Start runs a first check immediately, then one per interval, until Stop
// or ctx is done. Starting a running monitor is a no-op.
func (m *HealthMonitor) Start(ctx context.Context) {
	if m.cancel != nil {
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	go m.loop(ctx)
}

// Stop ends the loop and waits for it.
func (m *HealthMonitor) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
	m.cancel = nil
	m.done = nil
}

func (m *HealthMonitor) loop(ctx context.Context) {
	defer close(m.done)
	m.CheckAll(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CheckAll(ctx)
		}
	}
}

// CheckAll probes every server once and records the results.
func (m *HealthMonitor) CheckAll(ctx context.Context) {
	for _, id := range m.serverIDs {
		m.checkServer(ctx, id)
	}
}

func (m *HealthMonitor) checkServer(ctx context.Context, serverID string) {
	status := &HealthStatus{ServerID: serverID, LastCheck: time.Now()}
	if err := m.client.Ping(ctx, serverID); err != nil {
		status.Error = err.Error()
		slog.Warn("MCP server unhealthy", "server", serverID, "error", err)
	} else {
		status.Healthy = true
		if tools, err := m.client.ListTools(ctx, serverID); err == nil {
			status.ToolCount = len(tools)
		}
	}

	m.mu.Lock()
	prev := m.statuses[serverID]
	m.statuses[serverID] = status
	m.mu.Unlock()

	if prev != nil && !prev.Healthy && status.Healthy {
		slog.Info("MCP server recovered", "server", serverID)
	}
}

// Statuses returns a copy of the latest results.
func (m *HealthMonitor) Statuses() map[string]HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]HealthStatus, len(m.statuses))
	for k, v := range m.statuses {
		out[k] = *v
	}
	return out
}

// IsHealthy reports whether every server passed its last probe. False
// before the first check completes.
func (m *HealthMonitor) IsHealthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.statuses) < len(m.serverIDs) || len(m.statuses) == 0 {
		return false
	}
	for _, s := range m.statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}
