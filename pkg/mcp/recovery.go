package mcp

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"time"
)

// RecoveryAction says what CallTool does after a failed attempt.
type RecoveryAction int

const (
	// NoRetry: the failure is final (bad request, timeout, cancellation).
	NoRetry RecoveryAction = iota
	// RetrySameSession: transient, retry on the existing session.
	RetrySameSession
	// RetryNewSession: the transport broke; reconnect, then retry.
	RetryNewSession
)

func (a RecoveryAction) String() string {
	switch a {
	case RetrySameSession:
		return "retry_same_session"
	case RetryNewSession:
		return "retry_new_session"
	default:
		return "no_retry"
	}
}

// Timeouts and backoff of the MCP client.
const (
	// ReinitTimeout bounds reconnecting a server during recovery.
	ReinitTimeout = 10 * time.Second

	// OperationTimeout is the default bound of ListTools and CallTool.
	OperationTimeout = 90 * time.Second

	RetryBackoffMin = 250 * time.Millisecond
	RetryBackoffMax = 750 * time.Millisecond

	// InitTimeout bounds transport setup plus the MCP handshake. npx-launched
	// servers may download their package on first start.
	InitTimeout = 60 * time.Second

	HealthPingTimeout = 5 * time.Second
	HealthInterval    = 30 * time.Second
)

var connectionErrorMarkers = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"connection closed",
	"no such host",
	"client is closing",
}

var protocolErrorMarkers = []string{
	"method not found",
	"invalid params",
	"invalid request",
	"parse error",
}

// ClassifyError picks the recovery action for a failed MCP operation.
// Timeouts are never retried: the tool may still be running server-side.
func ClassifyError(err error) RecoveryAction {
	if err == nil {
		return NoRetry
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return NoRetry
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return NoRetry
		}
		return RetryNewSession
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return RetryNewSession
	}

	msg := strings.ToLower(err.Error())
	if containsAny(msg, connectionErrorMarkers) {
		return RetryNewSession
	}
	if containsAny(msg, protocolErrorMarkers) {
		return NoRetry
	}
	if strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests") {
		return RetrySameSession
	}
	return NoRetry
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
