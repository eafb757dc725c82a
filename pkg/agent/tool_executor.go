package agent

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ToolExecutor abstracts tool execution for iteration controllers.
type ToolExecutor interface {
	// Execute runs a single tool call. Tool-level failures come back as a
	// ToolResult with IsError set; a Go error means the executor itself broke.
	Execute(ctx context.Context, call ToolCall) (*ToolResult, error)

	// ListTools returns available tool definitions for the current execution.
	// Returns nil if no tools are configured.
	ListTools(ctx context.Context) ([]ToolDefinition, error)

	// Close releases resources (MCP transports, subprocesses).
	Close() error
}

// ToolResult represents the output of a tool execution.
type ToolResult struct {
	CallID  string // Matches the ToolCall.ID
	Name    string // Tool name (server.tool format)
	Content string // Tool output (text)
	IsError bool   // Whether the tool returned an error
}

// StubToolExecutor returns canned responses for testing.
type StubToolExecutor struct {
	tools []ToolDefinition
}

// NewStubToolExecutor creates a stub executor with the given tool definitions.
func NewStubToolExecutor(tools []ToolDefinition) *StubToolExecutor {
	return &StubToolExecutor{tools: tools}
}

func (s *StubToolExecutor) Execute(_ context.Context, call ToolCall) (*ToolResult, error) {
	return &ToolResult{
		CallID:  call.ID,
		Name:    call.Name,
		Content: fmt.Sprintf("[stub] Tool %q called with args: %s", call.Name, call.Arguments),
	}, nil
}

func (s *StubToolExecutor) ListTools(_ context.Context) ([]ToolDefinition, error) {
	return s.tools, nil
}

func (s *StubToolExecutor) Close() error { return nil }

// CompositeToolExecutor presents several executors as one tool set and
// routes each call to the executor that listed the tool. Executors listed
// first win name clashes.
type CompositeToolExecutor struct {
	executors []ToolExecutor

	mu     sync.Mutex
	routes map[string]ToolExecutor // tool name -> executor, built by ListTools
}

// NewCompositeToolExecutor combines executors; nil entries are skipped.
func NewCompositeToolExecutor(executors ...ToolExecutor) *CompositeToolExecutor {
	c := &CompositeToolExecutor{routes: make(map[string]ToolExecutor)}
	for _, e := range executors {
		if e != nil {
			c.executors = append(c.executors, e)
		}
	}
	return c
}

// ListTools returns the union of all executors' tools. An executor that
// fails to list is skipped unless every executor fails.
func (c *CompositeToolExecutor) ListTools(ctx context.Context) ([]ToolDefinition, error) {
	var (
		all      []ToolDefinition
		errs     []error
		routes   = make(map[string]ToolExecutor)
		failures int
	)
	for _, e := range c.executors {
		tools, err := e.ListTools(ctx)
		if err != nil {
			failures++
			errs = append(errs, err)
			continue
		}
		for _, t := range tools {
			if _, dup := routes[t.Name]; dup {
				continue
			}
			routes[t.Name] = e
			all = append(all, t)
		}
	}

	c.mu.Lock()
	c.routes = routes
	c.mu.Unlock()

	if failures > 0 && failures == len(c.executors) {
		return nil, fmt.Errorf("all tool executors failed to list tools: %w", errors.Join(errs...))
	}
	return all, nil
}

// Execute routes the call. Unknown tools come back as an error result so
// the model can correct itself.
func (c *CompositeToolExecutor) Execute(ctx context.Context, call ToolCall) (*ToolResult, error) {
	c.mu.Lock()
	e, ok := c.routes[call.Name]
	known := make([]string, 0, len(c.routes))
	if !ok {
		for name := range c.routes {
			known = append(known, name)
		}
	}
	c.mu.Unlock()

	if !ok {
		sort.Strings(known)
		return &ToolResult{
			CallID:  call.ID,
			Name:    call.Name,
			Content: fmt.Sprintf("Unknown tool %q. Available tools: %s", call.Name, strings.Join(known, ", ")),
			IsError: true,
		}, nil
	}
	return e.Execute(ctx, call)
}

// Close closes every executor and returns the joined errors.
func (c *CompositeToolExecutor) Close() error {
	var errs []error
	for _, e := range c.executors {
		if err := e.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
