// Package config provides configuration management for scout: the LLM
// provider, the tool gateway, the external MCP search servers, agent step
// budgets, and the research pipeline policies.
package config

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Names of the built-in agents.
const (
	AgentReport     = "report"      // orchestrator: detailed report through the gateway
	AgentNews       = "news"        // orchestrator: news digest through the gateway
	AgentSummary    = "summary"     // orchestrator: summary of the merged artifact
	AgentSearch     = "search"      // gateway: inner search_topic agent
	AgentNewsSearch = "news-search" // gateway: inner get_news_topic agent
)

// DefaultMaxIterations is the step budget applied when an agent sets none.
const DefaultMaxIterations = 15

// DefaultIterationTimeout bounds a single LLM call inside an agent run.
const DefaultIterationTimeout = 120 * time.Second

// AgentConfig defines the step budget and prompt overrides for one agent.
type AgentConfig struct {
	// Human-readable description
	Description string `yaml:"description,omitempty"`

	// Appended to the agent's built-in instructions
	CustomInstructions string `yaml:"custom_instructions,omitempty"`

	// Max LLM calls for this agent; the last one is a forced conclusion without tools
	MaxIterations *int `yaml:"max_iterations,omitempty"`

	// Wall-clock bound for each LLM call
	IterationTimeout time.Duration `yaml:"iteration_timeout,omitempty"`
}

// ResolvedMaxIterations returns MaxIterations or the default.
func (a *AgentConfig) ResolvedMaxIterations() int {
	if a == nil || a.MaxIterations == nil {
		return DefaultMaxIterations
	}
	return *a.MaxIterations
}

// ResolvedIterationTimeout returns IterationTimeout or the default.
func (a *AgentConfig) ResolvedIterationTimeout() time.Duration {
	if a == nil || a.IterationTimeout <= 0 {
		return DefaultIterationTimeout
	}
	return a.IterationTimeout
}

// AgentRegistry stores agent configurations in memory with thread-safe access
type AgentRegistry struct {
	agents map[string]*AgentConfig
	mu     sync.RWMutex
}

// NewAgentRegistry creates a new agent registry
func NewAgentRegistry(agents map[string]*AgentConfig) *AgentRegistry {
	copied := make(map[string]*AgentConfig, len(agents))
	for k, v := range agents {
		copied[k] = v
	}
	return &AgentRegistry{agents: copied}
}

// Get retrieves an agent configuration by name (thread-safe)
func (r *AgentRegistry) Get(name string) (*AgentConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agent, exists := r.agents[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}
	return agent, nil
}

// Names returns the sorted agent names.
func (r *AgentRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has checks if an agent exists in the registry (thread-safe)
func (r *AgentRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.agents[name]
	return exists
}

// Len returns the number of agents in the registry
func (r *AgentRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}
