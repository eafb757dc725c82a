package agent

import (
	"errors"
	"fmt"
	"time"

	"github.com/codeready-toolchain/scout/pkg/config"
)

// ResolveAgentConfig builds the run configuration of a named agent by
// applying the hierarchy: defaults → agent definition → call site.
// toolTimeout comes from the call site since the same agent definition may
// run against slow gateway tools or fast local ones.
func ResolveAgentConfig(cfg *config.Config, agentName string, toolTimeout time.Duration) (*ResolvedAgentConfig, error) {
	if cfg == nil || cfg.AgentRegistry == nil {
		return nil, errors.New("configuration cannot be nil")
	}

	agentDef, err := cfg.GetAgent(agentName)
	if err != nil {
		return nil, fmt.Errorf("agent %q not found: %w", agentName, err)
	}

	maxIterations := agentDef.ResolvedMaxIterations()
	if maxIterations < 1 {
		return nil, fmt.Errorf("agent %q: max_iterations must be at least 1, got %d", agentName, maxIterations)
	}

	return &ResolvedAgentConfig{
		AgentName:        agentName,
		MaxIterations:    maxIterations,
		IterationTimeout: agentDef.ResolvedIterationTimeout(),
		ToolTimeout:      toolTimeout,
	}, nil
}

// SingleCallConfig is the configuration of a tool-less call that has no
// agent definition of its own (merge, Q&A, feedback classification).
func SingleCallConfig(name string, jsonOutput bool) *ResolvedAgentConfig {
	return &ResolvedAgentConfig{
		AgentName:        name,
		MaxIterations:    1,
		IterationTimeout: config.DefaultIterationTimeout,
		JSONOutput:       jsonOutput,
	}
}
