package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ConfigValidator validates configuration with clear error messages
type ConfigValidator struct {
	cfg *Config
}

// NewValidator creates a validator for the given configuration
func NewValidator(cfg *Config) *ConfigValidator {
	return &ConfigValidator{cfg: cfg}
}

// ValidateAll stops at the first invalid setting and returns it as a
// *FieldError. MCP servers come before the gateway, which references them.
func (v *ConfigValidator) ValidateAll() error {
	for _, check := range []func() error{
		v.validateLLM,
		v.validateMCPServers,
		v.validateGateway,
		v.validateAgents,
		v.validateResearch,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (v *ConfigValidator) validateLLM() error {
	llm := v.cfg.LLM
	if llm == nil {
		return fieldError("llm", ErrMissingRequiredField)
	}
	if llm.Model == "" {
		return fieldError("llm.model", ErrMissingRequiredField)
	}
	if err := validateURL(llm.BaseURL); err != nil {
		return fieldError("llm.base_url", err)
	}
	if t := llm.ResolvedTemperature(); t < 0 || t > 2 {
		return fieldError("llm.temperature",
			fmt.Errorf("%w: %.2f is outside [0, 2]", ErrInvalidValue, t))
	}
	if llm.MaxTokens < 1 {
		return fieldError("llm.max_tokens", fmt.Errorf("%w: must be at least 1", ErrInvalidValue))
	}
	if llm.Timeout <= 0 {
		return fieldError("llm.timeout", fmt.Errorf("%w: must be positive", ErrInvalidValue))
	}
	if llm.ResolvedMaxRetries() < 0 {
		return fieldError("llm.max_retries", fmt.Errorf("%w: must not be negative", ErrInvalidValue))
	}
	return nil
}

func (v *ConfigValidator) validateMCPServers() error {
	for id, server := range v.cfg.MCPServerRegistry.GetAll() {
		t := server.Transport
		if !t.Type.IsValid() {
			return fieldError("mcp_servers."+id+".transport.type",
				fmt.Errorf("%w: %q", ErrInvalidValue, t.Type))
		}
		switch t.Type {
		case TransportTypeStdio:
			if t.Command == "" {
				return fieldError("mcp_servers."+id+".transport.command",
					fmt.Errorf("%w: stdio transport requires command", ErrMissingRequiredField))
			}
		case TransportTypeHTTP, TransportTypeSSE:
			if err := validateURL(t.URL); err != nil {
				return fieldError("mcp_servers."+id+".transport.url", err)
			}
		}
	}
	return nil
}

func (v *ConfigValidator) validateGateway() error {
	gw := v.cfg.Gateway
	if gw == nil {
		return fieldError("gateway", ErrMissingRequiredField)
	}
	if err := validateURL(gw.URL); err != nil {
		return fieldError("gateway.url", err)
	}
	if gw.ListenAddr == "" {
		return fieldError("gateway.listen_addr", ErrMissingRequiredField)
	}
	if gw.ServerID == "" || strings.ContainsAny(gw.ServerID, ". ") {
		return fieldError("gateway.server_id",
			fmt.Errorf("%w: %q must be non-empty without dots or spaces", ErrInvalidValue, gw.ServerID))
	}
	if gw.ToolTimeout < 0 {
		return fieldError("gateway.tool_timeout", fmt.Errorf("%w: must not be negative", ErrInvalidValue))
	}
	if gw.CallTimeout < 0 {
		return fieldError("gateway.call_timeout", fmt.Errorf("%w: must not be negative", ErrInvalidValue))
	}
	for _, id := range gw.SearchServers {
		if !v.cfg.MCPServerRegistry.Has(id) {
			return fieldError("gateway.search_servers",
				fmt.Errorf("%w: MCP server '%s' not found", ErrInvalidReference, id))
		}
	}
	if gw.WebTools != nil && gw.WebTools.NewsFeedURL != "" && !strings.Contains(gw.WebTools.NewsFeedURL, "%s") {
		return fieldError("gateway.web_tools.news_feed_url",
			fmt.Errorf("%w: must contain %%s for the query", ErrInvalidValue))
	}
	return nil
}

func (v *ConfigValidator) validateAgents() error {
	for _, name := range []string{AgentReport, AgentNews, AgentSummary, AgentSearch, AgentNewsSearch} {
		if !v.cfg.AgentRegistry.Has(name) {
			return fieldError("agents."+name, ErrAgentNotFound)
		}
	}
	for _, name := range v.cfg.AgentRegistry.Names() {
		agent, _ := v.cfg.AgentRegistry.Get(name)
		if agent.MaxIterations != nil && *agent.MaxIterations < 1 {
			return fieldError("agents."+name+".max_iterations", fmt.Errorf("%w: must be at least 1", ErrInvalidValue))
		}
		if agent.IterationTimeout < 0 {
			return fieldError("agents."+name+".iteration_timeout", fmt.Errorf("%w: must not be negative", ErrInvalidValue))
		}
	}
	return nil
}

func (v *ConfigValidator) validateResearch() error {
	if p := v.cfg.Research.MergePolicy; !p.IsValid() {
		return fieldError("research.merge_policy",
			fmt.Errorf("%w: %q (want %s or %s)", ErrInvalidValue, p, MergePolicyRequireBoth, MergePolicyLenient))
	}
	if v.cfg.Feedback.ClassificationAttempts < 1 {
		return fieldError("feedback.classification_attempts", fmt.Errorf("%w: must be at least 1", ErrInvalidValue))
	}
	if v.cfg.System.ReportsDir == "" {
		return fieldError("system.reports_dir", ErrMissingRequiredField)
	}
	return nil
}

func validateURL(raw string) error {
	if raw == "" {
		return ErrMissingRequiredField
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %q is not an http(s) URL", ErrInvalidValue, raw)
	}
	return nil
}
