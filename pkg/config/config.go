package config

// Config is the umbrella configuration object returned by Initialize and
// passed by reference to every component that needs settings. There is no
// process-wide instance.
type Config struct {
	configDir string

	System   *SystemConfig
	LLM      *LLMConfig
	Gateway  *GatewayConfig
	Research *ResearchConfig
	Feedback *FeedbackConfig

	AgentRegistry     *AgentRegistry
	MCPServerRegistry *MCPServerRegistry
}

// Stats contains statistics about loaded configuration
type Stats struct {
	Agents     int
	MCPServers int
}

// Stats returns configuration statistics for logging
func (c *Config) Stats() Stats {
	s := Stats{}
	if c.AgentRegistry != nil {
		s.Agents = c.AgentRegistry.Len()
	}
	if c.MCPServerRegistry != nil {
		s.MCPServers = c.MCPServerRegistry.Len()
	}
	return s
}

// ConfigDir returns the configuration directory path
func (c *Config) ConfigDir() string {
	return c.configDir
}

// GetAgent retrieves an agent configuration by name.
func (c *Config) GetAgent(name string) (*AgentConfig, error) {
	return c.AgentRegistry.Get(name)
}

// GetMCPServer retrieves an MCP server configuration by ID.
func (c *Config) GetMCPServer(serverID string) (*MCPServerConfig, error) {
	return c.MCPServerRegistry.Get(serverID)
}

// Default returns the built-in configuration without reading any file.
func Default() *Config {
	cfg, err := build("", builtinYAMLConfig(), nil)
	if err != nil {
		// Built-in values merge without user input and cannot fail.
		panic(err)
	}
	return cfg
}
