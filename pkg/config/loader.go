package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the optional user configuration file inside the config dir.
const ConfigFileName = "scout.yaml"

// ScoutYAMLConfig represents the complete scout.yaml file structure
type ScoutYAMLConfig struct {
	System     *SystemConfig              `yaml:"system"`
	LLM        *LLMConfig                 `yaml:"llm"`
	Gateway    *GatewayConfig             `yaml:"gateway"`
	MCPServers map[string]MCPServerConfig `yaml:"mcp_servers"`
	Agents     map[string]AgentConfig     `yaml:"agents"`
	Research   *ResearchConfig            `yaml:"research"`
	Feedback   *FeedbackConfig            `yaml:"feedback"`
}

// Initialize loads, validates, and returns ready-to-use configuration.
//
// Steps performed:
//  1. Read scout.yaml from configDir (optional; built-in values otherwise)
//  2. Expand {{.VAR}} environment references
//  3. Parse YAML
//  4. Merge user values over built-in values
//  5. Build registries
//  6. Validate
func Initialize(ctx context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("Initializing configuration")

	cfg, err := load(ctx, configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	stats := cfg.Stats()
	log.Info("Configuration initialized successfully",
		"agents", stats.Agents,
		"mcp_servers", stats.MCPServers,
		"model", cfg.LLM.Model,
		"merge_policy", cfg.Research.MergePolicy)

	return cfg, nil
}

// Parse builds a validated Config from scout.yaml content.
func Parse(data []byte) (*Config, error) {
	user, err := parseYAML(data)
	if err != nil {
		return nil, err
	}
	cfg, err := build("", builtinYAMLConfig(), user)
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	return cfg, nil
}

func load(_ context.Context, configDir string) (*Config, error) {
	path := filepath.Join(configDir, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Info("No user configuration found, using built-in defaults", "path", path)
			return build(configDir, builtinYAMLConfig(), nil)
		}
		return nil, &FileError{Name: ConfigFileName, Err: err}
	}

	user, err := parseYAML(data)
	if err != nil {
		return nil, &FileError{Name: ConfigFileName, Err: err}
	}
	return build(configDir, builtinYAMLConfig(), user)
}

func parseYAML(data []byte) (*ScoutYAMLConfig, error) {
	var user ScoutYAMLConfig
	if err := yaml.Unmarshal(ExpandEnv(data), &user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return &user, nil
}

// build merges user over builtin and assembles the registries. user may be nil.
func build(configDir string, builtin, user *ScoutYAMLConfig) (*Config, error) {
	if user == nil {
		user = &ScoutYAMLConfig{}
	}

	if err := mergeSection(builtin.System, user.System, "system"); err != nil {
		return nil, err
	}
	if err := mergeSection(builtin.LLM, user.LLM, "llm"); err != nil {
		return nil, err
	}
	if err := mergeSection(builtin.Gateway, user.Gateway, "gateway"); err != nil {
		return nil, err
	}
	if err := mergeSection(builtin.Research, user.Research, "research"); err != nil {
		return nil, err
	}
	if err := mergeSection(builtin.Feedback, user.Feedback, "feedback"); err != nil {
		return nil, err
	}

	agents, err := mergeAgents(builtin.Agents, user.Agents)
	if err != nil {
		return nil, err
	}
	servers := mergeMCPServers(builtin.MCPServers, user.MCPServers)

	return &Config{
		configDir:         configDir,
		System:            builtin.System,
		LLM:               builtin.LLM,
		Gateway:           builtin.Gateway,
		Research:          builtin.Research,
		Feedback:          builtin.Feedback,
		AgentRegistry:     NewAgentRegistry(agents),
		MCPServerRegistry: NewMCPServerRegistry(servers),
	}, nil
}

// mergeSection overlays the non-zero fields of src onto dst.
func mergeSection[T any](dst, src *T, name string) error {
	if src == nil {
		return nil
	}
	if err := mergo.Merge(dst, src, mergo.WithOverride); err != nil {
		return fmt.Errorf("failed to merge %s config: %w", name, err)
	}
	return nil
}

// mergeAgents overlays user agent settings field by field, so a user entry
// can change one agent's budget without restating its description.
func mergeAgents(builtin, user map[string]AgentConfig) (map[string]*AgentConfig, error) {
	result := make(map[string]*AgentConfig, len(builtin)+len(user))
	for name, a := range builtin {
		a := a
		result[name] = &a
	}
	for name, u := range user {
		u := u
		existing, ok := result[name]
		if !ok {
			result[name] = &u
			continue
		}
		if err := mergo.Merge(existing, &u, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge agent %q: %w", name, err)
		}
	}
	return result, nil
}

// mergeMCPServers replaces built-in servers wholesale with same-named user
// entries, and expands environment references in built-in env values.
func mergeMCPServers(builtin, user map[string]MCPServerConfig) map[string]*MCPServerConfig {
	result := make(map[string]*MCPServerConfig, len(builtin)+len(user))
	for id, s := range builtin {
		s := s
		if len(s.Transport.Env) > 0 {
			env := make(map[string]string, len(s.Transport.Env))
			for k, v := range s.Transport.Env {
				env[k] = ExpandEnvString(v)
			}
			s.Transport.Env = env
		}
		result[id] = &s
	}
	for id, s := range user {
		s := s
		result[id] = &s
	}
	return result
}

func validate(cfg *Config) error {
	return NewValidator(cfg).ValidateAll()
}
