package config

import (
	"os"
	"time"
)

// LLMConfig describes the OpenAI-compatible chat completion endpoint shared by
// every component (gateway tools, orchestrator agents, Q&A, feedback).
type LLMConfig struct {
	// Model name, e.g. gemini-2.0-flash
	Model string `yaml:"model,omitempty"`

	// OpenAI-compatible base URL (Gemini: .../v1beta/openai/)
	BaseURL string `yaml:"base_url,omitempty"`

	// Environment variable holding the server-side API key. Sessions may
	// bring their own key instead.
	APIKeyEnv string `yaml:"api_key_env,omitempty"`

	// Sampling temperature
	Temperature *float64 `yaml:"temperature,omitempty"`

	// Completion token cap per call
	MaxTokens int `yaml:"max_tokens,omitempty"`

	// Wall-clock bound for a single completion request
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Client-side rate limit shared by all calls of one client; negative disables
	RequestsPerMinute int `yaml:"requests_per_minute,omitempty"`

	// Transport-level retries for 429/5xx performed by the HTTP client
	MaxRetries *int `yaml:"max_retries,omitempty"`
}

// APIKey returns the server-side API key from the configured environment
// variable, or "" when unset.
func (c *LLMConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// ResolvedTemperature returns the configured temperature.
func (c *LLMConfig) ResolvedTemperature() float64 {
	if c.Temperature == nil {
		return 0.7
	}
	return *c.Temperature
}

// ResolvedMaxRetries returns the configured retry count.
func (c *LLMConfig) ResolvedMaxRetries() int {
	if c.MaxRetries == nil {
		return 2
	}
	return *c.MaxRetries
}
