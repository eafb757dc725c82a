package llm

import (
	"strings"
	"sync"

	"github.com/openai/openai-go/option"

	"github.com/codeready-toolchain/scout/pkg/agent"
	"github.com/codeready-toolchain/scout/pkg/config"
	"github.com/codeready-toolchain/scout/pkg/credential"
)

// Factory hands out clients per API key. Sessions bringing their own key
// get their own client (and rate limiter); all others share the server key's.
type Factory struct {
	cfg  *config.LLMConfig
	opts []option.RequestOption

	mu      sync.Mutex
	clients map[string]*Client
}

// NewFactory creates a factory for the configured endpoint. Extra request
// options are applied to every client.
func NewFactory(cfg *config.LLMConfig, opts ...option.RequestOption) *Factory {
	return &Factory{
		cfg:     cfg,
		opts:    opts,
		clients: make(map[string]*Client),
	}
}

// Model returns the configured model name.
func (f *Factory) Model() string { return f.cfg.Model }

// HasServerKey reports whether a server-side key is configured.
func (f *Factory) HasServerKey() bool { return f.cfg.APIKey() != "" }

// ForKey returns the client for sessionKey, falling back to the server key.
// With neither it returns a credential error wrapping credential.ErrMissing.
func (f *Factory) ForKey(sessionKey string) (*Client, error) {
	key, err := credential.Resolve(sessionKey, f.cfg.APIKey())
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.clients[key]; ok {
		return c, nil
	}
	c := NewClient(f.cfg, key, f.opts...)
	f.clients[key] = c
	return c, nil
}

// LLMClient is ForKey behind the agent.LLMClient interface.
func (f *Factory) LLMClient(sessionKey string) (agent.LLMClient, error) {
	c, err := f.ForKey(sessionKey)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Forget drops the cached client of a session key that was removed or replaced.
func (f *Factory) Forget(sessionKey string) {
	sessionKey = strings.TrimSpace(sessionKey)
	if sessionKey == "" || sessionKey == f.cfg.APIKey() {
		return
	}
	f.mu.Lock()
	delete(f.clients, sessionKey)
	f.mu.Unlock()
}
