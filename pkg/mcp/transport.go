package mcp

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/codeready-toolchain/scout/pkg/config"
	"github.com/codeready-toolchain/scout/pkg/version"
)

func createTransport(cfg config.TransportConfig) (mcpsdk.Transport, error) {
	switch cfg.Type {
	case config.TransportTypeStdio:
		if cfg.Command == "" {
			return nil, errors.New("stdio transport requires command")
		}
		cmd := exec.Command(cfg.Command, cfg.Args...)
		// {{.VAR}} references in env were expanded when the config was loaded.
		cmd.Env = os.Environ()
		for k, v := range cfg.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
		return &mcpsdk.CommandTransport{Command: cmd}, nil

	case config.TransportTypeHTTP:
		if cfg.URL == "" {
			return nil, errors.New("http transport requires url")
		}
		return &mcpsdk.StreamableClientTransport{Endpoint: cfg.URL, HTTPClient: buildHTTPClient(cfg)}, nil

	case config.TransportTypeSSE:
		if cfg.URL == "" {
			return nil, errors.New("sse transport requires url")
		}
		return &mcpsdk.SSEClientTransport{Endpoint: cfg.URL, HTTPClient: buildHTTPClient(cfg)}, nil

	default:
		return nil, fmt.Errorf("unsupported transport type %q", cfg.Type)
	}
}

// buildHTTPClient applies TLS, bearer auth and timeout settings. Every
// request carries scout's user agent.
func buildHTTPClient(cfg config.TransportConfig) *http.Client {
	base := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.VerifySSL != nil && !*cfg.VerifySSL {
		base.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // user-configured
			MinVersion:         tls.VersionTLS12,
		}
	}

	client := &http.Client{
		Transport: &headerTransport{base: base, token: cfg.BearerToken, userAgent: version.Full()},
	}
	if cfg.Timeout > 0 {
		client.Timeout = time.Duration(cfg.Timeout) * time.Second
	}
	return client
}

type headerTransport struct {
	base      http.RoundTripper
	token     string
	userAgent string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}
