package mcp

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/scout/pkg/config"
	"github.com/codeready-toolchain/scout/pkg/version"
)

func TestCreateTransport_Stdio(t *testing.T) {
	tr, err := createTransport(config.TransportConfig{
		Type:    config.TransportTypeStdio,
		Command: "npx",
		Args:    []string{"-y", "duckduckgo-mcp-server"},
		Env:     map[string]string{"API_TOKEN": "secret"},
	})
	require.NoError(t, err)

	cmd := tr.(*mcpsdk.CommandTransport).Command
	assert.Equal(t, []string{"npx", "-y", "duckduckgo-mcp-server"}, cmd.Args)
	assert.True(t, slices.Contains(cmd.Env, "API_TOKEN=secret"))
}

func TestCreateTransport_HTTPAndSSE(t *testing.T) {
	tr, err := createTransport(config.TransportConfig{Type: config.TransportTypeHTTP, URL: "http://127.0.0.1:8000/mcp", Timeout: 30})
	require.NoError(t, err)
	streamable := tr.(*mcpsdk.StreamableClientTransport)
	assert.Equal(t, "http://127.0.0.1:8000/mcp", streamable.Endpoint)
	assert.Equal(t, 30*time.Second, streamable.HTTPClient.Timeout)

	tr, err = createTransport(config.TransportConfig{Type: config.TransportTypeSSE, URL: "https://mcp.example.com/sse", VerifySSL: config.BoolPtr(false)})
	require.NoError(t, err)
	sse := tr.(*mcpsdk.SSEClientTransport)
	base := sse.HTTPClient.Transport.(*headerTransport).base.(*http.Transport)
	assert.True(t, base.TLSClientConfig.InsecureSkipVerify)
}

func TestCreateTransport_Invalid(t *testing.T) {
	tests := []struct {
		cfg  config.TransportConfig
		want string
	}{
		{config.TransportConfig{Type: config.TransportTypeStdio}, "requires command"},
		{config.TransportConfig{Type: config.TransportTypeHTTP}, "requires url"},
		{config.TransportConfig{Type: config.TransportTypeSSE}, "requires url"},
		{config.TransportConfig{Type: "grpc"}, "unsupported transport type"},
	}
	for _, tt := range tests {
		_, err := createTransport(tt.cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), tt.want)
	}
}

func TestHeaderTransport(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer srv.Close()

	client := buildHTTPClient(config.TransportConfig{BearerToken: "tok"})
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, "Bearer tok", got.Get("Authorization"))
	assert.Equal(t, version.Full(), got.Get("User-Agent"))
}
