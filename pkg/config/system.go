package config

import "time"

// SystemConfig groups process-level settings of the API server.
type SystemConfig struct {
	// Listen address of the HTTP API
	HTTPAddr string `yaml:"http_addr,omitempty"`

	// Directory receiving report_<topic>_<timestamp>.md audit files
	ReportsDir string `yaml:"reports_dir,omitempty"`

	// Idle sessions older than this are evicted
	SessionTTL time.Duration `yaml:"session_ttl,omitempty"`
}

// GatewayConfig configures the MCP Tool Gateway, both the serving side
// (scout gateway) and the client side used by the orchestrator.
type GatewayConfig struct {
	// Address the gateway binary listens on
	ListenAddr string `yaml:"listen_addr,omitempty"`

	// Streamable HTTP endpoint the orchestrator connects to
	URL string `yaml:"url,omitempty"`

	// Server ID under which gateway tools are exposed to orchestrator
	// agents ("research" -> research.search_topic)
	ServerID string `yaml:"server_id,omitempty"`

	// External MCP servers available to the inner search agents
	SearchServers []string `yaml:"search_servers,omitempty"`

	// Wall-clock bound of one external search tool call inside the gateway
	ToolTimeout time.Duration `yaml:"tool_timeout,omitempty"`

	// Wall-clock bound of one gateway tool call made by an orchestrator
	// agent. Covers a whole inner agent run.
	CallTimeout time.Duration `yaml:"call_timeout,omitempty"`

	// Local web tools for the inner agents
	WebTools *WebToolsConfig `yaml:"web_tools,omitempty"`
}

// ServerConfig describes the gateway as an MCP server reachable over
// streamable HTTP, for the orchestrator's MCP client.
func (g *GatewayConfig) ServerConfig() *MCPServerConfig {
	return &MCPServerConfig{
		Transport:   TransportConfig{Type: TransportTypeHTTP, URL: g.URL},
		Description: "scout research tool gateway",
	}
}

// WebToolsConfig configures the in-process tools offered next to the
// external MCP servers.
type WebToolsConfig struct {
	// Enables web.fetch_page (readability extraction)
	FetchPage *bool `yaml:"fetch_page,omitempty"`

	// Cap on downloaded page bytes
	FetchMaxBytes int64 `yaml:"fetch_max_bytes,omitempty"`

	// Cap on extracted text returned to the model
	FetchMaxChars int `yaml:"fetch_max_chars,omitempty"`

	// RSS search URL for news.headlines; %s receives the escaped query.
	// Empty disables the tool.
	NewsFeedURL string `yaml:"news_feed_url,omitempty"`

	// Max feed items returned
	NewsMaxItems int `yaml:"news_max_items,omitempty"`

	// Lets the tools connect to loopback, private and link-local addresses.
	// Off by default: URLs come from model output.
	AllowPrivate bool `yaml:"allow_private,omitempty"`
}

// FetchPageEnabled reports whether web.fetch_page is offered.
func (w *WebToolsConfig) FetchPageEnabled() bool {
	return w != nil && (w.FetchPage == nil || *w.FetchPage)
}

// ResearchConfig configures the orchestrator.
type ResearchConfig struct {
	// What generate_report does when one agent fails
	MergePolicy MergePolicy `yaml:"merge_policy,omitempty"`

	// Run the report and news agents concurrently
	Concurrent *bool `yaml:"concurrent,omitempty"`
}

// IsConcurrent reports whether the report and news agents run in parallel.
func (r *ResearchConfig) IsConcurrent() bool {
	return r.Concurrent == nil || *r.Concurrent
}

// FeedbackConfig configures the feedback classifier.
type FeedbackConfig struct {
	// Classification attempts before falling back to the static response
	ClassificationAttempts int `yaml:"classification_attempts,omitempty"`
}

// BoolPtr returns a pointer to b. Convenience for *bool struct fields.
func BoolPtr(b bool) *bool { return &b }

// IntPtr returns a pointer to i.
func IntPtr(i int) *int { return &i }
