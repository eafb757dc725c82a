package config

import "time"

// Default values used when scout.yaml leaves a setting unset.
const (
	DefaultHTTPAddr          = ":8080"
	DefaultReportsDir        = "reports"
	DefaultSessionTTL        = 24 * time.Hour
	DefaultModel             = "gemini-2.0-flash"
	DefaultBaseURL           = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultAPIKeyEnv         = "GOOGLE_API_KEY"
	DefaultMaxTokens         = 4096
	DefaultLLMTimeout        = 120 * time.Second
	DefaultRequestsPerMinute = 15
	DefaultGatewayAddr       = "127.0.0.1:8000"
	DefaultGatewayURL        = "http://127.0.0.1:8000/mcp"
	DefaultGatewayServerID   = "research"
	DefaultToolTimeout       = 90 * time.Second
	DefaultCallTimeout       = 10 * time.Minute
	DefaultNewsFeedURL       = "https://news.google.com/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en"
)

// builtinYAMLConfig returns the configuration scout runs with when no
// scout.yaml exists. User configuration is merged on top of it.
func builtinYAMLConfig() *ScoutYAMLConfig {
	return &ScoutYAMLConfig{
		System: &SystemConfig{
			HTTPAddr:   DefaultHTTPAddr,
			ReportsDir: DefaultReportsDir,
			SessionTTL: DefaultSessionTTL,
		},
		LLM: &LLMConfig{
			Model:             DefaultModel,
			BaseURL:           DefaultBaseURL,
			APIKeyEnv:         DefaultAPIKeyEnv,
			MaxTokens:         DefaultMaxTokens,
			Timeout:           DefaultLLMTimeout,
			RequestsPerMinute: DefaultRequestsPerMinute,
		},
		Gateway: &GatewayConfig{
			ListenAddr:    DefaultGatewayAddr,
			URL:           DefaultGatewayURL,
			ServerID:      DefaultGatewayServerID,
			SearchServers: []string{"duckduckgo-search", "bright_data"},
			ToolTimeout:   DefaultToolTimeout,
			CallTimeout:   DefaultCallTimeout,
			WebTools: &WebToolsConfig{
				FetchMaxBytes: 2 << 20,
				FetchMaxChars: 12000,
				NewsFeedURL:   DefaultNewsFeedURL,
				NewsMaxItems:  10,
			},
		},
		MCPServers: builtinMCPServers(),
		Agents:     builtinAgents(),
		Research: &ResearchConfig{
			MergePolicy: MergePolicyRequireBoth,
		},
		Feedback: &FeedbackConfig{
			ClassificationAttempts: 2,
		},
	}
}

func builtinMCPServers() map[string]MCPServerConfig {
	return map[string]MCPServerConfig{
		"duckduckgo-search": {
			Description: "DuckDuckGo web search",
			Transport: TransportConfig{
				Type:    TransportTypeStdio,
				Command: "npx",
				Args:    []string{"-y", "duckduckgo-mcp-server"},
			},
		},
		"bright_data": {
			Description: "Bright Data search and scraping",
			Transport: TransportConfig{
				Type:    TransportTypeStdio,
				Command: "npx",
				Args:    []string{"@brightdata/mcp"},
				Env: map[string]string{
					"API_TOKEN":         "{{.BRIGHT_DATA_API_TOKEN}}",
					"WEB_UNLOCKER_ZONE": "unblocker",
					"BROWSER_ZONE":      "scraping_browser",
				},
			},
		},
	}
}

func builtinAgents() map[string]AgentConfig {
	return map[string]AgentConfig{
		AgentReport: {
			Description:      "Detailed report writer using the gateway search tool",
			MaxIterations:    IntPtr(DefaultMaxIterations),
			IterationTimeout: DefaultIterationTimeout,
		},
		AgentNews: {
			Description:      "News digest writer using the gateway news tool",
			MaxIterations:    IntPtr(DefaultMaxIterations),
			IterationTimeout: DefaultIterationTimeout,
		},
		AgentSummary: {
			Description:      "Summarizes the merged research artifact",
			MaxIterations:    IntPtr(DefaultMaxIterations),
			IterationTimeout: DefaultIterationTimeout,
		},
		AgentSearch: {
			Description:      "Gateway inner agent behind search_topic",
			MaxIterations:    IntPtr(DefaultMaxIterations),
			IterationTimeout: DefaultIterationTimeout,
		},
		AgentNewsSearch: {
			Description:      "Gateway inner agent behind get_news_topic",
			MaxIterations:    IntPtr(DefaultMaxIterations),
			IterationTimeout: DefaultIterationTimeout,
		},
	}
}
