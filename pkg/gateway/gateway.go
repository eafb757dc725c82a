// Package gateway implements the MCP Tool Gateway: three schema-typed
// tools (search_topic, summarize_topic, get_news_topic) served over
// streamable HTTP. search_topic and get_news_topic run a fresh inner agent
// per call against the external search servers and the local web tools;
// summarize_topic is a single LLM completion.
//
// The gateway keeps no per-caller state. The LLM client and the MCP client
// behind the tool executor are shared by every call and are safe for
// concurrent use; each inner agent run owns its transcript.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/codeready-toolchain/scout/pkg/agent"
	"github.com/codeready-toolchain/scout/pkg/agent/controller"
	"github.com/codeready-toolchain/scout/pkg/agent/prompt"
	"github.com/codeready-toolchain/scout/pkg/config"
	"github.com/codeready-toolchain/scout/pkg/mcp"
	"github.com/codeready-toolchain/scout/pkg/version"
)

// ServerName is the MCP implementation name announced to clients.
const ServerName = "scout-research"

// Tool names as seen by gateway clients.
const (
	ToolSearchTopic    = "search_topic"
	ToolSummarizeTopic = "summarize_topic"
	ToolGetNewsTopic   = "get_news_topic"
)

// ErrPartialResult marks an inner search that hit its step budget and only
// had an intermediate answer.
var ErrPartialResult = errors.New("search ended at its step budget without a final answer")

// ToolExecutionError is a gateway tool failure. It never crosses the
// protocol as a dropped connection: the SDK turns it into an IsError tool
// result whose text is Error(), which the calling agent sees as an
// observation.
type ToolExecutionError struct {
	Tool string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error {
	return e.Err
}

// Deps are the shared dependencies of the gateway.
type Deps struct {
	Config *config.Config

	// LLM serves every inner agent run and summarize call.
	LLM agent.LLMClient

	// Tools is the tool set of the inner search agents, typically the
	// search MCP servers composed with the local web tools.
	Tools agent.ToolExecutor

	// FailedServers reports search servers that failed to start; optional.
	FailedServers func() map[string]string

	// Health reports search server health on /health; optional.
	Health *mcp.HealthMonitor

	// Prompts defaults to a builder over Config.MCPServerRegistry.
	Prompts *prompt.Builder
}

// Server is the Tool Gateway.
type Server struct {
	deps      Deps
	server    *mcpsdk.Server
	iterating agent.Controller
	single    agent.Controller
}

type topicArgs struct {
	Topic string `json:"topic" jsonschema:"the subject to research"`
}

type contextArgs struct {
	Context string `json:"context" jsonschema:"the text to condense"`
}

// New builds the gateway and registers its tools.
func New(deps Deps) *Server {
	if deps.Config == nil {
		deps.Config = config.Default()
	}
	if deps.Prompts == nil {
		deps.Prompts = prompt.NewBuilder(deps.Config.MCPServerRegistry)
	}

	s := &Server{
		deps:      deps,
		iterating: controller.NewIteratingController(),
		single:    controller.NewSingleCallController(),
	}
	s.server = mcpsdk.NewServer(&mcpsdk.Implementation{
		Name:    ServerName,
		Version: version.GitCommit,
	}, nil)

	mcpsdk.AddTool(s.server, &mcpsdk.Tool{
		Name:        ToolSearchTopic,
		Description: "Search the web for information on a topic and return the findings with their sources.",
	}, s.searchTopic)
	mcpsdk.AddTool(s.server, &mcpsdk.Tool{
		Name:        ToolSummarizeTopic,
		Description: "Summarize the given text into a short, structured overview.",
	}, s.summarizeTopic)
	mcpsdk.AddTool(s.server, &mcpsdk.Tool{
		Name:        ToolGetNewsTopic,
		Description: "Find the latest news about a topic and return the key points with their sources.",
	}, s.getNewsTopic)

	return s
}

// MCPServer returns the underlying MCP server, for in-process transports.
func (s *Server) MCPServer() *mcpsdk.Server {
	return s.server
}

func (s *Server) searchTopic(ctx context.Context, req *mcpsdk.CallToolRequest, in topicArgs) (*mcpsdk.CallToolResult, any, error) {
	text, err := s.runSearch(ctx, req, ToolSearchTopic, config.AgentSearch, in.Topic, prompt.SearchTask)
	if err != nil {
		return nil, nil, err
	}
	return textResult(text), nil, nil
}

func (s *Server) getNewsTopic(ctx context.Context, req *mcpsdk.CallToolRequest, in topicArgs) (*mcpsdk.CallToolResult, any, error) {
	text, err := s.runSearch(ctx, req, ToolGetNewsTopic, config.AgentNewsSearch, in.Topic, prompt.NewsSearchTask)
	if err != nil {
		return nil, nil, err
	}
	return textResult(text), nil, nil
}

func (s *Server) summarizeTopic(ctx context.Context, req *mcpsdk.CallToolRequest, in contextArgs) (*mcpsdk.CallToolResult, any, error) {
	text := strings.TrimSpace(in.Context)
	if text == "" {
		return nil, nil, &ToolExecutionError{Tool: ToolSummarizeTopic, Err: errors.New("context must not be empty")}
	}

	execCtx := &agent.ExecutionContext{
		SessionID:     callerID(req),
		ExecutionID:   uuid.NewString(),
		AgentName:     ToolSummarizeTopic,
		Instructions:  prompt.SummarizeInstructions(),
		Task:          text,
		Config:        agent.SingleCallConfig(ToolSummarizeTopic, false),
		LLMClient:     s.deps.LLM,
		PromptBuilder: s.deps.Prompts,
	}
	res, err := s.single.Run(ctx, execCtx)
	if err == nil {
		err = res.Err()
	}
	if err != nil {
		return nil, nil, &ToolExecutionError{Tool: ToolSummarizeTopic, Err: err}
	}
	return textResult(res.FinalAnswer), nil, nil
}

// runSearch runs one inner agent with its own transcript.
func (s *Server) runSearch(
	ctx context.Context,
	req *mcpsdk.CallToolRequest,
	tool, agentName, topic string,
	task func(string) string,
) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", &ToolExecutionError{Tool: tool, Err: errors.New("topic must not be empty")}
	}

	gw := s.deps.Config.Gateway
	resolved, err := agent.ResolveAgentConfig(s.deps.Config, agentName, gw.ToolTimeout)
	if err != nil {
		return "", &ToolExecutionError{Tool: tool, Err: err}
	}
	var custom string
	if def, err := s.deps.Config.GetAgent(agentName); err == nil {
		custom = def.CustomInstructions
	}

	execCtx := &agent.ExecutionContext{
		SessionID:     callerID(req),
		ExecutionID:   uuid.NewString(),
		AgentName:     agentName,
		Instructions:  s.deps.Prompts.Instructions(agentName, custom),
		Task:          task(topic),
		Config:        resolved,
		LLMClient:     s.deps.LLM,
		ToolExecutor:  s.deps.Tools,
		PromptBuilder: s.deps.Prompts,
	}
	if s.deps.FailedServers != nil {
		execCtx.FailedServers = s.deps.FailedServers()
	}

	started := time.Now()
	slog.Info("Gateway tool called", "tool", tool, "topic", topic, "execution_id", execCtx.ExecutionID)

	res, err := s.iterating.Run(ctx, execCtx)
	if err == nil {
		err = res.Err()
	}
	if err == nil && res.Status == agent.ExecutionStatusPartial {
		err = ErrPartialResult
	}
	if err != nil {
		slog.Warn("Gateway tool failed", "tool", tool, "execution_id", execCtx.ExecutionID,
			"duration", time.Since(started).Round(time.Millisecond), "error", err)
		return "", &ToolExecutionError{Tool: tool, Err: err}
	}
	return res.FinalAnswer, nil
}

// callerID identifies the MCP session of a call for log correlation.
func callerID(req *mcpsdk.CallToolRequest) string {
	if req == nil || req.Session == nil {
		return ""
	}
	return req.Session.ID()
}

func textResult(text string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: text}},
	}
}
