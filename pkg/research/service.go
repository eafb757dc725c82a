// Package research is the orchestrator of the pipeline. It fans a topic out
// to the report and news agents, merges their outputs into one artifact
// with a synthesis call, and serves the dependent stages (summary, Q&A)
// from that artifact.
package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/codeready-toolchain/scout/pkg/agent"
	"github.com/codeready-toolchain/scout/pkg/agent/controller"
	"github.com/codeready-toolchain/scout/pkg/agent/prompt"
	"github.com/codeready-toolchain/scout/pkg/config"
	"github.com/codeready-toolchain/scout/pkg/metrics"
	"github.com/codeready-toolchain/scout/pkg/reports"
	"github.com/codeready-toolchain/scout/pkg/session"
)

// Stage names used in errors, logs and metrics.
const (
	StageReport  = "report"
	StageNews    = "news"
	StageSummary = "summary"
	StageQA      = "qa"
	StageMerge   = "merge"
)

// LLMProvider resolves the LLM client of a session: its own API key when
// set, otherwise the server key. Implemented by llm.Factory.
type LLMProvider interface {
	LLMClient(sessionKey string) (agent.LLMClient, error)
}

// Deps are the dependencies of the orchestrator.
type Deps struct {
	Config *config.Config
	LLM    LLMProvider

	// Tools gives the orchestrator agents the gateway tools
	// (research.search_topic, research.get_news_topic,
	// research.summarize_topic).
	Tools agent.ToolExecutor

	// FailedServers reports tool servers that failed to connect; optional.
	FailedServers func() map[string]string

	// Reports persists artifacts; nil disables the audit files.
	Reports *reports.Writer

	// Prompts defaults to a builder over Config.MCPServerRegistry.
	Prompts *prompt.Builder
}

// Service runs the research pipeline on sessions. Stateless apart from its
// dependencies; all per-session state lives in the session.
type Service struct {
	deps      Deps
	iterating agent.Controller
	single    agent.Controller
}

// NewService creates the orchestrator.
func NewService(deps Deps) *Service {
	if deps.Config == nil {
		deps.Config = config.Default()
	}
	if deps.Prompts == nil {
		deps.Prompts = prompt.NewBuilder(deps.Config.MCPServerRegistry)
	}
	return &Service{
		deps:      deps,
		iterating: controller.NewIteratingController(),
		single:    controller.NewSingleCallController(),
	}
}

// GenerateReport runs the report and news agents, merges their outputs and
// stores the artifact on the session, superseding the previous one.
//
// Under the require_both merge policy either agent failing fails the run
// and the previous artifact stays. Under lenient, one failure still merges
// with the missing input marked unavailable and the artifact Degraded.
// Persisting the audit file is best effort: a write failure is logged and
// the artifact is kept without a Path.
func (s *Service) GenerateReport(ctx context.Context, sess *session.Session) (*session.Artifact, error) {
	topic := strings.TrimSpace(sess.Topic())
	if topic == "" {
		return nil, &PreconditionError{Stage: StageReport, Reason: ErrNoTopic}
	}
	llmClient, err := s.deps.LLM.LLMClient(sess.APIKey())
	if err != nil {
		return nil, err
	}

	end := sess.BeginRun()
	defer end()

	log := slog.With("session_id", sess.ID, "topic", topic)
	log.Info("Report requested")
	started := time.Now()
	sess.Transition(session.StateReportRequested)

	sess.Transition(session.StateResearching)
	report, news, err := s.research(ctx, sess, llmClient, topic)
	if err != nil {
		return nil, s.reportFailed(sess, log, err)
	}

	sess.Transition(session.StateMerging)
	merged, err := s.singleCall(ctx, sess.ID, llmClient, StageMerge,
		prompt.MergeInstructions(), prompt.MergeTask(report.text, news.text), nil)
	if err != nil {
		return nil, s.reportFailed(sess, log, err)
	}

	artifact := &session.Artifact{
		Topic:     topic,
		Content:   merged,
		CreatedAt: time.Now(),
	}
	for _, in := range []input{report, news} {
		if in.err != nil {
			artifact.Degraded = true
			artifact.Unavailable = append(artifact.Unavailable, in.stage)
		}
	}

	if s.deps.Reports != nil {
		path, err := s.deps.Reports.Write(topic, merged)
		if err != nil {
			log.Warn("Failed to persist report, keeping it in memory", "error", err)
		} else {
			artifact.Path = path
		}
	}

	newsText := news.text
	if news.err != nil {
		newsText = ""
	}
	sess.SetArtifact(artifact, newsText)

	outcome := "ok"
	if artifact.Degraded {
		outcome = "degraded"
	}
	metrics.ObserveReport(outcome)
	log.Info("Report ready", "degraded", artifact.Degraded, "path", artifact.Path,
		"duration", time.Since(started).Round(time.Millisecond))
	return artifact, nil
}

// input is the outcome of one research agent feeding the merge.
type input struct {
	stage string
	text  string
	err   error
}

// research runs the report and news agents, concurrently when configured,
// and applies the merge policy to their outcomes. A failed input under the
// lenient policy comes back with err set and a stand-in text.
func (s *Service) research(ctx context.Context, sess *session.Session, llmClient agent.LLMClient, topic string) (input, input, error) {
	report := input{stage: StageReport}
	news := input{stage: StageNews}
	lenient := s.deps.Config.Research.MergePolicy == config.MergePolicyLenient

	run := func(ctx context.Context, in *input, agentName, task string) error {
		in.text, in.err = s.runAgent(ctx, sess.ID, llmClient, agentName, task)
		if lenient {
			return nil
		}
		return in.err
	}

	if s.deps.Config.Research.IsConcurrent() {
		// Under require_both the first failure cancels the other agent.
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return run(gctx, &report, config.AgentReport, prompt.ReportTask(topic)) })
		g.Go(func() error { return run(gctx, &news, config.AgentNews, prompt.NewsTask(topic)) })
		_ = g.Wait()
	} else {
		if err := run(ctx, &report, config.AgentReport, prompt.ReportTask(topic)); err == nil {
			_ = run(ctx, &news, config.AgentNews, prompt.NewsTask(topic))
		}
	}

	var failed error
	switch {
	case report.err != nil && news.err != nil:
		// Under require_both one of them may only have been cancelled.
		failed = report.err
		if errors.Is(report.err, context.Canceled) && !errors.Is(news.err, context.Canceled) {
			failed = news.err
		}
	case report.err != nil && !lenient:
		failed = report.err
	case news.err != nil && !lenient:
		failed = news.err
	}
	if failed != nil {
		return report, news, failed
	}

	for _, in := range []*input{&report, &news} {
		if in.err != nil {
			slog.Warn("Research agent failed, merging without it",
				"session_id", sess.ID, "stage", in.stage, "error", in.err)
			in.text = prompt.UnavailableInput(fmt.Sprintf("the %s agent failed", in.stage))
		}
	}
	return report, news, nil
}

func (s *Service) reportFailed(sess *session.Session, log *slog.Logger, err error) error {
	sess.Fail(err)
	metrics.ObserveReport("failed")
	log.Warn("Report failed", "error", err)
	return err
}

// FetchNews runs the news agent on its own and stores the digest on the
// session. Independent of report generation.
func (s *Service) FetchNews(ctx context.Context, sess *session.Session) (*News, error) {
	topic := strings.TrimSpace(sess.Topic())
	if topic == "" {
		return nil, &PreconditionError{Stage: StageNews, Reason: ErrNoTopic}
	}
	llmClient, err := s.deps.LLM.LLMClient(sess.APIKey())
	if err != nil {
		return nil, err
	}

	text, err := s.runAgent(ctx, sess.ID, llmClient, config.AgentNews, prompt.NewsTask(topic))
	if err != nil {
		return nil, err
	}
	sess.SetNews(text)
	return ParseNews(text), nil
}

// GenerateSummary summarizes the current artifact. Without one it fails
// with a PreconditionError and changes nothing.
func (s *Service) GenerateSummary(ctx context.Context, sess *session.Session) (string, error) {
	artifact := sess.Artifact()
	if artifact == nil || strings.TrimSpace(artifact.Content) == "" {
		return "", &PreconditionError{Stage: StageSummary, Reason: ErrNoArtifact}
	}
	llmClient, err := s.deps.LLM.LLMClient(sess.APIKey())
	if err != nil {
		return "", err
	}

	summary, err := s.runAgent(ctx, sess.ID, llmClient, config.AgentSummary, prompt.SummaryTask(artifact.Content))
	if err != nil {
		return "", err
	}
	if !sess.SetSummary(artifact, summary) {
		slog.Info("Artifact superseded while summarizing, summary not stored", "session_id", sess.ID)
	}
	return summary, nil
}

// Ask answers a question from the current artifact and the conversation so
// far, then appends the question and the answer to the conversation. A
// missing artifact is a PreconditionError and leaves the conversation
// untouched.
func (s *Service) Ask(ctx context.Context, sess *session.Session, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	artifact := sess.Artifact()
	if artifact == nil || strings.TrimSpace(artifact.Content) == "" {
		return "", &PreconditionError{Stage: StageQA, Reason: ErrNoArtifact}
	}
	llmClient, err := s.deps.LLM.LLMClient(sess.APIKey())
	if err != nil {
		return "", err
	}

	return sess.Conversation().Exchange(question, func(history []session.Turn) (string, error) {
		return s.singleCall(ctx, sess.ID, llmClient, StageQA,
			prompt.QAInstructions(artifact.Content), question, historyMessages(history))
	})
}

// ClearChat empties the session's conversation. Idempotent.
func (s *Service) ClearChat(sess *session.Session) {
	sess.Conversation().Clear()
}

// runAgent runs one tool-using orchestrator agent against the gateway
// tools. A partial answer at the step budget is accepted.
func (s *Service) runAgent(ctx context.Context, sessionID string, llmClient agent.LLMClient, agentName, task string) (string, error) {
	resolved, err := agent.ResolveAgentConfig(s.deps.Config, agentName, s.deps.Config.Gateway.CallTimeout)
	if err != nil {
		return "", &agent.Error{Agent: agentName, Err: err}
	}
	var custom string
	if def, err := s.deps.Config.GetAgent(agentName); err == nil {
		custom = def.CustomInstructions
	}

	execCtx := &agent.ExecutionContext{
		SessionID:     sessionID,
		ExecutionID:   uuid.NewString(),
		AgentName:     agentName,
		Instructions:  s.deps.Prompts.Instructions(agentName, custom),
		Task:          task,
		Config:        resolved,
		LLMClient:     llmClient,
		ToolExecutor:  s.deps.Tools,
		PromptBuilder: s.deps.Prompts,
	}
	if s.deps.FailedServers != nil {
		execCtx.FailedServers = s.deps.FailedServers()
	}

	res, err := s.iterating.Run(ctx, execCtx)
	if err != nil {
		return "", &agent.Error{Agent: agentName, Err: err}
	}
	if err := res.Err(); err != nil {
		return "", err
	}
	if res.Status == agent.ExecutionStatusPartial {
		slog.Warn("Agent hit its step budget, using partial answer",
			"session_id", sessionID, "agent", agentName, "iterations", res.Iterations)
	}
	return res.FinalAnswer, nil
}

// singleCall makes one tool-less completion.
func (s *Service) singleCall(
	ctx context.Context,
	sessionID string,
	llmClient agent.LLMClient,
	name, instructions, task string,
	history []agent.ConversationMessage,
) (string, error) {
	execCtx := &agent.ExecutionContext{
		SessionID:    sessionID,
		ExecutionID:  uuid.NewString(),
		AgentName:    name,
		Instructions: instructions,
		Task:         task,
		History:      history,
		Config:       agent.SingleCallConfig(name, false),
		LLMClient:    llmClient,
	}
	res, err := s.single.Run(ctx, execCtx)
	if err != nil {
		return "", &agent.Error{Agent: name, Err: err}
	}
	if err := res.Err(); err != nil {
		return "", err
	}
	return res.FinalAnswer, nil
}

// historyMessages replays conversation turns oldest first.
func historyMessages(turns []session.Turn) []agent.ConversationMessage {
	msgs := make([]agent.ConversationMessage, 0, len(turns))
	for _, t := range turns {
		role := agent.RoleUser
		if t.Speaker == session.SpeakerAssistant {
			role = agent.RoleAssistant
		}
		msgs = append(msgs, agent.ConversationMessage{Role: role, Content: t.Text})
	}
	return msgs
}
