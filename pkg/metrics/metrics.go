// Package metrics holds the Prometheus collectors shared by the API server
// and the tool gateway. Collectors live on a dedicated registry exposed by
// Handler, not on the global default registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scout"

// Registry is the registry every scout collector is registered on.
var Registry = prometheus.NewRegistry()

var (
	agentRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "agent_runs_total",
		Help:      "Agent runs by agent and terminal status.",
	}, []string{"agent", "status"})

	agentIterations = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "agent_iterations",
		Help:      "LLM calls per agent run.",
		Buckets:   []float64{1, 2, 3, 5, 8, 12, 15, 20},
	}, []string{"agent"})

	toolCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tool_calls_total",
		Help:      "Tool calls by tool name and outcome.",
	}, []string{"tool", "outcome"})

	llmRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "llm_requests_total",
		Help:      "LLM completion requests by outcome.",
	}, []string{"model", "outcome"})

	llmLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "llm_request_duration_seconds",
		Help:      "LLM completion latency.",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
	}, []string{"model"})

	reports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_total",
		Help:      "generate_report outcomes (ok, degraded, failed).",
	}, []string{"outcome"})

	feedback = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feedback_total",
		Help:      "Feedback records by sentiment; fallback responses use sentiment \"unknown\".",
	}, []string{"sentiment"})

	activeSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Research sessions held in memory.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		agentRuns, agentIterations, toolCalls,
		llmRequests, llmLatency,
		reports, feedback, activeSessions,
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// ObserveAgentRun records a finished agent run.
func ObserveAgentRun(agent, status string, iterations int) {
	agentRuns.WithLabelValues(agent, status).Inc()
	agentIterations.WithLabelValues(agent).Observe(float64(iterations))
}

// ObserveToolCall records one tool invocation.
func ObserveToolCall(tool string, isError bool) {
	toolCalls.WithLabelValues(tool, outcome(isError)).Inc()
}

// ObserveLLMRequest records one completion request.
func ObserveLLMRequest(model string, err error, elapsed time.Duration) {
	llmRequests.WithLabelValues(model, outcome(err != nil)).Inc()
	llmLatency.WithLabelValues(model).Observe(elapsed.Seconds())
}

// ObserveReport records a generate_report outcome.
func ObserveReport(result string) {
	reports.WithLabelValues(result).Inc()
}

// ObserveFeedback records a classified feedback record.
func ObserveFeedback(sentiment string) {
	feedback.WithLabelValues(sentiment).Inc()
}

// SetActiveSessions updates the session gauge.
func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}

func outcome(isError bool) string {
	if isError {
		return "error"
	}
	return "ok"
}
