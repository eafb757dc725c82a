package api

import (
	"github.com/codeready-toolchain/scout/pkg/mcp"
	"github.com/codeready-toolchain/scout/pkg/research"
	"github.com/codeready-toolchain/scout/pkg/session"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// APIKeyResponse echoes a session key in masked form.
type APIKeyResponse struct {
	SessionID string `json:"session_id"`
	APIKey    string `json:"api_key"`
	Message   string `json:"message"`
}

// ReportResponse is returned by the report endpoints.
type ReportResponse struct {
	SessionID string            `json:"session_id"`
	Artifact  *session.Artifact `json:"artifact"`
}

// NewsResponse is returned by POST /api/v1/sessions/:id/news.
type NewsResponse struct {
	SessionID string `json:"session_id"`
	*research.News
}

// SummaryResponse is returned by POST /api/v1/sessions/:id/summary.
type SummaryResponse struct {
	SessionID string `json:"session_id"`
	Summary   string `json:"summary"`
}

// AnswerResponse is returned by POST /api/v1/sessions/:id/questions.
type AnswerResponse struct {
	SessionID    string         `json:"session_id"`
	Answer       string         `json:"answer"`
	Conversation []session.Turn `json:"conversation"`
}

// ConversationResponse is returned by the conversation endpoints.
type ConversationResponse struct {
	SessionID    string         `json:"session_id"`
	Conversation []session.Turn `json:"conversation"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status   string                      `json:"status"`
	Version  string                      `json:"version"`
	Sessions int                         `json:"sessions"`
	Gateway  string                      `json:"gateway"`
	Servers  map[string]mcp.HealthStatus `json:"servers,omitempty"`
}
