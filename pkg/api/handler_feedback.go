package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/scout/pkg/agent"
	"github.com/codeready-toolchain/scout/pkg/feedback"
)

// feedbackHandler handles POST /api/v1/feedback.
// Always answers 200 with a record once the request is valid: a missing
// credential or a failed classification yields the static fallback reply.
func (s *Server) feedbackHandler(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: rating must be between 1 and 5 when given")
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		badRequest(c, "feedback text is required")
		return
	}

	var sessionKey string
	if req.SessionID != "" {
		sess, err := s.deps.Sessions.Get(req.SessionID)
		if err != nil {
			writeError(c, err)
			return
		}
		sessionKey = sess.APIKey()
	}

	var llmClient agent.LLMClient
	if s.deps.LLM != nil {
		client, err := s.deps.LLM.LLMClient(sessionKey)
		if err != nil {
			slog.Warn("No LLM client for feedback, using fallback reply", "error", err)
		} else {
			llmClient = client
		}
	}

	rec := feedback.NewClassifier(s.deps.Config.Feedback, llmClient).Respond(c.Request.Context(), text, req.Rating)
	c.JSON(http.StatusOK, rec)
}
