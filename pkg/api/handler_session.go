package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/scout/pkg/credential"
)

// createSessionHandler handles POST /api/v1/sessions.
// The body is optional; a key in it is validated before the session exists.
func (s *Server) createSessionHandler(c *gin.Context) {
	var req CreateSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
	}
	key := strings.TrimSpace(req.APIKey)
	if key != "" {
		if err := credential.Validate(key); err != nil {
			writeError(c, err)
			return
		}
	}

	sess := s.deps.Sessions.Create()
	sess.SetTopic(strings.TrimSpace(req.Topic))
	if key != "" {
		sess.SetAPIKey(key)
	}
	slog.Info("Session created", "session_id", sess.ID)
	c.JSON(http.StatusCreated, sess.Snapshot())
}

// getSessionHandler handles GET /api/v1/sessions/:id.
func (s *Server) getSessionHandler(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

// deleteSessionHandler handles DELETE /api/v1/sessions/:id.
func (s *Server) deleteSessionHandler(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	if s.deps.LLM != nil {
		s.deps.LLM.Forget(sess.APIKey())
	}
	if err := s.deps.Sessions.Delete(sess.ID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// setTopicHandler handles PUT /api/v1/sessions/:id/topic.
// The current artifact stays until a report on the new topic replaces it.
func (s *Server) setTopicHandler(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req SetTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		badRequest(c, "topic is required")
		return
	}
	sess.SetTopic(topic)
	c.JSON(http.StatusOK, sess.Snapshot())
}

// setAPIKeyHandler handles PUT /api/v1/sessions/:id/api-key.
// Sets or replaces the session key; only the masked form is echoed.
func (s *Server) setAPIKeyHandler(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req SetAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	key := strings.TrimSpace(req.APIKey)
	if err := credential.Validate(key); err != nil {
		writeError(c, err)
		return
	}

	previous := sess.SetAPIKey(key)
	if previous != "" && previous != key && s.deps.LLM != nil {
		s.deps.LLM.Forget(previous)
	}
	slog.Info("Session API key set", "session_id", sess.ID, "api_key", credential.Mask(key))
	c.JSON(http.StatusOK, &APIKeyResponse{
		SessionID: sess.ID,
		APIKey:    credential.Mask(key),
		Message:   "API key saved",
	})
}

// removeAPIKeyHandler handles DELETE /api/v1/sessions/:id/api-key.
// The session falls back to the server key, if any. Idempotent.
func (s *Server) removeAPIKeyHandler(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	if previous := sess.SetAPIKey(""); previous != "" && s.deps.LLM != nil {
		s.deps.LLM.Forget(previous)
	}
	c.JSON(http.StatusOK, &APIKeyResponse{
		SessionID: sess.ID,
		Message:   "API key removed",
	})
}
