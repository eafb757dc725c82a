package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/scout/pkg/reports"
	"github.com/codeready-toolchain/scout/pkg/research"
)

// generateReportHandler handles POST /api/v1/sessions/:id/report.
// Runs the whole pipeline synchronously; a previous report stays when the
// run fails.
func (s *Server) generateReportHandler(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	artifact, err := s.deps.Research.GenerateReport(c.Request.Context(), sess)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, &ReportResponse{SessionID: sess.ID, Artifact: artifact})
}

// getReportHandler handles GET /api/v1/sessions/:id/report.
func (s *Server) getReportHandler(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	artifact := sess.Artifact()
	if artifact == nil {
		writeError(c, &research.PreconditionError{Stage: research.StageReport, Reason: research.ErrNoArtifact})
		return
	}
	c.JSON(http.StatusOK, &ReportResponse{SessionID: sess.ID, Artifact: artifact})
}

// getReportHTMLHandler handles GET /api/v1/sessions/:id/report.html.
func (s *Server) getReportHTMLHandler(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	artifact := sess.Artifact()
	if artifact == nil {
		writeError(c, &research.PreconditionError{Stage: research.StageReport, Reason: research.ErrNoArtifact})
		return
	}
	html, err := reports.RenderHTML(reports.Document(artifact.Topic, artifact.Content))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// fetchNewsHandler handles POST /api/v1/sessions/:id/news.
func (s *Server) fetchNewsHandler(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	news, err := s.deps.Research.FetchNews(c.Request.Context(), sess)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, &NewsResponse{SessionID: sess.ID, News: news})
}

// generateSummaryHandler handles POST /api/v1/sessions/:id/summary.
func (s *Server) generateSummaryHandler(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	summary, err := s.deps.Research.GenerateSummary(c.Request.Context(), sess)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, &SummaryResponse{SessionID: sess.ID, Summary: summary})
}

// askHandler handles POST /api/v1/sessions/:id/questions.
func (s *Server) askHandler(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if len(req.Question) > maxQuestionLength {
		badRequest(c, "question exceeds maximum length of 10,000 characters")
		return
	}
	answer, err := s.deps.Research.Ask(c.Request.Context(), sess, strings.TrimSpace(req.Question))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, &AnswerResponse{
		SessionID:    sess.ID,
		Answer:       answer,
		Conversation: sess.Conversation().Turns(),
	})
}

const maxQuestionLength = 10_000

// getConversationHandler handles GET /api/v1/sessions/:id/conversation.
func (s *Server) getConversationHandler(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, &ConversationResponse{SessionID: sess.ID, Conversation: sess.Conversation().Turns()})
}

// clearConversationHandler handles DELETE /api/v1/sessions/:id/conversation.
// Idempotent.
func (s *Server) clearConversationHandler(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	s.deps.Research.ClearChat(sess)
	c.Status(http.StatusNoContent)
}
