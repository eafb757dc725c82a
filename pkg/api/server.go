// Package api is the HTTP surface of scout: research sessions, the
// pipeline stages run on them, feedback, health and metrics.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/scout/pkg/config"
	"github.com/codeready-toolchain/scout/pkg/mcp"
	"github.com/codeready-toolchain/scout/pkg/metrics"
	"github.com/codeready-toolchain/scout/pkg/research"
	"github.com/codeready-toolchain/scout/pkg/session"
)

// LLMProvider resolves per-session LLM clients and drops the cached client
// of a key that was removed. Implemented by llm.Factory.
type LLMProvider interface {
	research.LLMProvider
	Forget(sessionKey string)
}

// Deps are the collaborators of the API server.
type Deps struct {
	Config   *config.Config
	Sessions *session.Manager
	Research *research.Service
	LLM      LLMProvider

	// Health probes the tool gateway; nil reports the gateway as unknown.
	Health *mcp.HealthMonitor
}

// Server is the HTTP API server.
type Server struct {
	deps       Deps
	router     *gin.Engine
	httpServer *http.Server
}

// NewServer creates the API server and registers its routes.
func NewServer(deps Deps) *Server {
	if deps.Config == nil {
		deps.Config = config.Default()
	}
	s := &Server{deps: deps, router: gin.New()}
	s.router.Use(gin.Recovery(), requestLogger(), securityHeaders())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthHandler)
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := s.router.Group("/api/v1")
	v1.POST("/sessions", s.createSessionHandler)
	v1.GET("/sessions/:id", s.getSessionHandler)
	v1.DELETE("/sessions/:id", s.deleteSessionHandler)
	v1.PUT("/sessions/:id/topic", s.setTopicHandler)
	v1.PUT("/sessions/:id/api-key", s.setAPIKeyHandler)
	v1.DELETE("/sessions/:id/api-key", s.removeAPIKeyHandler)

	v1.POST("/sessions/:id/report", s.generateReportHandler)
	v1.GET("/sessions/:id/report", s.getReportHandler)
	v1.GET("/sessions/:id/report.html", s.getReportHTMLHandler)
	v1.POST("/sessions/:id/news", s.fetchNewsHandler)
	v1.POST("/sessions/:id/summary", s.generateSummaryHandler)
	v1.POST("/sessions/:id/questions", s.askHandler)
	v1.GET("/sessions/:id/conversation", s.getConversationHandler)
	v1.DELETE("/sessions/:id/conversation", s.clearConversationHandler)

	v1.POST("/feedback", s.feedbackHandler)
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until Shutdown. A clean shutdown returns nil.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API listening", "addr", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// session loads the session named by the :id path parameter, writing the
// error response when it does not exist.
func (s *Server) session(c *gin.Context) (*session.Session, bool) {
	sess, err := s.deps.Sessions.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return sess, true
}
