package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/scout/pkg/agent"
	"github.com/codeready-toolchain/scout/pkg/credential"
	"github.com/codeready-toolchain/scout/pkg/research"
	"github.com/codeready-toolchain/scout/pkg/session"
)

// mapError maps pipeline errors to an HTTP status and a short,
// user-actionable message. Internal details only go to the log.
func mapError(err error) (int, string) {
	var credErr *credential.Error
	if errors.As(err, &credErr) {
		if errors.Is(err, credential.ErrMissing) || errors.Is(err, credential.ErrRejected) {
			return http.StatusUnauthorized, credErr.Error()
		}
		return http.StatusBadRequest, credErr.Error()
	}

	var preErr *research.PreconditionError
	if errors.As(err, &preErr) {
		return http.StatusConflict, preErr.Reason.Error()
	}
	if errors.Is(err, research.ErrEmptyQuestion) {
		return http.StatusBadRequest, err.Error()
	}
	if errors.Is(err, session.ErrNotFound) {
		return http.StatusNotFound, "session not found"
	}

	var agentErr *agent.Error
	if errors.As(err, &agentErr) {
		slog.Warn("Agent failed", "agent", agentErr.Agent, "error", err)
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout, fmt.Sprintf("the %s step timed out, please try again", stepName(agentErr))
		}
		return http.StatusBadGateway, fmt.Sprintf("the %s step failed, please try again", stepName(agentErr))
	}

	slog.Error("Unexpected error", "error", err)
	return http.StatusInternalServerError, "internal server error"
}

func stepName(e *agent.Error) string {
	if e.Agent == "" {
		return "research"
	}
	return e.Agent
}

// writeError aborts the request with the mapped error body.
func writeError(c *gin.Context, err error) {
	code, msg := mapError(err)
	c.AbortWithStatusJSON(code, ErrorResponse{Error: msg})
}

// badRequest aborts with 400 and msg.
func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}
