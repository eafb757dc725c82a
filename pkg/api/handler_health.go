package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/scout/pkg/version"
)

const (
	healthStatusHealthy  = "healthy"
	healthStatusDegraded = "degraded"
	healthStatusUnknown  = "unknown"
)

// healthHandler handles GET /health.
// The API stays up when the tool gateway is unreachable (stages fail with
// 502 instead), so an unreachable gateway is "degraded" with 200.
func (s *Server) healthHandler(c *gin.Context) {
	resp := &HealthResponse{
		Status:   healthStatusHealthy,
		Version:  version.Full(),
		Sessions: s.deps.Sessions.Len(),
		Gateway:  healthStatusUnknown,
	}
	if s.deps.Health != nil {
		resp.Servers = s.deps.Health.Statuses()
		if s.deps.Health.IsHealthy() {
			resp.Gateway = healthStatusHealthy
		} else {
			resp.Gateway = healthStatusDegraded
			resp.Status = healthStatusDegraded
		}
	}
	c.JSON(http.StatusOK, resp)
}
