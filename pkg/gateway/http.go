package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/codeready-toolchain/scout/pkg/metrics"
	"github.com/codeready-toolchain/scout/pkg/version"
)

// Path is where the streamable HTTP endpoint is mounted.
const Path = "/mcp"

// Handler returns the streamable HTTP handler of the MCP endpoint.
func (s *Server) Handler() http.Handler {
	return mcpsdk.NewStreamableHTTPHandler(func(*http.Request) *mcpsdk.Server {
		return s.server
	}, nil)
}

// Router returns the gateway's HTTP surface: the MCP endpoint, /health and
// /metrics.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Any(Path, gin.WrapH(s.Handler()))
	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	return r
}

// health reports the search servers behind the gateway. The gateway itself
// stays usable when they are down (inner agents fall back to the web
// tools), so unhealthy servers yield "degraded" with 200.
func (s *Server) health(c *gin.Context) {
	body := gin.H{
		"status":  "healthy",
		"service": ServerName,
		"version": version.Full(),
	}
	if s.deps.Health != nil {
		statuses := s.deps.Health.Statuses()
		body["search_servers"] = statuses
		if !s.deps.Health.IsHealthy() {
			body["status"] = "degraded"
		}
	}
	c.JSON(http.StatusOK, body)
}
