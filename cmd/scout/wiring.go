package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/codeready-toolchain/scout/pkg/agent"
	"github.com/codeready-toolchain/scout/pkg/config"
	"github.com/codeready-toolchain/scout/pkg/gateway"
	"github.com/codeready-toolchain/scout/pkg/llm"
	"github.com/codeready-toolchain/scout/pkg/mcp"
	"github.com/codeready-toolchain/scout/pkg/reports"
	"github.com/codeready-toolchain/scout/pkg/research"
	"github.com/codeready-toolchain/scout/pkg/webtools"
)

// gatewayRuntime is a gateway server with the search clients behind it.
type gatewayRuntime struct {
	server *gateway.Server
	client *mcp.Client
	health *mcp.HealthMonitor
}

func (g *gatewayRuntime) Close() {
	g.health.Stop()
	if err := g.client.Close(); err != nil {
		slog.Warn("Error closing MCP search clients", "error", err)
	}
}

// newGateway connects the external search servers and builds the gateway.
// Servers that fail to connect are reported to the inner agents; the web
// tools keep them working.
func newGateway(ctx context.Context, cfg *config.Config, factory *llm.Factory) (*gatewayRuntime, error) {
	llmClient, err := factory.LLMClient("")
	if err != nil {
		return nil, fmt.Errorf("the gateway needs a server API key (%s): %w", cfg.LLM.APIKeyEnv, err)
	}

	serverIDs := cfg.Gateway.SearchServers
	client := mcp.NewClient(cfg.MCPServerRegistry, mcp.WithOperationTimeout(cfg.Gateway.ToolTimeout))
	client.Initialize(ctx, serverIDs)
	if failed := client.FailedServers(); len(failed) > 0 {
		slog.Warn("Some search servers are unavailable", "failed_servers", failed)
	}

	health := mcp.NewHealthMonitor(client, serverIDs, 0)
	health.Start(ctx)

	tools := agent.NewCompositeToolExecutor(
		mcp.NewToolExecutor(client, serverIDs, 0),
		webtools.New(cfg.Gateway.WebTools, nil),
	)
	server := gateway.New(gateway.Deps{
		Config:        cfg,
		LLM:           llmClient,
		Tools:         tools,
		FailedServers: client.FailedServers,
		Health:        health,
	})
	return &gatewayRuntime{server: server, client: client, health: health}, nil
}

// serveGateway runs the gateway's HTTP surface on ln until ctx is done.
func serveGateway(ctx context.Context, gw *gatewayRuntime, ln net.Listener) error {
	srv := &http.Server{
		Handler:           gw.server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("MCP tool gateway listening", "addr", ln.Addr().String(), "path", gateway.Path)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// orchestratorRuntime is the research service with its gateway connection.
type orchestratorRuntime struct {
	service *research.Service
	client  *mcp.Client
	health  *mcp.HealthMonitor
}

func (o *orchestratorRuntime) Close() {
	o.health.Stop()
	if err := o.client.Close(); err != nil {
		slog.Warn("Error closing gateway client", "error", err)
	}
}

// newOrchestrator connects to the tool gateway over streamable HTTP and
// builds the research service on it. A gateway that is not up yet is
// retried by the health monitor; report runs fail until it is reachable.
func newOrchestrator(ctx context.Context, cfg *config.Config, factory *llm.Factory) *orchestratorRuntime {
	serverID := cfg.Gateway.ServerID
	registry := config.NewMCPServerRegistry(map[string]*config.MCPServerConfig{
		serverID: cfg.Gateway.ServerConfig(),
	})
	client := mcp.NewClient(registry, mcp.WithOperationTimeout(cfg.Gateway.CallTimeout))
	client.Initialize(ctx, []string{serverID})
	if failed := client.FailedServers(); len(failed) > 0 {
		slog.Warn("Tool gateway not reachable yet", "url", cfg.Gateway.URL, "error", failed[serverID])
	}

	health := mcp.NewHealthMonitor(client, []string{serverID}, 0)
	health.Start(ctx)

	service := research.NewService(research.Deps{
		Config:        cfg,
		LLM:           factory,
		Tools:         mcp.NewToolExecutor(client, []string{serverID}, -1),
		FailedServers: client.FailedServers,
		Reports:       reports.NewWriter(cfg.System.ReportsDir),
	})
	return &orchestratorRuntime{service: service, client: client, health: health}
}
