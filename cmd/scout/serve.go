package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/codeready-toolchain/scout/pkg/api"
	"github.com/codeready-toolchain/scout/pkg/cleanup"
	"github.com/codeready-toolchain/scout/pkg/llm"
	"github.com/codeready-toolchain/scout/pkg/session"
	"github.com/codeready-toolchain/scout/pkg/version"
)

func serveCmd() *cobra.Command {
	var (
		addr        string
		withGateway bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the research pipeline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.System.HTTPAddr
			}
			factory := llm.NewFactory(cfg.LLM)
			if !factory.HasServerKey() {
				slog.Warn("No server API key configured; sessions must bring their own", "env", cfg.LLM.APIKeyEnv)
			}

			errCh := make(chan error, 2)
			if withGateway {
				gw, err := newGateway(ctx, cfg, factory)
				if err != nil {
					return err
				}
				defer gw.Close()
				ln, err := net.Listen("tcp", cfg.Gateway.ListenAddr)
				if err != nil {
					return fmt.Errorf("listening for the gateway: %w", err)
				}
				go func() { errCh <- serveGateway(ctx, gw, ln) }()
			}

			orch := newOrchestrator(ctx, cfg, factory)
			defer orch.Close()

			sessions := session.NewManager(cfg.System.SessionTTL, session.WithEvictHook(func(s *session.Session) {
				factory.Forget(s.APIKey())
			}))
			retention := cleanup.NewService(sessions, cleanup.DefaultInterval)
			retention.Start(ctx)
			defer retention.Stop()

			server := api.NewServer(api.Deps{
				Config:   cfg,
				Sessions: sessions,
				Research: orch.service,
				LLM:      factory,
				Health:   orch.health,
			})
			go func() { errCh <- server.Start(addr) }()

			slog.Info("scout started", "version", version.Full(), "addr", addr,
				"gateway", cfg.Gateway.URL, "embedded_gateway", withGateway)

			select {
			case <-ctx.Done():
				slog.Info("Shutdown signal received")
			case err := <-errCh:
				if err != nil {
					slog.Error("Server error triggered shutdown", "error", err)
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				slog.Error("HTTP server shutdown error", "error", err)
			}
			slog.Info("Shutdown complete")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", os.Getenv("HTTP_ADDR"), "Listen address (default from system.http_addr)")
	cmd.Flags().BoolVar(&withGateway, "with-gateway", false, "Also run the MCP tool gateway in this process")
	return cmd
}
