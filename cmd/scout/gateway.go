package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codeready-toolchain/scout/pkg/llm"
)

func gatewayCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "gateway",
		Short: "Run the MCP tool gateway (search_topic, summarize_topic, get_news_topic)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Gateway.ListenAddr
			}

			gw, err := newGateway(ctx, cfg, llm.NewFactory(cfg.LLM))
			if err != nil {
				return err
			}
			defer gw.Close()
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listening on %s: %w", addr, err)
			}
			return serveGateway(ctx, gw, ln)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", os.Getenv("GATEWAY_ADDR"), "Listen address (default from gateway.listen_addr)")
	return cmd
}
