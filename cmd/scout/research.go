package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codeready-toolchain/scout/pkg/llm"
	"github.com/codeready-toolchain/scout/pkg/session"
)

func researchCmd() *cobra.Command {
	var (
		topic   string
		summary bool
	)
	cmd := &cobra.Command{
		Use:   "research",
		Short: "Generate one report from the terminal against a running gateway",
		RunE: func(cmd *cobra.Command, _ []string) error {
			topic = strings.TrimSpace(topic)
			if topic == "" {
				return errors.New("--topic is required")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			orch := newOrchestrator(ctx, cfg, llm.NewFactory(cfg.LLM))
			defer orch.Close()

			sess := session.NewManager(0).Create()
			sess.SetTopic(topic)

			artifact, err := orch.service.GenerateReport(ctx, sess)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, artifact.Content)
			if summary {
				text, err := orch.service.GenerateSummary(ctx, sess)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "\n---\n\n%s\n", text)
			}
			if artifact.Path != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Report saved to %s\n", artifact.Path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&topic, "topic", "t", os.Getenv("SCOUT_TOPIC"), "Topic to research")
	cmd.Flags().BoolVar(&summary, "summary", false, "Also print a summary of the report")
	return cmd
}
