package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imrishuroy/go-product-describer/internal/boot"
	"github.com/imrishuroy/go-product-describer/internal/handlers"
	"github.com/imrishuroy/go-product-describer/internal/pipeline"
)

func newReplayCmd() *cobra.Command {
	var requestID string

	cmd := &cobra.Command{
		Use:   "replay <envelope.json|->",
		Short: "Run an envelope through the full description pipeline",
		Long: `Replays a push envelope against the configured vision model, Gemini
model and drafts table, then prints the HTTP status and body the API
would have returned. Drafts are written for real.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			env, err := readEnvelope(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			p, err := boot.NewPipeline(ctx, cfg, boot.MustAWS(ctx))
			if err != nil {
				return err
			}
			defer p.Close()

			if requestID != "" {
				ctx = pipeline.WithCorrelationID(ctx, requestID)
			}
			res, err := p.Orchestrator.Process(ctx, env)
			reply := handlers.BuildReply(ctx, res, err)

			fmt.Fprintf(cmd.OutOrStdout(), "status: %d\n", reply.Status)
			return printJSON(cmd.OutOrStdout(), reply.Body)
		},
	}

	cmd.Flags().StringVar(&requestID, "request-id", "", "Correlation id for the description-ready message")

	return cmd
}
