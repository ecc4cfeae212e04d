package main

import (
	"github.com/spf13/cobra"

	"github.com/imrishuroy/go-product-describer/internal/notification"
	"github.com/imrishuroy/go-product-describer/internal/validation"
)

func newDecodeCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "decode <envelope.json|->",
		Short: "Print the product event carried by a push envelope",
		Example: `  # Decode a saved envelope
  describectl decode testdata/envelope.json

  # Decode and run the eligibility check
  cat envelope.json | describectl decode --check -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := readEnvelope(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			ev, err := notification.Decode(env)
			if err != nil {
				return err
			}
			if !check {
				return printJSON(cmd.OutOrStdout(), ev)
			}

			decision, err := validation.NewEligibility().Validate(ev)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"event":   ev,
				"outcome": decision.Outcome.String(),
			})
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Also run the eligibility check")

	return cmd
}
