package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imrishuroy/go-product-describer/internal/boot"
	"github.com/imrishuroy/go-product-describer/internal/drafts"
)

func newDraftCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "draft <product-id>",
		Short: "Print the draft description record of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store := drafts.NewStore(boot.MustAWS(ctx).DynamoDB, cfg.DraftsTable)
			rec, err := store.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("%w for product ID: %s", drafts.ErrDraftNotFound, args[0])
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	}
}
