package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/imrishuroy/go-product-describer/internal/config"
	"github.com/imrishuroy/go-product-describer/internal/logging"
	"github.com/imrishuroy/go-product-describer/internal/notification"
)

func newRootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "describectl",
		Short: "Operator tool for the product description service",
		Long: `describectl inspects push envelopes, replays them through the
description pipeline and reads draft records from DynamoDB.

Configuration is read from the environment and an optional .env file,
the same way the API and worker load it.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(logLevel, true)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newDecodeCmd())
	cmd.AddCommand(newReplayCmd())
	cmd.AddCommand(newDraftCmd())

	return cmd
}

// readEnvelope reads a push envelope from path, or stdin when path is "-".
func readEnvelope(path string, stdin io.Reader) (notification.Envelope, error) {
	var env notification.Envelope

	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return env, fmt.Errorf("read envelope: %w", err)
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return env, fmt.Errorf("parse envelope: %w", err)
	}
	return env, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
