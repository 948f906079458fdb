package main

import (
	"github.com/spf13/cobra"

	"github.com/go-drift/axsnap/cmd/axsnap/internal/config"
	"github.com/go-drift/axsnap/pkg/dump"
)

func newDumpCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump FIXTURE",
		Short: "Print the snapshot of a fixture",
		Long: `Build a snapshot from a fixture file and print it.

Examples:
  axsnap dump screen.yaml                # Indented tree, one element per line
  axsnap dump screen.yaml --format json  # Full JSON with attributes and visible bounds`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _, err := a.load(args[0])
			if err != nil {
				return err
			}
			if a.cfg.Output == config.OutputJSON {
				return dump.Capture(root).WriteJSON(cmd.OutOrStdout())
			}
			return dump.WriteTree(cmd.OutOrStdout(), root)
		},
	}
	cmd.Flags().StringVar(&a.flags.Output, "format", "", "Output format: json or tree (default: tree)")
	return cmd
}
