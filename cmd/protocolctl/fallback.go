package main

import (
	"github.com/2beens/protocolengine/internal/protocol"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newFallbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fallback [target]",
		Short: "Print the generic protocol for a target",
		Long: `Print the fallback catalog entry for a target: Basic, Recovery, Endurance
or Performance. Unknown or empty targets get the Basic entry.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			if !protocol.IsKnownTarget(target) {
				color.New(color.FgYellow).Fprintf(cmd.ErrOrStderr(), "unknown target %q, using %s\n", target, protocol.TargetBasic)
			}
			return printJSON(cmd.OutOrStdout(), protocol.Fallback(target))
		},
	}
}
