package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/2beens/protocolengine/internal/protocol"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newValidateCmd(flags *storeFlags) *cobra.Command {
	var failOnWarnings bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load the protocol store and report problems",
		Long: `Validate loads the configured store and reports:

  duplicates   rows whose 16 profile answers repeat an earlier row (the earlier row wins)
  incomplete   rows missing a required answer (they can never match)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := flags.openRegistry(cmd.Context(), flags.logger(cmd))
			if err != nil {
				return err
			}
			defer func() { _ = registry.Close() }()

			out := cmd.OutOrStdout()
			warn := color.New(color.FgYellow)
			faint := color.New(color.Faint)
			snapshot := registry.Snapshot()

			fmt.Fprintf(out, "%d protocols loaded\n", snapshot.Len())

			dups := snapshot.Duplicates()
			dupKeys := slices.SortedFunc(maps.Keys(dups), func(a, b protocol.Key) int {
				return slices.Compare(a[:], b[:])
			})
			for _, k := range dupKeys {
				warn.Fprintf(out, "duplicate: %d shadowed row(s) ", dups[k])
				faint.Fprintln(out, strings.Join(k[:], " | "))
			}

			incomplete := 0
			for i, r := range snapshot.Records() {
				if missing := r.Missing(); len(missing) > 0 {
					incomplete++
					warn.Fprintf(out, "incomplete: record #%d missing %s\n", i+1, strings.Join(missing, ", "))
				}
			}

			if len(dups) == 0 && incomplete == 0 {
				color.New(color.FgGreen).Fprintln(out, "ok")
				return nil
			}
			if failOnWarnings {
				return fmt.Errorf("%d duplicate profile(s), %d incomplete row(s)", len(dups), incomplete)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&failOnWarnings, "strict", false, "exit with an error when duplicates or incomplete rows are found")
	return cmd
}
