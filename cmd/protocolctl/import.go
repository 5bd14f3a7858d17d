package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/2beens/protocolengine/internal/protocol"
	"github.com/2beens/protocolengine/pkg"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newImportCmd(flags *storeFlags) *cobra.Command {
	var appendRows bool

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import the protocols CSV into a SQLite database",
		Long: `Import reads every row of --csv and writes it to the --sqlite database,
creating the database and its schema. Row order is preserved, so duplicate
profiles resolve the same way in both stores. An existing database is only
extended with --append.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.sqlitePath == "" {
				return errors.New("--sqlite is required")
			}

			exists, err := pkg.PathExists(flags.sqlitePath, false)
			if err != nil {
				return err
			}
			if exists && !appendRows {
				return fmt.Errorf("database %s already exists, use --append to add rows", flags.sqlitePath)
			}

			f, err := os.Open(flags.csvPath)
			if err != nil {
				return fmt.Errorf("open csv: %w", err)
			}
			defer func() { _ = f.Close() }()

			records, err := protocol.ReadCSV(f)
			if err != nil {
				return fmt.Errorf("read csv %s: %w", flags.csvPath, err)
			}

			store, err := protocol.CreateSQLiteStore(flags.sqlitePath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			n, err := store.Import(cmd.Context(), records)
			if err != nil {
				return err
			}

			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "imported %d protocols into %s\n", n, flags.sqlitePath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&appendRows, "append", false, "append to an existing database")
	return cmd
}
