package main

import (
	"context"
	"errors"

	"github.com/2beens/protocolengine/internal/protocol"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type storeFlags struct {
	csvPath    string
	sqlitePath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	flags := &storeFlags{}

	rootCmd := &cobra.Command{
		Use:   "protocolctl",
		Short: "Supplement protocol matching tool",
		Long: `protocolctl works with the supplement protocol table used by the protocol engine.

EXAMPLES:

  $ protocolctl match -f profile.json                 # match in-process against ./data/protocols.csv
  $ protocolctl match -f profile.json --strict        # no fallback, exit 1 when nothing matches
  $ protocolctl match --server http://localhost:9000  # profile from stdin, matched by a running service
  $ protocolctl fallback Recovery                     # generic protocol for a target
  $ protocolctl import --csv protocols.csv --sqlite protocols.db
  $ protocolctl validate --sqlite protocols.db        # load and report duplicates / incomplete rows`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flags.csvPath, "csv", "./data/protocols.csv", "protocols CSV file")
	rootCmd.PersistentFlags().StringVar(&flags.sqlitePath, "sqlite", "", "protocols SQLite database (takes precedence over --csv)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log matching steps to stderr")

	rootCmd.AddCommand(
		newMatchCmd(flags),
		newFallbackCmd(),
		newImportCmd(flags),
		newValidateCmd(flags),
	)

	return rootCmd
}

func (f *storeFlags) logger(cmd *cobra.Command) logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(logrus.WarnLevel)
	if f.verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger.WithField("cmd", cmd.Name())
}

func (f *storeFlags) openStore() (protocol.Store, error) {
	if f.sqlitePath != "" {
		return protocol.OpenSQLiteStore(f.sqlitePath)
	}
	if f.csvPath == "" {
		return nil, errors.New("either --csv or --sqlite is required")
	}
	return protocol.NewCSVStore(f.csvPath), nil
}

func (f *storeFlags) openRegistry(ctx context.Context, logger logrus.FieldLogger) (*protocol.Registry, error) {
	store, err := f.openStore()
	if err != nil {
		return nil, err
	}
	registry, err := protocol.NewRegistry(ctx, store, logger, nil)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return registry, nil
}
