package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/2beens/protocolengine/internal/protocol"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newMatchCmd(flags *storeFlags) *cobra.Command {
	var (
		profilePath string
		serverURL   string
		strict      bool
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match a questionnaire profile to a protocol",
		Long: `Match reads a raw questionnaire profile (a JSON object keyed by question
labels, e.g. "Age Bracket", "Training Frequency 2") and prints the protocol.

Without --strict, a profile without an exact match gets the generic protocol
for its target. With --server the profile is sent to a running service.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readProfile(cmd.InOrStdin(), profilePath)
			if err != nil {
				return err
			}

			logger := flags.logger(cmd)
			ctx := cmd.Context()

			var (
				record         *protocol.Record
				recommendation *protocol.Recommendation
			)
			if serverURL != "" {
				client := protocol.NewClient(serverURL, &http.Client{Timeout: timeout}, logger)
				if strict {
					record, err = client.Match(ctx, raw)
				} else {
					recommendation = client.Recommend(ctx, raw)
				}
			} else {
				registry, openErr := flags.openRegistry(ctx, logger)
				if openErr != nil {
					return openErr
				}
				defer func() { _ = registry.Close() }()

				service := protocol.NewService(registry, logger, nil)
				if strict {
					record, err = service.Match(ctx, raw)
				} else {
					recommendation = service.Recommend(ctx, raw)
				}
			}

			out := cmd.OutOrStdout()
			if strict {
				if errors.Is(err, protocol.ErrNotFound) {
					color.New(color.FgRed).Fprintln(cmd.ErrOrStderr(), "Protocol not found")
					return err
				}
				if err != nil {
					return fmt.Errorf("failed to find protocol: %w", err)
				}
				return printJSON(out, record)
			}

			if recommendation.IsFallback() {
				color.New(color.FgYellow).Fprintf(cmd.ErrOrStderr(), "no exact protocol, fallback for target %q\n", recommendation.Profile.Target)
			} else {
				color.New(color.FgGreen).Fprintln(cmd.ErrOrStderr(), "exact protocol match")
			}
			return printJSON(out, recommendation)
		},
	}

	cmd.Flags().StringVarP(&profilePath, "file", "f", "-", "profile JSON file, - for stdin")
	cmd.Flags().StringVar(&serverURL, "server", "", "base URL of a running protocol service")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail instead of falling back when nothing matches")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout when using --server")

	return cmd
}

func readProfile(stdin io.Reader, path string) (protocol.RawProfile, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open profile: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var raw protocol.RawProfile
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode profile json: %w", err)
	}
	return raw, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
