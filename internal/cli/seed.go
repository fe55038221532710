package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/rsrepair/internal/config"
	"github.com/roach88/rsrepair/internal/fixture"
	"github.com/roach88/rsrepair/internal/store"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <fixture.yaml>",
		Short: "Load a range catalog and node snapshots from a fixture",
		Long: `Load unhealthy ranges, per-node scan snapshots and authoritative
documents from a YAML fixture into the store, creating the store if it does
not exist. Seeding the same fixture twice is harmless.

Example:
  rsrepair seed --db ./catalog.db ./testdata/orders.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runSeed(opts *RootOptions, path string, cmd *cobra.Command) error {
	settings, err := opts.settings(cmd, config.Overrides{})
	if err != nil {
		return err
	}

	f, err := fixture.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load fixture", err)
	}

	st, err := store.Open(settings.DB)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := fixture.Seed(ctx, st, f)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to seed store", err)
	}

	if settings.Format == "json" {
		out := &OutputFormatter{Format: settings.Format, Writer: cmd.OutOrStdout()}
		return out.Success(res)
	}
	// The plural forms are registered by package engine.
	p := message.NewPrinter(language.English)
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s with %s and %s\n",
		settings.DB, p.Sprintf("%d ranges", res.Ranges), p.Sprintf("%d documents", res.Documents))
	return nil
}
