package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/rsrepair/internal/config"
	"github.com/roach88/rsrepair/internal/store"
)

// JournalOptions holds flags for the journal command.
type JournalOptions struct {
	*RootOptions
	RunID string // optional - defaults to the latest run
}

// JournalResult is the json output of the journal command.
type JournalResult struct {
	RunID   string               `json:"run_id"`
	Entries []store.JournalEntry `json:"entries"`
}

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List the repairs a run applied",
		Long: `List the writes recorded by one repair run, in the order they were
applied. Without --run the latest run that wrote anything is shown. Dry
runs record nothing.

Examples:
  rsrepair journal --db ./catalog.db
  rsrepair journal --db ./catalog.db --run 0190b7c4-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournal(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id to list (default: latest)")

	return cmd
}

func runJournal(opts *JournalOptions, cmd *cobra.Command) error {
	settings, err := opts.settings(cmd, config.Overrides{})
	if err != nil {
		return err
	}

	st, err := store.OpenExisting(settings.DB)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	runID := opts.RunID
	if runID == "" {
		runID, err = st.LatestRunID(ctx)
		if errors.Is(err, store.ErrNotFound) {
			runID = ""
		} else if err != nil {
			return WrapExitError(ExitCommandError, "failed to read journal", err)
		}
	}

	result := JournalResult{RunID: runID, Entries: []store.JournalEntry{}}
	if runID != "" {
		result.Entries, err = st.Journal(ctx, runID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read journal", err)
		}
	}

	if settings.Format == "json" {
		f := &OutputFormatter{Format: settings.Format, Writer: cmd.OutOrStdout()}
		return f.Success(result)
	}
	return outputJournalText(cmd.OutOrStdout(), result)
}

func outputJournalText(w io.Writer, result JournalResult) error {
	if result.RunID == "" {
		_, err := fmt.Fprintln(w, "No repairs recorded.")
		return err
	}
	if len(result.Entries) == 0 {
		_, err := fmt.Fprintf(w, "No repairs recorded for run %s.\n", result.RunID)
		return err
	}

	fmt.Fprintf(w, "Run %s\n", result.RunID)
	for _, e := range result.Entries {
		version := ""
		if len(e.Version) >= 12 {
			version = " version " + e.Version[:12]
		}
		_, err := fmt.Fprintf(w, "  %d. %s %s _id %s%s (%d/%d nodes agreed)\n",
			e.Seq, e.Action, e.Namespace, e.ID, version, e.Agreeing, e.Total)
		if err != nil {
			return err
		}
	}
	return nil
}
