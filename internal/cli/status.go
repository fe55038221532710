package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/rsrepair/internal/config"
	"github.com/roach88/rsrepair/internal/model"
	"github.com/roach88/rsrepair/internal/store"
)

// RangeStatus is one row of status output.
type RangeStatus struct {
	Namespace   model.Namespace `json:"namespace"`
	Min         model.Bound     `json:"min_key"`
	Max         model.Bound     `json:"max_key"`
	Scanned     bool            `json:"scanned"`
	ScanSources int             `json:"scan_sources"`
	FixedDocs   int             `json:"fixed_docs"`
	Remaining   int             `json:"remaining"`
	Done        bool            `json:"done"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show repair progress for every unhealthy range",
		Long: `List every range in the catalog with its scan state, the number of
documents already repaired and the number still to go.

Examples:
  rsrepair status --db ./catalog.db
  rsrepair status --db ./catalog.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, cmd)
		},
	}
	return cmd
}

func runStatus(opts *RootOptions, cmd *cobra.Command) error {
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
	progress, err := st.Progress(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read range catalog", err)
	}

	rows := make([]RangeStatus, 0, len(progress))
	for _, p := range progress {
		rows = append(rows, RangeStatus{
			Namespace:   p.Range.Key.Namespace,
			Min:         p.Range.Key.Min,
			Max:         p.Range.Key.Max,
			Scanned:     p.Range.Scanned,
			ScanSources: len(p.Range.ScanSources),
			FixedDocs:   p.Range.FixedDocs.Len(),
			Remaining:   p.Remaining,
			Done:        p.Done(),
		})
	}

	if settings.Format == "json" {
		f := &OutputFormatter{Format: settings.Format, Writer: cmd.OutOrStdout()}
		return f.Success(rows)
	}
	return outputStatusText(cmd.OutOrStdout(), rows)
}

func outputStatusText(w io.Writer, rows []RangeStatus) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No unhealthy ranges recorded.")
		return err
	}
	for _, r := range rows {
		state := "pending"
		switch {
		case !r.Scanned:
			state = "not scanned"
		case r.Done:
			state = "done"
		}
		_, err := fmt.Fprintf(w, "%s [%s, %s): %s, %d scan sources, %d fixed, %d remaining\n",
			r.Namespace, r.Min, r.Max, state, r.ScanSources, r.FixedDocs, r.Remaining)
		if err != nil {
			return err
		}
	}
	return nil
}
