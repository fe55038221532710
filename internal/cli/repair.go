package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/rsrepair/internal/config"
	"github.com/roach88/rsrepair/internal/engine"
	"github.com/roach88/rsrepair/internal/prompt"
	"github.com/roach88/rsrepair/internal/reconcile"
	"github.com/roach88/rsrepair/internal/store"
)

// RepairOptions holds flags for the repair command.
type RepairOptions struct {
	*RootOptions
	Strategy string
	Fallback string
	DryRun   bool
	NoDryRun bool

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// NewRepairCommand creates the repair command.
func NewRepairCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RepairOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Repair the documents of every scanned unhealthy range",
		Long: `Walk every scanned unhealthy range and reconcile each document whose
copies differ across nodes.

A strategy decides documents automatically when enough nodes agree; every
other document goes to the fallback, which either skips it or asks the
operator. Runs are dry by default: outcomes are reported and nothing is
written until --no-dryrun is given. Repaired documents are recorded, so an
interrupted run resumes where it stopped.

Strategies: ` + strings.Join(reconcile.StrategyNames(), ", ") + `

Example:
  rsrepair repair --db ./catalog.db --strategy majority
  rsrepair repair --db ./catalog.db --strategy majority --fallback ask --no-dryrun`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepair(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Strategy, "strategy", config.DefaultStrategy, "automatic resolution strategy")
	cmd.Flags().StringVar(&opts.Fallback, "fallback", config.DefaultFallback, "what to do when the strategy cannot decide (ask|skip)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", true, "report outcomes without writing")
	cmd.Flags().BoolVar(&opts.NoDryRun, "no-dryrun", false, "apply repairs")

	return cmd
}

func runRepair(opts *RepairOptions, cmd *cobra.Command) error {
	var extra config.Overrides
	flags := cmd.Flags()
	if flags.Changed("strategy") {
		extra.Strategy = &opts.Strategy
	}
	if flags.Changed("fallback") {
		extra.Fallback = &opts.Fallback
	}
	if flags.Changed("dry-run") {
		extra.DryRun = &opts.DryRun
	}
	if flags.Changed("no-dryrun") {
		extra.NoDryRun = &opts.NoDryRun
	}
	settings, err := opts.settings(cmd, extra)
	if err != nil {
		return err
	}

	setupLogging(cmd, settings.Verbose)

	slog.Info("opening database", "path", settings.DB)
	st, err := store.OpenExisting(settings.DB)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	out := cmd.OutOrStdout()
	var reporter engine.Reporter = engine.NewTextReporter(out)
	// The operator conversation stays off stdout when stdout carries JSON.
	promptOut := out
	if settings.Format == "json" {
		reporter = engine.NewJSONReporter(out)
		promptOut = cmd.ErrOrStderr()
	}

	engineOpts := []engine.EngineOption{
		engine.WithReporter(reporter),
		engine.WithResolver(prompt.New(cmd.InOrStdin(), promptOut)),
		engine.WithLogger(slog.Default()),
	}
	if opts.RunIDs != nil {
		engineOpts = append(engineOpts, engine.WithRunIDGenerator(opts.RunIDs))
	}
	eng := engine.New(st, engine.Options{
		Strategy: settings.Strategy,
		DryRun:   settings.DryRun,
		Verbose:  settings.Verbose,
	}, engineOpts...)

	// Setup signal handling for graceful shutdown
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, stopping after the current document", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	summary, runErr := eng.Run(ctx)
	if runErr != nil {
		return repairFailed(out, settings.Format, summary, runErr)
	}
	return printSummary(out, settings.Format, summary)
}

func printSummary(w io.Writer, format string, summary engine.Summary) error {
	if format == "json" {
		f := &OutputFormatter{Format: format, Writer: w}
		return f.Success(summary)
	}
	_, err := fmt.Fprintln(w, summary.String())
	return err
}

// repairFailed reports a stopped run and maps it to an exit code. A store
// that cannot be reached is a command error; anything after the first range
// started is a run failure.
func repairFailed(w io.Writer, format string, summary engine.Summary, err error) error {
	code := "RUN_FAILED"
	var re *engine.RunError
	if errors.As(err, &re) {
		code = string(re.Code)
	} else if errors.Is(err, context.Canceled) {
		code = "INTERRUPTED"
	}

	f := &OutputFormatter{Format: format, Writer: w}
	if outErr := f.Error(code, err.Error(), summary); outErr != nil {
		slog.Error("error writing output", "error", outErr)
	}
	if format != "json" && summary.RunID != "" {
		fmt.Fprintln(w, summary.String())
	}

	if engine.IsCatalogUnavailable(err) {
		return WrapExitError(ExitCommandError, "store unreachable", err)
	}
	return WrapExitError(ExitFailure, "repair stopped", err)
}
