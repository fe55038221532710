package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/rsrepair/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Database   string
	ConfigFile string
	Verbose    bool
	Format     string // "json" | "text"
}

// NewRootCommand creates the root command for the rsrepair CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "rsrepair",
		Short: "rsrepair - replica set document repair",
		Long: `Reconcile documents that differ across the nodes of a replica set.

An external scan records unhealthy key ranges and a snapshot of every
node's copy of each document in them. rsrepair compares the copies,
decides which version wins by strategy or by asking the operator, and
rewrites the authoritative collection so every node converges.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.Database, "db", config.DefaultDB, "path to the SQLite store holding the range catalog")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "configuration file (.yaml, .yml or .toml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", config.DefaultFormat, "output format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewRepairCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewJournalCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}

// settings resolves the configuration file and the flags set explicitly on
// cmd. extra carries command-specific overrides.
func (o *RootOptions) settings(cmd *cobra.Command, extra config.Overrides) (config.Settings, error) {
	var file *config.File
	if o.ConfigFile != "" {
		f, err := config.Load(o.ConfigFile)
		if err != nil {
			return config.Settings{}, WrapExitError(ExitCommandError, "failed to load config", err)
		}
		file = f
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		extra.DB = &o.Database
	}
	if flags.Changed("verbose") {
		extra.Verbose = &o.Verbose
	}
	if flags.Changed("format") {
		extra.Format = &o.Format
	}

	s, err := config.Resolve(file, extra)
	if err != nil {
		return config.Settings{}, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return s, nil
}

// setupLogging installs the process logger: text records on stderr, Debug
// when verbose.
func setupLogging(cmd *cobra.Command, verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
