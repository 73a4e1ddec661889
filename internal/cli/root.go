package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/happyplaces/internal/config"
	"github.com/roach88/happyplaces/internal/export"
	"github.com/roach88/happyplaces/internal/model"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string

	// Config is populated by the root command before any subcommand runs.
	Config config.Config

	// DotenvFiles overrides the dotenv files config.Load reads (for testing).
	DotenvFiles []string

	// Clock and IDGenerator override the system clock and UUIDv7 export
	// ids (for testing). Nil means the defaults.
	Clock       model.Clock
	IDGenerator export.IDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the happyplaces CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "happyplaces",
		Short: "Happy Places - where things live",
		Long: `Track where household items end up, how they were left there,
and which other things they keep company with.

Every placement is appended to a ledger. Status, history, neighbors and
pattern reports are computed from that ledger.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupRoot(opts, cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "happy_places.db", "path to SQLite database")

	cmd.AddCommand(NewItemCommand(opts))
	cmd.AddCommand(NewPlaceCommand(opts))
	cmd.AddCommand(NewZoneCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewNeighborsCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewPatternsCommand(opts))
	cmd.AddCommand(NewRoutinesCommand(opts))
	cmd.AddCommand(NewAttentionCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewDemoCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// setupRoot loads configuration, lets explicitly set flags win over it,
// validates the format and installs the default logger.
func setupRoot(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := config.Load(opts.DotenvFiles...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	opts.Config = cfg

	flags := cmd.Flags()
	if !flags.Changed("format") {
		opts.Format = cfg.Format
	}
	if !flags.Changed("db") {
		opts.Database = cfg.DBPath
	}

	if !isValidFormat(opts.Format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
	}

	level := cfg.LogLevel
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
	return nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// newFormatter builds the formatter for a command invocation.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// Execute runs the root command against os.Args and returns the process
// exit code. Errors not already reported by a command are printed to
// stderr. Plain errors come from cobra's argument and flag handling and
// count as command errors.
func Execute() int {
	cmd := NewRootCommand()
	err := cmd.Execute()
	if err != nil && !IsReported(err) {
		cmd.PrintErrln("Error:", err)
	}
	return commandExitCode(err)
}

func commandExitCode(err error) int {
	var exitErr *ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return ExitCommandError
	}
	return GetExitCode(err)
}
