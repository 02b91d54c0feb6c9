package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/besselx/internal/config"
	"github.com/roach88/besselx/internal/logging"
	"github.com/roach88/besselx/internal/store"
	"github.com/roach88/besselx/pkg/bessel"
	"github.com/roach88/besselx/pkg/kernel/series"
)

// RootOptions holds global flags for all commands, plus the configuration
// and logger resolved from them before any subcommand runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the besselx CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "besselx",
		Short: "besselx - complex Bessel I, K and Hankel functions",
		Long: `Evaluate modified Bessel and Hankel functions of arbitrary real order
and complex argument, record evaluations in a replayable log, and run
reference-table conformance scenarios.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if err := opts.setup(cmd); err != nil {
				return opts.formatter(cmd).Report(err)
			}
			return nil
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: ExitCommandError, ErrCode: ErrCodeConfig, Message: "invalid flags", Err: err}
	})

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "",
		"path to TOML config file (default $"+config.EnvVar+")")

	cmd.AddCommand(NewEvalCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// Execute runs the CLI with args and returns the process exit code.
// Errors not already written by a command are printed to stderr.
func Execute(args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err != nil && !reported(err) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return GetExitCode(err)
}

// setup resolves the configuration and installs the logger. Diagnostics
// always go to stderr so they never mix with JSON output.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Resolve(o.ConfigPath)
	if err != nil {
		return &ExitError{Code: ExitCommandError, ErrCode: ErrCodeConfig, Message: "failed to load config", Err: err}
	}
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Format, cfg.Log.Level, o.Verbose)
	if err != nil {
		return &ExitError{Code: ExitCommandError, ErrCode: ErrCodeConfig, Message: "failed to configure logging", Err: err}
	}
	o.Config = cfg
	o.Logger = logger
	return nil
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// evaluator builds an evaluator over the configured backend. Kernel
// warnings are logged.
func (o *RootOptions) evaluator() *bessel.Evaluator {
	return bessel.New(series.New(o.Config.Series()), bessel.WithSink(bessel.LogSink{Logger: o.Logger}))
}

// quietEvaluator is evaluator with warnings logged only in verbose mode,
// for commands that collect and report warnings themselves.
func (o *RootOptions) quietEvaluator() *bessel.Evaluator {
	if o.Verbose {
		return o.evaluator()
	}
	return bessel.New(series.New(o.Config.Series()), bessel.WithSink(bessel.Discard))
}

// backend names the configured kernel backend for run records.
func (o *RootOptions) backend() string {
	return o.Config.Kernel.Backend
}

// openStore opens the evaluation log at path, or at the configured path
// when path is empty. With create=false a missing file is an error.
func (o *RootOptions) openStore(path string, create bool) (*store.Store, error) {
	if path == "" {
		path = o.Config.Store.Path
	}
	if !create && path != ":memory:" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeNotFound,
				Message: fmt.Sprintf("database not found: %s", path)}
		}
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, &ExitError{Code: ExitCommandError, ErrCode: ErrCodeStore,
			Message: "failed to open database", Err: err}
	}
	o.Logger.Debug("opened evaluation log", "path", path)
	return st, nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
