// Package cli implements hivctl, a command-line front end to the dataset
// loader for scripted exports and quick inspection.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/hivdash/internal/core"
	"github.com/JonMunkholm/hivdash/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DataRoot string
	Format   string // "text" | "json" | "yaml"
	Verbose  bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// defaultDataRoot is $DATA_ROOT, or "data".
func defaultDataRoot() string {
	if v := os.Getenv("DATA_ROOT"); v != "" {
		return v
	}
	return "data"
}

// NewRootCommand creates the root command for hivctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "hivctl",
		Short: "Inspect and export HIV incidence datasets",
		Long: `hivctl reads the World Bank HIV incidence folders under a data root
(one folder per age group holding API.csv, Metadata_Country.csv and
Metadata_Indicator.csv) and prints or exports year slices.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return usageError(fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.DataRoot, "data-root", defaultDataRoot(), "directory holding one folder per age group")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log load details to stderr")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	cmd.AddCommand(NewIndicatorsCommand(opts))
	cmd.AddCommand(NewSummaryCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

// Execute runs hivctl with args and returns the process exit code.
// Errors are reported on stdout (json, yaml) or stderr (text).
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	format, _ := cmd.PersistentFlags().GetString("format")
	if !slices.Contains(ValidFormats, format) {
		format = "text"
	}
	f := &OutputFormatter{Format: format, Writer: stdout, ErrWriter: stderr}
	_ = f.Error(err)
	return GetExitCode(err)
}

// exactArgs is cobra.ExactArgs reporting a command error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr()}
}

// logger writes to stderr: warnings by default, everything with --verbose.
func (o *RootOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := "warn"
	if o.Verbose {
		level = "debug"
	}
	return logging.New(cmd.ErrOrStderr(), level, "text")
}

// load reads one age-group folder.
func (o *RootOptions) load(cmd *cobra.Command, ageGroup string) (*core.Table, error) {
	loader := core.NewLoader(o.DataRoot, o.logger(cmd))
	return loader.Load(cmd.Context(), ageGroup)
}
