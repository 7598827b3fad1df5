// Package cli implements the firmdesk command tree.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/celerix-dev/firmdesk/internal/app"
	"github.com/celerix-dev/firmdesk/internal/config"
	"github.com/celerix-dev/firmdesk/pkg/sdk"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	DataDir string
	Driver  string
	DSN     string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the firmdesk CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "firmdesk",
		Short: "Practice desk for a chartered accountancy firm",
		Long: `Manage client documents through maker-checker review and signing,
keep the client register and invoices, and back up or restore the firm's data.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "data directory (overrides FIRMDESK_DATA_DIR)")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "storage driver: file|sqlite|postgres|memory")
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "postgres connection string")

	cmd.AddCommand(NewDocCommand(opts))
	cmd.AddCommand(NewClientCommand(opts))
	cmd.AddCommand(NewInvoiceCommand(opts))
	cmd.AddCommand(NewLogsCommand(opts))
	cmd.AddCommand(NewBackupCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewAdviseCommand(opts))

	return cmd
}

// config resolves file and environment settings, then applies flags.
func (o *RootOptions) config() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "configuration", err)
	}
	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
	}
	if o.Driver != "" {
		cfg.Driver = sdk.Driver(o.Driver)
	}
	if o.DSN != "" {
		cfg.DSN = o.DSN
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "configuration", err)
	}
	return cfg, nil
}

// open builds the application for one command invocation. Callers Close it.
func (o *RootOptions) open() (*app.App, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	a, err := app.New(cfg, slog.Default())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open store", err)
	}
	return a, nil
}

func (o *RootOptions) out(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return GetExitCode(err)
	}
	return ExitSuccess
}
