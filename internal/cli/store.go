package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/celerix-dev/firmdesk/internal/engine"
	"github.com/celerix-dev/firmdesk/internal/offsite"
	"github.com/celerix-dev/firmdesk/pkg/sdk"
)

// NewLogsCommand prints the activity log.
func NewLogsCommand(rootOpts *RootOptions) *cobra.Command {
	var clientID string
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the activity log, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.open()
			if err != nil {
				return err
			}
			defer a.Close()

			logs := a.Store.GetLogs()
			if clientID != "" {
				kept := logs[:0]
				for _, e := range logs {
					if e.ClientID == clientID {
						kept = append(kept, e)
					}
				}
				logs = kept
			}
			return rootOpts.out(cmd).Success(logs, func(w io.Writer) {
				table(w, "WHEN\tCLIENT\tACTION\tDETAIL", func(tw io.Writer) {
					for _, e := range logs {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", stamp(e.Timestamp), e.ClientName, e.Action, e.Detail)
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&clientID, "client", "", "only this client's entries")
	return cmd
}

// NewBackupCommand groups export, import and offsite copies.
func NewBackupCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export, import and ship backup packages",
	}
	cmd.AddCommand(newBackupExportCommand(rootOpts))
	cmd.AddCommand(newBackupImportCommand(rootOpts))
	cmd.AddCommand(newBackupPushCommand(rootOpts))
	cmd.AddCommand(newBackupPullCommand(rootOpts))
	cmd.AddCommand(newBackupListCommand(rootOpts))
	return cmd
}

func newBackupExportCommand(rootOpts *RootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup package to a file or stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.open()
			if err != nil {
				return err
			}
			defer a.Close()

			started := time.Now()
			content, err := a.Store.CreateBackup()
			a.Metrics.ObserveBackup("create", len(content), started, err)
			if err != nil {
				return err
			}
			if output == "" {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), content)
				return err
			}
			if output == "." {
				output = sdk.BackupFileName(started)
			}
			if err := os.WriteFile(output, []byte(content), 0o600); err != nil {
				return WrapExitError(ExitCommandError, "write backup", err)
			}
			rootOpts.out(cmd).VerboseLog("wrote %d bytes to %s", len(content), output)
			return rootOpts.out(cmd).Success(map[string]any{"file": output, "bytes": len(content)}, func(w io.Writer) {
				fmt.Fprintf(w, "Backup written to %s\n", output)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", `file to write ("." for a timestamped name); stdout when empty`)
	return cmd
}

func newBackupImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Restore a backup package",
		Long: `Restore a backup package. Keys in the package overwrite stored values;
keys absent from the package are left as they are.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				content []byte
				err     error
			)
			if args[0] == "-" {
				content, err = io.ReadAll(cmd.InOrStdin())
			} else {
				content, err = os.ReadFile(args[0])
			}
			if err != nil {
				return WrapExitError(ExitCommandError, "read backup", err)
			}

			a, err := rootOpts.open()
			if err != nil {
				return err
			}
			defer a.Close()
			out := rootOpts.out(cmd)

			started := time.Now()
			n, err := a.Store.RestoreBackup(string(content))
			a.Metrics.ObserveBackup("restore", len(content), started, err)
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(map[string]int{"restored": n}, func(w io.Writer) {
				fmt.Fprintf(w, "Restored %d keys\n", n)
			})
		},
	}
}

func newBackupPushCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Copy a fresh backup to the offsite destination",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.open()
			if err != nil {
				return err
			}
			defer a.Close()
			sink, err := a.Sink(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "offsite", err)
			}

			started := time.Now()
			name, size, err := offsite.Push(cmd.Context(), a.Store, sink, started)
			a.Metrics.ObserveBackup("push", size, started, err)
			if err != nil {
				return rootOpts.out(cmd).Fail(err)
			}
			return rootOpts.out(cmd).Success(map[string]any{"name": name, "bytes": size}, func(w io.Writer) {
				fmt.Fprintf(w, "Pushed %s (%d bytes)\n", name, size)
			})
		},
	}
}

func newBackupPullCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pull [name]",
		Short: "Restore a backup from the offsite destination (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			a, err := rootOpts.open()
			if err != nil {
				return err
			}
			defer a.Close()
			sink, err := a.Sink(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "offsite", err)
			}

			started := time.Now()
			name, n, err := offsite.Pull(cmd.Context(), a.Store, sink, name)
			a.Metrics.ObserveBackup("pull", 0, started, err)
			if err != nil {
				return rootOpts.out(cmd).Fail(err)
			}
			return rootOpts.out(cmd).Success(map[string]any{"name": name, "restored": n}, func(w io.Writer) {
				fmt.Fprintf(w, "Restored %d keys from %s\n", n, name)
			})
		},
	}
}

func newBackupListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List offsite backups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.open()
			if err != nil {
				return err
			}
			defer a.Close()
			sink, err := a.Sink(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "offsite", err)
			}
			objs, err := sink.List(cmd.Context())
			if err != nil {
				return rootOpts.out(cmd).Fail(err)
			}
			return rootOpts.out(cmd).Success(objs, func(w io.Writer) {
				table(w, "NAME\tBYTES\tMODIFIED", func(tw io.Writer) {
					for _, o := range objs {
						fmt.Fprintf(tw, "%s\t%d\t%s\n", o.Name, o.Size, stamp(o.Modified))
					}
				})
			})
		},
	}
}

// NewResetCommand removes every namespaced key.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all firm data in this namespace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return WrapExitError(ExitCommandError, "refusing to reset", errors.New("pass --yes to confirm"))
			}
			a, err := rootOpts.open()
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Store.HardReset()
			if err != nil {
				return rootOpts.out(cmd).Fail(err)
			}
			return rootOpts.out(cmd).Success(map[string]int{"removed": n}, func(w io.Writer) {
				fmt.Fprintf(w, "Removed %d keys\n", n)
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

// NewMigrateCommand copies every key from the configured backend to another.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		to    string
		toDir string
		toDSN string
	)
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy all keys to another storage driver",
		Example: `  firmdesk migrate --to sqlite
  firmdesk --driver sqlite migrate --to postgres --to-dsn postgres://localhost/firm`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.config()
			if err != nil {
				return err
			}
			dstCfg := sdk.BackendConfig{Driver: sdk.Driver(to), DataDir: cfg.DataDir, DSN: toDSN}
			if toDir != "" {
				dstCfg.DataDir = toDir
			}
			if dstCfg.Driver == cfg.Driver && dstCfg.DataDir == cfg.DataDir && dstCfg.DSN == cfg.DSN {
				return WrapExitError(ExitCommandError, "migrate", errors.New("source and destination are the same"))
			}

			src, err := sdk.OpenBackend(cfg.Backend())
			if err != nil {
				return WrapExitError(ExitCommandError, "open source", err)
			}
			defer src.Close()
			dst, err := sdk.OpenBackend(dstCfg)
			if err != nil {
				return WrapExitError(ExitCommandError, "open destination", err)
			}
			defer dst.Close()

			n, err := engine.Migrate(src, dst)
			if err != nil {
				return rootOpts.out(cmd).Fail(err)
			}
			return rootOpts.out(cmd).Success(map[string]any{"keys": n, "to": to}, func(w io.Writer) {
				fmt.Fprintf(w, "Copied %d keys from %s to %s\n", n, cfg.Driver, to)
			})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "destination driver: file|sqlite|postgres")
	cmd.Flags().StringVar(&toDir, "to-dir", "", "destination data directory (defaults to the current one)")
	cmd.Flags().StringVar(&toDSN, "to-dsn", "", "destination postgres connection string")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
