package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/celerix-dev/firmdesk/pkg/schema"
)

// NewClientCommand groups the client register commands.
func NewClientCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage the client register",
	}
	cmd.AddCommand(newClientAddCommand(rootOpts))
	cmd.AddCommand(newClientListCommand(rootOpts))
	cmd.AddCommand(newClientRenameCommand(rootOpts))
	return cmd
}

func newClientAddCommand(rootOpts *RootOptions) *cobra.Command {
	var c schema.Client
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.open()
			if err != nil {
				return err
			}
			defer a.Close()
			out := rootOpts.out(cmd)

			c.Name = args[0]
			added, err := a.Clients.Add(c)
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(added, func(w io.Writer) {
				fmt.Fprintf(w, "Added %s (%s)\n", added.Name, added.ID)
			})
		},
	}
	cmd.Flags().StringVar(&c.ID, "id", "", "explicit client id")
	cmd.Flags().StringVar(&c.PAN, "pan", "", "permanent account number")
	cmd.Flags().StringVar(&c.Email, "email", "", "contact email")
	return cmd
}

func newClientListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.open()
			if err != nil {
				return err
			}
			defer a.Close()
			out := rootOpts.out(cmd)

			list, err := a.Clients.List()
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(list, func(w io.Writer) {
				table(w, "ID\tNAME\tPAN\tEMAIL", func(tw io.Writer) {
					for _, c := range list {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.Name, orDash(c.PAN), orDash(c.Email))
					}
				})
			})
		},
	}
}

func newClientRenameCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Change a client's display name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.open()
			if err != nil {
				return err
			}
			defer a.Close()
			out := rootOpts.out(cmd)

			c, err := a.Clients.Rename(args[0], args[1])
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(c, func(w io.Writer) {
				fmt.Fprintf(w, "Renamed %s to %s\n", c.ID, c.Name)
			})
		},
	}
}
