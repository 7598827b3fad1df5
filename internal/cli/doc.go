package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/celerix-dev/firmdesk/internal/documents"
	"github.com/celerix-dev/firmdesk/pkg/schema"
)

// NewDocCommand groups the document lifecycle commands.
func NewDocCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doc",
		Short: "Create, review and sign client documents",
	}
	cmd.AddCommand(newDocCreateCommand(rootOpts))
	cmd.AddCommand(newDocListCommand(rootOpts))
	cmd.AddCommand(newDocShowCommand(rootOpts))
	for _, t := range []documents.Transition{documents.Submit, documents.Approve, documents.Reject} {
		cmd.AddCommand(newDocTransitionCommand(rootOpts, t))
	}
	cmd.AddCommand(newDocSignCommand(rootOpts))
	cmd.AddCommand(newDocDeleteCommand(rootOpts))
	return cmd
}

func newDocCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var doc schema.ClientDocument
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a Draft document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.open()
			if err != nil {
				return err
			}
			defer a.Close()
			out := rootOpts.out(cmd)

			created, err := a.Docs.Create(doc)
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(created, func(w io.Writer) {
				fmt.Fprintf(w, "Created %s (%s)\n", created.ID, created.Status)
			})
		},
	}
	cmd.Flags().StringVar(&doc.ClientID, "client", "", "client id")
	cmd.Flags().StringVar(&doc.Title, "title", "", "document title")
	cmd.Flags().StringVar(&doc.Content, "content", "", "document body")
	cmd.Flags().StringVar(&doc.CreatedBy, "by", "", "preparer")
	cmd.Flags().StringVar(&doc.ID, "id", "", "explicit document id")
	_ = cmd.MarkFlagRequired("client")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newDocListCommand(rootOpts *RootOptions) *cobra.Command {
	var clientID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.open()
			if err != nil {
				return err
			}
			defer a.Close()
			out := rootOpts.out(cmd)

			docs, err := a.Docs.List(clientID)
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(docs, func(w io.Writer) {
				table(w, "ID\tCLIENT\tSTATUS\tTITLE", func(tw io.Writer) {
					for _, d := range docs {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.ID, d.ClientID, d.Status, d.Title)
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&clientID, "client", "", "only this client's documents")
	return cmd
}

func newDocShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.open()
			if err != nil {
				return err
			}
			defer a.Close()
			out := rootOpts.out(cmd)

			doc, err := a.Docs.Get(args[0])
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(doc, func(w io.Writer) { printDocument(w, doc) })
		},
	}
}

func newDocTransitionCommand(rootOpts *RootOptions, t documents.Transition) *cobra.Command {
	target, _ := t.Target()
	return &cobra.Command{
		Use:   string(t) + " <id>",
		Short: fmt.Sprintf("Move a document to %s", target),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(cmd, rootOpts, args[0], t, "")
		},
	}
}

func newDocSignCommand(rootOpts *RootOptions) *cobra.Command {
	var signer string
	cmd := &cobra.Command{
		Use:   "sign <id>",
		Short: "Sign an Approved document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(cmd, rootOpts, args[0], documents.Sign, signer)
		},
	}
	cmd.Flags().StringVar(&signer, "signer", "", "identity of the signing partner")
	_ = cmd.MarkFlagRequired("signer")
	return cmd
}

func runTransition(cmd *cobra.Command, rootOpts *RootOptions, id string, t documents.Transition, signer string) error {
	a, err := rootOpts.open()
	if err != nil {
		return err
	}
	defer a.Close()
	out := rootOpts.out(cmd)

	doc, err := a.Docs.Transition(id, t, signer)
	if err != nil {
		return out.Fail(err)
	}
	out.VerboseLog("%s applied to %s", t, id)
	return out.Success(doc, func(w io.Writer) {
		fmt.Fprintf(w, "%s is now %s\n", doc.ID, doc.Status)
	})
}

func newDocDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a document in any status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.open()
			if err != nil {
				return err
			}
			defer a.Close()
			out := rootOpts.out(cmd)

			if err := a.Docs.Delete(args[0]); err != nil {
				return out.Fail(err)
			}
			return out.Success(map[string]string{"deleted": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted %s\n", args[0])
			})
		},
	}
}
