package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/celerix-dev/firmdesk/internal/invoices"
	"github.com/celerix-dev/firmdesk/pkg/schema"
)

// NewInvoiceCommand groups the invoicing commands.
func NewInvoiceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Issue and settle client invoices",
	}
	cmd.AddCommand(newInvoiceCreateCommand(rootOpts))
	cmd.AddCommand(newInvoiceListCommand(rootOpts))
	cmd.AddCommand(newInvoicePaidCommand(rootOpts))
	return cmd
}

// parseLine reads "description:quantity:rate". The description may itself
// contain colons.
func parseLine(s string) (schema.InvoiceLine, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 3 {
		return schema.InvoiceLine{}, fmt.Errorf("line %q: want description:quantity:rate", s)
	}
	n := len(parts)
	qty, err := decimal.NewFromString(strings.TrimSpace(parts[n-2]))
	if err != nil {
		return schema.InvoiceLine{}, fmt.Errorf("line %q quantity: %w", s, err)
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(parts[n-1]))
	if err != nil {
		return schema.InvoiceLine{}, fmt.Errorf("line %q rate: %w", s, err)
	}
	return schema.InvoiceLine{
		Description: strings.TrimSpace(strings.Join(parts[:n-2], ":")),
		Quantity:    qty,
		Rate:        rate,
	}, nil
}

func newInvoiceCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		clientID string
		lines    []string
		tax      string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Issue an invoice",
		Example: `  firmdesk invoice create --client c1 --tax 18 \
    --line "GST return filing:3:1500" --line "Consultation:1:2000"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := invoices.Draft{ClientID: clientID}
			for _, l := range lines {
				line, err := parseLine(l)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid --line", err)
				}
				draft.Lines = append(draft.Lines, line)
			}
			rate, err := decimal.NewFromString(tax)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid --tax", err)
			}
			draft.TaxRate = rate

			a, err := rootOpts.open()
			if err != nil {
				return err
			}
			defer a.Close()
			out := rootOpts.out(cmd)

			inv, err := a.Invoices.Create(draft)
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(inv, func(w io.Writer) {
				fmt.Fprintf(w, "%s issued: subtotal %s, tax %s, total %s\n",
					inv.Number, inv.Subtotal.StringFixed(2), inv.Tax.StringFixed(2), inv.Total.StringFixed(2))
			})
		},
	}
	cmd.Flags().StringVar(&clientID, "client", "", "client id")
	cmd.Flags().StringArrayVar(&lines, "line", nil, "line item as description:quantity:rate (repeatable)")
	cmd.Flags().StringVar(&tax, "tax", "0", "tax rate in percent")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}

func newInvoiceListCommand(rootOpts *RootOptions) *cobra.Command {
	var clientID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List invoices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.open()
			if err != nil {
				return err
			}
			defer a.Close()
			out := rootOpts.out(cmd)

			list, err := a.Invoices.List(clientID)
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(list, func(w io.Writer) {
				table(w, "NUMBER\tID\tCLIENT\tTOTAL\tSTATUS\tISSUED", func(tw io.Writer) {
					for _, inv := range list {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
							inv.Number, inv.ID, inv.ClientID, inv.Total.StringFixed(2), inv.Status, stamp(inv.IssuedAt))
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&clientID, "client", "", "only this client's invoices")
	return cmd
}

func newInvoicePaidCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "paid <id>",
		Short: "Mark an invoice as paid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.open()
			if err != nil {
				return err
			}
			defer a.Close()
			out := rootOpts.out(cmd)

			inv, err := a.Invoices.MarkPaid(args[0])
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(inv, func(w io.Writer) {
				fmt.Fprintf(w, "%s marked paid\n", inv.Number)
			})
		},
	}
}
