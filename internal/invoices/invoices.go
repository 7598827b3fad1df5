// Package invoices issues and settles client invoices.
package invoices

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/celerix-dev/firmdesk/pkg/schema"
	"github.com/celerix-dev/firmdesk/pkg/sdk"
)

var (
	ErrNotFound       = errors.New("invoice not found")
	ErrNoLines        = errors.New("invoice needs at least one line")
	ErrInvalidLine    = errors.New("invoice line must have a positive quantity and a non-negative rate")
	ErrClientRequired = errors.New("invoice client is required")
	ErrAlreadyPaid    = errors.New("invoice already paid")
)

var hundred = decimal.NewFromInt(100)

// ClientDirectory resolves client display names for activity entries.
type ClientDirectory interface {
	ClientName(clientID string) (string, bool)
}

// Draft is the caller-supplied part of a new invoice.
type Draft struct {
	ClientID string
	Lines    []schema.InvoiceLine
	TaxRate  decimal.Decimal // percent, e.g. 18 for 18%
}

// Book stores invoices under the invoices collection.
type Book struct {
	store   *sdk.Store
	clients ClientDirectory
	now     func() time.Time
	newID   func() string
	logger  *slog.Logger
}

// NewBook constructs a Book. clients may be nil.
func NewBook(store *sdk.Store, clients ClientDirectory) *Book {
	return &Book{
		store:   store,
		clients: clients,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
		logger:  slog.Default(),
	}
}

// Totals computes subtotal, tax and total rounded to two places.
func Totals(lines []schema.InvoiceLine, taxRate decimal.Decimal) (subtotal, tax, total decimal.Decimal) {
	subtotal = decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Amount())
	}
	subtotal = subtotal.Round(2)
	tax = subtotal.Mul(taxRate).Div(hundred).Round(2)
	total = subtotal.Add(tax)
	return subtotal, tax, total
}

// List returns a client's invoices, or all of them when clientID is empty.
func (b *Book) List(clientID string) ([]schema.Invoice, error) {
	all, err := sdk.Load[schema.Invoice](b.store, sdk.KeyInvoices)
	if err != nil {
		return nil, err
	}
	if clientID == "" {
		return all, nil
	}
	out := []schema.Invoice{}
	for _, inv := range all {
		if inv.ClientID == clientID {
			out = append(out, inv)
		}
	}
	return out, nil
}

// Create issues a new unpaid invoice.
func (b *Book) Create(d Draft) (schema.Invoice, error) {
	d.ClientID = strings.TrimSpace(d.ClientID)
	if d.ClientID == "" {
		return schema.Invoice{}, ErrClientRequired
	}
	if len(d.Lines) == 0 {
		return schema.Invoice{}, ErrNoLines
	}
	for _, l := range d.Lines {
		if !l.Quantity.IsPositive() || l.Rate.IsNegative() {
			return schema.Invoice{}, fmt.Errorf("%w: %q", ErrInvalidLine, l.Description)
		}
	}

	subtotal, tax, total := Totals(d.Lines, d.TaxRate)
	inv := schema.Invoice{
		ID:       b.newID(),
		ClientID: d.ClientID,
		Lines:    d.Lines,
		TaxRate:  d.TaxRate,
		Subtotal: subtotal,
		Tax:      tax,
		Total:    total,
		Status:   schema.InvoiceUnpaid,
		IssuedAt: b.now(),
	}
	err := b.store.Update(func() (map[string]string, error) {
		all, err := sdk.Load[schema.Invoice](b.store, sdk.KeyInvoices)
		if err != nil {
			return nil, err
		}
		inv.Number = fmt.Sprintf("INV-%04d", len(all)+1)
		return b.batch(append(all, inv), b.entry(inv, "Invoice Created"))
	})
	if err != nil {
		return schema.Invoice{}, err
	}
	b.logger.Info("invoice created", "invoice", inv.Number, "client_id", inv.ClientID)
	return inv, nil
}

// MarkPaid settles an invoice.
func (b *Book) MarkPaid(id string) (schema.Invoice, error) {
	var paid schema.Invoice
	err := b.store.Update(func() (map[string]string, error) {
		all, err := sdk.Load[schema.Invoice](b.store, sdk.KeyInvoices)
		if err != nil {
			return nil, err
		}
		for i := range all {
			if all[i].ID != id {
				continue
			}
			if all[i].Status == schema.InvoicePaid {
				paid = all[i]
				return nil, fmt.Errorf("%w: %s", ErrAlreadyPaid, all[i].Number)
			}
			paidAt := b.now()
			all[i].Status = schema.InvoicePaid
			all[i].PaidAt = &paidAt
			paid = all[i]
			return b.batch(all, b.entry(paid, "Invoice Paid"))
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	})
	if errors.Is(err, ErrAlreadyPaid) {
		return paid, err
	}
	if err != nil {
		return schema.Invoice{}, err
	}
	b.logger.Info("invoice paid", "invoice", paid.Number)
	return paid, nil
}

func (b *Book) entry(inv schema.Invoice, action string) schema.ActivityLogEntry {
	name := inv.ClientID
	if b.clients != nil {
		if n, ok := b.clients.ClientName(inv.ClientID); ok {
			name = n
		}
	}
	return schema.ActivityLogEntry{
		ID:         b.newID(),
		ClientID:   inv.ClientID,
		ClientName: name,
		Action:     action,
		Timestamp:  b.now(),
		Detail:     inv.Number + " " + inv.Total.StringFixed(2),
	}
}

// batch pairs the invoice list with the activity log so both land in one write.
func (b *Book) batch(all []schema.Invoice, entry schema.ActivityLogEntry) (map[string]string, error) {
	raw, err := sdk.Encode(all)
	if err != nil {
		return nil, fmt.Errorf("encode invoices: %w", err)
	}
	logs, err := b.store.NextLog(entry)
	if err != nil {
		return nil, err
	}
	return map[string]string{sdk.KeyInvoices: raw, sdk.KeyActivityLog: logs}, nil
}
