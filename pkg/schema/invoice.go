package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceUnpaid InvoiceStatus = "Unpaid"
	InvoicePaid   InvoiceStatus = "Paid"
)

// InvoiceLine is a single billable line.
type InvoiceLine struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
}

// Amount returns quantity times rate.
func (l InvoiceLine) Amount() decimal.Decimal {
	return l.Quantity.Mul(l.Rate)
}

// Invoice is a bill issued to a client. Subtotal, Tax and Total are computed
// when the invoice is created and stored alongside the lines.
type Invoice struct {
	ID       string          `json:"id"`
	Number   string          `json:"number"`
	ClientID string          `json:"clientId"`
	Lines    []InvoiceLine   `json:"lines"`
	TaxRate  decimal.Decimal `json:"taxRate"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	Status   InvoiceStatus   `json:"status"`
	IssuedAt time.Time       `json:"issuedAt"`
	PaidAt   *time.Time      `json:"paidAt,omitempty"`
}
