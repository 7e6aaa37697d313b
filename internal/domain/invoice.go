package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusPaid InvoiceStatus = "paid"
	InvoiceStatusHold InvoiceStatus = "hold"
)

// Invoice is the persisted header of a committed or held sale.
// TotalAmount equals sum(qty*price) of its lines minus Discount.
type Invoice struct {
	ID          string          `json:"id"`
	Number      string          `json:"invoiceNumber"`
	CustomerID  *string         `json:"customerId,omitempty"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Discount    decimal.Decimal `json:"discount"`
	Status      InvoiceStatus   `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// InvoiceLine copies the unit price at the time of sale.
type InvoiceLine struct {
	ID        string          `json:"id"`
	InvoiceID string          `json:"invoiceId"`
	ItemID    string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// InvoiceDetail is an invoice joined with its customer name and lines.
type InvoiceDetail struct {
	Invoice
	CustomerName string              `json:"customerName"`
	Lines        []InvoiceLineDetail `json:"lines"`
}

type InvoiceLineDetail struct {
	InvoiceLine
	ItemName string `json:"productName"`
}

// CartLine is one item in a billing cart. A cart holds at most one line per item.
type CartLine struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}
