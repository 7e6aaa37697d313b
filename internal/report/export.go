package report

import (
	"encoding/csv"
	"io"
	"time"

	"pos-admin/internal/domain"
)

var csvHeader = []string{"id", "invoice_number", "customer", "total_amount", "discount", "status", "created_at"}

// WriteCSV writes one summary row per invoice in the given order.
func WriteCSV(w io.Writer, invoices []domain.InvoiceDetail) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, inv := range invoices {
		customer := inv.CustomerName
		if customer == "" {
			customer = "Walk-in"
		}
		rec := []string{
			inv.ID,
			inv.Number,
			customer,
			inv.TotalAmount.StringFixed(2),
			inv.Discount.StringFixed(2),
			string(inv.Status),
			inv.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
