package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a sellable catalog product.
type Item struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Barcode   string          `json:"barcode,omitempty"`
	SKU       string          `json:"sku,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}
