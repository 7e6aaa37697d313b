package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"pos-admin/internal/domain"
	"pos-admin/internal/logger"
	productsvc "pos-admin/internal/service/product"
)

type ProductWriter interface {
	Upsert(ctx context.Context, in productsvc.Input) (*domain.Item, error)
}

var requiredColumns = []string{"name", "category", "price"}

// CSVImporter reads catalog CSV files (name,category,price,barcode,sku) and
// upserts each row by SKU.
type CSVImporter struct {
	reader   *csv.Reader
	products ProductWriter
	logger   *zerolog.Logger
}

func NewCSVImporter(r io.Reader, products ProductWriter, log *zerolog.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:   csvr,
		products: products,
		logger:   logger.OrNop(log),
	}
}

// Run imports every row and returns the number of products written. It stops
// at the first invalid row; rows before it stay imported.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return 0, fmt.Errorf("missing column %q", col)
		}
	}

	imported := 0
	for line := 2; ; line++ {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}
		if blank(record) {
			continue
		}

		in, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("row %d: %w", line, err)
		}
		item, err := i.products.Upsert(ctx, in)
		if err != nil {
			return imported, fmt.Errorf("row %d: upsert product %q: %w", line, in.Name, err)
		}
		i.logger.Debug().Str("product_id", item.ID).Str("sku", item.SKU).Msg("importer: product upserted")
		imported++
	}
	return imported, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (productsvc.Input, error) {
	in := productsvc.Input{
		Name:     pick(record, index, "name"),
		Category: pick(record, index, "category"),
		Barcode:  pick(record, index, "barcode"),
		SKU:      pick(record, index, "sku"),
	}
	if raw := pick(record, index, "price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return in, fmt.Errorf("invalid price %q", raw)
		}
		in.Price = &price
	}
	return in, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
