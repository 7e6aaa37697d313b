package store

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// String returns the column as a string, "" for NULL or missing.
func (r Row) String(column string) string {
	switch v := r[column].(type) {
	case string:
		return v
	case *string:
		if v != nil {
			return *v
		}
	case []byte:
		return string(v)
	case nil:
	default:
		return fmt.Sprint(v)
	}
	return ""
}

// StringPtr returns nil for NULL or missing columns.
func (r Row) StringPtr(column string) *string {
	switch v := r[column].(type) {
	case nil:
		return nil
	case *string:
		return v
	}
	s := r.String(column)
	return &s
}

func (r Row) Int(column string) int {
	switch v := r[column].(type) {
	case int:
		return v
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

// Decimal decodes numeric columns. Unparseable values read as zero.
func (r Row) Decimal(column string) decimal.Decimal {
	switch v := r[column].(type) {
	case decimal.Decimal:
		return v
	case *decimal.Decimal:
		if v != nil {
			return *v
		}
	case string:
		d, err := decimal.NewFromString(v)
		if err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	}
	return decimal.Zero
}

func (r Row) Time(column string) time.Time {
	if v, ok := r[column].(time.Time); ok {
		return v
	}
	return time.Time{}
}

func (r Row) clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
