// Package core implements the reporting engine: amount normalization,
// ordered grouping, rollups, status classification, settlement
// reconciliation and parcel filtering. Everything here is pure; callers
// own I/O, clocks and ordering of the input slices.
package core

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Normalize coerces an arbitrary decoded value to a decimal amount.
//
// Report inputs arrive from SQL scans, JSON bodies and spreadsheet rows,
// so the value may be a decimal, a nullable decimal, a string, a float,
// an integer, a json.Number, or nothing at all. Absent and unparseable
// values count as zero; Normalize never fails. Aggregation totals stay
// correct because zero is the additive identity.
func Normalize(v any) decimal.Decimal {
	switch x := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return x
	case decimal.NullDecimal:
		if !x.Valid {
			return decimal.Zero
		}
		return x.Decimal
	case *string:
		if x == nil {
			return decimal.Zero
		}
		return parseAmount(*x)
	case string:
		return parseAmount(x)
	case json.Number:
		return parseAmount(x.String())
	case float64:
		return decimal.NewFromFloat(x)
	case float32:
		return decimal.NewFromFloat32(x)
	case int:
		return decimal.NewFromInt(int64(x))
	case int32:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	case uint:
		return decimal.NewFromUint64(uint64(x))
	case uint64:
		return decimal.NewFromUint64(x)
	default:
		return decimal.Zero
	}
}

func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatAmount renders an amount for display: whole values without a
// decimal part, fractional values with exactly two.
//
//	FormatAmount(decimal.NewFromInt(250))          -> "250"
//	FormatAmount(decimal.RequireFromString("250.25")) -> "250.25"
//	FormatAmount(decimal.Zero)                     -> "0"
//
// The output is display-only; arithmetic stays on decimal.Decimal.
func FormatAmount(d decimal.Decimal) string {
	if d.IsInteger() {
		return d.Truncate(0).String()
	}
	return d.StringFixed(2)
}
