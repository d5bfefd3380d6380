package core

import "github.com/shopspring/decimal"

// Rollup is a count plus a COD total.
type Rollup struct {
	Count int
	Total decimal.Decimal
}

// RollupRecords folds raw records into a rollup. amount extracts the
// (already normalized or normalizable) value of one record.
func RollupRecords[T any](items []T, amount func(T) decimal.Decimal) Rollup {
	r := Rollup{Count: len(items), Total: decimal.Zero}
	for _, it := range items {
		r.Total = r.Total.Add(amount(it))
	}
	return r
}

// RollupRows folds pre-aggregated summary rows. The count is the sum of
// the rows' counts, not the number of rows, so a rollup of rollups
// reports the underlying record count.
func RollupRows[T any](rows []T, count func(T) int, amount func(T) decimal.Decimal) Rollup {
	r := Rollup{Total: decimal.Zero}
	for _, row := range rows {
		r.Count += count(row)
		r.Total = r.Total.Add(amount(row))
	}
	return r
}

// Add combines two rollups.
func (r Rollup) Add(o Rollup) Rollup {
	return Rollup{Count: r.Count + o.Count, Total: r.Total.Add(o.Total)}
}

// FormattedTotal renders the total for display.
func (r Rollup) FormattedTotal() string {
	return FormatAmount(r.Total)
}
