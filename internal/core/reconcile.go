package core

import "github.com/shopspring/decimal"

// Reconciliation is the settlement position between COD collected for a
// vendor and cash already paid out.
type Reconciliation struct {
	Pending     decimal.Decimal
	Outstanding bool
}

// Reconcile computes delivered minus paid. The sign is preserved: an
// overpaid vendor shows a negative pending amount instead of zero, so
// bookkeeping mistakes stay visible. Outstanding is true only for a
// strictly positive balance.
func Reconcile(delivered, paid decimal.Decimal) Reconciliation {
	pending := delivered.Sub(paid)
	return Reconciliation{
		Pending:     pending,
		Outstanding: pending.IsPositive(),
	}
}
