// Package report assembles API view models from storage rows using the
// core engine: group, roll up, classify, reconcile, format.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"courierops/internal/core"
)

// ParcelsByDay groups parcels by creation day, newest-first input order
// preserved, with a rollup per day. Parcels without a creation time land
// in the "No Date" bucket instead of disappearing.
func ParcelsByDay(parcels []core.Parcel) []ParcelGroup {
	buckets := core.GroupBy(parcels, func(p core.Parcel) string {
		if p.CreatedAt.IsZero() {
			return core.NoDateKey
		}
		return core.DayKey(p.CreatedAt)
	})

	groups := make([]ParcelGroup, 0, len(buckets))
	for _, b := range buckets {
		r := core.RollupRecords(b.Items, core.Parcel.COD)
		views := make([]ParcelView, 0, len(b.Items))
		for _, p := range b.Items {
			views = append(views, NewParcelView(p))
		}
		groups = append(groups, ParcelGroup{
			Date:     b.Key,
			Count:    r.Count,
			TotalCOD: r.FormattedTotal(),
			Parcels:  views,
		})
	}
	return groups
}

// NewParcelView renders one parcel with its badge and formatted amount.
func NewParcelView(p core.Parcel) ParcelView {
	badge := core.Classify(p.Status)
	created := ""
	if !p.CreatedAt.IsZero() {
		created = p.CreatedAt.Format(time.RFC3339)
	}
	return ParcelView{
		ID:             p.ID,
		VendorID:       p.VendorID,
		VendorName:     p.VendorName,
		RecipientName:  p.RecipientName,
		RecipientPhone: p.RecipientPhone,
		Address:        p.Address,
		CODAmount:      core.FormatAmount(p.COD()),
		Status:         p.Status,
		StatusLabel:    badge.Label,
		StatusBadge:    string(badge.Category),
		RiderName:      p.RiderName,
		RiderComment:   p.RiderComment,
		CreatedAt:      created,
	}
}

// BuildOverview folds per-status tallies into the stat-card snapshot.
// Pending money is pending plus assigned: both are undelivered COD still
// in flight.
func BuildOverview(counts []core.StatusCount) Overview {
	var total, delivered, pending, failed core.Rollup
	for _, c := range counts {
		r := core.Rollup{Count: c.Parcels, Total: c.TotalCOD}
		total = total.Add(r)
		switch c.Status {
		case core.StatusDelivered:
			delivered = delivered.Add(r)
		case core.StatusNotDelivered:
			failed = failed.Add(r)
		case core.StatusPending, core.StatusAssigned:
			pending = pending.Add(r)
		default:
			// Unknown statuses still count toward the grand total.
		}
	}

	return Overview{
		TotalParcels:     total.Count,
		TotalCOD:         total.FormattedTotal(),
		DeliveredParcels: delivered.Count,
		DeliveredCOD:     delivered.FormattedTotal(),
		PendingParcels:   pending.Count,
		PendingCOD:       pending.FormattedTotal(),
		FailedParcels:    failed.Count,
		FailedCOD:        failed.FormattedTotal(),
	}
}

// BuildStatusSummary turns per-status tallies into the flat financial
// report with one badged cell per status.
func BuildStatusSummary(counts []core.StatusCount) StatusSummary {
	out := StatusSummary{Statuses: make([]StatusCell, 0, len(counts))}
	var grand core.Rollup
	for _, c := range counts {
		r := core.Rollup{Count: c.Parcels, Total: c.TotalCOD}
		badge := core.Classify(c.Status)
		out.Statuses = append(out.Statuses, StatusCell{
			Status:   c.Status,
			Label:    badge.Label,
			Badge:    string(badge.Category),
			Parcels:  r.Count,
			TotalCOD: r.FormattedTotal(),
		})
		grand = grand.Add(r)
	}
	out.TotalParcels = grand.Count
	out.GrandTotal = grand.FormattedTotal()
	return out
}

// BuildDaily assembles the two-level financial report: outer buckets by
// day, inner per-status cells. Day totals are rollups of the inner cells,
// so the reconciliation invariant holds by construction.
func BuildDaily(rows []core.DailyStatusRow) DailyReport {
	days := core.GroupBy(rows, func(r core.DailyStatusRow) string {
		return core.DayOrFallback(r.Date)
	})

	out := DailyReport{Days: make([]DayGroup, 0, len(days))}
	grand := core.Rollup{Total: decimal.Zero}

	for _, day := range days {
		dayRoll := core.Rollup{Total: decimal.Zero}
		cells := make([]StatusCell, 0, len(day.Items))
		for _, cell := range core.GroupBy(day.Items, func(r core.DailyStatusRow) string { return r.Status }) {
			r := core.RollupRows(cell.Items,
				func(r core.DailyStatusRow) int { return r.Parcels },
				func(r core.DailyStatusRow) decimal.Decimal { return r.TotalCOD },
			)
			badge := core.Classify(cell.Key)
			cells = append(cells, StatusCell{
				Status:   cell.Key,
				Label:    badge.Label,
				Badge:    string(badge.Category),
				Parcels:  r.Count,
				TotalCOD: r.FormattedTotal(),
			})
			dayRoll = dayRoll.Add(r)
		}
		out.Days = append(out.Days, DayGroup{
			Date:     day.Key,
			Parcels:  dayRoll.Count,
			TotalCOD: dayRoll.FormattedTotal(),
			Statuses: cells,
		})
		grand = grand.Add(dayRoll)
	}

	out.TotalParcels = grand.Count
	out.GrandTotal = grand.FormattedTotal()
	return out
}

// BuildVendorDaily assembles the vendor report: outer buckets by day,
// inner per-vendor cells.
func BuildVendorDaily(rows []core.VendorDailyRow) VendorDailyReport {
	days := core.GroupBy(rows, func(r core.VendorDailyRow) string {
		return core.DayOrFallback(r.Date)
	})

	out := VendorDailyReport{Days: make([]VendorDayGroup, 0, len(days))}
	grand := core.Rollup{Total: decimal.Zero}

	for _, day := range days {
		dayRoll := core.Rollup{Total: decimal.Zero}
		cells := make([]VendorCell, 0, len(day.Items))
		for _, vendor := range core.GroupBy(day.Items, func(r core.VendorDailyRow) int64 { return r.VendorID }) {
			r := core.RollupRows(vendor.Items,
				func(r core.VendorDailyRow) int { return r.Parcels },
				func(r core.VendorDailyRow) decimal.Decimal { return r.TotalCOD },
			)
			cells = append(cells, VendorCell{
				VendorID:   vendor.Key,
				VendorName: vendor.Items[0].VendorName,
				Parcels:    r.Count,
				TotalCOD:   r.FormattedTotal(),
			})
			dayRoll = dayRoll.Add(r)
		}
		out.Days = append(out.Days, VendorDayGroup{
			Date:     day.Key,
			Parcels:  dayRoll.Count,
			TotalCOD: dayRoll.FormattedTotal(),
			Vendors:  cells,
		})
		grand = grand.Add(dayRoll)
	}

	out.TotalParcels = grand.Count
	out.GrandTotal = grand.FormattedTotal()
	return out
}

// BuildRiderSummaries joins per-status parcel rows with daybook totals
// into one line per rider, in the row encounter order.
func BuildRiderSummaries(statusRows []core.RiderStatusRow, daybook []core.RiderDaybookTotals) []RiderReportView {
	logs := make(map[int64]core.RiderDaybookTotals, len(daybook))
	for _, d := range daybook {
		logs[d.RiderID] = d
	}

	riders := core.GroupBy(statusRows, func(r core.RiderStatusRow) int64 { return r.RiderID })
	out := make([]RiderReportView, 0, len(riders))
	for _, rider := range riders {
		view := RiderReportView{
			RiderID:         rider.Key,
			RiderName:       rider.Items[0].RiderName,
			DeliveredCOD:    "0",
			AssignedCOD:     "0",
			NotDeliveredCOD: "0",
			TotalKM:         "0",
			FuelCost:        "0",
		}
		total := core.Rollup{Total: decimal.Zero}
		for _, row := range rider.Items {
			r := core.Rollup{Count: row.Parcels, Total: row.TotalCOD}
			total = total.Add(r)
			switch row.Status {
			case core.StatusDelivered:
				view.DeliveredParcels = r.Count
				view.DeliveredCOD = r.FormattedTotal()
			case core.StatusAssigned:
				view.AssignedParcels = r.Count
				view.AssignedCOD = r.FormattedTotal()
			case core.StatusNotDelivered:
				view.NotDeliveredParcels = r.Count
				view.NotDeliveredCOD = r.FormattedTotal()
			}
		}
		view.TotalParcels = total.Count
		view.TotalCOD = total.FormattedTotal()
		if log, ok := logs[rider.Key]; ok {
			view.TotalKM = core.FormatAmount(log.TotalKM)
			view.WorkingDays = log.WorkingDays
			view.FuelCost = core.FormatAmount(log.FuelCost)
		}
		out = append(out, view)
	}
	return out
}

// BuildDaybook renders a rider's daybook entries.
func BuildDaybook(entries []core.RiderDaybookEntry) []DaybookEntryView {
	out := make([]DaybookEntryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, DaybookEntryView{
			ID:               e.ID,
			Date:             core.DayOrFallback(e.Date),
			TotalKM:          core.FormatAmount(e.TotalKM),
			ParcelsDelivered: e.ParcelsDelivered,
			FuelCost:         core.FormatAmount(e.FuelCost),
			Notes:            e.Notes,
		})
	}
	return out
}

// BuildVendorLedger reconciles each vendor's delivered COD against
// payouts.
func BuildVendorLedger(rows []core.VendorLedgerRow) []VendorLedgerView {
	out := make([]VendorLedgerView, 0, len(rows))
	for _, row := range rows {
		rec := core.Reconcile(row.DeliveredCOD, row.PaidAmount)
		out = append(out, VendorLedgerView{
			VendorID:      row.VendorID,
			VendorName:    row.VendorName,
			TotalParcels:  row.TotalParcels,
			DeliveredCOD:  core.FormatAmount(row.DeliveredCOD),
			PaidAmount:    core.FormatAmount(row.PaidAmount),
			PendingAmount: core.FormatAmount(rec.Pending),
			IsOutstanding: rec.Outstanding,
		})
	}
	return out
}

// BuildPayments renders payout history.
func BuildPayments(payments []core.Payment) []PaymentView {
	out := make([]PaymentView, 0, len(payments))
	for _, p := range payments {
		out = append(out, PaymentView{
			ID:         p.ID,
			VendorID:   p.VendorID,
			VendorName: p.VendorName,
			Amount:     core.FormatAmount(p.Amount),
			Notes:      p.Notes,
			CreatedAt:  p.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}
