package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"courierops/internal/core"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func nullDec(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: dec(s), Valid: true}
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// Three parcels across two days, one with no collectable amount: the
// first day totals 250.25, the second totals 0, and the grand rollup
// still counts all three parcels.
func TestParcelsByDayScenario(t *testing.T) {
	parcels := []core.Parcel{
		{ID: 1, CODAmount: nullDec("100"), Status: core.StatusDelivered, CreatedAt: day("2026-08-01")},
		{ID: 2, CODAmount: nullDec("150.25"), Status: core.StatusPending, CreatedAt: day("2026-08-01")},
		{ID: 3, Status: core.StatusAssigned, CreatedAt: day("2026-08-02")},
	}

	groups := ParcelsByDay(parcels)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].Date != "2026-08-01" || groups[0].TotalCOD != "250.25" || groups[0].Count != 2 {
		t.Fatalf("day one = %+v", groups[0])
	}
	if groups[1].Date != "2026-08-02" || groups[1].TotalCOD != "0" || groups[1].Count != 1 {
		t.Fatalf("day two = %+v", groups[1])
	}

	grand := decimal.Zero
	count := 0
	for _, g := range groups {
		grand = grand.Add(dec(g.TotalCOD))
		count += g.Count
	}
	if grand.String() != "250.25" || count != 3 {
		t.Fatalf("grand total = %s over %d parcels", grand, count)
	}
}

func TestParcelsByDayNoDateBucket(t *testing.T) {
	parcels := []core.Parcel{
		{ID: 1, CODAmount: nullDec("10"), CreatedAt: day("2026-08-01")},
		{ID: 2, CODAmount: nullDec("20")}, // zero CreatedAt
	}
	groups := ParcelsByDay(parcels)
	if len(groups) != 2 || groups[1].Date != core.NoDateKey {
		t.Fatalf("groups = %+v", groups)
	}
	if groups[1].Parcels[0].CreatedAt != "" {
		t.Fatalf("no-date parcel created_at = %q", groups[1].Parcels[0].CreatedAt)
	}
}

func TestBuildOverviewPendingIncludesAssigned(t *testing.T) {
	counts := []core.StatusCount{
		{Status: core.StatusDelivered, Parcels: 3, TotalCOD: dec("300")},
		{Status: core.StatusPending, Parcels: 2, TotalCOD: dec("120.50")},
		{Status: core.StatusAssigned, Parcels: 1, TotalCOD: dec("30")},
		{Status: core.StatusNotDelivered, Parcels: 1, TotalCOD: dec("49.50")},
		{Status: "lost", Parcels: 1, TotalCOD: dec("5")},
	}

	o := BuildOverview(counts)
	if o.TotalParcels != 8 || o.TotalCOD != "505" {
		t.Fatalf("total = %d / %s", o.TotalParcels, o.TotalCOD)
	}
	if o.PendingParcels != 3 || o.PendingCOD != "150.50" {
		t.Fatalf("pending = %d / %s, want assigned money included", o.PendingParcels, o.PendingCOD)
	}
	if o.DeliveredParcels != 3 || o.DeliveredCOD != "300" {
		t.Fatalf("delivered = %d / %s", o.DeliveredParcels, o.DeliveredCOD)
	}
	if o.FailedParcels != 1 || o.FailedCOD != "49.50" {
		t.Fatalf("failed = %d / %s", o.FailedParcels, o.FailedCOD)
	}
}

func TestBuildDailyReconciles(t *testing.T) {
	rows := []core.DailyStatusRow{
		{Date: "2026-08-01", Status: core.StatusDelivered, Parcels: 2, TotalCOD: dec("100")},
		{Date: "2026-08-01", Status: core.StatusPending, Parcels: 1, TotalCOD: dec("150.25")},
		{Date: "2026-08-02", Status: core.StatusDelivered, Parcels: 1, TotalCOD: dec("0")},
		{Date: "", Status: core.StatusAssigned, Parcels: 1, TotalCOD: dec("40")},
	}

	rep := BuildDaily(rows)
	if len(rep.Days) != 3 {
		t.Fatalf("got %d days", len(rep.Days))
	}
	if rep.Days[0].TotalCOD != "250.25" || rep.Days[0].Parcels != 3 {
		t.Fatalf("day one = %+v", rep.Days[0])
	}
	if rep.Days[1].TotalCOD != "0" {
		t.Fatalf("day two total = %q", rep.Days[1].TotalCOD)
	}
	if rep.Days[2].Date != core.NoDateKey {
		t.Fatalf("missing-date rows went to %q", rep.Days[2].Date)
	}
	if rep.GrandTotal != "290.25" || rep.TotalParcels != 5 {
		t.Fatalf("grand = %s / %d", rep.GrandTotal, rep.TotalParcels)
	}

	// Every day's total must equal the sum of its status cells.
	for _, d := range rep.Days {
		sum := decimal.Zero
		n := 0
		for _, c := range d.Statuses {
			sum = sum.Add(dec(c.TotalCOD))
			n += c.Parcels
		}
		if sum.String() != dec(d.TotalCOD).String() || n != d.Parcels {
			t.Fatalf("day %s does not reconcile: %s/%d vs cells %s/%d", d.Date, d.TotalCOD, d.Parcels, sum, n)
		}
	}

	// Cells carry the display badge.
	if rep.Days[0].Statuses[0].Badge != "success" || rep.Days[0].Statuses[1].Badge != "warning" {
		t.Fatalf("badges = %+v", rep.Days[0].Statuses)
	}
}

func TestBuildVendorDaily(t *testing.T) {
	rows := []core.VendorDailyRow{
		{Date: "2026-08-01", VendorID: 1, VendorName: "Himal Traders", Parcels: 2, TotalCOD: dec("200")},
		{Date: "2026-08-01", VendorID: 2, VendorName: "Everest Mart", Parcels: 1, TotalCOD: dec("50.25")},
		{Date: "2026-08-02", VendorID: 1, VendorName: "Himal Traders", Parcels: 1, TotalCOD: dec("75")},
	}

	rep := BuildVendorDaily(rows)
	if len(rep.Days) != 2 {
		t.Fatalf("got %d days", len(rep.Days))
	}
	d1 := rep.Days[0]
	if d1.TotalCOD != "250.25" || len(d1.Vendors) != 2 {
		t.Fatalf("day one = %+v", d1)
	}
	if d1.Vendors[0].VendorName != "Himal Traders" || d1.Vendors[1].VendorName != "Everest Mart" {
		t.Fatalf("vendor order = %+v", d1.Vendors)
	}
	if rep.GrandTotal != "325.25" || rep.TotalParcels != 4 {
		t.Fatalf("grand = %s / %d", rep.GrandTotal, rep.TotalParcels)
	}
}

func TestBuildRiderSummaries(t *testing.T) {
	statusRows := []core.RiderStatusRow{
		{RiderID: 5, RiderName: "Bikash", Status: core.StatusDelivered, Parcels: 8, TotalCOD: dec("800.50")},
		{RiderID: 5, RiderName: "Bikash", Status: core.StatusAssigned, Parcels: 2, TotalCOD: dec("150")},
		{RiderID: 6, RiderName: "Suman", Status: core.StatusNotDelivered, Parcels: 1, TotalCOD: dec("60")},
	}
	daybook := []core.RiderDaybookTotals{
		{RiderID: 5, TotalKM: dec("240.5"), WorkingDays: 6, FuelCost: dec("1200")},
	}

	views := BuildRiderSummaries(statusRows, daybook)
	if len(views) != 2 {
		t.Fatalf("got %d riders", len(views))
	}
	b := views[0]
	if b.RiderName != "Bikash" || b.TotalParcels != 10 || b.TotalCOD != "950.50" {
		t.Fatalf("bikash = %+v", b)
	}
	if b.DeliveredParcels != 8 || b.DeliveredCOD != "800.50" || b.AssignedParcels != 2 {
		t.Fatalf("bikash breakdown = %+v", b)
	}
	if b.TotalKM != "240.50" || b.WorkingDays != 6 || b.FuelCost != "1200" {
		t.Fatalf("bikash daybook = %+v", b)
	}
	s := views[1]
	if s.NotDeliveredParcels != 1 || s.TotalKM != "0" || s.WorkingDays != 0 {
		t.Fatalf("suman = %+v", s)
	}
}

func TestBuildVendorLedger(t *testing.T) {
	rows := []core.VendorLedgerRow{
		{VendorID: 1, VendorName: "Himal Traders", TotalParcels: 12, DeliveredCOD: dec("1500"), PaidAmount: dec("1000")},
		{VendorID: 2, VendorName: "Everest Mart", TotalParcels: 3, DeliveredCOD: dec("200"), PaidAmount: dec("350.50")},
	}

	views := BuildVendorLedger(rows)
	if views[0].PendingAmount != "500" || !views[0].IsOutstanding {
		t.Fatalf("owed vendor = %+v", views[0])
	}
	if views[1].PendingAmount != "-150.50" || views[1].IsOutstanding {
		t.Fatalf("overpaid vendor = %+v", views[1])
	}
}
