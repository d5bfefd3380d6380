package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"courierops/internal/core"
	"courierops/internal/storage"
)

// seedFleet books parcels across two days with a pinned clock:
// day one carries 100 and 150.25, day two a parcel with no amount.
func seedFleet(t *testing.T) (*storage.MemoryStore, *ParcelService, core.User, core.User) {
	t.Helper()
	store := storage.NewMemoryStore()
	vendor, rider := seedUsers(t, store)
	svc := NewParcelService(store, &fakePublisher{})
	ctx := context.Background()

	dayOne := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return dayOne }

	p1, err := svc.CreateParcel(ctx, core.CreateParcelInput{
		VendorID: vendor.ID, RecipientName: "Sita Rai", Address: "Baneshwor", CODAmount: "100",
	})
	if err != nil {
		t.Fatalf("seed parcel: %v", err)
	}
	if _, err := svc.CreateParcel(ctx, core.CreateParcelInput{
		VendorID: vendor.ID, RecipientName: "Ram Shrestha", Address: "Patan", CODAmount: "150.25",
	}); err != nil {
		t.Fatalf("seed parcel: %v", err)
	}

	store.Now = func() time.Time { return dayOne.Add(24 * time.Hour) }
	if _, err := svc.CreateParcel(ctx, core.CreateParcelInput{
		VendorID: vendor.ID, RecipientName: "Gita KC", Address: "Pokhara",
	}); err != nil {
		t.Fatalf("seed parcel: %v", err)
	}

	if err := svc.AssignParcel(ctx, p1.ID, rider.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := svc.UpdateStatus(ctx, p1.ID, core.StatusDelivered, ""); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	return store, svc, vendor, rider
}

func TestReportServiceDaily(t *testing.T) {
	store, _, _, _ := seedFleet(t)
	reports := NewReportService(store)
	ctx := context.Background()

	daily, err := reports.Daily(ctx)
	if err != nil {
		t.Fatalf("Daily: %v", err)
	}
	if daily.GrandTotal != "250.25" || daily.TotalParcels != 3 {
		t.Fatalf("grand = %s over %d", daily.GrandTotal, daily.TotalParcels)
	}

	byDate := map[string]string{}
	for _, d := range daily.Days {
		byDate[d.Date] = d.TotalCOD
	}
	if byDate["2026-08-01"] != "250.25" || byDate["2026-08-02"] != "0" {
		t.Fatalf("day totals = %v", byDate)
	}
}

func TestReportServiceOverview(t *testing.T) {
	store, _, _, _ := seedFleet(t)
	reports := NewReportService(store)

	o, err := reports.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if o.TotalParcels != 3 || o.TotalCOD != "250.25" {
		t.Fatalf("total = %d / %s", o.TotalParcels, o.TotalCOD)
	}
	if o.DeliveredParcels != 1 || o.DeliveredCOD != "100" {
		t.Fatalf("delivered = %d / %s", o.DeliveredParcels, o.DeliveredCOD)
	}
	// The undelivered parcels, with and without amounts, are pending money.
	if o.PendingParcels != 2 || o.PendingCOD != "150.25" {
		t.Fatalf("pending = %d / %s", o.PendingParcels, o.PendingCOD)
	}
}

func TestReportServiceVendorLedger(t *testing.T) {
	store, svc, vendor, _ := seedFleet(t)
	reports := NewReportService(store)
	ctx := context.Background()

	if _, err := svc.RecordPayment(ctx, core.PaymentInput{
		VendorID: vendor.ID, Amount: decimal.RequireFromString("40"),
	}); err != nil {
		t.Fatalf("payment: %v", err)
	}

	ledger, err := reports.VendorLedger(ctx)
	if err != nil {
		t.Fatalf("VendorLedger: %v", err)
	}
	if len(ledger) != 1 {
		t.Fatalf("ledger rows = %d", len(ledger))
	}
	row := ledger[0]
	if row.DeliveredCOD != "100" || row.PaidAmount != "40" || row.PendingAmount != "60" || !row.IsOutstanding {
		t.Fatalf("ledger = %+v", row)
	}
}

func TestReportServiceRiderViews(t *testing.T) {
	store, svc, _, rider := seedFleet(t)
	reports := NewReportService(store)
	ctx := context.Background()

	if _, err := svc.LogDaybook(ctx, core.DaybookInput{
		RiderID: rider.ID, Date: "2026-08-01", TotalKM: decimal.RequireFromString("35.5"), ParcelsDelivered: 1, FuelCost: decimal.NewFromInt(200),
	}); err != nil {
		t.Fatalf("daybook: %v", err)
	}

	riders, err := reports.RiderSummaries(ctx)
	if err != nil {
		t.Fatalf("RiderSummaries: %v", err)
	}
	if len(riders) != 1 {
		t.Fatalf("riders = %d", len(riders))
	}
	r := riders[0]
	if r.DeliveredParcels != 1 || r.DeliveredCOD != "100" || r.TotalKM != "35.50" || r.WorkingDays != 1 {
		t.Fatalf("rider summary = %+v", r)
	}

	status, err := reports.RiderDailyStatus(ctx, rider.ID)
	if err != nil {
		t.Fatalf("RiderDailyStatus: %v", err)
	}
	if status.TotalParcels != 1 || status.GrandTotal != "100" {
		t.Fatalf("rider daily = %+v", status)
	}

	book, err := reports.Daybook(ctx, rider.ID)
	if err != nil || len(book) != 1 || book[0].TotalKM != "35.50" {
		t.Fatalf("daybook view = %+v, err %v", book, err)
	}
}

func TestReportServiceDashboard(t *testing.T) {
	store, _, _, _ := seedFleet(t)
	reports := NewReportService(store)

	dash, err := reports.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if dash.Overview.TotalParcels != 3 {
		t.Fatalf("overview = %+v", dash.Overview)
	}
	if dash.Daily.GrandTotal != "250.25" {
		t.Fatalf("daily grand = %s", dash.Daily.GrandTotal)
	}
	if len(dash.VendorDaily.Days) == 0 || len(dash.VendorLedger) != 1 {
		t.Fatalf("dashboard sections missing: %+v", dash)
	}
}
