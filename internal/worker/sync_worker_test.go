package worker

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"courierops/internal/amqp"
	"courierops/internal/core"
	"courierops/internal/sheets/memory"
	"courierops/internal/storage"
)

func seedDelivered(t *testing.T, store *storage.MemoryStore) core.Parcel {
	t.Helper()
	ctx := context.Background()
	vendor, err := store.CreateUser(ctx, core.User{Name: "Himal Traders", Email: "himal@example.com", Role: core.RoleVendor})
	if err != nil {
		t.Fatalf("create vendor: %v", err)
	}
	p, err := store.CreateParcel(ctx, core.Parcel{
		VendorID:      vendor.ID,
		RecipientName: "Sita Rai",
		Address:       "Baneshwor",
		CODAmount:     decimal.NullDecimal{Decimal: decimal.RequireFromString("150.25"), Valid: true},
	})
	if err != nil {
		t.Fatalf("create parcel: %v", err)
	}
	if err := store.UpdateParcelStatus(ctx, p.ID, core.StatusDelivered, ""); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	p, _ = store.GetParcel(ctx, p.ID)
	return p
}

func TestHandleSyncMessage(t *testing.T) {
	store := storage.NewMemoryStore()
	ledger := memory.New()
	w := NewSyncWorker(store, ledger, 10)
	ctx := context.Background()
	p := seedDelivered(t, store)

	if err := w.HandleSyncMessage(ctx, amqp.NewParcelSyncMessage(p.ID, core.StatusDelivered)); err != nil {
		t.Fatalf("HandleSyncMessage: %v", err)
	}

	rows := ledger.Parcels()
	if len(rows) != 1 || rows[0].ID != p.ID {
		t.Fatalf("ledger rows = %+v", rows)
	}
	got, _ := store.GetParcel(ctx, p.ID)
	if got.SyncStatus != core.SyncSynced {
		t.Fatalf("sync status = %s", got.SyncStatus)
	}

	// A second delivery of the same message must not duplicate the row.
	if err := w.HandleSyncMessage(ctx, amqp.NewParcelSyncMessage(p.ID, core.StatusDelivered)); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if len(ledger.Parcels()) != 1 {
		t.Fatalf("redelivery duplicated ledger row")
	}
}

func TestHandleSyncMessageUnknownParcel(t *testing.T) {
	w := NewSyncWorker(storage.NewMemoryStore(), memory.New(), 10)

	// Unknown parcels are dropped, not requeued.
	if err := w.HandleSyncMessage(context.Background(), amqp.NewParcelSyncMessage(999, core.StatusDelivered)); err != nil {
		t.Fatalf("unknown parcel should not error: %v", err)
	}
}

func TestHandleSyncMessageSkipsUndelivered(t *testing.T) {
	store := storage.NewMemoryStore()
	ledger := memory.New()
	w := NewSyncWorker(store, ledger, 10)
	ctx := context.Background()

	vendor, _ := store.CreateUser(ctx, core.User{Name: "Himal Traders", Email: "h@example.com", Role: core.RoleVendor})
	p, _ := store.CreateParcel(ctx, core.Parcel{VendorID: vendor.ID, RecipientName: "Ram", Address: "Patan"})

	if err := w.HandleSyncMessage(ctx, amqp.NewParcelSyncMessage(p.ID, core.StatusPending)); err != nil {
		t.Fatalf("HandleSyncMessage: %v", err)
	}
	if len(ledger.Parcels()) != 0 {
		t.Fatalf("undelivered parcel reached the ledger")
	}
}

func TestProcessPending(t *testing.T) {
	store := storage.NewMemoryStore()
	ledger := memory.New()
	w := NewSyncWorker(store, ledger, 10)
	ctx := context.Background()
	p := seedDelivered(t, store)

	if err := w.ProcessPending(ctx); err != nil {
		t.Fatalf("ProcessPending: %v", err)
	}
	if len(ledger.Parcels()) != 1 {
		t.Fatalf("sweep missed the pending parcel")
	}
	got, _ := store.GetParcel(ctx, p.ID)
	if got.SyncStatus != core.SyncSynced {
		t.Fatalf("sync status = %s", got.SyncStatus)
	}
}

func TestSyncFailureMarksError(t *testing.T) {
	store := storage.NewMemoryStore()
	ledger := memory.New()
	ledger.SetFailing(true)
	w := NewSyncWorker(store, ledger, 10)
	ctx := context.Background()
	p := seedDelivered(t, store)

	if err := w.HandleSyncMessage(ctx, amqp.NewParcelSyncMessage(p.ID, core.StatusDelivered)); err == nil {
		t.Fatalf("expected ledger failure to propagate")
	}
	got, _ := store.GetParcel(ctx, p.ID)
	if got.SyncStatus != core.SyncError {
		t.Fatalf("sync status = %s, want error", got.SyncStatus)
	}
}
