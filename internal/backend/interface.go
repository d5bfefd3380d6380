package backend

import (
	"context"

	"courierops/internal/core"
)

// ParcelStore covers the parcel lifecycle.
type ParcelStore interface {
	CreateParcel(ctx context.Context, p core.Parcel) (core.Parcel, error)
	GetParcel(ctx context.Context, id int64) (core.Parcel, error)
	ListParcels(ctx context.Context) ([]core.Parcel, error)
	ListParcelsByVendor(ctx context.Context, vendorID int64) ([]core.Parcel, error)
	PendingSyncParcels(ctx context.Context, limit int) ([]core.Parcel, error)
	AssignRider(ctx context.Context, parcelID, riderID int64) error
	UpdateParcelStatus(ctx context.Context, parcelID int64, status, comment string) error
	MarkSynced(ctx context.Context, parcelID int64) error
	MarkSyncError(ctx context.Context, parcelID int64) error
}

// UserStore covers vendor/rider/admin profiles.
type UserStore interface {
	CreateUser(ctx context.Context, u core.User) (core.User, error)
	GetUser(ctx context.Context, id int64) (core.User, error)
	ListUsersByRole(ctx context.Context, role string) ([]core.User, error)
}

// PaymentStore covers vendor payouts.
type PaymentStore interface {
	CreatePayment(ctx context.Context, p core.Payment) (core.Payment, error)
	ListPayments(ctx context.Context) ([]core.Payment, error)
}

// DaybookStore covers rider daybooks.
type DaybookStore interface {
	CreateDaybookEntry(ctx context.Context, e core.RiderDaybookEntry) (core.RiderDaybookEntry, error)
	DaybookEntries(ctx context.Context, riderID int64) ([]core.RiderDaybookEntry, error)
}

// ReportStore provides the pre-aggregated rows the report builders
// consume.
type ReportStore interface {
	StatusCounts(ctx context.Context) ([]core.StatusCount, error)
	DailyStatusRows(ctx context.Context) ([]core.DailyStatusRow, error)
	RiderDailyStatusRows(ctx context.Context, riderID int64) ([]core.DailyStatusRow, error)
	VendorDailyRows(ctx context.Context) ([]core.VendorDailyRow, error)
	RiderStatusRows(ctx context.Context) ([]core.RiderStatusRow, error)
	RiderDaybookTotals(ctx context.Context) ([]core.RiderDaybookTotals, error)
	VendorLedgerRows(ctx context.Context) ([]core.VendorLedgerRow, error)
}

// Store is the full persistence surface behind the API.
type Store interface {
	ParcelStore
	UserStore
	PaymentStore
	DaybookStore
	ReportStore
	Close() error
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result is a created store plus its cleanup.
type Result struct {
	Store   Store
	Cleanup CleanupFunc
}

// Type selects the persistence implementation.
type Type string

const (
	TypeSQLite Type = "sqlite"
	TypeMemory Type = "memory"
)

func (t Type) String() string { return string(t) }

func (t Type) IsValid() bool {
	switch t {
	case TypeSQLite, TypeMemory:
		return true
	}
	return false
}
