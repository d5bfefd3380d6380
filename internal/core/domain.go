package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Parcel statuses. Classify in status.go stays total over these plus
// anything unexpected coming from older rows or external feeds.
const (
	StatusPending      = "pending"
	StatusAssigned     = "assigned"
	StatusDelivered    = "delivered"
	StatusNotDelivered = "not_delivered"
)

// Sheets sync states for a parcel row.
const (
	SyncPending = "pending"
	SyncSynced  = "synced"
	SyncError   = "error"
)

// User roles.
const (
	RoleAdmin  = "admin"
	RoleVendor = "vendor"
	RoleRider  = "rider"
)

var (
	ErrEmptyRecipient = errors.New("empty recipient name")
	ErrEmptyAddress   = errors.New("empty delivery address")
	ErrInvalidVendor  = errors.New("invalid vendor id")
	ErrInvalidRider   = errors.New("invalid rider id")
	ErrInvalidStatus  = errors.New("unknown parcel status")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidDate    = errors.New("invalid date")
	ErrParcelNotFound = errors.New("parcel not found")
	ErrUserNotFound   = errors.New("user not found")
)

type (
	// User is a vendor, rider or admin account. Authentication lives
	// upstream; this service only needs the profile fields the reports use.
	User struct {
		ID            int64
		Name          string
		Email         string
		Phone         string
		Role          string
		CitizenshipNo string
		BikeNo        string
		LicenseNo     string
		Approved      bool
		CreatedAt     time.Time
	}

	// Parcel is a single cash-on-delivery shipment. CODAmount is nullable:
	// vendors may book a parcel before the collectable amount is known.
	Parcel struct {
		ID             int64
		VendorID       int64
		VendorName     string
		RecipientName  string
		RecipientPhone string
		Address        string
		CODAmount      decimal.NullDecimal
		Status         string
		RiderID        *int64
		RiderName      string
		RiderComment   string
		SyncStatus     string
		CreatedAt      time.Time
		UpdatedAt      time.Time
	}

	// Payment is money handed over to a vendor against delivered COD.
	Payment struct {
		ID         int64
		VendorID   int64
		VendorName string
		Amount     decimal.Decimal
		Notes      string
		CreatedAt  time.Time
	}

	// RiderDaybookEntry is a rider's end-of-day log.
	RiderDaybookEntry struct {
		ID               int64
		RiderID          int64
		Date             string
		TotalKM          decimal.Decimal
		ParcelsDelivered int
		FuelCost         decimal.Decimal
		Notes            string
	}
)

// COD returns the collectable amount with null coerced to zero.
func (p Parcel) COD() decimal.Decimal {
	return Normalize(p.CODAmount)
}

// Pre-aggregated rows produced by the storage layer's GROUP BY queries.
// The report builders group and roll these up further; counts on these
// rows are already sums, so rollups over them go through RollupRows.
type (
	// StatusCount is the fleet-wide tally for one status.
	StatusCount struct {
		Status   string
		Parcels  int
		TotalCOD decimal.Decimal
	}

	// DailyStatusRow is one (day, status) cell of the financial report.
	DailyStatusRow struct {
		Date     string
		Status   string
		Parcels  int
		TotalCOD decimal.Decimal
	}

	// VendorDailyRow is one (day, vendor) cell of the vendor report.
	VendorDailyRow struct {
		Date       string
		VendorID   int64
		VendorName string
		Parcels    int
		TotalCOD   decimal.Decimal
	}

	// RiderStatusRow is one (rider, status) cell of the rider report.
	RiderStatusRow struct {
		RiderID   int64
		RiderName string
		Status    string
		Parcels   int
		TotalCOD  decimal.Decimal
	}

	// RiderDaybookTotals aggregates a rider's daybook.
	RiderDaybookTotals struct {
		RiderID     int64
		TotalKM     decimal.Decimal
		WorkingDays int
		FuelCost    decimal.Decimal
	}

	// VendorLedgerRow carries the two sides a vendor settlement
	// reconciles: COD collected for the vendor and cash already paid out.
	VendorLedgerRow struct {
		VendorID     int64
		VendorName   string
		TotalParcels int
		DeliveredCOD decimal.Decimal
		PaidAmount   decimal.Decimal
	}
)

// ValidStatus reports whether s is a status this service assigns itself.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusAssigned, StatusDelivered, StatusNotDelivered:
		return true
	}
	return false
}

// CreateParcelInput is a vendor booking a shipment. CODAmount keeps the
// raw decoded value; Normalize decides what it is worth.
type CreateParcelInput struct {
	VendorID       int64
	RecipientName  string
	RecipientPhone string
	Address        string
	CODAmount      any
}

func (in CreateParcelInput) Validate() error {
	if in.VendorID <= 0 {
		return fmt.Errorf("create parcel: %w", ErrInvalidVendor)
	}
	if strings.TrimSpace(in.RecipientName) == "" {
		return fmt.Errorf("create parcel: %w", ErrEmptyRecipient)
	}
	if strings.TrimSpace(in.Address) == "" {
		return fmt.Errorf("create parcel: %w", ErrEmptyAddress)
	}
	return nil
}

// PaymentInput records a payout to a vendor.
type PaymentInput struct {
	VendorID int64
	Amount   decimal.Decimal
	Notes    string
}

func (in PaymentInput) Validate() error {
	if in.VendorID <= 0 {
		return fmt.Errorf("record payment: %w", ErrInvalidVendor)
	}
	if !in.Amount.IsPositive() {
		return fmt.Errorf("record payment: %w", ErrInvalidAmount)
	}
	return nil
}

// DaybookInput records a rider's end-of-day log.
type DaybookInput struct {
	RiderID          int64
	Date             string
	TotalKM          decimal.Decimal
	ParcelsDelivered int
	FuelCost         decimal.Decimal
	Notes            string
}

func (in DaybookInput) Validate() error {
	if in.RiderID <= 0 {
		return fmt.Errorf("daybook entry: %w", ErrInvalidRider)
	}
	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return fmt.Errorf("daybook entry: %w", ErrInvalidDate)
	}
	if in.TotalKM.IsNegative() || in.FuelCost.IsNegative() {
		return fmt.Errorf("daybook entry: %w", ErrInvalidAmount)
	}
	return nil
}
