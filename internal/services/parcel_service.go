// Package services orchestrates writes across the store and the sync
// queue, and assembles report view models for the API.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"courierops/internal/backend"
	"courierops/internal/core"
)

// SyncPublisher enqueues sheets sync requests. The AMQP client
// implements it; tests use a fake.
type SyncPublisher interface {
	PublishParcelSync(ctx context.Context, parcelID int64, status string) error
}

// ParcelService owns the parcel lifecycle: booking, assignment,
// delivery outcomes, payouts and daybook entries. Writes land in the
// store first; the sync message is best-effort because the worker also
// sweeps pending rows.
type ParcelService struct {
	store     backend.Store
	publisher SyncPublisher
}

func NewParcelService(store backend.Store, publisher SyncPublisher) *ParcelService {
	return &ParcelService{store: store, publisher: publisher}
}

// CreateParcel validates and books a shipment. The COD amount keeps
// null when absent and otherwise normalizes to a decimal, so malformed
// input books a zero-value parcel instead of failing the vendor.
func (s *ParcelService) CreateParcel(ctx context.Context, in core.CreateParcelInput) (core.Parcel, error) {
	if err := in.Validate(); err != nil {
		return core.Parcel{}, err
	}
	vendor, err := s.store.GetUser(ctx, in.VendorID)
	if err != nil {
		return core.Parcel{}, fmt.Errorf("create parcel: %w", err)
	}
	if vendor.Role != core.RoleVendor {
		return core.Parcel{}, fmt.Errorf("create parcel: %w", core.ErrInvalidVendor)
	}

	cod := decimal.NullDecimal{}
	if in.CODAmount != nil {
		cod = decimal.NullDecimal{Decimal: core.Normalize(in.CODAmount), Valid: true}
	}

	parcel, err := s.store.CreateParcel(ctx, core.Parcel{
		VendorID:       in.VendorID,
		RecipientName:  in.RecipientName,
		RecipientPhone: in.RecipientPhone,
		Address:        in.Address,
		CODAmount:      cod,
	})
	if err != nil {
		return core.Parcel{}, fmt.Errorf("save parcel: %w", err)
	}
	return parcel, nil
}

// AssignParcel hands a parcel to a rider.
func (s *ParcelService) AssignParcel(ctx context.Context, parcelID, riderID int64) error {
	rider, err := s.store.GetUser(ctx, riderID)
	if err != nil {
		return fmt.Errorf("assign parcel: %w", err)
	}
	if rider.Role != core.RoleRider {
		return fmt.Errorf("assign parcel: %w", core.ErrInvalidRider)
	}
	return s.store.AssignRider(ctx, parcelID, riderID)
}

// UpdateStatus records a delivery outcome. A delivered parcel is queued
// for the sheets ledger; publish failures are logged only, the sweep
// picks the row up later.
func (s *ParcelService) UpdateStatus(ctx context.Context, parcelID int64, status, comment string) error {
	if err := s.store.UpdateParcelStatus(ctx, parcelID, status, comment); err != nil {
		return err
	}

	if status == core.StatusDelivered {
		if err := s.publishSync(ctx, parcelID, status); err != nil {
			slog.ErrorContext(ctx, "Failed to publish sync message",
				"parcel_id", parcelID, "error", err)
		}
	}
	return nil
}

func (s *ParcelService) publishSync(ctx context.Context, parcelID int64, status string) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Sync publisher not available, relying on pending sweep")
		return nil
	}
	return s.publisher.PublishParcelSync(ctx, parcelID, status)
}

// SearchParcels lists parcels matching term, newest first.
func (s *ParcelService) SearchParcels(ctx context.Context, term string) ([]core.Parcel, error) {
	parcels, err := s.store.ListParcels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list parcels: %w", err)
	}
	return core.FilterParcels(parcels, term), nil
}

// VendorParcels lists one vendor's parcels matching term.
func (s *ParcelService) VendorParcels(ctx context.Context, vendorID int64, term string) ([]core.Parcel, error) {
	parcels, err := s.store.ListParcelsByVendor(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("list vendor parcels: %w", err)
	}
	return core.FilterParcels(parcels, term), nil
}

// RecordPayment stores a payout to a vendor.
func (s *ParcelService) RecordPayment(ctx context.Context, in core.PaymentInput) (core.Payment, error) {
	if err := in.Validate(); err != nil {
		return core.Payment{}, err
	}
	vendor, err := s.store.GetUser(ctx, in.VendorID)
	if err != nil {
		return core.Payment{}, fmt.Errorf("record payment: %w", err)
	}
	if vendor.Role != core.RoleVendor {
		return core.Payment{}, fmt.Errorf("record payment: %w", core.ErrInvalidVendor)
	}

	payment, err := s.store.CreatePayment(ctx, core.Payment{
		VendorID: in.VendorID,
		Amount:   in.Amount,
		Notes:    in.Notes,
	})
	if err != nil {
		return core.Payment{}, fmt.Errorf("save payment: %w", err)
	}
	return payment, nil
}

// LogDaybook upserts a rider's end-of-day entry.
func (s *ParcelService) LogDaybook(ctx context.Context, in core.DaybookInput) (core.RiderDaybookEntry, error) {
	if err := in.Validate(); err != nil {
		return core.RiderDaybookEntry{}, err
	}
	rider, err := s.store.GetUser(ctx, in.RiderID)
	if err != nil {
		return core.RiderDaybookEntry{}, fmt.Errorf("daybook entry: %w", err)
	}
	if rider.Role != core.RoleRider {
		return core.RiderDaybookEntry{}, fmt.Errorf("daybook entry: %w", core.ErrInvalidRider)
	}

	entry, err := s.store.CreateDaybookEntry(ctx, core.RiderDaybookEntry{
		RiderID:          in.RiderID,
		Date:             in.Date,
		TotalKM:          in.TotalKM,
		ParcelsDelivered: in.ParcelsDelivered,
		FuelCost:         in.FuelCost,
		Notes:            in.Notes,
	})
	if err != nil {
		return core.RiderDaybookEntry{}, fmt.Errorf("save daybook entry: %w", err)
	}
	return entry, nil
}

// Riders lists rider profiles for the assignment UI.
func (s *ParcelService) Riders(ctx context.Context) ([]core.User, error) {
	return s.store.ListUsersByRole(ctx, core.RoleRider)
}

// Vendors lists vendor profiles.
func (s *ParcelService) Vendors(ctx context.Context) ([]core.User, error) {
	return s.store.ListUsersByRole(ctx, core.RoleVendor)
}
