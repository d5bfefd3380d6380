// Package worker mirrors delivered parcels into the sheets ledger. The
// AMQP consumer is the fast path; a periodic sweep of rows stuck in the
// pending sync state is the backup in case messages are lost.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"courierops/internal/amqp"
	"courierops/internal/backend"
	"courierops/internal/core"
	"courierops/internal/sheets"
)

type SyncWorker struct {
	store     backend.Store
	ledger    sheets.LedgerWriter
	batchSize int
}

func NewSyncWorker(store backend.Store, ledger sheets.LedgerWriter, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 25
	}
	return &SyncWorker{
		store:     store,
		ledger:    ledger,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes one parcel sync request from AMQP. The
// parcel is re-read from the store so the ledger row reflects the
// current state, not the state at publish time.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.ParcelSyncMessage) error {
	parcel, err := w.store.GetParcel(ctx, msg.ParcelID)
	if errors.Is(err, core.ErrParcelNotFound) {
		// The parcel vanished between publish and consume; a requeue
		// would loop forever.
		slog.WarnContext(ctx, "Sync message for unknown parcel", "parcel_id", msg.ParcelID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get parcel: %w", err)
	}

	return w.syncParcel(ctx, parcel)
}

func (w *SyncWorker) syncParcel(ctx context.Context, parcel core.Parcel) error {
	if parcel.Status != core.StatusDelivered {
		slog.InfoContext(ctx, "Skipping undelivered parcel",
			"parcel_id", parcel.ID, "status", parcel.Status)
		return nil
	}
	if parcel.SyncStatus == core.SyncSynced {
		return nil
	}

	ref, err := w.ledger.AppendParcel(ctx, parcel)
	if err != nil {
		if markErr := w.store.MarkSyncError(ctx, parcel.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "parcel_id", parcel.ID, "error", markErr)
		}
		return fmt.Errorf("append parcel to ledger: %w", err)
	}
	if err := w.store.MarkSynced(ctx, parcel.ID); err != nil {
		return fmt.Errorf("mark parcel synced: %w", err)
	}

	slog.InfoContext(ctx, "Parcel mirrored to ledger", "parcel_id", parcel.ID, "row", ref)
	return nil
}

// ProcessPending sweeps parcels still waiting for a ledger row. Errors
// on individual parcels are logged and the sweep continues; the row
// stays in the error state for the next pass.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.store.PendingSyncParcels(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending parcels: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending parcels", "count", len(pending))
	for _, parcel := range pending {
		if err := w.syncParcel(ctx, parcel); err != nil {
			slog.ErrorContext(ctx, "Failed to sync pending parcel",
				"parcel_id", parcel.ID, "error", err)
		}
	}
	return nil
}

// RunPendingSweep runs ProcessPending on a ticker until ctx ends.
func (w *SyncWorker) RunPendingSweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.ProcessPending(ctx); err != nil {
				slog.ErrorContext(ctx, "Pending sweep failed", "error", err)
			}
		}
	}
}
