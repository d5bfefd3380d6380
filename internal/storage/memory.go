package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"courierops/internal/core"
)

// MemoryStore is an in-process implementation of the repository surface
// for tests and the memory backend. It mirrors the SQLite semantics:
// newest-first listings, per-day grouping on the creation day, status
// resets marking rows for re-sync.
type MemoryStore struct {
	mu       sync.RWMutex
	users    []core.User
	parcels  []core.Parcel
	payments []core.Payment
	daybook  []core.RiderDaybookEntry

	nextUserID    int64
	nextParcelID  int64
	nextPaymentID int64
	nextEntryID   int64

	// Now is the clock for created rows; tests pin it.
	Now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextUserID:    1,
		nextParcelID:  1,
		nextPaymentID: 1,
		nextEntryID:   1,
		Now:           time.Now,
	}
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) CreateUser(_ context.Context, u core.User) (core.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = m.nextUserID
	m.nextUserID++
	u.CreatedAt = m.Now().UTC()
	m.users = append(m.users, u)
	return u, nil
}

func (m *MemoryStore) GetUser(_ context.Context, id int64) (core.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return core.User{}, core.ErrUserNotFound
}

func (m *MemoryStore) ListUsersByRole(_ context.Context, role string) ([]core.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []core.User
	for _, u := range m.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) userName(id int64) string {
	for _, u := range m.users {
		if u.ID == id {
			return u.Name
		}
	}
	return ""
}

func (m *MemoryStore) CreateParcel(_ context.Context, p core.Parcel) (core.Parcel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.Now().UTC()
	p.ID = m.nextParcelID
	m.nextParcelID++
	p.Status = core.StatusPending
	p.SyncStatus = core.SyncPending
	p.VendorName = m.userName(p.VendorID)
	p.CreatedAt = now
	p.UpdatedAt = now
	m.parcels = append(m.parcels, p)
	return p, nil
}

func (m *MemoryStore) GetParcel(_ context.Context, id int64) (core.Parcel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.parcels {
		if p.ID == id {
			return p, nil
		}
	}
	return core.Parcel{}, core.ErrParcelNotFound
}

func (m *MemoryStore) snapshotParcels(keep func(core.Parcel) bool) []core.Parcel {
	var out []core.Parcel
	for _, p := range m.parcels {
		if keep(p) {
			out = append(out, p)
		}
	}
	// Newest first, matching the SQL listing order.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (m *MemoryStore) ListParcels(_ context.Context) ([]core.Parcel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotParcels(func(core.Parcel) bool { return true }), nil
}

func (m *MemoryStore) ListParcelsByVendor(_ context.Context, vendorID int64) ([]core.Parcel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotParcels(func(p core.Parcel) bool { return p.VendorID == vendorID }), nil
}

func (m *MemoryStore) PendingSyncParcels(_ context.Context, limit int) ([]core.Parcel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pending := m.snapshotParcels(func(p core.Parcel) bool {
		return p.SyncStatus == core.SyncPending && p.Status == core.StatusDelivered
	})
	// Oldest first for the sync sweep.
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].UpdatedAt.Before(pending[j].UpdatedAt) })
	if len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (m *MemoryStore) AssignRider(_ context.Context, parcelID, riderID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.parcels {
		if m.parcels[i].ID == parcelID {
			m.parcels[i].RiderID = &riderID
			m.parcels[i].RiderName = m.userName(riderID)
			m.parcels[i].Status = core.StatusAssigned
			m.parcels[i].UpdatedAt = m.Now().UTC()
			return nil
		}
	}
	return core.ErrParcelNotFound
}

func (m *MemoryStore) UpdateParcelStatus(_ context.Context, parcelID int64, status, comment string) error {
	if !core.ValidStatus(status) {
		return core.ErrInvalidStatus
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.parcels {
		if m.parcels[i].ID == parcelID {
			m.parcels[i].Status = status
			m.parcels[i].RiderComment = comment
			m.parcels[i].SyncStatus = core.SyncPending
			m.parcels[i].UpdatedAt = m.Now().UTC()
			return nil
		}
	}
	return core.ErrParcelNotFound
}

func (m *MemoryStore) setSync(parcelID int64, state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.parcels {
		if m.parcels[i].ID == parcelID {
			m.parcels[i].SyncStatus = state
			m.parcels[i].UpdatedAt = m.Now().UTC()
			return nil
		}
	}
	return core.ErrParcelNotFound
}

func (m *MemoryStore) MarkSynced(_ context.Context, parcelID int64) error {
	return m.setSync(parcelID, core.SyncSynced)
}

func (m *MemoryStore) MarkSyncError(_ context.Context, parcelID int64) error {
	return m.setSync(parcelID, core.SyncError)
}

func (m *MemoryStore) CreatePayment(_ context.Context, p core.Payment) (core.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.nextPaymentID
	m.nextPaymentID++
	p.VendorName = m.userName(p.VendorID)
	p.CreatedAt = m.Now().UTC()
	m.payments = append(m.payments, p)
	return p, nil
}

func (m *MemoryStore) ListPayments(_ context.Context) ([]core.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]core.Payment, len(m.payments))
	copy(out, m.payments)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MemoryStore) CreateDaybookEntry(_ context.Context, e core.RiderDaybookEntry) (core.RiderDaybookEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.daybook {
		if m.daybook[i].RiderID == e.RiderID && m.daybook[i].Date == e.Date {
			e.ID = m.daybook[i].ID
			m.daybook[i] = e
			return e, nil
		}
	}
	e.ID = m.nextEntryID
	m.nextEntryID++
	m.daybook = append(m.daybook, e)
	return e, nil
}

func (m *MemoryStore) DaybookEntries(_ context.Context, riderID int64) ([]core.RiderDaybookEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []core.RiderDaybookEntry
	for _, e := range m.daybook {
		if e.RiderID == riderID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (m *MemoryStore) StatusCounts(_ context.Context) ([]core.StatusCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	buckets := core.GroupBy(m.parcels, func(p core.Parcel) string { return p.Status })
	out := make([]core.StatusCount, 0, len(buckets))
	for _, b := range buckets {
		r := core.RollupRecords(b.Items, core.Parcel.COD)
		out = append(out, core.StatusCount{Status: b.Key, Parcels: r.Count, TotalCOD: r.Total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out, nil
}

type dayStatusKey struct {
	day    string
	status string
}

func (m *MemoryStore) dailyRows(keep func(core.Parcel) bool) []core.DailyStatusRow {
	parcels := m.snapshotParcels(keep)
	buckets := core.GroupBy(parcels, func(p core.Parcel) dayStatusKey {
		return dayStatusKey{day: core.DayKey(p.CreatedAt), status: p.Status}
	})
	out := make([]core.DailyStatusRow, 0, len(buckets))
	for _, b := range buckets {
		r := core.RollupRecords(b.Items, core.Parcel.COD)
		out = append(out, core.DailyStatusRow{
			Date: b.Key.day, Status: b.Key.status, Parcels: r.Count, TotalCOD: r.Total,
		})
	}
	return out
}

func (m *MemoryStore) DailyStatusRows(_ context.Context) ([]core.DailyStatusRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dailyRows(func(core.Parcel) bool { return true }), nil
}

func (m *MemoryStore) RiderDailyStatusRows(_ context.Context, riderID int64) ([]core.DailyStatusRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dailyRows(func(p core.Parcel) bool {
		return p.RiderID != nil && *p.RiderID == riderID
	}), nil
}

type dayVendorKey struct {
	day    string
	vendor int64
}

func (m *MemoryStore) VendorDailyRows(_ context.Context) ([]core.VendorDailyRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	parcels := m.snapshotParcels(func(core.Parcel) bool { return true })
	buckets := core.GroupBy(parcels, func(p core.Parcel) dayVendorKey {
		return dayVendorKey{day: core.DayKey(p.CreatedAt), vendor: p.VendorID}
	})
	out := make([]core.VendorDailyRow, 0, len(buckets))
	for _, b := range buckets {
		r := core.RollupRecords(b.Items, core.Parcel.COD)
		out = append(out, core.VendorDailyRow{
			Date:       b.Key.day,
			VendorID:   b.Key.vendor,
			VendorName: b.Items[0].VendorName,
			Parcels:    r.Count,
			TotalCOD:   r.Total,
		})
	}
	return out, nil
}

type riderStatusKey struct {
	rider  int64
	status string
}

func (m *MemoryStore) RiderStatusRows(_ context.Context) ([]core.RiderStatusRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	assigned := m.snapshotParcels(func(p core.Parcel) bool { return p.RiderID != nil })
	buckets := core.GroupBy(assigned, func(p core.Parcel) riderStatusKey {
		return riderStatusKey{rider: *p.RiderID, status: p.Status}
	})
	out := make([]core.RiderStatusRow, 0, len(buckets))
	for _, b := range buckets {
		r := core.RollupRecords(b.Items, core.Parcel.COD)
		out = append(out, core.RiderStatusRow{
			RiderID:   b.Key.rider,
			RiderName: b.Items[0].RiderName,
			Status:    b.Key.status,
			Parcels:   r.Count,
			TotalCOD:  r.Total,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RiderName != out[j].RiderName {
			return out[i].RiderName < out[j].RiderName
		}
		return out[i].Status < out[j].Status
	})
	return out, nil
}

func (m *MemoryStore) RiderDaybookTotals(_ context.Context) ([]core.RiderDaybookTotals, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	buckets := core.GroupBy(m.daybook, func(e core.RiderDaybookEntry) int64 { return e.RiderID })
	out := make([]core.RiderDaybookTotals, 0, len(buckets))
	for _, b := range buckets {
		totals := core.RiderDaybookTotals{RiderID: b.Key, TotalKM: decimal.Zero, FuelCost: decimal.Zero}
		days := map[string]struct{}{}
		for _, e := range b.Items {
			totals.TotalKM = totals.TotalKM.Add(e.TotalKM)
			totals.FuelCost = totals.FuelCost.Add(e.FuelCost)
			days[e.Date] = struct{}{}
		}
		totals.WorkingDays = len(days)
		out = append(out, totals)
	}
	return out, nil
}

func (m *MemoryStore) VendorLedgerRows(_ context.Context) ([]core.VendorLedgerRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []core.VendorLedgerRow
	for _, u := range m.users {
		if u.Role != core.RoleVendor {
			continue
		}
		row := core.VendorLedgerRow{
			VendorID: u.ID, VendorName: u.Name,
			DeliveredCOD: decimal.Zero, PaidAmount: decimal.Zero,
		}
		for _, p := range m.parcels {
			if p.VendorID != u.ID {
				continue
			}
			row.TotalParcels++
			if p.Status == core.StatusDelivered {
				row.DeliveredCOD = row.DeliveredCOD.Add(p.COD())
			}
		}
		for _, pay := range m.payments {
			if pay.VendorID == u.ID {
				row.PaidAmount = row.PaidAmount.Add(pay.Amount)
			}
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VendorName < out[j].VendorName })
	return out, nil
}
