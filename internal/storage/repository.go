// Package storage persists parcels, payments and rider daybooks in
// SQLite and exposes the pre-aggregated rows the report builders
// consume.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"courierops/internal/core"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// nullAmount renders a nullable decimal for a TEXT column.
func nullAmount(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.String()
}

func scanAmount(s sql.NullString) decimal.NullDecimal {
	if !s.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: core.Normalize(s.String), Valid: true}
}

// CreateParcel books a shipment and returns the stored row.
func (r *SQLiteRepository) CreateParcel(ctx context.Context, p core.Parcel) (core.Parcel, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO parcels (vendor_id, recipient_name, recipient_phone, address,
		                     cod_amount, status, sync_status, created_day, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.VendorID, p.RecipientName, p.RecipientPhone, p.Address,
		nullAmount(p.CODAmount), core.StatusPending, core.SyncPending, core.DayKey(now), now, now)
	if err != nil {
		return core.Parcel{}, fmt.Errorf("insert parcel: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Parcel{}, fmt.Errorf("parcel insert id: %w", err)
	}

	slog.InfoContext(ctx, "Parcel created",
		"id", id,
		"vendor_id", p.VendorID,
		"recipient", p.RecipientName)

	return r.GetParcel(ctx, id)
}

const parcelColumns = `
	p.id, p.vendor_id, v.name, p.recipient_name, p.recipient_phone, p.address,
	p.cod_amount, p.status, p.rider_id, COALESCE(r.name, ''), p.rider_comment,
	p.sync_status, p.created_at, p.updated_at`

const parcelJoins = `
	FROM parcels p
	JOIN users v ON v.id = p.vendor_id
	LEFT JOIN users r ON r.id = p.rider_id`

func scanParcel(row interface{ Scan(...any) error }) (core.Parcel, error) {
	var p core.Parcel
	var cod sql.NullString
	var riderID sql.NullInt64
	err := row.Scan(&p.ID, &p.VendorID, &p.VendorName, &p.RecipientName, &p.RecipientPhone,
		&p.Address, &cod, &p.Status, &riderID, &p.RiderName, &p.RiderComment,
		&p.SyncStatus, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return core.Parcel{}, err
	}
	p.CODAmount = scanAmount(cod)
	if riderID.Valid {
		p.RiderID = &riderID.Int64
	}
	return p, nil
}

func (r *SQLiteRepository) GetParcel(ctx context.Context, id int64) (core.Parcel, error) {
	p, err := scanParcel(r.db.QueryRowContext(ctx,
		"SELECT"+parcelColumns+parcelJoins+" WHERE p.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Parcel{}, core.ErrParcelNotFound
	}
	if err != nil {
		return core.Parcel{}, fmt.Errorf("get parcel %d: %w", id, err)
	}
	return p, nil
}

func (r *SQLiteRepository) listParcels(ctx context.Context, where string, args ...any) ([]core.Parcel, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT"+parcelColumns+parcelJoins+" "+where+" ORDER BY p.created_at DESC, p.id DESC", args...)
	if err != nil {
		return nil, fmt.Errorf("list parcels: %w", err)
	}
	defer rows.Close()

	var out []core.Parcel
	for rows.Next() {
		p, err := scanParcel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan parcel: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListParcels(ctx context.Context) ([]core.Parcel, error) {
	return r.listParcels(ctx, "")
}

func (r *SQLiteRepository) ListParcelsByVendor(ctx context.Context, vendorID int64) ([]core.Parcel, error) {
	return r.listParcels(ctx, "WHERE p.vendor_id = ?", vendorID)
}

// PendingSyncParcels returns delivered parcels not yet mirrored to the
// sheets ledger, oldest first.
func (r *SQLiteRepository) PendingSyncParcels(ctx context.Context, limit int) ([]core.Parcel, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT"+parcelColumns+parcelJoins+
			" WHERE p.sync_status = ? AND p.status = ? ORDER BY p.updated_at ASC LIMIT ?",
		core.SyncPending, core.StatusDelivered, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending sync parcels: %w", err)
	}
	defer rows.Close()

	var out []core.Parcel
	for rows.Next() {
		p, err := scanParcel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan parcel: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// AssignRider hands a pending parcel to a rider.
func (r *SQLiteRepository) AssignRider(ctx context.Context, parcelID, riderID int64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE parcels SET rider_id = ?, status = ?, updated_at = ? WHERE id = ?",
		riderID, core.StatusAssigned, time.Now().UTC(), parcelID)
	if err != nil {
		return fmt.Errorf("assign rider: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrParcelNotFound
	}

	slog.InfoContext(ctx, "Parcel assigned", "parcel_id", parcelID, "rider_id", riderID)
	return nil
}

// UpdateParcelStatus records a delivery outcome. A status change resets
// the sync state so the sheets ledger picks the row up again.
func (r *SQLiteRepository) UpdateParcelStatus(ctx context.Context, parcelID int64, status, comment string) error {
	if !core.ValidStatus(status) {
		return fmt.Errorf("update parcel %d: %w", parcelID, core.ErrInvalidStatus)
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE parcels SET status = ?, rider_comment = ?, sync_status = ?, updated_at = ? WHERE id = ?",
		status, comment, core.SyncPending, time.Now().UTC(), parcelID)
	if err != nil {
		return fmt.Errorf("update parcel status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrParcelNotFound
	}
	return nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, parcelID int64) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE parcels SET sync_status = ?, updated_at = ? WHERE id = ?",
		core.SyncSynced, time.Now().UTC(), parcelID); err != nil {
		return fmt.Errorf("mark parcel synced: %w", err)
	}
	slog.InfoContext(ctx, "Parcel marked as synced", "id", parcelID)
	return nil
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, parcelID int64) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE parcels SET sync_status = ?, updated_at = ? WHERE id = ?",
		core.SyncError, time.Now().UTC(), parcelID); err != nil {
		return fmt.Errorf("mark parcel sync error: %w", err)
	}
	slog.WarnContext(ctx, "Parcel marked with sync error", "id", parcelID)
	return nil
}

// CreateUser registers a vendor, rider or admin profile.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (name, email, phone, role, citizenship_no, bike_no, license_no, approved, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Name, u.Email, u.Phone, u.Role, u.CitizenshipNo, u.BikeNo, u.LicenseNo, u.Approved, time.Now().UTC())
	if err != nil {
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	u.ID, err = res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("user insert id: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, role, citizenship_no, bike_no, license_no, approved, created_at
		FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.CitizenshipNo, &u.BikeNo, &u.LicenseNo, &u.Approved, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrUserNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

func (r *SQLiteRepository) ListUsersByRole(ctx context.Context, role string) ([]core.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, phone, role, citizenship_no, bike_no, license_no, approved, created_at
		FROM users WHERE role = ? ORDER BY name`, role)
	if err != nil {
		return nil, fmt.Errorf("list %s users: %w", role, err)
	}
	defer rows.Close()

	var out []core.User
	for rows.Next() {
		var u core.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role,
			&u.CitizenshipNo, &u.BikeNo, &u.LicenseNo, &u.Approved, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// CreatePayment records a vendor payout.
func (r *SQLiteRepository) CreatePayment(ctx context.Context, p core.Payment) (core.Payment, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO payments (vendor_id, amount, notes, created_at) VALUES (?, ?, ?, ?)",
		p.VendorID, p.Amount.String(), p.Notes, now)
	if err != nil {
		return core.Payment{}, fmt.Errorf("insert payment: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return core.Payment{}, fmt.Errorf("payment insert id: %w", err)
	}
	p.CreatedAt = now

	slog.InfoContext(ctx, "Payment recorded",
		"id", p.ID,
		"vendor_id", p.VendorID,
		"amount", p.Amount.String())
	return p, nil
}

func (r *SQLiteRepository) ListPayments(ctx context.Context) ([]core.Payment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT pm.id, pm.vendor_id, v.name, pm.amount, pm.notes, pm.created_at
		FROM payments pm
		JOIN users v ON v.id = pm.vendor_id
		ORDER BY pm.created_at DESC, pm.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []core.Payment
	for rows.Next() {
		var p core.Payment
		var amount string
		if err := rows.Scan(&p.ID, &p.VendorID, &p.VendorName, &amount, &p.Notes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.Amount = core.Normalize(amount)
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreateDaybookEntry upserts a rider's log for one day.
func (r *SQLiteRepository) CreateDaybookEntry(ctx context.Context, e core.RiderDaybookEntry) (core.RiderDaybookEntry, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO rider_daybook (rider_id, entry_date, total_km, parcels_delivered, fuel_cost, notes)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (rider_id, entry_date) DO UPDATE SET
			total_km = excluded.total_km,
			parcels_delivered = excluded.parcels_delivered,
			fuel_cost = excluded.fuel_cost,
			notes = excluded.notes`,
		e.RiderID, e.Date, e.TotalKM.String(), e.ParcelsDelivered, e.FuelCost.String(), e.Notes)
	if err != nil {
		return core.RiderDaybookEntry{}, fmt.Errorf("insert daybook entry: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil && id > 0 {
		e.ID = id
	}
	return e, nil
}

func (r *SQLiteRepository) DaybookEntries(ctx context.Context, riderID int64) ([]core.RiderDaybookEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, rider_id, entry_date, total_km, parcels_delivered, fuel_cost, notes
		FROM rider_daybook WHERE rider_id = ? ORDER BY entry_date DESC`, riderID)
	if err != nil {
		return nil, fmt.Errorf("list daybook entries: %w", err)
	}
	defer rows.Close()

	var out []core.RiderDaybookEntry
	for rows.Next() {
		var e core.RiderDaybookEntry
		var km, fuel string
		if err := rows.Scan(&e.ID, &e.RiderID, &e.Date, &km, &e.ParcelsDelivered, &fuel, &e.Notes); err != nil {
			return nil, fmt.Errorf("scan daybook entry: %w", err)
		}
		e.TotalKM = core.Normalize(km)
		e.FuelCost = core.Normalize(fuel)
		out = append(out, e)
	}
	return out, rows.Err()
}

// StatusCounts tallies the whole fleet per status.
func (r *SQLiteRepository) StatusCounts(ctx context.Context) ([]core.StatusCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(CAST(cod_amount AS REAL)), 0)
		FROM parcels GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}
	defer rows.Close()

	var out []core.StatusCount
	for rows.Next() {
		var c core.StatusCount
		var total float64
		if err := rows.Scan(&c.Status, &c.Parcels, &total); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		c.TotalCOD = decimal.NewFromFloat(total)
		out = append(out, c)
	}
	return out, rows.Err()
}

// DailyStatusRows feeds the daily financial report, newest day first.
func (r *SQLiteRepository) DailyStatusRows(ctx context.Context) ([]core.DailyStatusRow, error) {
	return r.dailyStatusRows(ctx,
		`SELECT created_day, status, COUNT(*), COALESCE(SUM(CAST(cod_amount AS REAL)), 0)
		 FROM parcels GROUP BY created_day, status
		 ORDER BY created_day DESC, status`)
}

// RiderDailyStatusRows is one rider's per-day breakdown.
func (r *SQLiteRepository) RiderDailyStatusRows(ctx context.Context, riderID int64) ([]core.DailyStatusRow, error) {
	return r.dailyStatusRows(ctx,
		`SELECT created_day, status, COUNT(*), COALESCE(SUM(CAST(cod_amount AS REAL)), 0)
		 FROM parcels WHERE rider_id = ? GROUP BY created_day, status
		 ORDER BY created_day DESC, status`, riderID)
}

func (r *SQLiteRepository) dailyStatusRows(ctx context.Context, query string, args ...any) ([]core.DailyStatusRow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("daily status rows: %w", err)
	}
	defer rows.Close()

	var out []core.DailyStatusRow
	for rows.Next() {
		var row core.DailyStatusRow
		var total float64
		if err := rows.Scan(&row.Date, &row.Status, &row.Parcels, &total); err != nil {
			return nil, fmt.Errorf("scan daily status row: %w", err)
		}
		row.TotalCOD = decimal.NewFromFloat(total)
		out = append(out, row)
	}
	return out, rows.Err()
}

// VendorDailyRows feeds the per-vendor daily report.
func (r *SQLiteRepository) VendorDailyRows(ctx context.Context) ([]core.VendorDailyRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.created_day, p.vendor_id, v.name, COUNT(*), COALESCE(SUM(CAST(p.cod_amount AS REAL)), 0)
		FROM parcels p
		JOIN users v ON v.id = p.vendor_id
		GROUP BY p.created_day, p.vendor_id
		ORDER BY p.created_day DESC, v.name`)
	if err != nil {
		return nil, fmt.Errorf("vendor daily rows: %w", err)
	}
	defer rows.Close()

	var out []core.VendorDailyRow
	for rows.Next() {
		var row core.VendorDailyRow
		var total float64
		if err := rows.Scan(&row.Date, &row.VendorID, &row.VendorName, &row.Parcels, &total); err != nil {
			return nil, fmt.Errorf("scan vendor daily row: %w", err)
		}
		row.TotalCOD = decimal.NewFromFloat(total)
		out = append(out, row)
	}
	return out, rows.Err()
}

// RiderStatusRows feeds the rider performance report.
func (r *SQLiteRepository) RiderStatusRows(ctx context.Context) ([]core.RiderStatusRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.rider_id, u.name, p.status, COUNT(*), COALESCE(SUM(CAST(p.cod_amount AS REAL)), 0)
		FROM parcels p
		JOIN users u ON u.id = p.rider_id
		WHERE p.rider_id IS NOT NULL
		GROUP BY p.rider_id, p.status
		ORDER BY u.name, p.status`)
	if err != nil {
		return nil, fmt.Errorf("rider status rows: %w", err)
	}
	defer rows.Close()

	var out []core.RiderStatusRow
	for rows.Next() {
		var row core.RiderStatusRow
		var total float64
		if err := rows.Scan(&row.RiderID, &row.RiderName, &row.Status, &row.Parcels, &total); err != nil {
			return nil, fmt.Errorf("scan rider status row: %w", err)
		}
		row.TotalCOD = decimal.NewFromFloat(total)
		out = append(out, row)
	}
	return out, rows.Err()
}

// RiderDaybookTotals aggregates each rider's daybook.
func (r *SQLiteRepository) RiderDaybookTotals(ctx context.Context) ([]core.RiderDaybookTotals, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT rider_id,
		       COALESCE(SUM(CAST(total_km AS REAL)), 0),
		       COUNT(DISTINCT entry_date),
		       COALESCE(SUM(CAST(fuel_cost AS REAL)), 0)
		FROM rider_daybook GROUP BY rider_id`)
	if err != nil {
		return nil, fmt.Errorf("rider daybook totals: %w", err)
	}
	defer rows.Close()

	var out []core.RiderDaybookTotals
	for rows.Next() {
		var row core.RiderDaybookTotals
		var km, fuel float64
		if err := rows.Scan(&row.RiderID, &km, &row.WorkingDays, &fuel); err != nil {
			return nil, fmt.Errorf("scan rider daybook totals: %w", err)
		}
		row.TotalKM = decimal.NewFromFloat(km)
		row.FuelCost = decimal.NewFromFloat(fuel)
		out = append(out, row)
	}
	return out, rows.Err()
}

// VendorLedgerRows drives the payment summary: delivered COD per vendor
// against payouts already made.
func (r *SQLiteRepository) VendorLedgerRows(ctx context.Context) ([]core.VendorLedgerRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT v.id, v.name,
		       COUNT(p.id),
		       COALESCE(SUM(CASE WHEN p.status = 'delivered' THEN CAST(p.cod_amount AS REAL) END), 0),
		       COALESCE((SELECT SUM(CAST(amount AS REAL)) FROM payments WHERE vendor_id = v.id), 0)
		FROM users v
		LEFT JOIN parcels p ON p.vendor_id = v.id
		WHERE v.role = 'vendor'
		GROUP BY v.id
		ORDER BY v.name`)
	if err != nil {
		return nil, fmt.Errorf("vendor ledger rows: %w", err)
	}
	defer rows.Close()

	var out []core.VendorLedgerRow
	for rows.Next() {
		var row core.VendorLedgerRow
		var delivered, paid float64
		if err := rows.Scan(&row.VendorID, &row.VendorName, &row.TotalParcels, &delivered, &paid); err != nil {
			return nil, fmt.Errorf("scan vendor ledger row: %w", err)
		}
		row.DeliveredCOD = decimal.NewFromFloat(delivered)
		row.PaidAmount = decimal.NewFromFloat(paid)
		out = append(out, row)
	}
	return out, rows.Err()
}
