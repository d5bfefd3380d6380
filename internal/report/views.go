package report

// View models returned by the JSON API. Amount fields are
// display-formatted strings (see core.FormatAmount); arithmetic never
// happens on these.

type ParcelView struct {
	ID             int64  `json:"id"`
	VendorID       int64  `json:"vendor_id"`
	VendorName     string `json:"vendor_name"`
	RecipientName  string `json:"recipient_name"`
	RecipientPhone string `json:"recipient_phone"`
	Address        string `json:"address"`
	CODAmount      string `json:"cod_amount"`
	Status         string `json:"status"`
	StatusLabel    string `json:"status_label"`
	StatusBadge    string `json:"status_badge"`
	RiderName      string `json:"rider_name,omitempty"`
	RiderComment   string `json:"rider_comment,omitempty"`
	CreatedAt      string `json:"created_at"`
}

// ParcelGroup is one day's parcels with their rollup.
type ParcelGroup struct {
	Date     string       `json:"date"`
	Count    int          `json:"count"`
	TotalCOD string       `json:"total_cod"`
	Parcels  []ParcelView `json:"parcels"`
}

// Overview feeds the dashboard stat cards. Pending covers parcels whose
// money is still in flight, so it includes both unassigned and assigned
// undelivered parcels.
type Overview struct {
	TotalParcels     int    `json:"total_parcels"`
	TotalCOD         string `json:"total_cod"`
	DeliveredParcels int    `json:"delivered_parcels"`
	DeliveredCOD     string `json:"delivered_cod"`
	PendingParcels   int    `json:"pending_parcels"`
	PendingCOD       string `json:"pending_cod"`
	FailedParcels    int    `json:"failed_parcels"`
	FailedCOD        string `json:"failed_cod"`
}

// StatusCell is one status slice inside a day group.
type StatusCell struct {
	Status   string `json:"status"`
	Label    string `json:"label"`
	Badge    string `json:"badge"`
	Parcels  int    `json:"parcels"`
	TotalCOD string `json:"total_cod"`
}

// StatusSummary is the flat financial report: one cell per status with
// the grand rollup across all of them.
type StatusSummary struct {
	Statuses     []StatusCell `json:"statuses"`
	TotalParcels int          `json:"total_parcels"`
	GrandTotal   string       `json:"grand_total"`
}

// DayGroup is one day of a two-level report: per-status cells plus the
// day's own rollup. The day total always equals the sum of its cells.
type DayGroup struct {
	Date     string       `json:"date"`
	Parcels  int          `json:"parcels"`
	TotalCOD string       `json:"total_cod"`
	Statuses []StatusCell `json:"statuses"`
}

// DailyReport is the financial report: days in encounter order plus the
// grand rollup across all days.
type DailyReport struct {
	Days         []DayGroup `json:"days"`
	TotalParcels int        `json:"total_parcels"`
	GrandTotal   string     `json:"grand_total"`
}

type VendorCell struct {
	VendorID   int64  `json:"vendor_id"`
	VendorName string `json:"vendor_name"`
	Parcels    int    `json:"parcels"`
	TotalCOD   string `json:"total_cod"`
}

type VendorDayGroup struct {
	Date     string       `json:"date"`
	Parcels  int          `json:"parcels"`
	TotalCOD string       `json:"total_cod"`
	Vendors  []VendorCell `json:"vendors"`
}

type VendorDailyReport struct {
	Days         []VendorDayGroup `json:"days"`
	TotalParcels int              `json:"total_parcels"`
	GrandTotal   string           `json:"grand_total"`
}

// RiderReportView is one rider's line in the rider performance report.
type RiderReportView struct {
	RiderID             int64  `json:"rider_id"`
	RiderName           string `json:"rider_name"`
	TotalParcels        int    `json:"total_parcels"`
	TotalCOD            string `json:"total_cod"`
	DeliveredParcels    int    `json:"delivered_parcels"`
	DeliveredCOD        string `json:"delivered_cod"`
	AssignedParcels     int    `json:"assigned_parcels"`
	AssignedCOD         string `json:"assigned_cod"`
	NotDeliveredParcels int    `json:"not_delivered_parcels"`
	NotDeliveredCOD     string `json:"not_delivered_cod"`
	TotalKM             string `json:"total_km"`
	WorkingDays         int    `json:"working_days"`
	FuelCost            string `json:"fuel_cost"`
}

// DaybookEntryView is one rider daybook line.
type DaybookEntryView struct {
	ID               int64  `json:"id"`
	Date             string `json:"date"`
	TotalKM          string `json:"total_km"`
	ParcelsDelivered int    `json:"parcels_delivered"`
	FuelCost         string `json:"fuel_cost"`
	Notes            string `json:"notes,omitempty"`
}

// VendorLedgerView is one vendor's settlement position. PendingAmount
// keeps its sign; an overpaid vendor shows a negative balance.
type VendorLedgerView struct {
	VendorID      int64  `json:"vendor_id"`
	VendorName    string `json:"vendor_name"`
	TotalParcels  int    `json:"total_parcels"`
	DeliveredCOD  string `json:"total_delivered_amount"`
	PaidAmount    string `json:"total_paid_amount"`
	PendingAmount string `json:"pending_amount"`
	IsOutstanding bool   `json:"is_outstanding"`
}

type PaymentView struct {
	ID         int64  `json:"id"`
	VendorID   int64  `json:"vendor_id"`
	VendorName string `json:"vendor_name"`
	Amount     string `json:"amount"`
	Notes      string `json:"notes,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// Dashboard is the combined snapshot for the admin landing page.
type Dashboard struct {
	Overview     Overview           `json:"overview"`
	Daily        DailyReport        `json:"daily"`
	VendorDaily  VendorDailyReport  `json:"vendor_daily"`
	VendorLedger []VendorLedgerView `json:"vendor_ledger"`
}
