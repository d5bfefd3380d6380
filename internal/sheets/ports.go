package sheets

import (
	"context"

	"courierops/internal/core"
	"courierops/internal/report"
)

// Ports for outbound adapters.
type (
	// LedgerWriter appends one delivered parcel to the COD ledger sheet.
	LedgerWriter interface {
		AppendParcel(ctx context.Context, p core.Parcel) (rowRef string, err error)
	}

	// ReportWriter appends a daily financial summary to the report sheet,
	// one row per (day, status) cell.
	ReportWriter interface {
		AppendDailyReport(ctx context.Context, rep report.DailyReport) error
	}

	// Exporter is the full export surface the workers use.
	Exporter interface {
		LedgerWriter
		ReportWriter
	}
)
