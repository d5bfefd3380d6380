package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"courierops/internal/backend"
	"courierops/internal/report"
)

// ReportService reads aggregated rows from the store and assembles the
// report view models.
type ReportService struct {
	store backend.Store
}

func NewReportService(store backend.Store) *ReportService {
	return &ReportService{store: store}
}

func (s *ReportService) Overview(ctx context.Context) (report.Overview, error) {
	counts, err := s.store.StatusCounts(ctx)
	if err != nil {
		return report.Overview{}, fmt.Errorf("status counts: %w", err)
	}
	return report.BuildOverview(counts), nil
}

func (s *ReportService) FinancialSummary(ctx context.Context) (report.StatusSummary, error) {
	counts, err := s.store.StatusCounts(ctx)
	if err != nil {
		return report.StatusSummary{}, fmt.Errorf("status counts: %w", err)
	}
	return report.BuildStatusSummary(counts), nil
}

func (s *ReportService) Daily(ctx context.Context) (report.DailyReport, error) {
	rows, err := s.store.DailyStatusRows(ctx)
	if err != nil {
		return report.DailyReport{}, fmt.Errorf("daily status rows: %w", err)
	}
	return report.BuildDaily(rows), nil
}

func (s *ReportService) VendorDaily(ctx context.Context) (report.VendorDailyReport, error) {
	rows, err := s.store.VendorDailyRows(ctx)
	if err != nil {
		return report.VendorDailyReport{}, fmt.Errorf("vendor daily rows: %w", err)
	}
	return report.BuildVendorDaily(rows), nil
}

func (s *ReportService) RiderSummaries(ctx context.Context) ([]report.RiderReportView, error) {
	statusRows, err := s.store.RiderStatusRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("rider status rows: %w", err)
	}
	daybook, err := s.store.RiderDaybookTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("rider daybook totals: %w", err)
	}
	return report.BuildRiderSummaries(statusRows, daybook), nil
}

func (s *ReportService) RiderDailyStatus(ctx context.Context, riderID int64) (report.DailyReport, error) {
	rows, err := s.store.RiderDailyStatusRows(ctx, riderID)
	if err != nil {
		return report.DailyReport{}, fmt.Errorf("rider daily status rows: %w", err)
	}
	return report.BuildDaily(rows), nil
}

func (s *ReportService) Daybook(ctx context.Context, riderID int64) ([]report.DaybookEntryView, error) {
	entries, err := s.store.DaybookEntries(ctx, riderID)
	if err != nil {
		return nil, fmt.Errorf("daybook entries: %w", err)
	}
	return report.BuildDaybook(entries), nil
}

func (s *ReportService) VendorLedger(ctx context.Context) ([]report.VendorLedgerView, error) {
	rows, err := s.store.VendorLedgerRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("vendor ledger rows: %w", err)
	}
	return report.BuildVendorLedger(rows), nil
}

func (s *ReportService) Payments(ctx context.Context) ([]report.PaymentView, error) {
	payments, err := s.store.ListPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return report.BuildPayments(payments), nil
}

// Dashboard assembles the combined snapshot. The four sections read
// independent queries, so they run concurrently; the first error wins.
func (s *ReportService) Dashboard(ctx context.Context) (report.Dashboard, error) {
	var dash report.Dashboard
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		o, err := s.Overview(ctx)
		dash.Overview = o
		return err
	})
	g.Go(func() error {
		d, err := s.Daily(ctx)
		dash.Daily = d
		return err
	})
	g.Go(func() error {
		v, err := s.VendorDaily(ctx)
		dash.VendorDaily = v
		return err
	})
	g.Go(func() error {
		l, err := s.VendorLedger(ctx)
		dash.VendorLedger = l
		return err
	})

	if err := g.Wait(); err != nil {
		return report.Dashboard{}, fmt.Errorf("assemble dashboard: %w", err)
	}
	return dash, nil
}
