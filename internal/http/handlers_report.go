package http

import (
	"context"
	"net/http"

	"courierops/internal/log"
)

// Report handlers wrapped by Server.cached return the raw view model;
// marshaling and caching happen in the wrapper.

func (s *Server) handleStats(ctx context.Context) (any, error) {
	return s.reports.Overview(ctx)
}

func (s *Server) handleFinancialReport(ctx context.Context) (any, error) {
	return s.reports.FinancialSummary(ctx)
}

func (s *Server) handleFinancialReportDaily(ctx context.Context) (any, error) {
	return s.reports.Daily(ctx)
}

func (s *Server) handleVendorReport(ctx context.Context) (any, error) {
	return s.reports.VendorDaily(ctx)
}

func (s *Server) handleRiderReports(ctx context.Context) (any, error) {
	return s.reports.RiderSummaries(ctx)
}

func (s *Server) handleVendorPaymentSummary(ctx context.Context) (any, error) {
	return s.reports.VendorLedger(ctx)
}

func (s *Server) handleDashboard(ctx context.Context) (any, error) {
	return s.reports.Dashboard(ctx)
}

// Per-rider reports are keyed by id, so they bypass the report cache.

func (s *Server) handleRiderDailyStatus(w http.ResponseWriter, r *http.Request) {
	riderID, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid rider id")
		return
	}

	daily, err := s.reports.RiderDailyStatus(r.Context(), riderID)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Rider daily status failed",
			log.FieldRiderID, riderID, log.FieldError, err.Error())
		respondError(w, http.StatusInternalServerError, "failed to build rider daily status")
		return
	}
	_, _ = respondJSON(w, http.StatusOK, daily)
}

func (s *Server) handleRiderDaybook(w http.ResponseWriter, r *http.Request) {
	riderID, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid rider id")
		return
	}

	entries, err := s.reports.Daybook(r.Context(), riderID)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Rider daybook failed",
			log.FieldRiderID, riderID, log.FieldError, err.Error())
		respondError(w, http.StatusInternalServerError, "failed to list daybook entries")
		return
	}
	_, _ = respondJSON(w, http.StatusOK, entries)
}

func (s *Server) handlePaymentHistory(w http.ResponseWriter, r *http.Request) {
	payments, err := s.reports.Payments(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Payment history failed", log.FieldError, err.Error())
		respondError(w, http.StatusInternalServerError, "failed to list payments")
		return
	}
	_, _ = respondJSON(w, http.StatusOK, payments)
}
