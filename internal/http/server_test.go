package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"courierops/internal/core"
	applog "courierops/internal/log"
	"courierops/internal/services"
	"courierops/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *storage.MemoryStore, core.User, core.User) {
	t.Helper()
	ctx := context.Background()

	store := storage.NewMemoryStore()
	vendor, err := store.CreateUser(ctx, core.User{Name: "Himal Traders", Email: "himal@example.com", Role: core.RoleVendor})
	if err != nil {
		t.Fatalf("create vendor: %v", err)
	}
	rider, err := store.CreateUser(ctx, core.User{Name: "Bikash", Email: "bikash@example.com", Role: core.RoleRider})
	if err != nil {
		t.Fatalf("create rider: %v", err)
	}

	logger := applog.New(applog.Config{
		Component: "test",
		Handler:   slog.NewTextHandler(io.Discard, nil),
	})

	srv := NewServer("127.0.0.1:0",
		services.NewParcelService(store, nil),
		services.NewReportService(store),
		logger)
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})
	return srv, store, vendor, rider
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz status = %d, want 200", rec.Code)
	}
	var ready struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &ready); err != nil {
		t.Fatalf("unmarshal readyz: %v", err)
	}
	if ready.Status != "ready" {
		t.Errorf("readyz status = %q, want ready", ready.Status)
	}
}

func TestCreateParcelEndpoint(t *testing.T) {
	srv, _, vendor, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/parcels",
		`{"vendor_id": `+itoa(vendor.ID)+`, "recipient_name": "Sita Rai", "recipient_phone": "9841000000", "address": "Baneshwor, Kathmandu", "cod_amount": 150.25}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create parcel status = %d, body %s", rec.Code, rec.Body.String())
	}

	var view struct {
		ID        int64  `json:"id"`
		CODAmount string `json:"cod_amount"`
		Status    string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("unmarshal parcel: %v", err)
	}
	if view.CODAmount != "150.25" {
		t.Errorf("cod_amount = %q, want 150.25", view.CODAmount)
	}
	if view.Status != core.StatusPending {
		t.Errorf("status = %q, want %q", view.Status, core.StatusPending)
	}
}

func TestCreateParcelValidation(t *testing.T) {
	srv, _, vendor, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/parcels",
		`{"vendor_id": `+itoa(vendor.ID)+`, "recipient_name": "", "address": "Patan"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/parcels", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestListParcelsGroupedAndFiltered(t *testing.T) {
	srv, _, vendor, _ := newTestServer(t)

	for _, name := range []string{"Sita Rai", "Hari Thapa"} {
		rec := doJSON(t, srv, http.MethodPost, "/api/parcels",
			`{"vendor_id": `+itoa(vendor.ID)+`, "recipient_name": "`+name+`", "address": "Kathmandu", "cod_amount": "100"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("seed parcel: status %d", rec.Code)
		}
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/parcels", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var groups []struct {
		Date     string `json:"date"`
		Count    int    `json:"count"`
		TotalCOD string `json:"total_cod"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &groups); err != nil {
		t.Fatalf("unmarshal groups: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("got %d day groups, want 1", len(groups))
	}
	if groups[0].Count != 2 || groups[0].TotalCOD != "200" {
		t.Errorf("day rollup = %d/%s, want 2/200", groups[0].Count, groups[0].TotalCOD)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/parcels?search=sita", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &groups); err != nil {
		t.Fatalf("unmarshal filtered groups: %v", err)
	}
	if len(groups) != 1 || groups[0].Count != 1 {
		t.Fatalf("filtered: got %+v, want one group with one parcel", groups)
	}
}

func TestAssignAndDeliverFlow(t *testing.T) {
	srv, _, vendor, rider := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/parcels",
		`{"vendor_id": `+itoa(vendor.ID)+`, "recipient_name": "Sita Rai", "address": "Kathmandu", "cod_amount": "250"}`)
	var view struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("unmarshal parcel: %v", err)
	}

	rec = doJSON(t, srv, http.MethodPut, "/api/parcels/"+itoa(view.ID)+"/assign",
		`{"rider_id": `+itoa(rider.ID)+`}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("assign status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodPut, "/api/parcels/"+itoa(view.ID)+"/status",
		`{"status": "delivered"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("deliver status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodPut, "/api/parcels/"+itoa(view.ID)+"/status",
		`{"status": "teleported"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid status accepted: %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPut, "/api/parcels/9999/assign",
		`{"rider_id": `+itoa(rider.ID)+`}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("assign missing parcel status = %d, want 404", rec.Code)
	}
}

func TestStatsReflectWritesDespiteCache(t *testing.T) {
	srv, _, vendor, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec.Code)
	}
	var stats struct {
		TotalParcels int    `json:"total_parcels"`
		TotalCOD     string `json:"total_cod"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("unmarshal stats: %v", err)
	}
	if stats.TotalParcels != 0 {
		t.Fatalf("fresh store has %d parcels", stats.TotalParcels)
	}

	// The first read is now cached; a write must purge it.
	doJSON(t, srv, http.MethodPost, "/api/parcels",
		`{"vendor_id": `+itoa(vendor.ID)+`, "recipient_name": "Sita Rai", "address": "Kathmandu", "cod_amount": "100"}`)

	rec = doJSON(t, srv, http.MethodGet, "/api/stats", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("unmarshal stats: %v", err)
	}
	if stats.TotalParcels != 1 || stats.TotalCOD != "100" {
		t.Errorf("stats after write = %d/%s, want 1/100", stats.TotalParcels, stats.TotalCOD)
	}
}

func TestPaymentAndLedgerEndpoints(t *testing.T) {
	srv, _, vendor, rider := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/parcels",
		`{"vendor_id": `+itoa(vendor.ID)+`, "recipient_name": "Sita Rai", "address": "Kathmandu", "cod_amount": "100"}`)
	var view struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("unmarshal parcel: %v", err)
	}
	doJSON(t, srv, http.MethodPut, "/api/parcels/"+itoa(view.ID)+"/assign", `{"rider_id": `+itoa(rider.ID)+`}`)
	doJSON(t, srv, http.MethodPut, "/api/parcels/"+itoa(view.ID)+"/status", `{"status": "delivered"}`)

	rec = doJSON(t, srv, http.MethodPost, "/api/payments",
		`{"vendor_id": `+itoa(vendor.ID)+`, "amount": "40", "notes": "partial settlement"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("payment status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/vendor-payment-summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("ledger status = %d", rec.Code)
	}
	var ledger []struct {
		VendorName    string `json:"vendor_name"`
		PendingAmount string `json:"pending_amount"`
		IsOutstanding bool   `json:"is_outstanding"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &ledger); err != nil {
		t.Fatalf("unmarshal ledger: %v", err)
	}
	if len(ledger) != 1 {
		t.Fatalf("got %d ledger rows, want 1", len(ledger))
	}
	if ledger[0].PendingAmount != "60" || !ledger[0].IsOutstanding {
		t.Errorf("ledger = %+v, want pending 60 outstanding", ledger[0])
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/payment-history", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("payment history status = %d", rec.Code)
	}
}

func TestDaybookEndpoints(t *testing.T) {
	srv, _, _, rider := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/rider-daybook",
		`{"rider_id": `+itoa(rider.ID)+`, "date": "2025-03-01", "total_km": "35.5", "parcels_delivered": 4, "fuel_cost": "6"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("daybook create status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/rider-daybook/"+itoa(rider.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("daybook list status = %d", rec.Code)
	}
	var entries []struct {
		Date    string `json:"date"`
		TotalKM string `json:"total_km"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("unmarshal daybook: %v", err)
	}
	if len(entries) != 1 || entries[0].TotalKM != "35.50" {
		t.Fatalf("daybook entries = %+v, want one with km 35.50", entries)
	}
}

func TestDashboardEndpoint(t *testing.T) {
	srv, _, vendor, _ := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/api/parcels",
		`{"vendor_id": `+itoa(vendor.ID)+`, "recipient_name": "Sita Rai", "address": "Kathmandu", "cod_amount": "150.25"}`)

	rec := doJSON(t, srv, http.MethodGet, "/api/dashboard", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d", rec.Code)
	}
	var dash struct {
		Overview struct {
			TotalParcels int    `json:"total_parcels"`
			TotalCOD     string `json:"total_cod"`
		} `json:"overview"`
		Daily struct {
			GrandTotal string `json:"grand_total"`
		} `json:"daily"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &dash); err != nil {
		t.Fatalf("unmarshal dashboard: %v", err)
	}
	if dash.Overview.TotalParcels != 1 || dash.Overview.TotalCOD != "150.25" {
		t.Errorf("overview = %+v, want 1/150.25", dash.Overview)
	}
	if dash.Daily.GrandTotal != "150.25" {
		t.Errorf("daily grand total = %q, want 150.25", dash.Daily.GrandTotal)
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
