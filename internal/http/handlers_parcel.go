package http

import (
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"courierops/internal/core"
	"courierops/internal/log"
	"courierops/internal/report"
)

// handleListParcels returns parcels grouped by booking day, optionally
// filtered by a search term and a vendor.
func (s *Server) handleListParcels(w http.ResponseWriter, r *http.Request) {
	term := sanitizeInput(r.URL.Query().Get("search"))

	var (
		parcels []core.Parcel
		err     error
	)
	if v := strings.TrimSpace(r.URL.Query().Get("vendor_id")); v != "" {
		vendorID, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil || vendorID <= 0 {
			respondError(w, http.StatusBadRequest, "invalid vendor_id")
			return
		}
		parcels, err = s.parcels.VendorParcels(r.Context(), vendorID, term)
	} else {
		parcels, err = s.parcels.SearchParcels(r.Context(), term)
	}
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "List parcels failed", log.FieldError, err.Error())
		respondError(w, http.StatusInternalServerError, "failed to list parcels")
		return
	}

	_, _ = respondJSON(w, http.StatusOK, report.ParcelsByDay(parcels))
}

func (s *Server) handleCreateParcel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VendorID       int64  `json:"vendor_id"`
		RecipientName  string `json:"recipient_name"`
		RecipientPhone string `json:"recipient_phone"`
		Address        string `json:"address"`
		CODAmount      any    `json:"cod_amount"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	parcel, err := s.parcels.CreateParcel(r.Context(), core.CreateParcelInput{
		VendorID:       body.VendorID,
		RecipientName:  sanitizeInput(body.RecipientName),
		RecipientPhone: sanitizeInput(body.RecipientPhone),
		Address:        sanitizeInput(body.Address),
		CODAmount:      body.CODAmount,
	})
	if err != nil {
		status := statusFromError(err)
		if status == http.StatusInternalServerError {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Create parcel failed",
				log.FieldVendorID, body.VendorID, log.FieldError, err.Error())
			respondError(w, status, "failed to create parcel")
			return
		}
		respondError(w, status, err.Error())
		return
	}

	atomic.AddInt64(&s.totalParcels, 1)
	s.invalidateReports()

	s.httpLog.LogParcelCreated(r.Context(), parcel.ID, parcel.VendorID,
		parcel.Status, core.FormatAmount(parcel.COD()))

	_, _ = respondJSON(w, http.StatusCreated, report.NewParcelView(parcel))
}

func (s *Server) handleAssignParcel(w http.ResponseWriter, r *http.Request) {
	parcelID, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid parcel id")
		return
	}

	var body struct {
		RiderID int64 `json:"rider_id"`
	}
	if err := decodeJSON(r, &body); err != nil || body.RiderID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.parcels.AssignParcel(r.Context(), parcelID, body.RiderID); err != nil {
		status := statusFromError(err)
		if status == http.StatusInternalServerError {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Assign parcel failed",
				log.FieldParcelID, parcelID,
				log.FieldRiderID, body.RiderID,
				log.FieldError, err.Error())
			respondError(w, status, "failed to assign parcel")
			return
		}
		respondError(w, status, err.Error())
		return
	}

	s.invalidateReports()
	_, _ = respondJSON(w, http.StatusOK, map[string]any{
		"parcel_id": parcelID,
		"rider_id":  body.RiderID,
		"status":    core.StatusAssigned,
	})
}

func (s *Server) handleUpdateParcelStatus(w http.ResponseWriter, r *http.Request) {
	parcelID, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid parcel id")
		return
	}

	var body struct {
		Status  string `json:"status"`
		Comment string `json:"comment"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.parcels.UpdateStatus(r.Context(), parcelID, body.Status, sanitizeInput(body.Comment)); err != nil {
		status := statusFromError(err)
		if status == http.StatusInternalServerError {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Update parcel status failed",
				log.FieldParcelID, parcelID,
				log.FieldParcelStatus, body.Status,
				log.FieldError, err.Error())
			respondError(w, status, "failed to update parcel status")
			return
		}
		respondError(w, status, err.Error())
		return
	}

	s.invalidateReports()
	_, _ = respondJSON(w, http.StatusOK, map[string]any{
		"parcel_id": parcelID,
		"status":    body.Status,
	})
}

type riderView struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	BikeNo    string `json:"bike_no,omitempty"`
	LicenseNo string `json:"license_no,omitempty"`
	Approved  bool   `json:"approved"`
}

func (s *Server) handleListRiders(w http.ResponseWriter, r *http.Request) {
	riders, err := s.parcels.Riders(r.Context())
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "List riders failed", log.FieldError, err.Error())
		respondError(w, http.StatusInternalServerError, "failed to list riders")
		return
	}

	views := make([]riderView, 0, len(riders))
	for _, u := range riders {
		views = append(views, riderView{
			ID:        u.ID,
			Name:      u.Name,
			Phone:     u.Phone,
			BikeNo:    u.BikeNo,
			LicenseNo: u.LicenseNo,
			Approved:  u.Approved,
		})
	}
	_, _ = respondJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VendorID int64  `json:"vendor_id"`
		Amount   any    `json:"amount"`
		Notes    string `json:"notes"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payment, err := s.parcels.RecordPayment(r.Context(), core.PaymentInput{
		VendorID: body.VendorID,
		Amount:   core.Normalize(body.Amount),
		Notes:    sanitizeInput(body.Notes),
	})
	if err != nil {
		status := statusFromError(err)
		if status == http.StatusInternalServerError {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Record payment failed",
				log.FieldVendorID, body.VendorID, log.FieldError, err.Error())
			respondError(w, status, "failed to record payment")
			return
		}
		respondError(w, status, err.Error())
		return
	}

	s.invalidateReports()
	log.FromContext(r.Context()).InfoContext(r.Context(), "Payment recorded",
		log.FieldVendorID, payment.VendorID,
		log.FieldAmount, core.FormatAmount(payment.Amount))

	_, _ = respondJSON(w, http.StatusCreated, map[string]any{
		"id":        payment.ID,
		"vendor_id": payment.VendorID,
		"amount":    core.FormatAmount(payment.Amount),
	})
}

func (s *Server) handleCreateDaybookEntry(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RiderID          int64  `json:"rider_id"`
		Date             string `json:"date"`
		TotalKM          any    `json:"total_km"`
		ParcelsDelivered int    `json:"parcels_delivered"`
		FuelCost         any    `json:"fuel_cost"`
		Notes            string `json:"notes"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := s.parcels.LogDaybook(r.Context(), core.DaybookInput{
		RiderID:          body.RiderID,
		Date:             strings.TrimSpace(body.Date),
		TotalKM:          core.Normalize(body.TotalKM),
		ParcelsDelivered: body.ParcelsDelivered,
		FuelCost:         core.Normalize(body.FuelCost),
		Notes:            sanitizeInput(body.Notes),
	})
	if err != nil {
		status := statusFromError(err)
		if status == http.StatusInternalServerError {
			log.FromContext(r.Context()).ErrorContext(r.Context(), "Log daybook entry failed",
				log.FieldRiderID, body.RiderID, log.FieldError, err.Error())
			respondError(w, status, "failed to log daybook entry")
			return
		}
		respondError(w, status, err.Error())
		return
	}

	s.invalidateReports()
	_, _ = respondJSON(w, http.StatusCreated, map[string]any{
		"id":       entry.ID,
		"rider_id": entry.RiderID,
		"date":     entry.Date,
	})
}
