package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"courierops/internal/core"
)

// respondJSON writes data as JSON and returns the encoded body so
// callers can cache it.
func respondJSON(w http.ResponseWriter, status int, data any) ([]byte, error) {
	body, err := json.Marshal(data)
	if err != nil {
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return nil, err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
	return body, nil
}

func respondError(w http.ResponseWriter, status int, msg string) {
	_, _ = respondJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON decodes a request body, preserving numeric precision by
// reading numbers as json.Number.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.UseNumber()
	return dec.Decode(dst)
}

// pathID extracts a positive integer {id} path value.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// statusFromError maps domain errors to HTTP status codes.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, core.ErrParcelNotFound), errors.Is(err, core.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrEmptyRecipient),
		errors.Is(err, core.ErrEmptyAddress),
		errors.Is(err, core.ErrInvalidVendor),
		errors.Is(err, core.ErrInvalidRider),
		errors.Is(err, core.ErrInvalidStatus),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidDate):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
