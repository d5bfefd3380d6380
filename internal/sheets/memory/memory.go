package memory

import (
	"context"
	"fmt"
	"sync"

	"courierops/internal/core"
	"courierops/internal/report"
	ports "courierops/internal/sheets"
)

// Store is an in-process exporter for tests and local development. It
// records what would have been written to the spreadsheet.
type Store struct {
	mu      sync.Mutex
	parcels []core.Parcel
	reports []report.DailyReport
	failing bool
}

var _ ports.Exporter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// SetFailing makes every write return an error, for retry-path tests.
func (s *Store) SetFailing(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = failing
}

// AppendParcel stores the parcel and returns a synthetic row reference.
func (s *Store) AppendParcel(_ context.Context, p core.Parcel) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return "", fmt.Errorf("memory exporter configured to fail")
	}
	s.parcels = append(s.parcels, p)
	return fmt.Sprintf("mem:%d", len(s.parcels)), nil
}

func (s *Store) AppendDailyReport(_ context.Context, rep report.DailyReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return fmt.Errorf("memory exporter configured to fail")
	}
	s.reports = append(s.reports, rep)
	return nil
}

// Parcels returns a copy of the recorded ledger rows.
func (s *Store) Parcels() []core.Parcel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Parcel(nil), s.parcels...)
}

// Reports returns a copy of the recorded report appends.
func (s *Store) Reports() []report.DailyReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]report.DailyReport(nil), s.reports...)
}
