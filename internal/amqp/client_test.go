package amqp

import (
	"testing"
	"time"

	"courierops/internal/core"
)

func TestNewParcelSyncMessage(t *testing.T) {
	msg := NewParcelSyncMessage(12345, core.StatusDelivered)

	if msg.ParcelID != 12345 {
		t.Errorf("ParcelID = %v, want 12345", msg.ParcelID)
	}
	if msg.Status != core.StatusDelivered {
		t.Errorf("Status = %q, want %q", msg.Status, core.StatusDelivered)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestParcelSyncMessage_JSON(t *testing.T) {
	timestamp := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	msg := &ParcelSyncMessage{
		ParcelID:  7,
		Status:    core.StatusDelivered,
		Timestamp: timestamp,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := ParcelSyncMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("ParcelSyncMessageFromJSON() error = %v", err)
	}

	if parsed.ParcelID != msg.ParcelID {
		t.Errorf("Parsed ParcelID = %v, want %v", parsed.ParcelID, msg.ParcelID)
	}
	if parsed.Status != msg.Status {
		t.Errorf("Parsed Status = %v, want %v", parsed.Status, msg.Status)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestParcelSyncMessage_InvalidJSON(t *testing.T) {
	invalidJSON := []byte(`{"parcel_id": "not_a_number"}`)

	if _, err := ParcelSyncMessageFromJSON(invalidJSON); err == nil {
		t.Error("ParcelSyncMessageFromJSON() should fail with invalid JSON")
	}
}
