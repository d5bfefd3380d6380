package amqp

import (
	"encoding/json"
	"time"
)

// ParcelSyncMessage asks the worker to mirror one parcel into the
// sheets ledger. It carries only the ID and the status that triggered
// it; the worker reads the full row from the database so the ledger
// never sees stale data.
type ParcelSyncMessage struct {
	ParcelID  int64     `json:"parcel_id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func NewParcelSyncMessage(parcelID int64, status string) *ParcelSyncMessage {
	return &ParcelSyncMessage{
		ParcelID:  parcelID,
		Status:    status,
		Timestamp: time.Now(),
	}
}

func (m *ParcelSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ParcelSyncMessageFromJSON(data []byte) (*ParcelSyncMessage, error) {
	var msg ParcelSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
