package kiosk

import (
	"encoding/json"
	"time"

	"github.com/sekretariat-digital/bukutamu/internal/models"
)

// CacheStore is the session-scoped KV contract behind the submission cache.
type CacheStore interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// SubmissionRecord is the cache's memo that this device already submitted for
// an event. Once Submitted is true the record is never updated again.
type SubmissionRecord struct {
	QRToken     string                   `json:"qr_token"`
	DeviceID    string                   `json:"device_id"`
	Submitted   bool                     `json:"submitted"`
	Payload     models.SubmissionSummary `json:"payload"`
	SubmittedAt time.Time                `json:"submitted_at"`
}

// SubmissionCache is advisory only: it saves a round-trip within one session
// after a successful submission. The server answer always wins over it.
type SubmissionCache struct {
	store CacheStore
	now   func() time.Time
}

func NewSubmissionCache(store CacheStore) *SubmissionCache {
	return &SubmissionCache{store: store, now: time.Now}
}

func cacheKey(qrToken, deviceID string) string {
	return qrToken + "_" + deviceID
}

// Check returns the cached record or nil. Corrupt stored data is treated as
// a miss, never as an error.
func (c *SubmissionCache) Check(qrToken, deviceID string) *SubmissionRecord {
	raw, ok := c.store.Get(cacheKey(qrToken, deviceID))
	if !ok {
		return nil
	}

	var record SubmissionRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil
	}
	return &record
}

// Mark records a definitive "submitted" answer. Callers must only invoke it
// after the server confirmed the submission exists, never optimistically.
func (c *SubmissionCache) Mark(qrToken, deviceID string, payload models.SubmissionSummary) *SubmissionRecord {
	record := &SubmissionRecord{
		QRToken:     qrToken,
		DeviceID:    deviceID,
		Submitted:   true,
		Payload:     payload,
		SubmittedAt: c.now(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		// A record we just built always marshals; keep the API total anyway.
		return record
	}
	c.store.Set(cacheKey(qrToken, deviceID), string(data))
	return record
}
