package models

import (
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	EventActive   EventStatus = "active"
	EventInactive EventStatus = "inactive"
)

type Event struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Date        time.Time   `json:"date"`
	Location    string      `json:"location"`
	Description string      `json:"description"`
	Status      EventStatus `json:"status"`
	QRToken     string      `json:"qr_token"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   *time.Time  `json:"updated_at,omitempty"`
	DeletedAt   *time.Time  `json:"deleted_at,omitempty"`
}

func (e *Event) IsActive() bool {
	return e.Status == EventActive
}
