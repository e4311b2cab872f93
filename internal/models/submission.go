package models

import (
	"time"

	"github.com/google/uuid"
)

// Submission is one guest attendance entry. At most one row may exist per
// (event_id, device_id) pair; the database enforces this with a unique index.
type Submission struct {
	ID          uuid.UUID `json:"id"`
	EventID     uuid.UUID `json:"event_id"`
	DeviceID    string    `json:"device_id"`
	FullName    string    `json:"nama_lengkap"`
	Institution string    `json:"instansi,omitempty"`
	Position    string    `json:"jabatan,omitempty"`
	Purpose     string    `json:"keperluan,omitempty"`
	PhotoPaths  []string  `json:"-"`
	PhotoCount  int       `json:"photo_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// SubmissionSummary is the shape returned to guests: enough to render the
// "already submitted" view without exposing internal ids or photo paths.
type SubmissionSummary struct {
	FullName    string    `json:"nama_lengkap"`
	Institution string    `json:"instansi,omitempty"`
	Position    string    `json:"jabatan,omitempty"`
	Purpose     string    `json:"keperluan,omitempty"`
	PhotoCount  int       `json:"photo_count"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func (s *Submission) Summary() SubmissionSummary {
	return SubmissionSummary{
		FullName:    s.FullName,
		Institution: s.Institution,
		Position:    s.Position,
		Purpose:     s.Purpose,
		PhotoCount:  s.PhotoCount,
		SubmittedAt: s.CreatedAt,
	}
}
