package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/sekretariat-digital/bukutamu/internal/models"
)

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	GetByQRToken(ctx context.Context, qrToken string) (*models.Event, error)
	List(ctx context.Context) ([]*models.Event, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.EventStatus) error
	UpdateQRToken(ctx context.Context, id uuid.UUID, qrToken string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByEventAndDevice(ctx context.Context, eventID uuid.UUID, deviceID string) (*models.Submission, error)
	ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*models.Submission, error)
}

type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteAllForAccount(ctx context.Context, accountID uuid.UUID) error
}

// DeviceCheckCache memoizes answers to "has this device submitted for this
// event" so kiosk reloads do not hit Postgres on every page load. Entries are
// written only after a definitive database answer; a miss means "ask the
// database," never "not submitted."
type DeviceCheckCache interface {
	Get(ctx context.Context, qrToken, deviceID string) (*models.SubmissionSummary, error)
	Set(ctx context.Context, qrToken, deviceID string, summary *models.SubmissionSummary) error
	Invalidate(ctx context.Context, qrToken, deviceID string) error
}
