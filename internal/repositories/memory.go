package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sekretariat-digital/bukutamu/internal/models"
)

// In-memory implementations of the repository interfaces. They back unit and
// end-to-end tests that need the full stack without Postgres or Redis, and
// they enforce the same invariants as the real stores, including the
// (event_id, device_id) uniqueness rule.

type MemoryEventRepository struct {
	mu     sync.RWMutex
	events map[uuid.UUID]*models.Event
}

func NewMemoryEventRepository() *MemoryEventRepository {
	return &MemoryEventRepository{events: make(map[uuid.UUID]*models.Event)}
}

func (r *MemoryEventRepository) Create(_ context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event.ID = uuid.New()
	event.CreatedAt = time.Now()
	clone := *event
	r.events[event.ID] = &clone
	return nil
}

func (r *MemoryEventRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.events[id]
	if !ok || event.DeletedAt != nil {
		return nil, ErrNotFound
	}
	clone := *event
	return &clone, nil
}

func (r *MemoryEventRepository) GetByQRToken(_ context.Context, qrToken string) (*models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, event := range r.events {
		if event.QRToken == qrToken && event.DeletedAt == nil {
			clone := *event
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryEventRepository) List(_ context.Context) ([]*models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var events []*models.Event
	for _, event := range r.events {
		if event.DeletedAt == nil {
			clone := *event
			events = append(events, &clone)
		}
	}
	return events, nil
}

func (r *MemoryEventRepository) UpdateStatus(_ context.Context, id uuid.UUID, status models.EventStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok || event.DeletedAt != nil {
		return ErrNotFound
	}
	event.Status = status
	now := time.Now()
	event.UpdatedAt = &now
	return nil
}

func (r *MemoryEventRepository) UpdateQRToken(_ context.Context, id uuid.UUID, qrToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok || event.DeletedAt != nil {
		return ErrNotFound
	}
	event.QRToken = qrToken
	now := time.Now()
	event.UpdatedAt = &now
	return nil
}

func (r *MemoryEventRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok || event.DeletedAt != nil {
		return ErrNotFound
	}
	now := time.Now()
	event.DeletedAt = &now
	return nil
}

type submissionKey struct {
	eventID  uuid.UUID
	deviceID string
}

type MemorySubmissionRepository struct {
	mu          sync.Mutex
	submissions map[submissionKey]*models.Submission
}

func NewMemorySubmissionRepository() *MemorySubmissionRepository {
	return &MemorySubmissionRepository{submissions: make(map[submissionKey]*models.Submission)}
}

func (r *MemorySubmissionRepository) Create(_ context.Context, submission *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := submissionKey{eventID: submission.EventID, deviceID: submission.DeviceID}
	if _, exists := r.submissions[key]; exists {
		return ErrAlreadySubmitted
	}

	submission.ID = uuid.New()
	submission.CreatedAt = time.Now()
	submission.PhotoCount = len(submission.PhotoPaths)
	clone := *submission
	r.submissions[key] = &clone
	return nil
}

func (r *MemorySubmissionRepository) GetByEventAndDevice(_ context.Context, eventID uuid.UUID, deviceID string) (*models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	submission, ok := r.submissions[submissionKey{eventID: eventID, deviceID: deviceID}]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *submission
	return &clone, nil
}

func (r *MemorySubmissionRepository) ListByEventID(_ context.Context, eventID uuid.UUID) ([]*models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var submissions []*models.Submission
	for key, submission := range r.submissions {
		if key.eventID == eventID {
			clone := *submission
			submissions = append(submissions, &clone)
		}
	}
	return submissions, nil
}

type MemoryAccountRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*models.Account
}

func NewMemoryAccountRepository() *MemoryAccountRepository {
	return &MemoryAccountRepository{accounts: make(map[uuid.UUID]*models.Account)}
}

func (r *MemoryAccountRepository) Create(_ context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account.ID = uuid.New()
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	clone := *account
	r.accounts[account.ID] = &clone
	return nil
}

func (r *MemoryAccountRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *account
	return &clone, nil
}

func (r *MemoryAccountRepository) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, account := range r.accounts {
		if account.Email == email {
			clone := *account
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

type MemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[string]*models.Session)}
}

func (r *MemorySessionRepository) Create(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *session
	r.sessions[session.ID] = &clone
	return nil
}

func (r *MemorySessionRepository) GetByID(_ context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok || time.Now().After(session.ExpiresAt) {
		return nil, ErrNotFound
	}
	clone := *session
	return &clone, nil
}

func (r *MemorySessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *MemorySessionRepository) DeleteAllForAccount(_ context.Context, accountID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, session := range r.sessions {
		if session.AccountID == accountID {
			delete(r.sessions, id)
		}
	}
	return nil
}

type checkCacheKey struct {
	qrToken  string
	deviceID string
}

type MemoryDeviceCheckCache struct {
	mu      sync.Mutex
	entries map[checkCacheKey]models.SubmissionSummary
}

func NewMemoryDeviceCheckCache() *MemoryDeviceCheckCache {
	return &MemoryDeviceCheckCache{entries: make(map[checkCacheKey]models.SubmissionSummary)}
}

func (c *MemoryDeviceCheckCache) Get(_ context.Context, qrToken, deviceID string) (*models.SubmissionSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	summary, ok := c.entries[checkCacheKey{qrToken: qrToken, deviceID: deviceID}]
	if !ok {
		return nil, ErrNotFound
	}
	return &summary, nil
}

func (c *MemoryDeviceCheckCache) Set(_ context.Context, qrToken, deviceID string, summary *models.SubmissionSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[checkCacheKey{qrToken: qrToken, deviceID: deviceID}] = *summary
	return nil
}

func (c *MemoryDeviceCheckCache) Invalidate(_ context.Context, qrToken, deviceID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, checkCacheKey{qrToken: qrToken, deviceID: deviceID})
	return nil
}
