package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sekretariat-digital/bukutamu/internal/models"
	"github.com/sekretariat-digital/bukutamu/internal/repositories"
)

var ErrMissingEventFields = errors.New("name and date are required")

type EventService struct {
	eventRepo repositories.EventRepository
}

func NewEventService(eventRepo repositories.EventRepository) *EventService {
	return &EventService{eventRepo: eventRepo}
}

type CreateEventRequest struct {
	Name        string
	Date        time.Time
	Location    string
	Description string
}

func (s *EventService) Create(ctx context.Context, req CreateEventRequest) (*models.Event, error) {
	if strings.TrimSpace(req.Name) == "" || req.Date.IsZero() {
		return nil, ErrMissingEventFields
	}

	event := &models.Event{
		Name:        strings.TrimSpace(req.Name),
		Date:        req.Date,
		Location:    strings.TrimSpace(req.Location),
		Description: strings.TrimSpace(req.Description),
		Status:      models.EventActive,
		QRToken:     newQRToken(),
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (s *EventService) Get(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err == repositories.ErrNotFound {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

func (s *EventService) List(ctx context.Context) ([]*models.Event, error) {
	return s.eventRepo.List(ctx)
}

func (s *EventService) SetStatus(ctx context.Context, id uuid.UUID, status models.EventStatus) error {
	if status != models.EventActive && status != models.EventInactive {
		return fmt.Errorf("invalid status %q", status)
	}
	err := s.eventRepo.UpdateStatus(ctx, id, status)
	if err == repositories.ErrNotFound {
		return ErrEventNotFound
	}
	return err
}

// RegenerateToken rotates the QR token, invalidating every printed or shared
// code for the event.
func (s *EventService) RegenerateToken(ctx context.Context, id uuid.UUID) (string, error) {
	token := newQRToken()
	err := s.eventRepo.UpdateQRToken(ctx, id, token)
	if err == repositories.ErrNotFound {
		return "", ErrEventNotFound
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

func newQRToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
