package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sekretariat-digital/bukutamu/internal/models"
	"github.com/sekretariat-digital/bukutamu/internal/repositories"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrEventInactive = errors.New("event is not active")
)

const (
	MaxPhotoCount = 5
	MaxPhotoSize  = 5 * 1024 * 1024
)

var allowedPhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ConflictError reports that the (event, device) pair already has a
// submission. It carries the existing record so the caller can show the
// original submitter rather than a bare failure.
type ConflictError struct {
	Existing models.SubmissionSummary
}

func (e *ConflictError) Error() string {
	return "device already submitted for this event"
}

// ValidationError collects per-field rejection reasons found before any
// database write.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d field(s)", len(e.Fields))
}

// PhotoInput decouples the service from multipart parsing so tests can feed
// photos without an HTTP request.
type PhotoInput struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

type SubmissionForm struct {
	DeviceID    string
	FullName    string
	Institution string
	Position    string
	Purpose     string
	Photos      []PhotoInput
}

type GuestbookService struct {
	eventRepo      repositories.EventRepository
	submissionRepo repositories.SubmissionRepository
	checkCache     repositories.DeviceCheckCache
	uploadDir      string
}

func NewGuestbookService(
	eventRepo repositories.EventRepository,
	submissionRepo repositories.SubmissionRepository,
	checkCache repositories.DeviceCheckCache,
	uploadDir string,
) *GuestbookService {
	return &GuestbookService{
		eventRepo:      eventRepo,
		submissionRepo: submissionRepo,
		checkCache:     checkCache,
		uploadDir:      uploadDir,
	}
}

// GetEvent is the metadata-only fallback used when a device check cannot be
// completed; it never consults submission state.
func (s *GuestbookService) GetEvent(ctx context.Context, qrToken string) (*models.Event, error) {
	event, err := s.eventRepo.GetByQRToken(ctx, qrToken)
	if err == repositories.ErrNotFound {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if !event.IsActive() {
		return nil, ErrEventInactive
	}
	return event, nil
}

// CheckDevice answers "does this event exist and has this device already
// submitted" in one call. The database is authoritative; the redis memo only
// short-circuits repeat positive answers.
func (s *GuestbookService) CheckDevice(ctx context.Context, qrToken, deviceID string) (*models.Event, *models.SubmissionSummary, error) {
	event, err := s.GetEvent(ctx, qrToken)
	if err != nil {
		return nil, nil, err
	}

	if s.checkCache != nil {
		if summary, err := s.checkCache.Get(ctx, qrToken, deviceID); err == nil {
			return event, summary, nil
		}
	}

	submission, err := s.submissionRepo.GetByEventAndDevice(ctx, event.ID, deviceID)
	if err == repositories.ErrNotFound {
		return event, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check device: %w", err)
	}

	summary := submission.Summary()
	s.memoize(ctx, qrToken, deviceID, &summary)
	return event, &summary, nil
}

// SubmitAttendance validates the form, stores the photos and inserts the
// submission. A losing race on the unique index is returned as *ConflictError
// carrying the pre-existing record.
func (s *GuestbookService) SubmitAttendance(ctx context.Context, qrToken string, form SubmissionForm) (*models.Submission, error) {
	event, err := s.GetEvent(ctx, qrToken)
	if err != nil {
		return nil, err
	}

	if verr := validateForm(form); verr != nil {
		return nil, verr
	}

	photoPaths, err := s.savePhotos(event.ID, form.Photos)
	if err != nil {
		return nil, fmt.Errorf("failed to store photos: %w", err)
	}

	submission := &models.Submission{
		EventID:     event.ID,
		DeviceID:    form.DeviceID,
		FullName:    strings.TrimSpace(form.FullName),
		Institution: strings.TrimSpace(form.Institution),
		Position:    strings.TrimSpace(form.Position),
		Purpose:     strings.TrimSpace(form.Purpose),
		PhotoPaths:  photoPaths,
	}

	err = s.submissionRepo.Create(ctx, submission)
	if errors.Is(err, repositories.ErrAlreadySubmitted) {
		s.removePhotos(photoPaths)
		existing, lookupErr := s.submissionRepo.GetByEventAndDevice(ctx, event.ID, form.DeviceID)
		if lookupErr != nil {
			return nil, fmt.Errorf("failed to load existing submission: %w", lookupErr)
		}
		summary := existing.Summary()
		s.memoize(ctx, qrToken, form.DeviceID, &summary)
		return nil, &ConflictError{Existing: summary}
	}
	if err != nil {
		s.removePhotos(photoPaths)
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	summary := submission.Summary()
	s.memoize(ctx, qrToken, form.DeviceID, &summary)
	return submission, nil
}

func (s *GuestbookService) ListSubmissions(ctx context.Context, eventID uuid.UUID) ([]*models.Submission, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err == repositories.ErrNotFound {
		return nil, ErrEventNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return s.submissionRepo.ListByEventID(ctx, eventID)
}

func (s *GuestbookService) memoize(ctx context.Context, qrToken, deviceID string, summary *models.SubmissionSummary) {
	if s.checkCache == nil {
		return
	}
	if err := s.checkCache.Set(ctx, qrToken, deviceID, summary); err != nil {
		log.Printf("check cache set failed for %s/%s: %v", qrToken, deviceID, err)
	}
}

func validateForm(form SubmissionForm) *ValidationError {
	fields := make(map[string]string)

	if strings.TrimSpace(form.FullName) == "" {
		fields["nama_lengkap"] = "full name is required"
	}
	if strings.TrimSpace(form.DeviceID) == "" {
		fields["device_id"] = "device id is required"
	}
	if len(form.Photos) > MaxPhotoCount {
		fields["photos"] = fmt.Sprintf("at most %d photos allowed, got %d", MaxPhotoCount, len(form.Photos))
	}
	for i, photo := range form.Photos {
		key := fmt.Sprintf("photos[%d]", i)
		if _, ok := allowedPhotoTypes[photo.ContentType]; !ok {
			fields[key] = fmt.Sprintf("%s: unsupported type %q, must be an image", photo.Filename, photo.ContentType)
			continue
		}
		if photo.Size > MaxPhotoSize {
			fields[key] = fmt.Sprintf("%s: %d bytes exceeds the 5MB limit", photo.Filename, photo.Size)
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (s *GuestbookService) savePhotos(eventID uuid.UUID, photos []PhotoInput) ([]string, error) {
	if len(photos) == 0 {
		return nil, nil
	}

	dir := filepath.Join(s.uploadDir, eventID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	var paths []string
	for _, photo := range photos {
		ext := allowedPhotoTypes[photo.ContentType]
		path := filepath.Join(dir, uuid.New().String()+ext)

		if err := writePhoto(photo, path); err != nil {
			s.removePhotos(paths)
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writePhoto(photo PhotoInput, path string) error {
	src, err := photo.Open()
	if err != nil {
		return fmt.Errorf("failed to open photo %s: %w", photo.Filename, err)
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create photo file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to write photo %s: %w", photo.Filename, err)
	}
	return nil
}

func (s *GuestbookService) removePhotos(paths []string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("failed to remove photo %s: %v", path, err)
		}
	}
}
