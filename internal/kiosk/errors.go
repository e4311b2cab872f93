package kiosk

import (
	"errors"
	"fmt"

	"github.com/sekretariat-digital/bukutamu/internal/models"
)

// ErrEventUnavailable is terminal: the QR token maps to no event, or the
// event has been deactivated. There is nothing to retry.
var ErrEventUnavailable = errors.New("event unavailable")

// ValidationError is detected locally before any network call and is
// correctable by the user. It never reaches the conflict resolver.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d field(s)", len(e.Fields))
}

// ConflictError means the server already holds a submission for this
// (event, device) pair. From the protocol's point of view this is not a
// failure: it is the expected terminal state for a repeat visitor.
type ConflictError struct {
	Existing models.SubmissionSummary
}

func (e *ConflictError) Error() string {
	return "already submitted for this event"
}

// TransportError is a network or server fault. It is retryable by the user
// via an explicit re-submit; nothing retries automatically, because a blind
// retry risks a duplicate write racing its own first attempt.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport failure: %v", e.Err)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
