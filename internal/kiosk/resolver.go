package kiosk

import (
	"errors"
)

// UIState is the page-level state the kiosk renders.
type UIState string

const (
	StateLoading          UIState = "loading"
	StateEventUnavailable UIState = "event_unavailable"
	StateReadyToSubmit    UIState = "ready_to_submit"
	StateAlreadySubmitted UIState = "already_submitted"
	StateSubmitting       UIState = "submitting"
	StateSubmitFailed     UIState = "submit_failed"
)

// Resolution is the reconciled outcome of a submission attempt.
type Resolution struct {
	State      UIState
	Record     *SubmissionRecord
	Validation *ValidationError
	Transport  *TransportError
}

// Resolver reconciles submitter outcomes into the cache and the UI state.
// It is the only component allowed to mark the submission cache, and it does
// so only for definitive server answers.
type Resolver struct {
	cache *SubmissionCache
}

func NewResolver(cache *SubmissionCache) *Resolver {
	return &Resolver{cache: cache}
}

// Resolve maps a (record, err) pair from the submitter to a terminal
// resolution:
//
//   - success: cache marked with the new record, already-submitted view
//   - conflict: cache marked with the server's existing record (never the
//     locally typed form data), already-submitted view
//   - validation: form stays up with per-field errors, cache untouched
//   - transport: retryable error view, cache untouched; no assumption is
//     made about whether the write landed
func (r *Resolver) Resolve(qrToken, deviceID string, record *SubmissionRecord, err error) Resolution {
	if err == nil && record != nil {
		marked := r.cache.Mark(qrToken, deviceID, record.Payload)
		return Resolution{State: StateAlreadySubmitted, Record: marked}
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		return Resolution{State: StateReadyToSubmit, Validation: verr}
	}

	var cerr *ConflictError
	if errors.As(err, &cerr) {
		marked := r.cache.Mark(qrToken, deviceID, cerr.Existing)
		return Resolution{State: StateAlreadySubmitted, Record: marked}
	}

	var terr *TransportError
	if errors.As(err, &terr) {
		return Resolution{State: StateSubmitFailed, Transport: terr}
	}

	return Resolution{State: StateSubmitFailed, Transport: &TransportError{Err: err}}
}
