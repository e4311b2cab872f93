package kiosk

import (
	"context"
	"errors"
	"fmt"

	"github.com/sekretariat-digital/bukutamu/internal/models"
)

// Page drives one kiosk session for one event. States:
//
//	Loading -> {EventUnavailable | ReadyToSubmit | AlreadySubmitted}
//	ReadyToSubmit -> Submitting -> {AlreadySubmitted | SubmitFailed}
//	SubmitFailed -> Submitting (explicit user retry)
//
// EventUnavailable and AlreadySubmitted are terminal for the session.
type Page struct {
	qrToken   string
	generator *Generator
	cache     *SubmissionCache
	oracle    *Oracle
	submitter *Submitter
	resolver  *Resolver

	state      UIState
	deviceID   string
	event      *models.Event
	record     *SubmissionRecord
	validation *ValidationError
	loadErr    error
}

func NewPage(qrToken string, generator *Generator, cache *SubmissionCache, oracle *Oracle, submitter *Submitter) *Page {
	return &Page{
		qrToken:   qrToken,
		generator: generator,
		cache:     cache,
		oracle:    oracle,
		submitter: submitter,
		resolver:  NewResolver(cache),
		state:     StateLoading,
	}
}

func (p *Page) State() UIState               { return p.state }
func (p *Page) DeviceID() string             { return p.deviceID }
func (p *Page) Event() *models.Event         { return p.event }
func (p *Page) Record() *SubmissionRecord    { return p.record }
func (p *Page) Validation() *ValidationError { return p.validation }
func (p *Page) LoadError() error             { return p.loadErr }

// Load resolves the page into its initial state. The oracle is always
// awaited before the form can be shown, so a known-duplicate device never
// sees the form. The server answer overrides whatever the local cache held.
func (p *Page) Load(ctx context.Context) UIState {
	p.state = StateLoading
	p.deviceID = p.generator.DeviceIdentity()

	cached := p.cache.Check(p.qrToken, p.deviceID)

	check, err := p.oracle.CheckDevice(ctx, p.qrToken, p.deviceID)
	if errors.Is(err, ErrEventUnavailable) {
		p.state = StateEventUnavailable
		return p.state
	}
	if err != nil {
		// Both the device check and the metadata fallback failed
		p.loadErr = err
		p.state = StateEventUnavailable
		return p.state
	}

	p.event = &check.Event

	if check.StatusKnown {
		if check.HasSubmitted {
			var payload models.SubmissionSummary
			if check.Submission != nil {
				payload = *check.Submission
			}
			p.record = p.cache.Mark(p.qrToken, p.deviceID, payload)
			p.state = StateAlreadySubmitted
			return p.state
		}
		// Server says not submitted; a stale cache claim is discarded
		p.state = StateReadyToSubmit
		return p.state
	}

	// Dedup status unknown: the in-session memo is the best signal left
	if cached != nil && cached.Submitted {
		p.record = cached
		p.state = StateAlreadySubmitted
		return p.state
	}
	p.state = StateReadyToSubmit
	return p.state
}

// Submit runs one submission attempt and reconciles the outcome. Only legal
// from ReadyToSubmit or SubmitFailed.
func (p *Page) Submit(ctx context.Context, attendance GuestAttendance, progress ProgressFunc) (Resolution, error) {
	if p.state != StateReadyToSubmit && p.state != StateSubmitFailed {
		return Resolution{}, fmt.Errorf("cannot submit from state %q", p.state)
	}

	p.state = StateSubmitting
	p.validation = nil

	record, err := p.submitter.Submit(ctx, p.qrToken, p.deviceID, attendance, progress)
	resolution := p.resolver.Resolve(p.qrToken, p.deviceID, record, err)

	p.state = resolution.State
	if resolution.Record != nil {
		p.record = resolution.Record
	}
	p.validation = resolution.Validation
	return resolution, nil
}
