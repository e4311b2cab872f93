package kiosk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sekretariat-digital/bukutamu/internal/models"
)

// DeviceCheck is the oracle's answer. StatusKnown is false when only the
// metadata fallback succeeded: the event can be rendered but the dedup
// question went unanswered.
type DeviceCheck struct {
	Event        models.Event
	HasSubmitted bool
	Submission   *models.SubmissionSummary
	StatusKnown  bool
}

// Oracle asks the server the authoritative question: has this device already
// submitted for this event?
type Oracle struct {
	baseURL string
	client  *http.Client
}

func NewOracle(baseURL string, client *http.Client) *Oracle {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Oracle{baseURL: baseURL, client: client}
}

type checkDevicePayload struct {
	Event        models.Event              `json:"event"`
	HasSubmitted bool                      `json:"hasSubmitted"`
	Submission   *models.SubmissionSummary `json:"submission"`
}

type eventPayload struct {
	Event models.Event `json:"event"`
}

// CheckDevice combines "does the event exist and is it active" with "has
// this device submitted" in one round trip. A transport failure degrades to
// the metadata-only fallback so the page can still render event info.
func (o *Oracle) CheckDevice(ctx context.Context, qrToken, deviceID string) (*DeviceCheck, error) {
	check, err := o.checkDevice(ctx, qrToken, deviceID)
	if err == nil {
		return check, nil
	}
	if err == ErrEventUnavailable {
		return nil, err
	}

	event, fallbackErr := o.FetchEvent(ctx, qrToken)
	if fallbackErrUnavailable(fallbackErr) {
		return nil, ErrEventUnavailable
	}
	if fallbackErr != nil {
		// Both calls failed; report the original failure
		return nil, err
	}
	return &DeviceCheck{Event: *event, StatusKnown: false}, nil
}

func (o *Oracle) checkDevice(ctx context.Context, qrToken, deviceID string) (*DeviceCheck, error) {
	body, err := json.Marshal(map[string]string{"device_id": deviceID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal device check: %w", err)
	}

	url := fmt.Sprintf("%s/buku-tamu/%s/check-device", o.baseURL, qrToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build device check request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload checkDevicePayload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, &TransportError{StatusCode: resp.StatusCode, Err: err}
		}
		return &DeviceCheck{
			Event:        payload.Event,
			HasSubmitted: payload.HasSubmitted,
			Submission:   payload.Submission,
			StatusKnown:  true,
		}, nil
	case http.StatusNotFound, http.StatusGone:
		return nil, ErrEventUnavailable
	default:
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: readBody(resp.Body)}
	}
}

// FetchEvent is the metadata-only fallback. It says nothing about
// submission state.
func (o *Oracle) FetchEvent(ctx context.Context, qrToken string) (*models.Event, error) {
	url := fmt.Sprintf("%s/buku-tamu/%s", o.baseURL, qrToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build event request: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload eventPayload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, &TransportError{StatusCode: resp.StatusCode, Err: err}
		}
		return &payload.Event, nil
	case http.StatusNotFound, http.StatusGone:
		return nil, ErrEventUnavailable
	default:
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: readBody(resp.Body)}
	}
}

func fallbackErrUnavailable(err error) bool {
	return err == ErrEventUnavailable
}

func readBody(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, 4096))
	return string(data)
}
