package kiosk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/sekretariat-digital/bukutamu/internal/models"
)

const (
	MaxPhotoCount = 5
	MaxPhotoSize  = 5 * 1024 * 1024
)

var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Photo is an image attached to the attendance form, the browser File
// analogue.
type Photo struct {
	Filename    string
	ContentType string
	Data        []byte
}

// GuestAttendance is the visitor's form input, transient until a submission
// succeeds.
type GuestAttendance struct {
	FullName    string
	Institution string
	Position    string
	Purpose     string
	Photos      []Photo
}

// ProgressFunc receives upload progress in whole percent, 0 to 100. Advisory
// UI feedback only; not part of the correctness contract.
type ProgressFunc func(percent int)

// Submitter sends the attendance form as a single multipart write. It never
// retries on its own: whether a retry is safe is the caller's decision.
type Submitter struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

func NewSubmitter(baseURL string, client *http.Client) *Submitter {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Submitter{baseURL: baseURL, client: client, now: time.Now}
}

// Submit validates locally, then performs the write. Failure is one of
// *ValidationError, *ConflictError or *TransportError.
func (s *Submitter) Submit(ctx context.Context, qrToken, deviceID string, attendance GuestAttendance, progress ProgressFunc) (*SubmissionRecord, error) {
	if verr := validateAttendance(attendance); verr != nil {
		return nil, verr
	}

	body, contentType, err := encodeMultipart(deviceID, attendance)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	url := fmt.Sprintf("%s/buku-tamu/%s", s.baseURL, qrToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, newProgressReader(body, progress))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(body))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
		var payload struct {
			PhotoCount int `json:"photo_count"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, &TransportError{StatusCode: resp.StatusCode, Err: err}
		}
		now := s.now()
		return &SubmissionRecord{
			QRToken:   qrToken,
			DeviceID:  deviceID,
			Submitted: true,
			Payload: models.SubmissionSummary{
				FullName:    strings.TrimSpace(attendance.FullName),
				Institution: strings.TrimSpace(attendance.Institution),
				Position:    strings.TrimSpace(attendance.Position),
				Purpose:     strings.TrimSpace(attendance.Purpose),
				PhotoCount:  payload.PhotoCount,
				SubmittedAt: now,
			},
			SubmittedAt: now,
		}, nil

	case http.StatusConflict:
		var payload struct {
			Existing models.SubmissionSummary `json:"existing_submission"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, &TransportError{StatusCode: resp.StatusCode, Err: err}
		}
		return nil, &ConflictError{Existing: payload.Existing}

	default:
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: readBody(resp.Body)}
	}
}

func validateAttendance(attendance GuestAttendance) *ValidationError {
	fields := make(map[string]string)

	if strings.TrimSpace(attendance.FullName) == "" {
		fields["nama_lengkap"] = "full name is required"
	}
	if len(attendance.Photos) > MaxPhotoCount {
		fields["photos"] = fmt.Sprintf("at most %d photos allowed, got %d", MaxPhotoCount, len(attendance.Photos))
	}
	for i, photo := range attendance.Photos {
		key := fmt.Sprintf("photos[%d]", i)
		if !allowedPhotoTypes[photo.ContentType] {
			fields[key] = fmt.Sprintf("%s: unsupported type %q, must be an image", photo.Filename, photo.ContentType)
			continue
		}
		if len(photo.Data) > MaxPhotoSize {
			fields[key] = fmt.Sprintf("%s: %d bytes exceeds the 5MB limit", photo.Filename, len(photo.Data))
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func encodeMultipart(deviceID string, attendance GuestAttendance) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	textFields := map[string]string{
		"nama_lengkap": attendance.FullName,
		"instansi":     attendance.Institution,
		"jabatan":      attendance.Position,
		"keperluan":    attendance.Purpose,
		"device_id":    deviceID,
	}
	for name, value := range textFields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}

	for _, photo := range attendance.Photos {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photos[]"; filename=%q`, photo.Filename))
		header.Set("Content-Type", photo.ContentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create photo part: %w", err)
		}
		if _, err := part.Write(photo.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write photo %s: %w", photo.Filename, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}

// progressReader reports fractional upload progress as the request body is
// consumed by the HTTP transport.
type progressReader struct {
	reader   *bytes.Reader
	total    int
	read     int
	progress ProgressFunc
	last     int
}

func newProgressReader(body []byte, progress ProgressFunc) io.Reader {
	r := &progressReader{
		reader:   bytes.NewReader(body),
		total:    len(body),
		progress: progress,
		last:     -1,
	}
	r.report(0)
	return r
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.read += n
	if r.total > 0 {
		r.report(r.read * 100 / r.total)
	}
	return n, err
}

func (r *progressReader) report(percent int) {
	if r.progress == nil || percent == r.last {
		return
	}
	r.last = percent
	r.progress(percent)
}
