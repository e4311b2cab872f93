package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sekretariat-digital/bukutamu/internal/models"
	"github.com/sekretariat-digital/bukutamu/internal/repositories"
	"github.com/sekretariat-digital/bukutamu/internal/services"
)

type fixture struct {
	router http.Handler
	events *services.EventService
	auth   *services.AuthService
	event  *models.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	eventRepo := repositories.NewMemoryEventRepository()
	guestbook := services.NewGuestbookService(
		eventRepo,
		repositories.NewMemorySubmissionRepository(),
		repositories.NewMemoryDeviceCheckCache(),
		t.TempDir(),
	)
	events := services.NewEventService(eventRepo)
	auth := services.NewAuthService(
		repositories.NewMemoryAccountRepository(),
		repositories.NewMemorySessionRepository(),
		"test-secret", time.Hour,
	)

	event, err := events.Create(context.Background(), services.CreateEventRequest{
		Name: "Rapat Tahunan",
		Date: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	return &fixture{
		router: New(guestbook, events, auth).Router(),
		events: events,
		auth:   auth,
		event:  event,
	}
}

func (f *fixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func multipartBody(t *testing.T, fields map[string]string, photos map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	for name, data := range photos {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photos[]"; filename=%q`, name))
		header.Set("Content-Type", mime.TypeByExtension(filepath.Ext(name)))

		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestGetEvent(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/buku-tamu/"+f.event.QRToken, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Event models.Event `json:"event"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "Rapat Tahunan", payload.Event.Name)
}

func TestGetEvent_UnknownToken(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/buku-tamu/bogus", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetEvent_Inactive(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.events.SetStatus(context.Background(), f.event.ID, models.EventInactive))

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/buku-tamu/"+f.event.QRToken, nil))
	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestCheckDevice_MissingDeviceID(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/buku-tamu/"+f.event.QRToken+"/check-device",
		bytes.NewBufferString(`{"device_id": "  "}`))
	rec := f.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitAttendance_FullRoundTrip(t *testing.T) {
	f := newFixture(t)

	// 1. Fresh device is unknown
	req := httptest.NewRequest(http.MethodPost, "/buku-tamu/"+f.event.QRToken+"/check-device",
		bytes.NewBufferString(`{"device_id": "dev-1"}`))
	rec := f.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var check struct {
		HasSubmitted bool `json:"hasSubmitted"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &check))
	assert.False(t, check.HasSubmitted)

	// 2. Submit with one photo
	body, contentType := multipartBody(t,
		map[string]string{"nama_lengkap": "Budi", "device_id": "dev-1"},
		map[string][]byte{"a.jpg": bytes.Repeat([]byte{1}, 256)},
	)
	req = httptest.NewRequest(http.MethodPost, "/buku-tamu/"+f.event.QRToken, body)
	req.Header.Set("Content-Type", contentType)
	rec = f.do(t, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		PhotoCount int `json:"photo_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, 1, created.PhotoCount)

	// 3. Device check now reports the submission
	req = httptest.NewRequest(http.MethodPost, "/buku-tamu/"+f.event.QRToken+"/check-device",
		bytes.NewBufferString(`{"device_id": "dev-1"}`))
	rec = f.do(t, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var second struct {
		HasSubmitted bool                      `json:"hasSubmitted"`
		Submission   *models.SubmissionSummary `json:"submission"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.True(t, second.HasSubmitted)
	require.NotNil(t, second.Submission)
	assert.Equal(t, "Budi", second.Submission.FullName)

	// 4. A second submit from the same device conflicts
	body, contentType = multipartBody(t,
		map[string]string{"nama_lengkap": "Imposter", "device_id": "dev-1"}, nil)
	req = httptest.NewRequest(http.MethodPost, "/buku-tamu/"+f.event.QRToken, body)
	req.Header.Set("Content-Type", contentType)
	rec = f.do(t, req)
	require.Equal(t, http.StatusConflict, rec.Code)

	var conflict struct {
		Error    string                   `json:"error"`
		Existing models.SubmissionSummary `json:"existing_submission"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conflict))
	assert.Equal(t, "already_submitted", conflict.Error)
	assert.Equal(t, "Budi", conflict.Existing.FullName)
}

func TestSubmitAttendance_ValidationErrors(t *testing.T) {
	f := newFixture(t)

	body, contentType := multipartBody(t,
		map[string]string{"nama_lengkap": "", "device_id": "dev-1"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/buku-tamu/"+f.event.QRToken, body)
	req.Header.Set("Content-Type", contentType)

	rec := f.do(t, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var payload struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "validation_failed", payload.Error)
	assert.Contains(t, payload.Fields, "nama_lengkap")
}
