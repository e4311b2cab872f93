package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sekretariat-digital/bukutamu/internal/models"
)

const adminPassword = "panjang-dan-rahasia"

func (f *fixture) loginAdmin(t *testing.T) string {
	t.Helper()

	require.NoError(t, f.auth.Register(context.Background(), "admin@example.com", "Admin", adminPassword))

	body, _ := json.Marshal(map[string]string{
		"email":    "admin@example.com",
		"password": adminPassword,
	})
	rec := f.do(t, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.NotEmpty(t, payload.Token)
	return payload.Token
}

func authed(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestAdmin_RequiresToken(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = f.do(t, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdmin_LoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.auth.Register(context.Background(), "admin@example.com", "Admin", adminPassword))

	body, _ := json.Marshal(map[string]string{"email": "admin@example.com", "password": "wrong"})
	rec := f.do(t, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdmin_CreateAndListEvents(t *testing.T) {
	f := newFixture(t)
	token := f.loginAdmin(t)

	body, _ := json.Marshal(map[string]interface{}{
		"name":     "Pelantikan Pejabat",
		"date":     time.Now().Add(48 * time.Hour),
		"location": "Ruang Serbaguna",
	})
	rec := f.do(t, authed(httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader(body)), token))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.QRToken)
	assert.Equal(t, models.EventActive, created.Status)

	rec = f.do(t, authed(httptest.NewRequest(http.MethodGet, "/events", nil), token))
	require.Equal(t, http.StatusOK, rec.Code)

	var events []models.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	assert.Len(t, events, 2, "fixture event plus the new one")
}

func TestAdmin_DeactivateEventClosesGuestSurface(t *testing.T) {
	f := newFixture(t)
	token := f.loginAdmin(t)

	body, _ := json.Marshal(map[string]string{"status": "inactive"})
	rec := f.do(t, authed(httptest.NewRequest(http.MethodPatch, "/events/"+f.event.ID.String(), bytes.NewReader(body)), token))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/buku-tamu/"+f.event.QRToken, nil))
	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestAdmin_RegenerateTokenInvalidatesOldQR(t *testing.T) {
	f := newFixture(t)
	token := f.loginAdmin(t)

	rec := f.do(t, authed(httptest.NewRequest(http.MethodPost, "/events/"+f.event.ID.String()+"/regenerate-token", nil), token))
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		QRToken string `json:"qr_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.NotEqual(t, f.event.QRToken, payload.QRToken)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/buku-tamu/"+f.event.QRToken, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code, "old QR codes stop resolving")

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/buku-tamu/"+payload.QRToken, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdmin_ListSubmissions(t *testing.T) {
	f := newFixture(t)
	token := f.loginAdmin(t)

	body, contentType := multipartBody(t,
		map[string]string{"nama_lengkap": "Budi", "device_id": "dev-1"}, nil)
	req := httptest.NewRequest(http.MethodPost, "/buku-tamu/"+f.event.QRToken, body)
	req.Header.Set("Content-Type", contentType)
	require.Equal(t, http.StatusCreated, f.do(t, req).Code)

	rec := f.do(t, authed(httptest.NewRequest(http.MethodGet, "/events/"+f.event.ID.String()+"/submissions", nil), token))
	require.Equal(t, http.StatusOK, rec.Code)

	var submissions []models.Submission
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submissions))
	require.Len(t, submissions, 1)
	assert.Equal(t, "Budi", submissions[0].FullName)
}

func TestAdmin_Logout(t *testing.T) {
	f := newFixture(t)
	token := f.loginAdmin(t)

	rec := f.do(t, authed(httptest.NewRequest(http.MethodPost, "/auth/logout", nil), token))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, authed(httptest.NewRequest(http.MethodGet, "/events", nil), token))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
