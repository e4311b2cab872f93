package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sekretariat-digital/bukutamu/internal/models"
	"github.com/sekretariat-digital/bukutamu/internal/services"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createEventRequest struct {
	Name        string    `json:"name"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
}

type patchEventRequest struct {
	Status *string `json:"status"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	resp, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":      resp.Token,
		"expires_at": resp.ExpiresAt,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}
	if err := s.auth.Logout(r.Context(), token); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	event, err := s.events.Create(r.Context(), services.CreateEventRequest{
		Name:        req.Name,
		Date:        req.Date,
		Location:    req.Location,
		Description: req.Description,
	})
	if errors.Is(err, services.ErrMissingEventFields) {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.events.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if events == nil {
		events = []*models.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleGetEventByID(w http.ResponseWriter, r *http.Request) {
	id, err := eventIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_event_id")
		return
	}

	event, err := s.events.Get(r.Context(), id)
	if errors.Is(err, services.ErrEventNotFound) {
		writeError(w, http.StatusNotFound, "event_not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (s *Server) handlePatchEvent(w http.ResponseWriter, r *http.Request) {
	id, err := eventIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_event_id")
		return
	}

	var req patchEventRequest
	if err := decodeJSON(r, &req); err != nil || req.Status == nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	err = s.events.SetStatus(r.Context(), id, models.EventStatus(*req.Status))
	if errors.Is(err, services.ErrEventNotFound) {
		writeError(w, http.StatusNotFound, "event_not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_status")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": *req.Status})
}

func (s *Server) handleRegenerateToken(w http.ResponseWriter, r *http.Request) {
	id, err := eventIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_event_id")
		return
	}

	token, err := s.events.RegenerateToken(r.Context(), id)
	if errors.Is(err, services.ErrEventNotFound) {
		writeError(w, http.StatusNotFound, "event_not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"qr_token": token})
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	id, err := eventIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_event_id")
		return
	}

	submissions, err := s.guestbook.ListSubmissions(r.Context(), id)
	if errors.Is(err, services.ErrEventNotFound) {
		writeError(w, http.StatusNotFound, "event_not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if submissions == nil {
		submissions = []*models.Submission{}
	}
	writeJSON(w, http.StatusOK, submissions)
}

func eventIDParam(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "eventId"))
}
