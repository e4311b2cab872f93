package server

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sekretariat-digital/bukutamu/internal/models"
	"github.com/sekretariat-digital/bukutamu/internal/services"
)

const maxMultipartMemory = 32 << 20

type checkDeviceRequest struct {
	DeviceID string `json:"device_id"`
}

type checkDeviceResponse struct {
	Event        *models.Event             `json:"event"`
	HasSubmitted bool                      `json:"hasSubmitted"`
	Submission   *models.SubmissionSummary `json:"submission,omitempty"`
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	qrToken := chi.URLParam(r, "qrToken")

	event, err := s.guestbook.GetEvent(r.Context(), qrToken)
	if err != nil {
		writeEventError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]*models.Event{"event": event})
}

func (s *Server) handleCheckDevice(w http.ResponseWriter, r *http.Request) {
	qrToken := chi.URLParam(r, "qrToken")

	var req checkDeviceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if strings.TrimSpace(req.DeviceID) == "" {
		writeError(w, http.StatusBadRequest, "missing_device_id")
		return
	}

	event, summary, err := s.guestbook.CheckDevice(r.Context(), qrToken, req.DeviceID)
	if err != nil {
		writeEventError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, checkDeviceResponse{
		Event:        event,
		HasSubmitted: summary != nil,
		Submission:   summary,
	})
}

func (s *Server) handleSubmitAttendance(w http.ResponseWriter, r *http.Request) {
	qrToken := chi.URLParam(r, "qrToken")

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_multipart")
		return
	}

	form := services.SubmissionForm{
		DeviceID:    r.FormValue("device_id"),
		FullName:    r.FormValue("nama_lengkap"),
		Institution: r.FormValue("instansi"),
		Position:    r.FormValue("jabatan"),
		Purpose:     r.FormValue("keperluan"),
	}
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["photos[]"] {
			form.Photos = append(form.Photos, photoInput(fh))
		}
	}

	submission, err := s.guestbook.SubmitAttendance(r.Context(), qrToken, form)
	if err != nil {
		var verr *services.ValidationError
		var cerr *services.ConflictError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":  "validation_failed",
				"fields": verr.Fields,
			})
		case errors.As(err, &cerr):
			writeJSON(w, http.StatusConflict, map[string]interface{}{
				"error":               "already_submitted",
				"existing_submission": cerr.Existing,
			})
		default:
			writeEventError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]int{"photo_count": submission.PhotoCount})
}

func photoInput(fh *multipart.FileHeader) services.PhotoInput {
	return services.PhotoInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func writeEventError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrEventNotFound):
		writeError(w, http.StatusNotFound, "event_not_found")
	case errors.Is(err, services.ErrEventInactive):
		writeError(w, http.StatusGone, "event_inactive")
	default:
		writeError(w, http.StatusInternalServerError, "server_error")
	}
}
