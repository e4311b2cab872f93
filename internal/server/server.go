package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sekretariat-digital/bukutamu/internal/services"
)

type Server struct {
	guestbook *services.GuestbookService
	events    *services.EventService
	auth      *services.AuthService
}

func New(guestbook *services.GuestbookService, events *services.EventService, auth *services.AuthService) *Server {
	return &Server{
		guestbook: guestbook,
		events:    events,
		auth:      auth,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public guest surface: reached via QR code, no authentication
	r.Route("/buku-tamu/{qrToken}", func(r chi.Router) {
		r.Get("/", s.handleGetEvent)
		r.Post("/check-device", s.handleCheckDevice)
		r.Post("/", s.handleSubmitAttendance)
	})

	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/logout", s.handleLogout)

	// Admin management plane
	r.Route("/events", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/", s.handleCreateEvent)
		r.Get("/", s.handleListEvents)
		r.Get("/{eventId}", s.handleGetEventByID)
		r.Patch("/{eventId}", s.handlePatchEvent)
		r.Post("/{eventId}/regenerate-token", s.handleRegenerateToken)
		r.Get("/{eventId}/submissions", s.handleListSubmissions)
	})

	return r
}

// Auth

type claimsKey struct{}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing_token")
			return
		}
		claims, err := s.auth.VerifyToken(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

// Helpers

func decodeJSON(r *http.Request, out interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
