// ABOUTME: HTTP surface for webhook ingestion and sync status
// ABOUTME: Accepts provider deliveries and exposes read-only job state
package web

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"syncmesh/db"
	"syncmesh/models"
	"syncmesh/sync"
)

// Server wires the dispatcher and scheduler behind an HTTP router. The
// status endpoints are read-only; the only write path is webhook delivery.
type Server struct {
	DB         *sql.DB
	Dispatcher *sync.Dispatcher
	Scheduler  *sync.Scheduler
	Logger     *slog.Logger
}

// NewServer creates a server over an already-wired dispatcher.
func NewServer(database *sql.DB, dispatcher *sync.Dispatcher, scheduler *sync.Scheduler) *Server {
	return &Server{
		DB:         database,
		Dispatcher: dispatcher,
		Scheduler:  scheduler,
	}
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Router builds the chi router. Split from Start so tests can drive the
// handlers through httptest without binding a port.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Post("/webhooks/{source}", s.handleWebhook)
	r.Get("/status", s.handleStatus)
	r.Get("/healthz", s.handleHealthz)

	return r
}

// Start serves until the listener fails.
func (s *Server) Start(addr string) error {
	s.logger().Info("starting webhook server", slog.String("addr", addr))
	return http.ListenAndServe(addr, s.Router())
}

type webhookResponse struct {
	Status    string             `json:"status"`
	Duplicate bool               `json:"duplicate,omitempty"`
	Result    *models.SyncResult `json:"result,omitempty"`
}

// handleWebhook decodes one provider delivery and hands it to the
// dispatcher. Duplicates still return 200 so the provider stops retrying.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var event models.WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid webhook payload: %w", err))
		return
	}
	event.Source = chi.URLParam(r, "source")

	result, err := s.Dispatcher.HandleEvent(r.Context(), &event)
	if err != nil {
		var validationErr *sync.ValidationError
		switch {
		case errors.As(err, &validationErr):
			s.writeError(w, http.StatusBadRequest, err)
		case errors.Is(err, sync.ErrNotFound):
			s.writeError(w, http.StatusNotFound, err)
		default:
			s.writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	resp := webhookResponse{Status: "processed", Result: result.Result}
	if result.Duplicate {
		resp.Status = "duplicate"
		resp.Duplicate = true
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type statusResponse struct {
	Jobs   []sync.JobSnapshot `json:"jobs"`
	States []models.SyncState `json:"states"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	states, err := db.GetAllSyncStates(s.DB)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	resp := statusResponse{States: states}
	if s.Scheduler != nil {
		resp.Jobs = s.Scheduler.Jobs()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.DB.Ping(); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger().Warn("failed to encode response", slog.String("error", err.Error()))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger().Warn("request failed", slog.Int("status", status), slog.String("error", err.Error()))
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
