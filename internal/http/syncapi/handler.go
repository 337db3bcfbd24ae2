// Package syncapi exposes the sync scheduler over HTTP: a manual trigger,
// the status snapshot, and the remote-to-local pull operations.
package syncapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shopkeeperpro/shopkeeper/internal/sync"
)

type Handler struct {
	svc       *sync.Service
	scheduler *sync.Scheduler
}

func NewHandler(svc *sync.Service, scheduler *sync.Scheduler) *Handler {
	return &Handler{svc: svc, scheduler: scheduler}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/trigger", h.trigger)
	r.Get("/status", h.status)
	r.Post("/pull/catalog", h.pullCatalog)
	r.Post("/pull/users", h.pullUsers)
}

// enabled is false when the remote driver is off and no scheduler runs.
func (h *Handler) enabled(w http.ResponseWriter) bool {
	if h.svc == nil || h.scheduler == nil {
		http.Error(w, "sync is disabled", http.StatusServiceUnavailable)
		return false
	}

	return true
}

func (h *Handler) trigger(w http.ResponseWriter, r *http.Request) {
	if !h.enabled(w) {
		return
	}

	h.scheduler.TriggerNow()
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	if !h.enabled(w) {
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(h.scheduler.Status()); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type pullResponse struct {
	Pulled int `json:"pulled"`
}

func (h *Handler) pullCatalog(w http.ResponseWriter, r *http.Request) {
	if !h.enabled(w) {
		return
	}

	n, err := h.svc.PullCatalog(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(pullResponse{Pulled: n}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) pullUsers(w http.ResponseWriter, r *http.Request) {
	if !h.enabled(w) {
		return
	}

	n, err := h.svc.PullUsers(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(pullResponse{Pulled: n}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
