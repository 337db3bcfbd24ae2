package report

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shopkeeperpro/shopkeeper/internal/report"
)

type Handler struct {
	svc *report.Service
}

func NewHandler(svc *report.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/today", h.today)
	r.Get("/week", h.week)
	r.Get("/month", h.month)
	r.Get("/range", h.customRange)
}

func (h *Handler) today(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Today(r.Context())
	h.write(w, summary, err)
}

func (h *Handler) week(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.ThisWeek(r.Context())
	h.write(w, summary, err)
}

func (h *Handler) month(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.ThisMonth(r.Context())
	h.write(w, summary, err)
}

func (h *Handler) customRange(w http.ResponseWriter, r *http.Request) {
	start, err := time.Parse(time.DateOnly, r.URL.Query().Get("start"))
	if err != nil {
		http.Error(w, "invalid start date", http.StatusBadRequest)
		return
	}

	end, err := time.Parse(time.DateOnly, r.URL.Query().Get("end"))
	if err != nil {
		http.Error(w, "invalid end date", http.StatusBadRequest)
		return
	}

	// Inclusive end day.
	end = end.AddDate(0, 0, 1).Add(-time.Millisecond)

	summary, err := h.svc.Range(r.Context(), start, end)
	h.write(w, summary, err)
}

func (h *Handler) write(w http.ResponseWriter, summary *report.Summary, err error) {
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(summary); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
