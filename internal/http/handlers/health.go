package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/VadymBoyko/PW-HW14/internal/http/respond"
)

// Pinger checks backing-store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler returns uptime and database status.
type HealthHandler struct {
	startedAt time.Time
	pinger    Pinger
}

// NewHealthHandler creates the health endpoint handler.
func NewHealthHandler(startedAt time.Time, pinger Pinger) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, pinger: pinger}
}

// Register wires the handler into a ServeMux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handleStatus)
	mux.HandleFunc("GET /api/healthchecker", h.handleDBCheck)
}

func (h *HealthHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Truncate(time.Second).String(),
	})
}

func (h *HealthHandler) handleDBCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.pinger.Ping(r.Context()); err != nil {
		slog.Error("healthchecker", "error", err)
		respond.Error(w, http.StatusInternalServerError, "error connecting to the database")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"message": "welcome, the service is healthy"})
}
