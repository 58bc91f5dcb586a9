package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Pinger checks database connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}

// RootHandler serves the service banner and health check
type RootHandler struct {
	db Pinger
}

// NewRootHandler creates a new root handler
func NewRootHandler(db Pinger) *RootHandler {
	return &RootHandler{db: db}
}

// Root handles GET /
func (h *RootHandler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, MessageResponse{Message: "Swatch service is running"})
}

// Health handles GET /healthz
func (h *RootHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		log.Error().Err(err).Msg("Health check failed")
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
