package handlers

import (
	"net/http"

	"swatch-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// FeedHandler streams swatch upload events over websocket
type FeedHandler struct {
	hub          *services.SwatchHub
	tokenService *services.TokenService
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(hub *services.SwatchHub, tokenService *services.TokenService) *FeedHandler {
	return &FeedHandler{
		hub:          hub,
		tokenService: tokenService,
	}
}

// HandleWebSocket handles GET /ws?token=...
func (h *FeedHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Browsers cannot set headers on websocket requests, so the token comes
	// from the query string.
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}

	claims, err := h.tokenService.Decode(token)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	id := h.hub.Register(claims.Subject, conn)
	defer h.hub.Unregister(id)

	if err := h.hub.SendTo(id, services.WSMessage{Type: "connected", Message: claims.Subject}); err != nil {
		log.Error().Err(err).Str("conn_id", id).Msg("Failed to send welcome message")
		return
	}

	// The feed is one way; reads only detect the client going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Str("conn_id", id).Msg("WebSocket error")
			}
			return
		}
	}
}
