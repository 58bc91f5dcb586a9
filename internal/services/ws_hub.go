package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"swatch-backend/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSMessage represents a message pushed to feed subscribers
type WSMessage struct {
	Type    string      `json:"type"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// FeedConn is the part of a websocket connection used by the hub
type FeedConn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type subscriber struct {
	username string
	conn     FeedConn
	// gorilla connections allow one concurrent writer
	writeMu sync.Mutex
}

// SwatchHub fans swatch events out to connected websocket clients
type SwatchHub struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber
}

// NewSwatchHub creates a new hub
func NewSwatchHub() *SwatchHub {
	return &SwatchHub{
		subscribers: make(map[string]*subscriber),
	}
}

// Register adds a connection and returns its id
func (h *SwatchHub) Register(username string, conn FeedConn) string {
	id := uuid.NewString()

	h.mu.Lock()
	h.subscribers[id] = &subscriber{username: username, conn: conn}
	h.mu.Unlock()

	log.Info().Str("conn_id", id).Str("username", username).Msg("Feed connection registered")
	return id
}

// Unregister closes and removes a connection
func (h *SwatchHub) Unregister(id string) {
	h.mu.Lock()
	sub, exists := h.subscribers[id]
	delete(h.subscribers, id)
	h.mu.Unlock()

	if exists {
		sub.conn.Close()
		log.Info().Str("conn_id", id).Str("username", sub.username).Msg("Feed connection unregistered")
	}
}

// Count returns the number of connected clients
func (h *SwatchHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// SendTo sends a message to a single connection
func (h *SwatchHub) SendTo(id string, message WSMessage) error {
	h.mu.RLock()
	sub, exists := h.subscribers[id]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("connection %s is not registered", id)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return h.write(id, sub, data)
}

// Broadcast sends a message to every connection. Connections that fail to
// accept the write are dropped.
func (h *SwatchHub) Broadcast(message WSMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Str("type", message.Type).Msg("Failed to marshal feed message")
		return
	}

	h.mu.RLock()
	targets := make(map[string]*subscriber, len(h.subscribers))
	for id, sub := range h.subscribers {
		targets[id] = sub
	}
	h.mu.RUnlock()

	for id, sub := range targets {
		if err := h.write(id, sub, data); err != nil {
			log.Error().Err(err).Str("conn_id", id).Msg("Failed to deliver feed message")
		}
	}
}

// PublishSwatch broadcasts a swatch_uploaded event
func (h *SwatchHub) PublishSwatch(record *models.SwatchRecord) {
	h.Broadcast(WSMessage{Type: "swatch_uploaded", Data: record})
}

// Close drops every connection
func (h *SwatchHub) Close() {
	h.mu.Lock()
	subs := h.subscribers
	h.subscribers = make(map[string]*subscriber)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.conn.Close()
	}
}

func (h *SwatchHub) write(id string, sub *subscriber, data []byte) error {
	sub.writeMu.Lock()
	err := sub.conn.WriteMessage(websocket.TextMessage, data)
	sub.writeMu.Unlock()

	if err != nil {
		h.Unregister(id)
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
