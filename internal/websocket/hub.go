package websocket

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	// ErrClientClosed is returned when attempting to send to a closed client
	ErrClientClosed = errors.New("client is closed")
	// ErrSlowClient is returned when a client's outbound buffer is full
	ErrSlowClient = errors.New("client send buffer full")
)

// ClientInterface defines the interface that clients must implement.
// Send must not block.
type ClientInterface interface {
	ID() string
	OwnerID() uuid.UUID
	Send(data []byte) error
	Close() error
}

// Hub tracks live sessions per owner. It is safe for concurrent use.
type Hub struct {
	sessions map[uuid.UUID]map[string]ClientInterface
	mu       sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		sessions: make(map[uuid.UUID]map[string]ClientInterface),
	}
}

// Register adds a client under its owner
func (h *Hub) Register(client ClientInterface) {
	ownerID := client.OwnerID()

	h.mu.Lock()
	owned, ok := h.sessions[ownerID]
	if !ok {
		owned = make(map[string]ClientInterface)
		h.sessions[ownerID] = owned
	}
	owned[client.ID()] = client
	h.mu.Unlock()

	log.Debug().
		Str("owner_id", ownerID.String()).
		Str("client_id", client.ID()).
		Msg("WebSocket client registered")
}

// Unregister removes a client. Unknown clients are ignored.
func (h *Hub) Unregister(client ClientInterface) {
	ownerID := client.OwnerID()

	h.mu.Lock()
	owned := h.sessions[ownerID]
	_, known := owned[client.ID()]
	if known {
		delete(owned, client.ID())
		if len(owned) == 0 {
			delete(h.sessions, ownerID)
		}
	}
	h.mu.Unlock()

	if known {
		log.Debug().
			Str("owner_id", ownerID.String()).
			Str("client_id", client.ID()).
			Msg("WebSocket client unregistered")
	}
}

// Broadcast delivers an event to every session of ownerID and returns how many
// sessions accepted it. Sessions that reject a message are dropped.
func (h *Hub) Broadcast(ownerID uuid.UUID, event Event) int {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Str("owner_id", ownerID.String()).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return 0
	}

	delivered := 0
	for _, client := range h.snapshot(ownerID) {
		if err := client.Send(data); err != nil {
			log.Warn().
				Err(err).
				Str("owner_id", ownerID.String()).
				Str("client_id", client.ID()).
				Msg("Dropping WebSocket client that rejected a message")
			h.Unregister(client)
			_ = client.Close()
			continue
		}
		delivered++
	}

	log.Debug().
		Str("owner_id", ownerID.String()).
		Str("event_type", event.Type).
		Int("delivered", delivered).
		Msg("Broadcast event")
	return delivered
}

// snapshot copies an owner's sessions so sends happen without the lock held
func (h *Hub) snapshot(ownerID uuid.UUID) []ClientInterface {
	h.mu.RLock()
	defer h.mu.RUnlock()

	owned := h.sessions[ownerID]
	clients := make([]ClientInterface, 0, len(owned))
	for _, client := range owned {
		clients = append(clients, client)
	}
	return clients
}

// ClientCount returns the number of sessions open for an owner
func (h *Hub) ClientCount(ownerID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[ownerID])
}

// TotalClientCount returns the number of open sessions across all owners
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, owned := range h.sessions {
		total += len(owned)
	}
	return total
}
