package websocket

import "github.com/google/uuid"

// EventPublisher publishes events to an owner's live sessions
type EventPublisher interface {
	Publish(ownerID uuid.UUID, event Event)
}

var _ EventPublisher = (*Hub)(nil)

// Publish implements EventPublisher
func (h *Hub) Publish(ownerID uuid.UUID, event Event) {
	h.Broadcast(ownerID, event)
}

// NoOpPublisher discards events (for tests or when live updates are disabled)
type NoOpPublisher struct{}

// Publish does nothing
func (n *NoOpPublisher) Publish(ownerID uuid.UUID, event Event) {}
