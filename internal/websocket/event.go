package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents what happened to an entity
type EventType string

const (
	EventTypeCreated EventType = "created"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeTransaction EntityType = "transaction"
	EntityTypeSummary     EntityType = "summary"
)

// EventTypeStale marks derived data the client should refetch
const EventTypeStale EventType = "stale"

// Event is the message pushed to clients.
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`   // e.g. "transaction.created"
	Entity    EntityType  `json:"entity"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionCreated creates a transaction.created event
func TransactionCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeTransaction, payload)
}

// SummaryStale tells clients their cached summary no longer reflects the store
func SummaryStale() Event {
	return NewEvent(EventTypeStale, EntityTypeSummary, nil)
}
