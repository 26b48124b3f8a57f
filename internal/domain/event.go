package domain

import (
	"context"
	"encoding/json"
	"time"
)

// EventType identifies the kind of event being published.
type EventType string

const (
	EventBrowserUnavailable EventType = "browser.unavailable"
	EventSearchEmpty        EventType = "search.empty"
	EventSearchSubmitted    EventType = "search.submitted"
	EventSearchOpened       EventType = "search.opened"
	EventFiltersApplied     EventType = "filters.applied"
	EventFiltersCleared     EventType = "filters.cleared"
	EventEngineChanged      EventType = "engine.changed"
	EventFilterChanged      EventType = "filter.changed"
	EventHistoryRemoved     EventType = "history.removed"
	EventHistoryCleared     EventType = "history.cleared"
	EventPersistenceFailed  EventType = "persistence.failed"
)

// Event is the envelope published on the event bus.
type Event struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	SessionID string          `json:"session_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// NotificationStyle tells the UI how to render a notification.
type NotificationStyle string

const (
	StyleSuccess NotificationStyle = "success"
	StyleFailure NotificationStyle = "failure"
)

// NotificationPayload is the payload of every user-facing event.
type NotificationPayload struct {
	Title   string            `json:"title"`
	Message string            `json:"message,omitempty"`
	Style   NotificationStyle `json:"style"`
}

// DecodeNotification extracts the notification carried by ev.
// Returns false when the payload is absent or not a notification.
func DecodeNotification(ev Event) (NotificationPayload, bool) {
	if len(ev.Payload) == 0 {
		return NotificationPayload{}, false
	}
	var p NotificationPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil || p.Title == "" {
		return NotificationPayload{}, false
	}
	return p, true
}

// EventHandler is a callback invoked when an event is received.
type EventHandler func(ctx context.Context, event Event)

// EventBus provides a publish/subscribe mechanism for domain events.
type EventBus interface {
	// Publish sends an event to all matching subscribers.
	Publish(ctx context.Context, event Event)
	// Subscribe registers a handler for a specific event type.
	// Returns an unsubscribe function.
	Subscribe(eventType EventType, handler EventHandler) func()
	// SubscribeAll registers a handler that receives every event.
	// Returns an unsubscribe function.
	SubscribeAll(handler EventHandler) func()
	// Close drains in-flight handlers and prevents new publishes.
	Close()
}
