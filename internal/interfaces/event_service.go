package interfaces

import "context"

// EventType identifies the kind of engine event being published
type EventType string

const (
	// EventSignalCreated fires when a new signal passes validation
	EventSignalCreated EventType = "signal.created"
	// EventSignalUpdated fires when a corroborating event merges into an
	// existing signal
	EventSignalUpdated EventType = "signal.updated"
	// EventRunCompleted fires at the end of a pipeline run with RunStats
	EventRunCompleted EventType = "run.completed"
)

// Event is a published engine event with an arbitrary payload
type Event struct {
	Type    EventType
	Payload interface{}
}

// EventHandler processes a published event
type EventHandler func(ctx context.Context, event Event) error

// EventService is the pub/sub bus connecting the engine to downstream
// consumers (webhook alerter, websocket feed, paper trader)
type EventService interface {
	Subscribe(eventType EventType, handler EventHandler) error
	Publish(ctx context.Context, event Event) error
}
