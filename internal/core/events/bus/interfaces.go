package bus

import "time"

// EventBus is an in-process, type-routed pub/sub bus.
//
// Delivery is synchronous in the publisher goroutine: a sensor source that
// publishes a sample has it handled before Publish returns. Handler errors are
// joined and returned to the publisher. All methods are safe for concurrent use.
type EventBus interface {
	// Publish delivers the event to every active subscriber of event.Type().
	Publish(event Event) error
	// PublishAsync publishes from a new goroutine. The channel receives the joined
	// handler error (or nil) and is then closed.
	PublishAsync(event Event) <-chan error
	// PublishBatch publishes events in order and aggregates errors across them.
	PublishBatch(events ...Event) error

	// Subscribe registers a handler for one event type.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the subscription. Nil is ignored.
	Unsubscribe(Subscription) error

	AddObserver(obs Observer)
	RemoveObserver(obs Observer)
	GetMetrics() Metrics
}

// Event is an immutable message carried by the bus.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
}

type (
	EventHandler func(event Event) error
)

// Subscription is a registered handler bound to an event type.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	// Cancel removes the handler from the bus. Repeated calls are safe.
	Cancel() error
}

// Observer is told about every delivery. Implementations must return quickly.
type Observer interface {
	OnDelivered(eventType string, handlers int, err error, took time.Duration)
}

// Metrics is a snapshot of bus counters.
type Metrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Unrouted          uint64
	Errors            uint64
	SubscribersActive uint64
}
