// Package bus provides the external message bus the orchestrator mirrors
// pub/sub events onto. NATS is the real transport; the in-memory bus backs
// tests and single-process use.
package bus

import (
	"context"
	"errors"
	"time"
)

//go:generate mockgen -package=apps -destination=../ui/apps/mock_bus_test.go github.com/odvcencio/lattice/pkg/bus MessageBus

var (
	// ErrClosed is returned when operating on a closed bus or subscription.
	ErrClosed = errors.New("bus or subscription closed")
)

// MessageBus publishes and subscribes to subjects. Implementations must be
// safe for concurrent use.
type MessageBus interface {
	// Publish sends data to every subscriber of subject. It does not wait
	// for delivery.
	Publish(ctx context.Context, subject string, data []byte) error

	// Subscribe registers a handler for subject. Wildcards follow NATS:
	// "*" matches one token and ">" matches the rest.
	Subscribe(ctx context.Context, subject string, handler MessageHandler) (Subscription, error)

	// Close shuts down the bus and all subscriptions.
	Close() error
}

// MessageHandler processes incoming messages. It runs off the caller's
// goroutine.
type MessageHandler func(msg *Message)

// Message represents an incoming message from the bus.
type Message struct {
	Subject string
	Data    []byte
}

// Subscription represents an active subscription that can be cancelled.
type Subscription interface {
	Unsubscribe() error
	Subject() string
}

// Config holds configuration for creating a MessageBus.
type Config struct {
	// URL is the NATS server URL. Ignored for the in-memory bus.
	URL string

	// Name is a client identifier for monitoring.
	Name string

	// Timeout bounds the initial connection.
	Timeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		URL:     "nats://localhost:4222",
		Name:    "lattice",
		Timeout: 5 * time.Second,
	}
}
