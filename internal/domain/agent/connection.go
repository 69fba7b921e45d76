// Package agent defines the in-process routing fabric between the control
// plane and connected agents: the event union and the connection manager port.
package agent

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Event is a server-originated signal routed to agent connections. The
// manager is agnostic to event semantics; it only routes.
type Event interface {
	isEvent()
}

// PingEvent asks every connection to run a ping liveness round.
type PingEvent struct{}

func (PingEvent) isEvent() {}

// Connection manager errors.
var (
	ErrAgentAlreadyRegistered = errors.New("agent already registered")
	ErrAgentNotRegistered     = errors.New("agent not registered")
	ErrSendFailed             = errors.New("failed to deliver event")
)

// Receivers bundles the channels handed to a registered connection. Direct
// carries unicast events in FIFO order; Broadcast is a lossy subscription to
// the shared bus. Both are closed by Unregister.
type Receivers struct {
	Direct    <-chan Event
	Broadcast <-chan Event
}

// ConnectionManager routes events to live agent connections. Registration is
// keyed by service id; a second registration for a live id fails until the
// first is explicitly unregistered.
type ConnectionManager interface {
	// Register inserts a direct channel for the service and subscribes it to
	// the broadcast bus. Fails with ErrAgentAlreadyRegistered on a live entry.
	Register(ctx context.Context, serviceID uuid.UUID) (*Receivers, error)

	// Unregister removes the entry and drops pending undelivered events.
	// Unregistering an unknown id is a no-op.
	Unregister(ctx context.Context, serviceID uuid.UUID) error

	// Dispatch sends on the direct channel without blocking. Fails with
	// ErrAgentNotRegistered if absent or ErrSendFailed if the queue is full.
	Dispatch(ctx context.Context, serviceID uuid.UUID, event Event) error

	// Broadcast publishes to every current subscriber. Slow subscribers may
	// miss events; liveness is ping-driven, not delivery-driven.
	Broadcast(ctx context.Context, event Event) error
}
