// Package acm implements the in-memory agent connection manager: the routing
// fabric between control-plane use cases and live agent sessions.
package acm

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/helios-home/helios/internal/domain/agent"
	"github.com/helios-home/helios/internal/shared/logger"
)

// Channel capacities. Direct delivery is fail-fast once the queue is full;
// broadcast delivery is lossy for slow subscribers.
const (
	directQueueSize    = 100
	broadcastQueueSize = 100
)

type connection struct {
	direct    chan agent.Event
	broadcast chan agent.Event
}

// Manager routes events to registered agent connections. It holds no
// transport state; sessions own their streams and only borrow channels here.
type Manager struct {
	conns   map[uuid.UUID]*connection
	connsMu sync.RWMutex

	logger logger.Interface
}

var _ agent.ConnectionManager = (*Manager)(nil)

// NewManager creates an empty connection manager.
func NewManager(log logger.Interface) *Manager {
	return &Manager{
		conns:  make(map[uuid.UUID]*connection),
		logger: log,
	}
}

// Register inserts channels for the service id. A live entry wins: the new
// registration fails with ErrAgentAlreadyRegistered until the old one is
// unregistered.
func (m *Manager) Register(_ context.Context, serviceID uuid.UUID) (*agent.Receivers, error) {
	m.connsMu.Lock()
	defer m.connsMu.Unlock()

	if _, ok := m.conns[serviceID]; ok {
		return nil, agent.ErrAgentAlreadyRegistered
	}

	conn := &connection{
		direct:    make(chan agent.Event, directQueueSize),
		broadcast: make(chan agent.Event, broadcastQueueSize),
	}
	m.conns[serviceID] = conn

	m.logger.Infow("agent registered", "service_id", serviceID, "connected", len(m.conns))
	return &agent.Receivers{Direct: conn.direct, Broadcast: conn.broadcast}, nil
}

// Unregister removes the entry and closes its channels, dropping anything not
// yet consumed. Unknown ids are a no-op: disconnect paths race and both sides
// may try to clean up.
func (m *Manager) Unregister(_ context.Context, serviceID uuid.UUID) error {
	m.connsMu.Lock()
	defer m.connsMu.Unlock()

	conn, ok := m.conns[serviceID]
	if !ok {
		return nil
	}
	delete(m.conns, serviceID)
	close(conn.direct)
	close(conn.broadcast)

	m.logger.Infow("agent unregistered", "service_id", serviceID, "connected", len(m.conns))
	return nil
}

// Dispatch queues an event on the direct channel without blocking.
func (m *Manager) Dispatch(_ context.Context, serviceID uuid.UUID, event agent.Event) error {
	m.connsMu.RLock()
	defer m.connsMu.RUnlock()

	conn, ok := m.conns[serviceID]
	if !ok {
		return agent.ErrAgentNotRegistered
	}

	select {
	case conn.direct <- event:
		return nil
	default:
		return agent.ErrSendFailed
	}
}

// Broadcast publishes to every current subscriber. A subscriber whose queue
// is full misses the event; ping rounds detect dead connections anyway.
func (m *Manager) Broadcast(_ context.Context, event agent.Event) error {
	m.connsMu.RLock()
	defer m.connsMu.RUnlock()

	for serviceID, conn := range m.conns {
		select {
		case conn.broadcast <- event:
		default:
			m.logger.Warnw("broadcast dropped for slow subscriber", "service_id", serviceID)
		}
	}
	return nil
}

// Connected reports the currently registered service ids.
func (m *Manager) Connected() []uuid.UUID {
	m.connsMu.RLock()
	defer m.connsMu.RUnlock()

	ids := make([]uuid.UUID, 0, len(m.conns))
	for id := range m.conns {
		ids = append(ids, id)
	}
	return ids
}
