package fanout

import (
	"context"
	"io"
	"sync"

	"github.com/crewmesh/crewmesh/core"
	"github.com/crewmesh/crewmesh/logging"
)

// Sender is the transport handle behind one live connection. Implementations
// must be safe for use from the manager's goroutine; a returned error marks
// the connection broken and triggers pruning.
type Sender interface {
	Send(ctx context.Context, v any) error
}

// Manager tracks active connections and topic subscriptions. All methods are
// safe for concurrent use; disconnect cleanup is idempotent.
type Manager struct {
	mu          sync.Mutex
	connections map[string]Sender
	topics      map[string]map[string]struct{}
	logger      logging.Logger
}

// NewManager constructs an empty connection manager.
func NewManager(logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Manager{
		connections: make(map[string]Sender),
		topics:      make(map[string]map[string]struct{}),
		logger:      logger,
	}
}

// Connect registers a new observer and returns its connection id, generating
// one when none is supplied.
func (m *Manager) Connect(s Sender, id string) string {
	if id == "" {
		id = core.NewID()
	}
	m.mu.Lock()
	m.connections[id] = s
	m.mu.Unlock()
	m.logger.Info("observer connected", "connection_id", id)
	return id
}

// Disconnect removes the connection and purges it from every topic's
// subscriber set. Safe to call for ids that are already gone.
func (m *Manager) Disconnect(id string) {
	m.mu.Lock()
	s, existed := m.connections[id]
	delete(m.connections, id)
	for _, subs := range m.topics {
		delete(subs, id)
	}
	m.mu.Unlock()

	if existed {
		if closer, ok := s.(io.Closer); ok {
			_ = closer.Close()
		}
		m.logger.Info("observer disconnected", "connection_id", id)
	}
}

// SendPersonal delivers to exactly one connection. A delivery failure prunes
// the connection and is logged, never propagated.
func (m *Manager) SendPersonal(ctx context.Context, msg any, id string) {
	m.mu.Lock()
	s, ok := m.connections[id]
	m.mu.Unlock()
	if !ok {
		return
	}
	if err := s.Send(ctx, msg); err != nil {
		m.logger.Warn("personal send failed, pruning connection", "connection_id", id, "error", err)
		m.Disconnect(id)
	}
}

// Broadcast delivers to every active connection, pruning any connection
// whose send fails.
func (m *Manager) Broadcast(ctx context.Context, msg any) {
	for id, s := range m.snapshotConnections(nil) {
		if err := s.Send(ctx, msg); err != nil {
			m.logger.Warn("broadcast send failed, pruning connection", "connection_id", id, "error", err)
			m.Disconnect(id)
		}
	}
}

// BroadcastToTopic restricts delivery to the topic's subscriber set with the
// same failure-pruning behavior as Broadcast.
func (m *Manager) BroadcastToTopic(ctx context.Context, msg any, topic string) {
	m.mu.Lock()
	subs := m.topics[topic]
	ids := make([]string, 0, len(subs))
	for id := range subs {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for id, s := range m.snapshotConnections(ids) {
		if err := s.Send(ctx, msg); err != nil {
			m.logger.Warn("topic send failed, pruning connection", "connection_id", id, "topic", topic, "error", err)
			m.Disconnect(id)
		}
	}
}

// snapshotConnections copies the connection table under the lock, optionally
// restricted to ids, so sends happen without holding it.
func (m *Manager) snapshotConnections(ids []string) map[string]Sender {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]Sender)
	if ids == nil {
		for id, s := range m.connections {
			out[id] = s
		}
		return out
	}
	for _, id := range ids {
		if s, ok := m.connections[id]; ok {
			out[id] = s
		}
	}
	return out
}

// Subscribe adds the connection to a topic's subscriber set. Membership is
// managed independently of connection lifecycle.
func (m *Manager) Subscribe(id, topic string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.topics[topic] == nil {
		m.topics[topic] = make(map[string]struct{})
	}
	m.topics[topic][id] = struct{}{}
}

// Unsubscribe removes the connection from a topic's subscriber set.
func (m *Manager) Unsubscribe(id, topic string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.topics[topic], id)
}

// Count reports the number of active connections.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.connections)
}

// TopicCount reports the number of subscribers for a topic.
func (m *Manager) TopicCount(topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.topics[topic])
}
