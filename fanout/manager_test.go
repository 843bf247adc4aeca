package fanout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSender captures everything sent to it and can be told to fail.
type recordingSender struct {
	mu     sync.Mutex
	sent   []any
	err    error
	closed bool
}

func (r *recordingSender) Send(_ context.Context, v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, v)
	return nil
}

func (r *recordingSender) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *recordingSender) messages() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.sent...)
}

func TestConnectAssignsID(t *testing.T) {
	m := NewManager(nil)

	id := m.Connect(&recordingSender{}, "")
	assert.NotEmpty(t, id)
	assert.Equal(t, "obs-1", m.Connect(&recordingSender{}, "obs-1"))
	assert.Equal(t, 2, m.Count())
}

func TestDisconnectIdempotent(t *testing.T) {
	m := NewManager(nil)
	s := &recordingSender{}
	id := m.Connect(s, "obs-1")
	m.Subscribe(id, "telemetry")

	m.Disconnect(id)
	assert.Equal(t, 0, m.Count())
	assert.Equal(t, 0, m.TopicCount("telemetry"))
	assert.True(t, s.closed, "transport must be closed on disconnect")

	// second disconnect for the same id is a no-op
	m.Disconnect(id)
	m.Disconnect("never-connected")
	assert.Equal(t, 0, m.Count())
}

func TestSendPersonal(t *testing.T) {
	m := NewManager(nil)
	a, b := &recordingSender{}, &recordingSender{}
	m.Connect(a, "a")
	m.Connect(b, "b")

	m.SendPersonal(context.Background(), "hello", "a")
	assert.Len(t, a.messages(), 1)
	assert.Empty(t, b.messages())

	// unknown target is ignored
	m.SendPersonal(context.Background(), "hello", "c")
}

func TestBroadcastReachesAll(t *testing.T) {
	m := NewManager(nil)
	a, b, c := &recordingSender{}, &recordingSender{}, &recordingSender{}
	m.Connect(a, "a")
	m.Connect(b, "b")
	m.Connect(c, "c")

	m.Broadcast(context.Background(), Snapshot{Timestamp: "now"})

	for _, s := range []*recordingSender{a, b, c} {
		assert.Len(t, s.messages(), 1)
	}
}

func TestBroadcastPrunesFailedConnection(t *testing.T) {
	m := NewManager(nil)
	healthy := &recordingSender{}
	broken := &recordingSender{err: errors.New("peer gone")}
	m.Connect(healthy, "healthy")
	m.Connect(broken, "broken")
	m.Subscribe("broken", "telemetry")

	m.Broadcast(context.Background(), "frame")

	assert.Equal(t, 1, m.Count(), "broken connection is pruned")
	assert.Equal(t, 0, m.TopicCount("telemetry"), "pruning also clears topic membership")
	assert.Len(t, healthy.messages(), 1)
	assert.True(t, broken.closed)
}

func TestBroadcastToTopic(t *testing.T) {
	m := NewManager(nil)
	subs := make([]*recordingSender, 3)
	for i, id := range []string{"a", "b", "c"} {
		subs[i] = &recordingSender{}
		m.Connect(subs[i], id)
		m.Subscribe(id, "vitals")
	}
	outsider := &recordingSender{}
	m.Connect(outsider, "d")

	m.BroadcastToTopic(context.Background(), "frame", "vitals")

	for _, s := range subs {
		assert.Len(t, s.messages(), 1)
	}
	assert.Empty(t, outsider.messages())

	m.Unsubscribe("b", "vitals")
	assert.Equal(t, 2, m.TopicCount("vitals"))
	m.BroadcastToTopic(context.Background(), "frame", "vitals")
	assert.Len(t, subs[0].messages(), 2)
	assert.Len(t, subs[1].messages(), 1, "unsubscribed connection stops receiving")
}

func TestTopicSendFailurePrunes(t *testing.T) {
	m := NewManager(nil)
	broken := &recordingSender{err: errors.New("peer gone")}
	m.Connect(broken, "broken")
	m.Subscribe("broken", "vitals")

	m.BroadcastToTopic(context.Background(), "frame", "vitals")
	assert.Equal(t, 0, m.Count())

	// the next disconnect from the read loop is the usual double-cleanup
	// path and must stay a no-op
	m.Disconnect("broken")
	assert.Equal(t, 0, m.Count())
}

func TestConcurrentConnectBroadcast(t *testing.T) {
	m := NewManager(nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := m.Connect(&recordingSender{}, "")
			m.Subscribe(id, "telemetry")
			m.Broadcast(context.Background(), "frame")
			m.Disconnect(id)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, m.Count())
	assert.Equal(t, 0, m.TopicCount("telemetry"))
}

func TestSnapshotPublisherTick(t *testing.T) {
	m := NewManager(nil)

	calls := 0
	gather := func(context.Context) Snapshot {
		calls++
		return Snapshot{
			Vitals:      map[string]any{"heart_rate": 68.0},
			AgentStates: map[string]AgentState{"Vitals Monitor": {Status: "idle"}},
			Timestamp:   "now",
		}
	}
	p := NewSnapshotPublisher(m, gather, 0, nil)
	assert.Equal(t, DefaultSnapshotInterval, p.interval)

	// no connections: the tick skips gathering entirely
	p.tick()
	assert.Equal(t, 0, calls)

	s := &recordingSender{}
	m.Connect(s, "obs")
	p.tick()
	assert.Equal(t, 1, calls)
	require.Len(t, s.messages(), 1)
	frame := s.messages()[0].(Snapshot)
	assert.Equal(t, 68.0, frame.Vitals["heart_rate"])
}

func TestSnapshotPublisherStartStop(t *testing.T) {
	m := NewManager(nil)
	p := NewSnapshotPublisher(m, func(context.Context) Snapshot { return Snapshot{} }, DefaultSnapshotInterval, nil)

	require.NoError(t, p.Start())
	assert.Error(t, p.Start(), "double start is rejected")

	p.Stop()
	p.Stop() // idempotent
	require.NoError(t, p.Start(), "restart after stop")
	p.Stop()
}
