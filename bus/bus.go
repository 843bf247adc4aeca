package bus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/crewmesh/crewmesh/core"
	"github.com/crewmesh/crewmesh/logging"
)

// DefaultHistoryLimit bounds the retained message history.
const DefaultHistoryLimit = 1000

// DefaultRequestTimeout is used by RequestResponse when no timeout is given.
const DefaultRequestTimeout = 5 * time.Second

// Handler is invoked for every message whose target matches the
// subscription. Handlers run sequentially in subscription order; a handler
// error is logged and isolated so remaining subscribers still receive the
// message.
type Handler func(ctx context.Context, msg core.Message) error

// Options configures a Bus.
type Options struct {
	// HistoryLimit bounds the message history; oldest entries are evicted
	// past this capacity. Defaults to DefaultHistoryLimit.
	HistoryLimit int

	// RequestTimeout is the fallback deadline applied when a
	// RequestResponse caller passes a non-positive timeout. Defaults to
	// DefaultRequestTimeout.
	RequestTimeout time.Duration

	// Logger defaults to NoOpLogger if nil.
	Logger logging.Logger
}

type subscription struct {
	id      int
	agentID string
	handler Handler
}

// pendingSlot is a single-assignment future for one in-flight request. The
// originating request's message id is tracked so publishing the request
// itself cannot resolve its own slot.
type pendingSlot struct {
	requestID string
	ch        chan core.Message
}

// Bus is a process-local message bus. All exported methods are safe for
// concurrent use; mutations of the subscriber table and the pending-response
// map are serialized.
type Bus struct {
	mu      sync.Mutex
	subs    []subscription
	nextSub int
	history []core.Message
	limit   int
	timeout time.Duration
	pending map[string]pendingSlot
	logger  logging.Logger
}

// New constructs an empty Bus with optional overrides.
func New(optFns ...func(o *Options)) *Bus {
	opts := Options{
		HistoryLimit:   DefaultHistoryLimit,
		RequestTimeout: DefaultRequestTimeout,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Bus{
		limit:   opts.HistoryLimit,
		timeout: opts.RequestTimeout,
		pending: make(map[string]pendingSlot),
		logger:  opts.Logger,
	}
}

// Subscribe registers a handler for messages targeting agentID and returns
// an unsubscribe function. Handlers for the same target fire in
// subscription order.
func (b *Bus) Subscribe(agentID string, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs = append(b.subs, subscription{id: id, agentID: agentID, handler: h})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish appends the message to the bounded history, delivers it
// sequentially to every handler subscribed to its target and finally
// resolves a pending correlation slot if the message answers an in-flight
// request. A failing handler is logged and does not block delivery to the
// remaining handlers.
func (b *Bus) Publish(ctx context.Context, msg core.Message) {
	b.mu.Lock()
	b.history = append(b.history, msg)
	if len(b.history) > b.limit {
		b.history = b.history[len(b.history)-b.limit:]
	}
	handlers := make([]Handler, 0, 2)
	for _, s := range b.subs {
		if s.agentID == msg.Target {
			handlers = append(handlers, s.handler)
		}
	}
	b.mu.Unlock()

	for _, h := range handlers {
		if err := h(ctx, msg); err != nil {
			b.logger.Error("subscriber callback failed", "target", msg.Target, "message_id", msg.ID, "error", err)
		}
	}

	if msg.RequiresResponse && msg.CorrelationID != "" {
		b.resolve(msg)
	}
}

// resolve hands msg to the pending slot for its correlation id, skipping the
// request message that opened the slot. The slot channel is buffered so a
// racing timeout cannot block the publisher.
func (b *Bus) resolve(msg core.Message) {
	b.mu.Lock()
	slot, ok := b.pending[msg.CorrelationID]
	if ok && slot.requestID == msg.ID {
		ok = false
	}
	if ok {
		delete(b.pending, msg.CorrelationID)
	}
	b.mu.Unlock()

	if ok {
		slot.ch <- msg
	}
}

// RequestResponse publishes msg with a fresh correlation id and suspends the
// caller until a message with the same correlation id is published or the
// timeout elapses. A non-positive timeout falls back to the bus's configured
// default. On timeout the error matches core.ErrRequestTimeout. The pending
// slot is removed on every path.
func (b *Bus) RequestResponse(ctx context.Context, msg core.Message, timeout time.Duration) (core.Message, error) {
	if timeout <= 0 {
		timeout = b.timeout
	}
	msg.CorrelationID = core.NewID()
	msg.RequiresResponse = true
	if msg.ID == "" {
		msg.ID = core.NewID()
	}

	slot := pendingSlot{requestID: msg.ID, ch: make(chan core.Message, 1)}
	b.mu.Lock()
	b.pending[msg.CorrelationID] = slot
	b.mu.Unlock()

	b.Publish(ctx, msg)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp := <-slot.ch:
		return resp, nil
	case <-timer.C:
		b.removePending(msg.CorrelationID)
		return core.Message{}, fmt.Errorf("%w: correlation %s after %s", core.ErrRequestTimeout, msg.CorrelationID, timeout)
	case <-ctx.Done():
		b.removePending(msg.CorrelationID)
		return core.Message{}, ctx.Err()
	}
}

func (b *Bus) removePending(correlationID string) {
	b.mu.Lock()
	delete(b.pending, correlationID)
	b.mu.Unlock()
}

// MessagesFor returns the most recent limit history entries where the agent
// is source or target, most-recent-last.
func (b *Bus) MessagesFor(agentID string, limit int) []core.Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []core.Message
	for _, m := range b.history {
		if m.Involves(agentID) {
			out = append(out, m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// PendingResponses reports the number of outstanding correlation slots.
// Exposed for leak inspection; after all requests resolve or time out it
// must return 0.
func (b *Bus) PendingResponses() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// ClearHistory drops the retained message history.
func (b *Bus) ClearHistory() {
	b.mu.Lock()
	b.history = nil
	b.mu.Unlock()
}
