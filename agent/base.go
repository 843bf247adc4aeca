package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/crewmesh/crewmesh/bus"
	"github.com/crewmesh/crewmesh/core"
	"github.com/crewmesh/crewmesh/logging"
)

// Capacity bounds for the audit trails kept by every agent. These are hard
// correctness requirements, not tuning knobs: the trails are the only
// history an agent keeps.
const (
	DefaultMemoryCapacity   = 100
	DefaultActivityCapacity = 50
)

// ProcessFunc is the action-dispatch function a concrete agent binds into
// its BaseAgent. It receives the payload after the lifecycle bookkeeping has
// run.
type ProcessFunc func(ctx context.Context, payload core.Payload) (core.Result, error)

// Options configures a BaseAgent.
type Options struct {
	// ID overrides the generated agent id.
	ID string

	// Capabilities declares the agent's capability labels.
	Capabilities []string

	// MemoryCapacity bounds short-term memory (default 100).
	MemoryCapacity int

	// ActivityCapacity bounds the activity log (default 50).
	ActivityCapacity int

	// Bus, when set, enables Send for fire-and-forget messages to other
	// agents outside the orchestrator's per-request fan-out.
	Bus *bus.Bus

	// Logger defaults to NoOpLogger if nil.
	Logger logging.Logger
}

// BaseAgent bundles identity, declared capabilities, the lifecycle state
// machine, bounded interaction memory and performance counters. Embed it in
// a concrete agent and bind a ProcessFunc to satisfy core.Agent. All
// exported methods are goroutine-safe; the agent itself is not designed to
// be entered concurrently by multiple in-flight Process calls (state and
// memory are shared), callers serialize per agent.
type BaseAgent struct {
	id           string
	name         string
	category     string
	capabilities []string

	mu            sync.Mutex
	state         core.State
	statusMessage string
	memory        []core.MemoryEntry
	activity      []core.ActivityEntry
	metrics       core.Metrics
	errorCount    int

	memCap  int
	actCap  int
	process ProcessFunc
	bus     *bus.Bus
	logger  logging.Logger
}

// NewBaseAgent constructs a BaseAgent with the given display name and
// category. The id defaults to a generated "agent_<hex>" form when not
// supplied via options.
func NewBaseAgent(name, category string, optFns ...func(o *Options)) *BaseAgent {
	opts := Options{
		MemoryCapacity:   DefaultMemoryCapacity,
		ActivityCapacity: DefaultActivityCapacity,
		Logger:           logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.ID == "" {
		opts.ID = "agent_" + strings.ReplaceAll(core.NewID(), "-", "")[:8]
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.MemoryCapacity <= 0 {
		opts.MemoryCapacity = DefaultMemoryCapacity
	}
	if opts.ActivityCapacity <= 0 {
		opts.ActivityCapacity = DefaultActivityCapacity
	}
	return &BaseAgent{
		id:            opts.ID,
		name:          name,
		category:      category,
		capabilities:  append([]string(nil), opts.Capabilities...),
		state:         core.StateIdle,
		statusMessage: "Initialized",
		memCap:        opts.MemoryCapacity,
		actCap:        opts.ActivityCapacity,
		bus:           opts.Bus,
		logger:        opts.Logger,
		metrics:       core.Metrics{LastHeartbeat: time.Now().UTC()},
	}
}

// Bind installs the concrete agent's dispatch function. Must be called by
// the concrete constructor before the agent is used.
func (b *BaseAgent) Bind(fn ProcessFunc) { b.process = fn }

// ID returns the unique agent identifier.
func (b *BaseAgent) ID() string { return b.id }

// Name returns the human-readable display name.
func (b *BaseAgent) Name() string { return b.name }

// Category returns the agent's category tag.
func (b *BaseAgent) Category() string { return b.category }

// Capabilities returns a copy of the declared capability labels.
func (b *BaseAgent) Capabilities() []string {
	return append([]string(nil), b.capabilities...)
}

// Process runs one call through the lifecycle state machine: Idle→Processing
// before dispatch, and back to Idle on completion unless the handler moved
// the agent elsewhere (e.g. Alert), so no stuck-Processing state is
// observable. A Dead agent rejects the call with core.ErrAgentUnavailable
// instead of executing it.
func (b *BaseAgent) Process(ctx context.Context, payload core.Payload) (core.Result, error) {
	b.mu.Lock()
	if b.state == core.StateDead {
		b.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", core.ErrAgentUnavailable, b.id)
	}
	b.state = core.StateProcessing
	b.metrics.TasksProcessed++
	fn := b.process
	b.mu.Unlock()

	start := time.Now()
	var (
		result core.Result
		err    error
	)
	if fn == nil {
		err = fmt.Errorf("%w: %s has no process handler bound", core.ErrAgentUnavailable, b.id)
	} else {
		result, err = fn(ctx, payload)
	}
	b.finish(time.Since(start), err)
	return result, err
}

// finish records call metrics and returns the agent to Idle. A state set by
// the handler itself (Alert, Dead via Kill) wins over the Idle transition;
// only a still-Processing agent reverts.
func (b *BaseAgent) finish(dur time.Duration, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.metrics.TasksProcessed
	b.metrics.AvgResponseTime += (dur - b.metrics.AvgResponseTime) / time.Duration(n)
	if err != nil {
		b.errorCount++
	}
	b.metrics.ErrorRate = float64(b.errorCount) / float64(n)

	if b.state == core.StateProcessing {
		b.state = core.StateIdle
	}
}

// UpdateStatus transitions the agent to the state named by label. An
// unrecognized label never fails; it falls back to Idle and is logged.
func (b *BaseAgent) UpdateStatus(label, message string) {
	state, ok := core.ParseState(label)
	if !ok {
		b.logger.Warn("unrecognized state label, falling back to idle", "agent_id", b.id, "label", label)
	}
	b.mu.Lock()
	b.state = state
	if message != "" {
		b.statusMessage = message
	}
	b.mu.Unlock()
}

// SetState transitions to a known state directly.
func (b *BaseAgent) SetState(state core.State) {
	b.mu.Lock()
	b.state = state
	b.mu.Unlock()
}

// Kill administratively retires the agent. Once Dead it rejects further
// Process calls; there is no resurrection path.
func (b *BaseAgent) Kill(reason string) {
	b.mu.Lock()
	b.state = core.StateDead
	if reason != "" {
		b.statusMessage = reason
	}
	b.mu.Unlock()
	b.logger.Warn("agent retired", "agent_id", b.id, "reason", reason)
}

// AddToMemory appends a timestamped entry to short-term memory, evicting the
// oldest entry past capacity.
func (b *BaseAgent) AddToMemory(data any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.memory = append(b.memory, core.MemoryEntry{Timestamp: time.Now().UTC(), Data: data})
	if len(b.memory) > b.memCap {
		b.memory = b.memory[len(b.memory)-b.memCap:]
	}
}

// Memory returns a copy of the retained short-term memory, oldest first.
func (b *BaseAgent) Memory() []core.MemoryEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]core.MemoryEntry(nil), b.memory...)
}

// LogActivity appends a timestamped line to the activity log, evicting the
// oldest line past capacity.
func (b *BaseAgent) LogActivity(message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.activity = append(b.activity, core.ActivityEntry{Timestamp: time.Now().UTC(), Message: message, Agent: b.name})
	if len(b.activity) > b.actCap {
		b.activity = b.activity[len(b.activity)-b.actCap:]
	}
}

// Activity returns a copy of the retained activity log, oldest first.
func (b *BaseAgent) Activity() []core.ActivityEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]core.ActivityEntry(nil), b.activity...)
}

// Status returns a point-in-time snapshot of the agent.
func (b *BaseAgent) Status() core.StatusReport {
	b.mu.Lock()
	defer b.mu.Unlock()
	return core.StatusReport{
		AgentID:       b.id,
		Name:          b.name,
		Category:      b.category,
		State:         b.state,
		StatusMessage: b.statusMessage,
		Capabilities:  append([]string(nil), b.capabilities...),
		Metrics:       b.metrics,
	}
}

// Heartbeat refreshes the liveness timestamp.
func (b *BaseAgent) Heartbeat() {
	b.mu.Lock()
	b.metrics.LastHeartbeat = time.Now().UTC()
	b.mu.Unlock()
}

// Send publishes a fire-and-forget task message to another agent via the
// bus. Used for asynchronous notifications (e.g. emergency escalation)
// outside the orchestrator's per-request fan-out. Returns an error when no
// bus was attached at construction.
func (b *BaseAgent) Send(ctx context.Context, target string, payload core.Payload) error {
	if b.bus == nil {
		return fmt.Errorf("agent %s has no bus attached", b.id)
	}
	b.bus.Publish(ctx, core.NewMessage(b.id, target, payload))
	return nil
}
