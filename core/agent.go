package core

import (
	"context"
	"time"
)

// State is an agent lifecycle state. Agents start Idle, move to Processing
// while a call is in flight and return to Idle when it completes. Dead is
// terminal and reachable only by explicit administrative action.
type State string

const (
	// StateIdle indicates the agent is ready for work.
	StateIdle State = "idle"
	// StateProcessing indicates a call is currently in flight.
	StateProcessing State = "processing"
	// StateWaiting indicates the agent is blocked on another agent.
	StateWaiting State = "waiting"
	// StateAlert indicates the agent has raised an active alert condition.
	StateAlert State = "alert"
	// StateError indicates the agent's last call failed.
	StateError State = "error"
	// StateDead indicates the agent was administratively retired and
	// rejects further Process calls.
	StateDead State = "dead"
)

// ParseState maps a status label to a State. Unrecognized labels fall back
// to Idle; the boolean reports whether the label was recognized so callers
// can log the fallback.
func ParseState(s string) (State, bool) {
	switch State(s) {
	case StateIdle, StateProcessing, StateWaiting, StateAlert, StateError, StateDead:
		return State(s), true
	default:
		return StateIdle, false
	}
}

// Payload is the structured input to an agent call. It carries at minimum an
// "action" discriminator; everything else is action-specific.
type Payload map[string]any

// Action returns the payload's action discriminator, or def when absent.
func (p Payload) Action(def string) string {
	if a, ok := p["action"].(string); ok && a != "" {
		return a
	}
	return def
}

// String returns the named payload field as a string, or "" when absent or
// of another type.
func (p Payload) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Result is the structured output of an agent call. Results include at least
// an "agent" identifier and a "timestamp"; error-shaped results carry an
// "error" field instead of raising.
type Result map[string]any

// IsError reports whether the result carries a structured error field.
func (r Result) IsError() bool {
	_, ok := r["error"]
	return ok
}

// Metrics holds an agent's performance counters.
type Metrics struct {
	TasksProcessed  int           `json:"tasks_processed"`
	AvgResponseTime time.Duration `json:"avg_response_time"`
	ErrorRate       float64       `json:"error_rate"`
	LastHeartbeat   time.Time     `json:"last_heartbeat"`
}

// MemoryEntry is one timestamped entry in an agent's bounded short-term
// memory.
type MemoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// ActivityEntry is one timestamped line in an agent's bounded activity log.
type ActivityEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Agent     string    `json:"agent"`
}

// StatusReport is a point-in-time snapshot of an agent's identity and
// lifecycle state, safe to share outside the agent.
type StatusReport struct {
	AgentID       string   `json:"agent_id"`
	Name          string   `json:"name"`
	Category      string   `json:"type"`
	State         State    `json:"state"`
	StatusMessage string   `json:"status_message"`
	Capabilities  []string `json:"capabilities"`
	Metrics       Metrics  `json:"metrics"`
}

// Agent is the uniform capability interface every worker in the mesh
// implements. The registry stores handles behind this interface, never
// concrete types.
//
// Process executes one action-discriminated call. Unrecognized actions must
// be surfaced as an error-shaped Result (see UnknownAction), never as a Go
// error; the error return is reserved for the agent being unavailable
// (Dead) or the context being cancelled.
type Agent interface {
	// ID returns the unique agent identifier used for routing.
	ID() string

	// Name returns the human-readable display name.
	Name() string

	// Process executes a single call against the agent.
	Process(ctx context.Context, payload Payload) (Result, error)

	// Status returns a snapshot of identity, state and counters.
	Status() StatusReport

	// Heartbeat refreshes the agent's liveness timestamp.
	Heartbeat()
}

// Timestamp renders t in the ISO-8601 form used in externally visible
// payloads.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Now returns the current time as an ISO-8601 string.
func Now() string { return Timestamp(time.Now()) }
