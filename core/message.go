package core

import (
	"time"

	"github.com/google/uuid"
)

// Message priorities. Lower is more urgent.
const (
	PriorityEmergency = 1
	PriorityHigh      = 3
	PriorityNormal    = 5
	PriorityLow       = 8
)

// Message is the envelope agents use to address each other on the bus. After
// publication it must be treated as immutable. CorrelationID links a request
// to its eventual response; RequiresResponse marks messages participating in
// the request/response protocol.
type Message struct {
	ID               string    `json:"message_id"`
	Type             string    `json:"type"`
	Source           string    `json:"source_agent"`
	Target           string    `json:"target_agent"`
	Priority         int       `json:"priority"`
	Timestamp        time.Time `json:"timestamp"`
	Payload          Payload   `json:"payload"`
	RequiresResponse bool      `json:"requires_response"`
	CorrelationID    string    `json:"correlation_id,omitempty"`
}

// NewMessage creates a task message from source to target with a normal
// priority and a fresh id.
func NewMessage(source, target string, payload Payload) Message {
	return Message{
		ID:        NewID(),
		Type:      "task",
		Source:    source,
		Target:    target,
		Priority:  PriorityNormal,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// NewResponse creates a response message answering req, inheriting its
// correlation id so the bus can resolve the pending slot.
func NewResponse(req Message, source string, payload Payload) Message {
	m := NewMessage(source, req.Source, payload)
	m.Type = "response"
	m.Priority = req.Priority
	m.RequiresResponse = true
	m.CorrelationID = req.CorrelationID
	return m
}

// Involves reports whether agentID is the source or target of the message.
func (m Message) Involves(agentID string) bool {
	return m.Source == agentID || m.Target == agentID
}

// NewID generates a new unique identifier for messages, correlations and
// connections.
func NewID() string { return uuid.NewString() }
