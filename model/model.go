package model

import (
	"context"
	"fmt"
)

// Info contains metadata about a completion backend.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Completer is the minimal interface agents use to generate a free-form
// reply. Implementations must be safe for concurrent use.
type Completer interface {
	// Complete returns a single completion for the prompt under the given
	// system instruction.
	Complete(ctx context.Context, system, prompt string) (string, error)

	// Info returns information about the backend.
	Info() Info
}

// MockCompleter is a lightweight in-memory Completer useful for tests.
type MockCompleter struct {
	info      Info
	responses map[string]string
	err       error
}

// NewMockCompleter constructs a MockCompleter.
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{
		info:      Info{Name: "mock", Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for a prompt.
func (m *MockCompleter) AddResponse(prompt, response string) { m.responses[prompt] = response }

// Fail makes every subsequent Complete call return err.
func (m *MockCompleter) Fail(err error) { m.err = err }

// Complete implements Completer.
func (m *MockCompleter) Complete(_ context.Context, _ string, prompt string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if resp, ok := m.responses[prompt]; ok {
		return resp, nil
	}
	return fmt.Sprintf("Mock response to: %s", prompt), nil
}

// Info implements Completer.
func (m *MockCompleter) Info() Info { return m.info }
