// Package crewmesh provides a high-level façade over the coordination core:
// the message bus, the orchestrator and the connection fan-out manager. Most
// applications interact with this package by:
//  1. Creating a Mesh via New() (optionally overriding defaults)
//  2. Registering one or more worker agents
//  3. Submitting free-text queries via Query()
//
// The façade delegates routing and synthesis to orchestrator.Orchestrator
// while keeping setup ergonomics concise. All defaults are safe for local
// development and testing; production deployments typically supply a
// structured logger and tuned timeouts.
package crewmesh

import (
	"context"
	"time"

	"github.com/crewmesh/crewmesh/bus"
	"github.com/crewmesh/crewmesh/core"
	"github.com/crewmesh/crewmesh/logging"
	"github.com/crewmesh/crewmesh/orchestrator"
)

// Version is the current CrewMesh release version.
const Version = "0.1.0"

// Options configures a Mesh instance.
type Options struct {
	// HistoryLimit bounds the message bus history. Defaults to
	// bus.DefaultHistoryLimit when zero.
	HistoryLimit int

	// CallTimeout bounds each individual agent call issued by the
	// orchestrator so one slow agent cannot stall a whole query.
	CallTimeout time.Duration

	// RequestTimeout is the bus's fallback deadline for correlated
	// request/response exchanges when the caller passes none. Defaults to
	// bus.DefaultRequestTimeout when zero.
	RequestTimeout time.Duration

	// Logger defaults to NoOpLogger if nil.
	Logger logging.Logger
}

// Mesh aggregates the explicitly constructed coordination context: one bus,
// one orchestrator and the agents registered with it. There is no ambient
// global state; everything hangs off this value.
type Mesh struct {
	bus          *bus.Bus
	orchestrator *orchestrator.Orchestrator
}

// New creates a Mesh with optional overrides.
func New(optFns ...func(o *Options)) *Mesh {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	b := bus.New(func(o *bus.Options) {
		if opts.HistoryLimit > 0 {
			o.HistoryLimit = opts.HistoryLimit
		}
		if opts.RequestTimeout > 0 {
			o.RequestTimeout = opts.RequestTimeout
		}
		o.Logger = opts.Logger
	})

	orch := orchestrator.New(b, func(o *orchestrator.Options) {
		if opts.CallTimeout > 0 {
			o.CallTimeout = opts.CallTimeout
		}
		o.Logger = opts.Logger
	})

	return &Mesh{bus: b, orchestrator: orch}
}

// Bus exposes the underlying message bus for agent wiring.
func (m *Mesh) Bus() *bus.Bus { return m.bus }

// Orchestrator exposes the underlying orchestrator.
func (m *Mesh) Orchestrator() *orchestrator.Orchestrator { return m.orchestrator }

// RegisterAgent adds a worker agent to the orchestrator's registry.
func (m *Mesh) RegisterAgent(a core.Agent) { m.orchestrator.RegisterAgent(a) }

// Query classifies, routes and synthesizes a response for a free-text query.
func (m *Mesh) Query(ctx context.Context, query, userID string) (orchestrator.QueryResult, error) {
	return m.orchestrator.HandleComplexQuery(ctx, query, userID)
}
