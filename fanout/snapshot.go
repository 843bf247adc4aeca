package fanout

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/crewmesh/crewmesh/logging"
)

// DefaultSnapshotInterval is the default telemetry push cadence.
const DefaultSnapshotInterval = time.Second

// AgentState is one agent's entry in a telemetry snapshot, keyed by display
// name.
type AgentState struct {
	Status     string `json:"status"`
	LastAction string `json:"last_action"`
}

// Snapshot is the periodic telemetry frame pushed to observers.
type Snapshot struct {
	Vitals      map[string]any        `json:"vitals"`
	AgentStates map[string]AgentState `json:"agent_states"`
	Timestamp   string                `json:"timestamp"`
}

// SnapshotFunc gathers one telemetry frame. It is supplied by the wiring
// layer so the fan-out stays ignorant of where the data comes from.
type SnapshotFunc func(ctx context.Context) Snapshot

// SnapshotPublisher drives the periodic snapshot loop: once per interval it
// gathers a frame and broadcasts it to every active connection.
type SnapshotPublisher struct {
	manager  *Manager
	gather   SnapshotFunc
	interval time.Duration
	cron     *cron.Cron
	logger   logging.Logger
}

// NewSnapshotPublisher constructs a stopped publisher. A non-positive
// interval falls back to DefaultSnapshotInterval.
func NewSnapshotPublisher(m *Manager, gather SnapshotFunc, interval time.Duration, logger logging.Logger) *SnapshotPublisher {
	if interval <= 0 {
		interval = DefaultSnapshotInterval
	}
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &SnapshotPublisher{
		manager:  m,
		gather:   gather,
		interval: interval,
		logger:   logger,
	}
}

// Start schedules the periodic push. The loop runs until Stop is called.
func (p *SnapshotPublisher) Start() error {
	if p.cron != nil {
		return fmt.Errorf("snapshot publisher already started")
	}
	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", p.interval), p.tick); err != nil {
		return fmt.Errorf("schedule snapshot loop: %w", err)
	}
	c.Start()
	p.cron = c
	p.logger.Info("snapshot loop started", "interval", p.interval)
	return nil
}

// Stop halts the loop and waits for an in-flight tick to finish. Idempotent.
func (p *SnapshotPublisher) Stop() {
	if p.cron == nil {
		return
	}
	<-p.cron.Stop().Done()
	p.cron = nil
	p.logger.Info("snapshot loop stopped")
}

func (p *SnapshotPublisher) tick() {
	if p.manager.Count() == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.interval)
	defer cancel()
	p.manager.Broadcast(ctx, p.gather(ctx))
}
