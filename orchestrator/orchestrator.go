package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/crewmesh/crewmesh/agent"
	"github.com/crewmesh/crewmesh/bus"
	"github.com/crewmesh/crewmesh/core"
	"github.com/crewmesh/crewmesh/logging"
)

// DefaultCallTimeout bounds each delegated agent call so one hung agent
// cannot stall a whole query.
const DefaultCallTimeout = 3 * time.Second

const breakerMaxFailures = 5

// Options configures an Orchestrator.
type Options struct {
	// CallTimeout bounds each delegated agent call. Defaults to
	// DefaultCallTimeout.
	CallTimeout time.Duration

	// Logger defaults to NoOpLogger if nil.
	Logger logging.Logger
}

// ReasoningStep is one entry of the reasoning trace: which agent was
// consulted and what it was asked to do.
type ReasoningStep struct {
	Agent  string `json:"agent"`
	Action string `json:"action"`
}

// QueryResult is the synthesized answer for one query.
type QueryResult struct {
	Response       string          `json:"response"`
	ReasoningChain []ReasoningStep `json:"reasoning_chain"`
	Timestamp      string          `json:"timestamp"`
}

// AgentStatus is one registry entry in a SystemStatus snapshot.
type AgentStatus struct {
	Name          string     `json:"name"`
	State         core.State `json:"state"`
	StatusMessage string     `json:"status_message"`
}

// SystemStatus reports the lifecycle state of every registered agent. The
// orchestrator counts itself in TotalAgents.
type SystemStatus struct {
	TotalAgents int                    `json:"total_agents"`
	Agents      map[string]AgentStatus `json:"agents"`
	Timestamp   string                 `json:"timestamp"`
}

// Orchestrator is itself an agent (id "orchestrator") that owns the registry
// of worker agents and turns free-text queries into synthesized answers plus
// a reasoning trace. Registration is expected during startup; lookups are
// safe under concurrent queries.
type Orchestrator struct {
	*agent.BaseAgent

	bus         *bus.Bus
	callTimeout time.Duration
	logger      logging.Logger

	mu       sync.RWMutex
	registry map[string]core.Agent
	breakers map[string]*gobreaker.CircuitBreaker[core.Result]
}

// New constructs an Orchestrator bound to the given bus. It subscribes to
// its own id so agents can escalate to it asynchronously outside the
// per-request fan-out.
func New(b *bus.Bus, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{CallTimeout: DefaultCallTimeout, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = DefaultCallTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	o := &Orchestrator{
		BaseAgent: agent.NewBaseAgent("Orchestrator", "core", func(ao *agent.Options) {
			ao.ID = "orchestrator"
			ao.Capabilities = []string{
				"task_delegation",
				"workflow_orchestration",
				"intent_analysis",
				"context_management",
			}
			ao.Bus = b
			ao.Logger = opts.Logger
		}),
		bus:         b,
		callTimeout: opts.CallTimeout,
		logger:      opts.Logger,
		registry:    make(map[string]core.Agent),
		breakers:    make(map[string]*gobreaker.CircuitBreaker[core.Result]),
	}
	o.Bind(o.dispatch)

	if b != nil {
		b.Subscribe("orchestrator", o.onBusMessage)
	}
	return o
}

// RegisterAgent adds an agent to the registry. A second registration for the
// same id replaces the previous handle; this is logged, not rejected, since
// registration happens during startup wiring.
func (o *Orchestrator) RegisterAgent(a core.Agent) {
	o.mu.Lock()
	if _, exists := o.registry[a.ID()]; exists {
		o.logger.Warn("replacing registered agent", "agent_id", a.ID())
	}
	o.registry[a.ID()] = a
	o.mu.Unlock()
	o.LogActivity(fmt.Sprintf("Registered agent: %s (%s)", a.Name(), a.ID()))
}

// Agent returns a registered agent handle by id.
func (o *Orchestrator) Agent(id string) (core.Agent, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	a, ok := o.registry[id]
	return a, ok
}

// dispatch handles the orchestrator's own uniform-contract actions.
func (o *Orchestrator) dispatch(ctx context.Context, payload core.Payload) (core.Result, error) {
	action := payload.Action("handle_complex_query")
	switch action {
	case "handle_complex_query":
		res, err := o.HandleComplexQuery(ctx, payload.String("query"), payload.String("userId"))
		if err != nil {
			return nil, err
		}
		return core.Result{
			"response":        res.Response,
			"reasoning_chain": res.ReasoningChain,
			"timestamp":       res.Timestamp,
		}, nil
	case "get_system_status":
		return o.systemStatusResult(), nil
	default:
		return core.UnknownAction(action), nil
	}
}

// onBusMessage receives asynchronous messages addressed to the orchestrator,
// currently emergency escalations from the alert agent.
func (o *Orchestrator) onBusMessage(_ context.Context, msg core.Message) error {
	if msg.Payload.Action("") == "escalate" {
		o.LogActivity(fmt.Sprintf("Escalation received from %s", msg.Source))
		o.UpdateStatus(string(core.StateAlert), "Escalation active")
		return nil
	}
	o.logger.Debug("unhandled bus message", "source", msg.Source, "type", msg.Type)
	return nil
}

// HandleComplexQuery classifies the query, routes it to the primary target
// agent, runs any fixed secondary fan-out, and synthesizes a unified
// response. It never fails for routing reasons: an unroutable intent or a
// failed agent call degrades to the generic synthesis branch.
func (o *Orchestrator) HandleComplexQuery(ctx context.Context, query, userID string) (QueryResult, error) {
	intents := Classify(query)
	primary := IntentFallback
	if len(intents) > 0 {
		primary = intents[0]
	}
	o.logger.Info("query classified", "user_id", userID, "primary", primary, "intents", intents)

	results := make(map[string]core.Result)
	var trace []ReasoningStep

	targetID := routingTable[primary]
	switch {
	case targetID == o.ID():
		results["orchestrator"] = o.systemStatusResult()
		trace = append(trace, ReasoningStep{Agent: o.Name(), Action: "Analyzing request..."})

	default:
		if target, ok := o.Agent(targetID); ok {
			action := actionOverrides[primary]
			if action == "" {
				action = "process"
			}
			res, err := o.callAgent(ctx, target, core.Payload{"query": query, "action": action})
			if err == nil {
				results[primary] = res
				trace = append(trace, ReasoningStep{Agent: target.Name(), Action: "Analyzing request..."})
			}

			if rule, ok := secondaryRules[primary]; ok {
				if secondary, ok := o.Agent(rule.agentID); ok {
					res, err := o.callAgent(ctx, secondary, core.Payload(rule.payload(query)))
					if err == nil {
						results[rule.resultKey] = res
						trace = append(trace, ReasoningStep{Agent: secondary.Name(), Action: "Correlating context..."})
					}
				}
			}
		} else {
			o.logger.Warn("intent has no registered target", "intent", primary, "target", targetID)
		}
	}

	o.AddToMemory(core.Payload{"user_id": userID, "query": query, "primary": primary})

	return QueryResult{
		Response:       o.synthesize(primary, query, results),
		ReasoningChain: trace,
		Timestamp:      core.Now(),
	}, nil
}

// callAgent delegates one call through the target's circuit breaker with the
// configured per-call timeout.
func (o *Orchestrator) callAgent(ctx context.Context, target core.Agent, payload core.Payload) (core.Result, error) {
	cb := o.breakerFor(target.ID())
	start := time.Now()
	res, err := cb.Execute(func() (core.Result, error) {
		callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
		defer cancel()
		return target.Process(callCtx, payload)
	})
	o.logger.Debug("delegated agent call", "target", target.ID(), "duration", time.Since(start), "error", err)
	return res, err
}

func (o *Orchestrator) breakerFor(agentID string) *gobreaker.CircuitBreaker[core.Result] {
	o.mu.Lock()
	defer o.mu.Unlock()
	if cb, ok := o.breakers[agentID]; ok {
		return cb
	}
	logger := o.logger
	cb := gobreaker.NewCircuitBreaker[core.Result](gobreaker.Settings{
		Name:        "agent:" + agentID,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerMaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	o.breakers[agentID] = cb
	return cb
}

// GetSystemStatus reports the lifecycle state of every registered agent.
func (o *Orchestrator) GetSystemStatus() SystemStatus {
	o.mu.RLock()
	defer o.mu.RUnlock()

	agents := make(map[string]AgentStatus, len(o.registry))
	for id, a := range o.registry {
		st := a.Status()
		agents[id] = AgentStatus{Name: st.Name, State: st.State, StatusMessage: st.StatusMessage}
	}
	return SystemStatus{
		TotalAgents: len(o.registry) + 1,
		Agents:      agents,
		Timestamp:   core.Now(),
	}
}

func (o *Orchestrator) systemStatusResult() core.Result {
	status := o.GetSystemStatus()
	agents := make(core.Result, len(status.Agents))
	for id, st := range status.Agents {
		agents[id] = core.Result{"name": st.Name, "state": st.State, "status_message": st.StatusMessage}
	}
	return core.Result{
		"agent":        o.Name(),
		"total_agents": status.TotalAgents,
		"agents":       agents,
		"timestamp":    status.Timestamp,
	}
}
