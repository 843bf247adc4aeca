package agent

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/crewmesh/crewmesh/core"
)

// severityInfo describes one alert severity level; lower numbers are more
// urgent.
type severityInfo struct {
	Name   string
	Action string
}

var severityLevels = map[int]severityInfo{
	1: {"EMERGENCY", "Immediate response required"},
	2: {"CRITICAL", "Response within minutes"},
	3: {"WARNING", "Response within hour"},
	4: {"INFO", "Awareness only"},
}

// protocolInfo is the canned response procedure for one alert type.
type protocolInfo struct {
	Name     string
	Steps    []string
	Contacts []string
}

var responseProtocols = map[string]protocolInfo{
	"vitals": {
		Name: "Medical Emergency Protocol",
		Steps: []string{
			"Assess astronaut condition",
			"Check vital signs",
			"Contact mission control",
			"Prepare medical supplies",
			"Document all actions",
		},
		Contacts: []string{"Mission Control", "Flight Surgeon", "Emergency Services"},
	},
	"psychological": {
		Name: "Psychological Crisis Protocol",
		Steps: []string{
			"Ensure astronaut safety",
			"Provide immediate support",
			"Alert mission psychologist",
			"Notify family if needed",
			"Monitor continuously",
		},
		Contacts: []string{"Mission Psychologist", "Mission Control"},
	},
	"system": {
		Name: "System Failure Protocol",
		Steps: []string{
			"Identify failed system",
			"Assess impact on mission",
			"Implement backup procedures",
			"Notify mission control",
			"Document incident",
		},
		Contacts: []string{"Mission Control", "Engineering Team"},
	},
	"environmental": {
		Name: "Environmental Hazard Protocol",
		Steps: []string{
			"Assess hazard type",
			"Activate appropriate containment",
			"Evacuate if necessary",
			"Notify mission control",
			"Monitor continuously",
		},
		Contacts: []string{"Mission Control", "Environmental Control"},
	},
	"default": {
		Name: "General Emergency Protocol",
		Steps: []string{
			"Assess situation",
			"Ensure crew safety",
			"Notify mission control",
			"Document incident",
			"Follow standard procedures",
		},
		Contacts: []string{"Mission Control"},
	},
}

// protocolFor maps an alert type to its response protocol, falling back to
// the general protocol for unknown types.
func protocolFor(alertType string) core.Result {
	info, ok := responseProtocols[alertType]
	if !ok {
		info = responseProtocols["default"]
	}
	return core.Result{
		"name":     info.Name,
		"steps":    info.Steps,
		"contacts": info.Contacts,
	}
}

// AlertAgent detects emergencies, classifies severity and tracks active
// alerts. Alert ids are lexicographically sortable ULIDs.
type AlertAgent struct {
	*BaseAgent

	mu      sync.Mutex
	active  []core.Result
	history []core.Result
}

// NewAlertAgent constructs the alert worker.
func NewAlertAgent(optFns ...func(o *Options)) *AlertAgent {
	a := &AlertAgent{
		BaseAgent: NewBaseAgent("Alert System", "intelligence", append([]func(o *Options){func(o *Options) {
			o.ID = "alert_agent"
			o.Capabilities = []string{
				"emergency_detection",
				"severity_classification",
				"protocol_initiation",
				"crew_notification",
			}
		}}, optFns...)...),
	}
	a.Bind(a.dispatch)
	return a
}

func (a *AlertAgent) dispatch(ctx context.Context, payload core.Payload) (core.Result, error) {
	action := payload.Action("get_status")
	switch action {
	case "get_status":
		return a.status(), nil
	case "create_alert":
		return a.createAlert(ctx, payload), nil
	case "get_alerts":
		return a.alerts(payload), nil
	case "acknowledge_alert":
		return a.acknowledge(payload), nil
	case "resolve_alert":
		return a.resolveAlert(payload), nil
	case "get_protocol":
		return core.Result{
			"agent":     a.Name(),
			"protocol":  protocolFor(payload.String("type")),
			"timestamp": core.Now(),
		}, nil
	default:
		return core.UnknownAction(action), nil
	}
}

func (a *AlertAgent) status() core.Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	critical := 0
	for _, alert := range a.active {
		if sev, ok := alert["severity"].(int); ok && sev <= 2 {
			critical++
		}
	}
	systemStatus := "NORMAL"
	if critical > 0 {
		systemStatus = "ALERT"
	}
	var last core.Result
	if len(a.history) > 0 {
		last = a.history[len(a.history)-1]
	}
	return core.Result{
		"agent":          a.Name(),
		"active_alerts":  len(a.active),
		"critical_count": critical,
		"last_alert":     last,
		"system_status":  systemStatus,
		"timestamp":      core.Now(),
	}
}

// createAlert records a new alert. Severity 1-2 alerts flip the agent into
// the Alert lifecycle state and escalate to the orchestrator over the bus
// when one is attached.
func (a *AlertAgent) createAlert(ctx context.Context, payload core.Payload) core.Result {
	severity := 4
	if s, ok := payload["severity"].(int); ok {
		severity = s
	} else if s, ok := payload["severity"].(float64); ok {
		severity = int(s)
	}
	info, ok := severityLevels[severity]
	if !ok {
		severity, info = 4, severityLevels[4]
	}

	alert := core.Result{
		"id":            "ALT-" + ulid.Make().String(),
		"type":          payload.String("type"),
		"severity":      severity,
		"severity_name": info.Name,
		"message":       payload.String("message"),
		"source":        payload.String("source"),
		"created_at":    core.Now(),
		"acknowledged":  false,
		"resolved":      false,
	}

	a.mu.Lock()
	a.active = append(a.active, alert)
	a.history = append(a.history, alert)
	a.mu.Unlock()

	if severity <= 2 {
		a.SetState(core.StateAlert)
		// Emergency escalation bypasses the per-request fan-out.
		_ = a.Send(ctx, "orchestrator", core.Payload{"action": "escalate", "alert": alert})
	}

	return core.Result{
		"agent":           a.Name(),
		"alert":           alert,
		"action_required": info.Action,
		"protocol":        protocolFor(payload.String("type")),
		"timestamp":       core.Now(),
	}
}

func (a *AlertAgent) alerts(payload core.Payload) core.Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	source := a.active
	if payload.String("status") == "all" {
		source = a.history
	}
	alertType := payload.String("type")
	out := make([]core.Result, 0, len(source))
	for _, alert := range source {
		if alertType != "" && alert["type"] != alertType {
			continue
		}
		out = append(out, alert)
	}
	return core.Result{"agent": a.Name(), "alerts": out, "count": len(out), "timestamp": core.Now()}
}

func (a *AlertAgent) acknowledge(payload core.Payload) core.Result {
	id := payload.String("alert_id")
	a.mu.Lock()
	for _, alert := range a.active {
		if alert["id"] == id {
			alert["acknowledged"] = true
			alert["acknowledged_at"] = core.Now()
			break
		}
	}
	a.mu.Unlock()
	return core.Result{"agent": a.Name(), "alert_id": id, "status": "acknowledged", "timestamp": core.Now()}
}

func (a *AlertAgent) resolveAlert(payload core.Payload) core.Result {
	id := payload.String("alert_id")
	a.mu.Lock()
	for i, alert := range a.active {
		if alert["id"] == id {
			alert["resolved"] = true
			alert["resolved_at"] = core.Now()
			alert["resolution"] = payload.String("resolution")
			a.active = append(a.active[:i], a.active[i+1:]...)
			break
		}
	}
	remaining := len(a.active)
	a.mu.Unlock()
	if remaining == 0 {
		a.SetState(core.StateIdle)
	}
	return core.Result{"agent": a.Name(), "alert_id": id, "status": "resolved", "timestamp": core.Now()}
}
