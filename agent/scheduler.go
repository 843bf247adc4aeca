package agent

import (
	"context"

	"github.com/crewmesh/crewmesh/core"
)

// SchedulerAgent manages the mission schedule and task prioritization.
type SchedulerAgent struct {
	*BaseAgent
	schedule []core.Result
}

// NewSchedulerAgent constructs the scheduler worker with the default mission
// day plan.
func NewSchedulerAgent(optFns ...func(o *Options)) *SchedulerAgent {
	a := &SchedulerAgent{
		BaseAgent: NewBaseAgent("Scheduler", "coordination", append([]func(o *Options){func(o *Options) {
			o.ID = "scheduler_agent"
			o.Capabilities = []string{
				"task_scheduling",
				"priority_management",
				"timeline_optimization",
			}
		}}, optFns...)...),
		schedule: []core.Result{
			{"time": "07:00", "task": "Wake up & Vitals Check", "priority": "High"},
			{"time": "08:00", "task": "Breakfast", "priority": "Med"},
			{"time": "09:00", "task": "Experiment: Fluid Dynamics", "priority": "High"},
			{"time": "11:00", "task": "Exercise Segment 1", "priority": "High"},
			{"time": "12:30", "task": "Lunch", "priority": "Med"},
			{"time": "13:30", "task": "Maintenance: CO2 Scrubber", "priority": "High"},
			{"time": "17:00", "task": "Communication Window: Earth", "priority": "High"},
			{"time": "20:00", "task": "Free Time", "priority": "Low"},
			{"time": "22:00", "task": "Sleep Onset", "priority": "High"},
		},
	}
	a.Bind(a.dispatch)
	return a
}

func (a *SchedulerAgent) dispatch(_ context.Context, payload core.Payload) (core.Result, error) {
	switch action := payload.Action("get_schedule"); action {
	case "get_schedule", "process":
		return core.Result{"agent": a.Name(), "schedule": a.schedule, "timestamp": core.Now()}, nil
	case "optimize":
		return core.Result{
			"agent":     a.Name(),
			"status":    "Schedule optimized for energy conservation",
			"changes":   []string{"Shifted Exercise Segment 2 by 30 mins"},
			"timestamp": core.Now(),
		}, nil
	default:
		return core.UnknownAction(action), nil
	}
}
