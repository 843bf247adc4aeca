package agent

import (
	"context"
	"math/rand"

	"github.com/crewmesh/crewmesh/core"
)

// scenarioAnalysis holds the canned outcome model for one what-if scenario.
type scenarioAnalysis struct {
	Description string
	Outcomes    map[string]string
	Risks       []string
}

var whatIfScenarios = map[string]scenarioAnalysis{
	"exercise_intense": {
		Description: "What if the crew member does intense exercise?",
		Outcomes: map[string]string{
			"heart_rate":      "Increase to 120-140 bpm for 30 min, then normalize in 2 hours",
			"energy":          "Temporary decrease, long-term increase",
			"sleep_quality":   "Improved by 10-15%",
			"muscle_strength": "Maintained or improved",
		},
		Risks: []string{"Potential fatigue if overtraining", "Dehydration risk"},
	},
	"skip_sleep": {
		Description: "What if the crew member skips a night's sleep?",
		Outcomes: map[string]string{
			"cognition":     "Decreased by 20-30%",
			"mood":          "Increased irritability",
			"heart_rate":    "Elevated by 5-10 bpm",
			"immune_system": "Temporary suppression",
		},
		Risks: []string{"Accumulated sleep debt", "Increased error rate"},
	},
	"high_stress": {
		Description: "What if mission stress increases significantly?",
		Outcomes: map[string]string{
			"sleep":           "Reduced by 1-2 hours",
			"heart_rate":      "Elevated 10-20 bpm",
			"mood":            "Decreased positivity",
			"decision_making": "Minor impairment",
		},
		Risks: []string{"Burnout risk", "Interpersonal tension"},
	},
	"isolation_extended": {
		Description: "What if isolation period is extended by 30 days?",
		Outcomes: map[string]string{
			"morale":            "Potential decrease 10-20%",
			"team_dynamic":      "Possible strain",
			"creativity":        "Potential increase",
			"routine_adherence": "Potential decrease",
		},
		Risks: []string{"Psychological fatigue", "Decreased motivation"},
	},
}

// TwinAgent runs predictive "what-if" simulations over the crew member's
// projected state.
type TwinAgent struct {
	*BaseAgent
}

// NewTwinAgent constructs the digital twin worker.
func NewTwinAgent(optFns ...func(o *Options)) *TwinAgent {
	a := &TwinAgent{
		BaseAgent: NewBaseAgent("Digital Twin", "intelligence", append([]func(o *Options){func(o *Options) {
			o.ID = "digital_twin"
			o.Capabilities = []string{
				"predictive_simulation",
				"what_if_analysis",
				"health_prediction",
				"risk_assessment",
			}
		}}, optFns...)...),
	}
	a.Bind(a.dispatch)
	return a
}

func (a *TwinAgent) dispatch(_ context.Context, payload core.Payload) (core.Result, error) {
	switch action := payload.Action("predict_health"); action {
	case "predict_health", "process":
		return a.predict(), nil
	case "what_if":
		return a.whatIf(payload), nil
	case "risk_assessment":
		return core.Result{
			"agent":      a.Name(),
			"risk_level": "low",
			"factors":    []string{"sleep debt trending down", "exercise adherence stable"},
			"timestamp":  core.Now(),
		}, nil
	default:
		return core.UnknownAction(action), nil
	}
}

// whatIf looks up the canned analysis for the requested scenario. Unknown
// scenarios fall back to the intense-exercise model.
func (a *TwinAgent) whatIf(payload core.Payload) core.Result {
	scenario := payload.String("scenario")
	analysis, ok := whatIfScenarios[scenario]
	if !ok {
		scenario, analysis = "exercise_intense", whatIfScenarios["exercise_intense"]
	}
	return core.Result{
		"agent":    a.Name(),
		"scenario": scenario,
		"analysis": core.Result{
			"description":        analysis.Description,
			"predicted_outcomes": analysis.Outcomes,
			"risks":              analysis.Risks,
			"confidence":         55 + rand.Intn(40),
		},
		"timestamp": core.Now(),
	}
}

func (a *TwinAgent) predict() core.Result {
	trend := []string{"stable", "slight_increase", "slight_decrease"}
	return core.Result{
		"agent": a.Name(),
		"predictions": core.Result{
			"fatigue_level":         40 + rand.Intn(40),
			"cognitive_performance": 70 + rand.Intn(25),
			"heart_rate_trend":      trend[rand.Intn(len(trend))],
		},
		"horizon_hours": 24,
		"timestamp":     core.Now(),
	}
}
