package agent

import (
	"context"
	"math/rand"

	"github.com/crewmesh/crewmesh/core"
)

// The wellness workers below are thin computation stubs; they exist to
// exercise the routing and synthesis paths, not to model their domains.

// SleepAgent analyzes rest quality.
type SleepAgent struct{ *BaseAgent }

// NewSleepAgent constructs the sleep worker.
func NewSleepAgent(optFns ...func(o *Options)) *SleepAgent {
	a := &SleepAgent{NewBaseAgent("Sleep Analyst", "physical", append([]func(o *Options){func(o *Options) {
		o.ID = "sleep_agent"
		o.Capabilities = []string{"sleep_tracking", "quality_scoring", "rest_optimization"}
	}}, optFns...)...)}
	a.Bind(func(_ context.Context, payload core.Payload) (core.Result, error) {
		switch action := payload.Action("process"); action {
		case "process", "analyze_sleep":
			duration := 6.5 + rand.Float64()*1.5
			return core.Result{
				"agent": a.Name(),
				"analysis": core.Result{
					"duration_hours": round1(duration),
					"deep_pct":       25 + rand.Intn(10),
					"rem_pct":        28 + rand.Intn(8),
					"efficiency":     82 + rand.Intn(10),
					"quality_score":  80 + rand.Intn(15),
				},
				"timestamp": core.Now(),
			}, nil
		default:
			return core.UnknownAction(action), nil
		}
	})
	return a
}

// ExerciseAgent plans workouts.
type ExerciseAgent struct{ *BaseAgent }

// NewExerciseAgent constructs the exercise worker.
func NewExerciseAgent(optFns ...func(o *Options)) *ExerciseAgent {
	a := &ExerciseAgent{NewBaseAgent("Exercise Coach", "physical", append([]func(o *Options){func(o *Options) {
		o.ID = "exercise_agent"
		o.Capabilities = []string{"workout_planning", "form_guidance", "progress_tracking"}
	}}, optFns...)...)}
	a.Bind(func(_ context.Context, payload core.Payload) (core.Result, error) {
		switch action := payload.Action("process"); action {
		case "process", "get_workout":
			return core.Result{
				"agent": a.Name(),
				"workout": []core.Result{
					{"phase": "Warm-up", "minutes": 10},
					{"phase": "Resistive Exercise", "minutes": 25},
					{"phase": "Cardio", "minutes": 20},
				},
				"timestamp": core.Now(),
			}, nil
		default:
			return core.UnknownAction(action), nil
		}
	})
	return a
}

// NutritionAgent plans meals.
type NutritionAgent struct{ *BaseAgent }

// NewNutritionAgent constructs the nutrition worker.
func NewNutritionAgent(optFns ...func(o *Options)) *NutritionAgent {
	a := &NutritionAgent{NewBaseAgent("Nutrition Agent", "physical", append([]func(o *Options){func(o *Options) {
		o.ID = "nutrition_agent"
		o.Capabilities = []string{"meal_planning", "calorie_tracking", "hydration_monitoring"}
	}}, optFns...)...)}
	a.Bind(func(_ context.Context, payload core.Payload) (core.Result, error) {
		switch action := payload.Action("process"); action {
		case "process", "get_meal":
			return core.Result{
				"agent": a.Name(),
				"meal": []core.Result{
					{"item": "Scrambled Eggs (rehydrated)", "calories": 210},
					{"item": "Whole Wheat Tortilla", "calories": 180},
					{"item": "Orange Drink", "calories": 60},
				},
				"total_calories": 450,
				"timestamp":      core.Now(),
			}, nil
		default:
			return core.UnknownAction(action), nil
		}
	})
	return a
}

// SocialAgent manages crew and family communication windows.
type SocialAgent struct{ *BaseAgent }

// NewSocialAgent constructs the social worker.
func NewSocialAgent(optFns ...func(o *Options)) *SocialAgent {
	a := &SocialAgent{NewBaseAgent("Social Agent", "psychological", append([]func(o *Options){func(o *Options) {
		o.ID = "social_agent"
		o.Capabilities = []string{"comm_window_planning", "crew_coordination"}
	}}, optFns...)...)}
	a.Bind(func(_ context.Context, payload core.Payload) (core.Result, error) {
		switch action := payload.Action("process"); action {
		case "process", "next_window":
			return core.Result{
				"agent":       a.Name(),
				"next_window": core.Result{"start": "19:30", "end": "20:15", "with": "Family"},
				"timestamp":   core.Now(),
			}, nil
		default:
			return core.UnknownAction(action), nil
		}
	})
	return a
}
