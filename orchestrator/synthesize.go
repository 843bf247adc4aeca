package orchestrator

import (
	"fmt"
	"strings"

	"github.com/crewmesh/crewmesh/core"
)

// synthesize renders a human-readable response for the primary intent from
// the collected results. Missing or error-shaped results fall through to the
// generic acknowledgment so the caller always gets an answer.
func (o *Orchestrator) synthesize(primary, query string, results map[string]core.Result) string {
	switch primary {
	case "system":
		return o.renderSystem(query)
	case "vitals":
		if res, ok := usable(results, "vitals"); ok {
			return renderVitals(res, results)
		}
	case "scheduler":
		if res, ok := usable(results, "scheduler"); ok {
			return renderSchedule(res)
		}
	case "sleep":
		if res, ok := usable(results, "sleep"); ok {
			return renderSleep(res)
		}
	case "mood":
		if res, ok := usable(results, "mood"); ok {
			return renderMood(res)
		}
	case "counselor":
		if res, ok := usable(results, "counselor"); ok {
			return renderCounselor(res, results)
		}
	case "exercise":
		if _, ok := usable(results, "exercise"); ok {
			return "Exercise Coach here: today's session runs warm-up (10 min), resistive exercise (25 min) and cardio (20 min). Ready to start?"
		}
	case "nutrition":
		if res, ok := usable(results, "nutrition"); ok {
			return renderNutrition(res)
		}
	case "alert":
		if res, ok := usable(results, "alert"); ok {
			return renderAlert(res)
		}
	case "digital_twin":
		if res, ok := usable(results, "digital_twin"); ok {
			return renderPrediction(res)
		}
	case "social":
		if _, ok := usable(results, "social"); ok {
			return "Social Agent here: next available family communication window is today 19:30-20:15. Would you like me to schedule it?"
		}
	}
	return fmt.Sprintf("Orchestrator here: I've analyzed your request regarding %q and I'm coordinating with the relevant agents to assist you. What specifically would you like to know?", query)
}

// usable returns the result for key unless it is absent or error-shaped.
func usable(results map[string]core.Result, key string) (core.Result, bool) {
	res, ok := results[key]
	if !ok || res.IsError() {
		return nil, false
	}
	return res, true
}

// renderSystem handles the locally answered system intent, choosing the
// variant by substring checks on the query.
func (o *Orchestrator) renderSystem(query string) string {
	lower := strings.ToLower(query)
	status := o.GetSystemStatus()

	if strings.Contains(lower, "status") {
		idle := 0
		for _, a := range status.Agents {
			if a.State == core.StateIdle {
				idle++
			}
		}
		return fmt.Sprintf("Orchestrator here: SYSTEM STATUS — %d agents registered, %d idle and ready. All systems nominal.",
			status.TotalAgents, idle)
	}

	if strings.Contains(lower, "how") && (strings.Contains(lower, "work") || strings.Contains(lower, "system")) {
		return "Orchestrator here: the mesh uses a multi-agent architecture where specialized agents work together. When you ask a question I classify it and route it to the appropriate agent(s); they process your request and send responses back through me. Agents communicate over a central message bus with priority ordering."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Orchestrator here: we have %d specialized agents:\n", status.TotalAgents)
	for _, a := range status.Agents {
		fmt.Fprintf(&sb, "- %s\n", a.Name)
	}
	sb.WriteString("Which would you like to interact with?")
	return sb.String()
}

func renderVitals(res core.Result, results map[string]core.Result) string {
	vitals, _ := res["vitals"].(core.Result)
	out := fmt.Sprintf("Vitals Monitor here: CURRENT READINGS — heart rate %v bpm, O2 saturation %v%%, CO2 level %v%%, temperature %v°C.",
		field(vitals, "heart_rate", 72.0),
		field(vitals, "o2_saturation", 98.0),
		field(vitals, "co2_level", 0.4),
		field(vitals, "temperature", 36.8))
	if res["status"] == "normal" {
		out += " All vitals are within optimal ranges."
	} else {
		out += " Some readings are outside nominal ranges; keeping a close watch."
	}
	if alert, ok := usable(results, "alert"); ok {
		out += fmt.Sprintf(" Alert status: %v active alert(s).", field(alert, "active_alerts", 0))
	}
	return out
}

func renderSchedule(res core.Result) string {
	var sb strings.Builder
	sb.WriteString("Scheduler Agent here: CURRENT MISSION SCHEDULE\n")
	if items, ok := res["schedule"].([]core.Result); ok {
		for i, item := range items {
			if i == 5 {
				break
			}
			fmt.Fprintf(&sb, "- %v: %v (%v)\n", item["time"], item["task"], item["priority"])
		}
	}
	sb.WriteString("Would you like me to set a reminder?")
	return sb.String()
}

func renderSleep(res core.Result) string {
	analysis, _ := res["analysis"].(core.Result)
	return fmt.Sprintf("Sleep Analyst here: LAST NIGHT'S SLEEP — duration %v hours, deep sleep %v%%, REM %v%%, efficiency %v%%. Quality score: %v/100.",
		field(analysis, "duration_hours", 7.2),
		field(analysis, "deep_pct", 30),
		field(analysis, "rem_pct", 32),
		field(analysis, "efficiency", 86),
		field(analysis, "quality_score", 85))
}

func renderMood(res core.Result) string {
	analysis, _ := res["mood_analysis"].(core.Result)
	return fmt.Sprintf("Mood Detector here: CURRENT EMOTIONAL STATE — primary emotion %v, confidence %v%%. How are you feeling in detail?",
		field(analysis, "emotion", "Neutral"),
		field(analysis, "confidence", 90.0))
}

func renderCounselor(res core.Result, results map[string]core.Result) string {
	out := fmt.Sprintf("Counselor Agent here: %v", field(res, "response", "I hear you. Thank you for sharing that with me."))
	if mood, ok := usable(results, "mood"); ok {
		if analysis, ok := mood["mood_analysis"].(core.Result); ok {
			out += fmt.Sprintf(" (Detected emotional state: %v.)", field(analysis, "emotion", "Neutral"))
		}
	}
	return out
}

func renderNutrition(res core.Result) string {
	return fmt.Sprintf("Nutrition Agent here: today's menu totals %v calories. Enjoy your meal!",
		field(res, "total_calories", 450))
}

func renderAlert(res core.Result) string {
	return fmt.Sprintf("Alert Agent here: CURRENT ALERT STATUS — %v active, %v critical. System status: %v.",
		field(res, "active_alerts", 0),
		field(res, "critical_count", 0),
		field(res, "system_status", "NORMAL"))
}

func renderPrediction(res core.Result) string {
	predictions, _ := res["predictions"].(core.Result)
	return fmt.Sprintf("Digital Twin here: 24-HOUR PREDICTION — fatigue level %v/100, cognitive performance %v%% of peak. Would you like me to adjust your schedule?",
		field(predictions, "fatigue_level", 50),
		field(predictions, "cognitive_performance", 80))
}

// field returns the named result field, or def when the result is nil or the
// field is absent.
func field(res core.Result, key string, def any) any {
	if res == nil {
		return def
	}
	if v, ok := res[key]; ok {
		return v
	}
	return def
}
