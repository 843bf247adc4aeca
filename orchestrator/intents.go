package orchestrator

import "strings"

// intentRule pairs an intent label with its keyword set. Rules are evaluated
// in fixed table order; detection order, not match strength, ranks the
// resulting intents. Downstream tests rely on exact substring matches, so do
// not replace this with a smarter classifier without flagging the behavior
// change.
type intentRule struct {
	label    string
	keywords []string
}

// intentTable is the ordered keyword-to-intent table. The first detected
// rule supplies the primary intent.
var intentTable = []intentRule{
	{"vitals", []string{"vitals", "heart rate", "pulse", "health", "oxygen", "o2", "temp", "blood"}},
	{"exercise", []string{"exercise", "workout", "train", "squat", "fitness", "gym", "move"}},
	{"sleep", []string{"sleep", "rest", "tired", "dream", "awake", "insomnia", "bed"}},
	{"nutrition", []string{"eat", "food", "meal", "hunger", "diet", "nutrition", "water", "hydration", "drink"}},
	{"counselor", []string{"sad", "lonely", "family", "homesick", "talk", "support", "mental", "stress"}},
	{"mood", []string{"mood", "feel", "emotion", "happy", "anxious", "angry", "stressed"}},
	{"social", []string{"crew", "colleague", "team", "friends", "message", "call", "social"}},
	{"alert", []string{"alert", "status", "emergency", "warning", "alarm", "danger", "scary"}},
	{"digital_twin", []string{"predict", "future", "tomorrow", "simulation", "what if", "forecast"}},
	{"scheduler", []string{"schedule", "plan", "task", "timeline", "agenda", "today"}},
	{"system", []string{"available", "agents", "how you work", "system", "show status"}},
}

// IntentFallback is the intent assigned when no rule matches.
const IntentFallback = "system"

// routingTable maps an intent to its target agent id. The orchestrator
// handles its own id locally.
var routingTable = map[string]string{
	"vitals":       "vitals_agent",
	"exercise":     "exercise_agent",
	"sleep":        "sleep_agent",
	"nutrition":    "nutrition_agent",
	"counselor":    "counselor_agent",
	"mood":         "mood_agent",
	"social":       "social_agent",
	"alert":        "alert_agent",
	"digital_twin": "digital_twin",
	"scheduler":    "scheduler_agent",
	"system":       "orchestrator",
}

// actionOverrides names intents whose primary call uses a specific action
// instead of the generic "process".
var actionOverrides = map[string]string{
	"vitals": "get_current",
}

// secondaryRule describes one fixed cross-cutting fan-out: when the primary
// intent matches, the named agent is also consulted after the primary call
// completes.
type secondaryRule struct {
	agentID   string
	resultKey string
	payload   func(query string) map[string]any
}

// secondaryRules is the fixed pairwise fan-out set: counseling also runs
// mood detection; vitals also pulls active alerts.
var secondaryRules = map[string]secondaryRule{
	"counselor": {
		agentID:   "mood_agent",
		resultKey: "mood",
		payload: func(query string) map[string]any {
			return map[string]any{"action": "analyze_mood", "text": query}
		},
	},
	"vitals": {
		agentID:   "alert_agent",
		resultKey: "alert",
		payload: func(string) map[string]any {
			return map[string]any{"action": "get_status"}
		},
	},
}

// Classify lower-cases the query and returns the ordered list of detected
// intents. A rule is detected when any of its keywords occurs as a substring
// of the query. An empty result means the caller should fall back to
// IntentFallback.
func Classify(query string) []string {
	lower := strings.ToLower(query)
	var detected []string
	for _, rule := range intentTable {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				detected = append(detected, rule.label)
				break
			}
		}
	}
	return detected
}
