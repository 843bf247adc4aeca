package agent

import (
	"context"
	"strings"

	"github.com/crewmesh/crewmesh/core"
	"github.com/crewmesh/crewmesh/model"
)

// interventionStrategies maps a detected concern to canned supportive
// openers used when no completion backend is configured.
var interventionStrategies = map[string][]string{
	"anxiety": {
		"Let's try the 4-7-8 breathing: inhale 4s, hold 7s, exhale 8s.",
		"Name 5 things you can see, 4 you can touch, 3 you can hear.",
	},
	"loneliness": {
		"Would you like me to help compose a message to your family?",
		"The crew is here for you. Shall I check if anyone's free for a call?",
	},
	"stress": {
		"Take a 5-minute break away from the console.",
		"Let's break down what's overwhelming into smaller steps.",
	},
	"sadness": {
		"It's okay to feel sad. Would you like to talk about what's on your mind?",
		"Shall I share some messages from your loved ones?",
	},
	"general": {
		"I hear you. Thank you for sharing that with me.",
		"Would you like to try a grounding technique together?",
	},
}

var concernKeywords = map[string][]string{
	"anxiety":    {"anxious", "nervous", "scared", "worried", "panic"},
	"loneliness": {"lonely", "alone", "homesick", "family", "miss"},
	"stress":     {"stress", "overwhelmed", "pressure", "too much"},
	"sadness":    {"sad", "down", "cry", "grief"},
}

// CounselorOptions configures a CounselorAgent.
type CounselorOptions struct {
	Options

	// Completer, when set, generates free-form supportive replies instead
	// of the canned strategies. The agent works without one.
	Completer model.Completer
}

// CounselorAgent provides psychological support with simple CBT-style
// techniques. With a model.Completer attached it generates free-form
// replies; otherwise it falls back to canned intervention strategies.
type CounselorAgent struct {
	*BaseAgent
	completer model.Completer
}

// NewCounselorAgent constructs the counselor worker.
func NewCounselorAgent(optFns ...func(o *CounselorOptions)) *CounselorAgent {
	opts := CounselorOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	a := &CounselorAgent{
		completer: opts.Completer,
		BaseAgent: NewBaseAgent("Psychological Counselor", "psychological", func(o *Options) {
			*o = opts.Options
			o.ID = "counselor_agent"
			o.Capabilities = []string{
				"emotional_support",
				"cbt_techniques",
				"stress_management",
				"crisis_intervention",
			}
		}),
	}
	a.Bind(a.dispatch)
	return a
}

func (a *CounselorAgent) dispatch(ctx context.Context, payload core.Payload) (core.Result, error) {
	action := payload.Action("chat")
	switch action {
	case "chat", "process":
		return a.chat(ctx, payload), nil
	case "get_strategies":
		return a.getStrategies(payload), nil
	default:
		return core.UnknownAction(action), nil
	}
}

func (a *CounselorAgent) chat(ctx context.Context, payload core.Payload) core.Result {
	text := payload.String("query")
	if text == "" {
		text = payload.String("text")
	}
	concern := classifyConcern(text)

	reply := ""
	if a.completer != nil {
		out, err := a.completer.Complete(ctx,
			"You are a supportive counselor for an isolated crew member. Reply in at most three sentences.",
			text)
		if err != nil {
			a.logger.Warn("completion backend failed, using canned strategy", "error", err)
		} else {
			reply = out
		}
	}
	if reply == "" {
		reply = interventionStrategies[concern][0]
	}

	a.AddToMemory(core.Payload{"query": text, "concern": concern})

	return core.Result{
		"agent":     a.Name(),
		"concern":   concern,
		"response":  reply,
		"timestamp": core.Now(),
	}
}

func (a *CounselorAgent) getStrategies(payload core.Payload) core.Result {
	concern := payload.String("concern")
	strategies, ok := interventionStrategies[concern]
	if !ok {
		concern, strategies = "general", interventionStrategies["general"]
	}
	return core.Result{
		"agent":      a.Name(),
		"concern":    concern,
		"strategies": strategies,
		"timestamp":  core.Now(),
	}
}

func classifyConcern(text string) string {
	lower := strings.ToLower(text)
	for _, concern := range []string{"anxiety", "loneliness", "stress", "sadness"} {
		for _, kw := range concernKeywords[concern] {
			if strings.Contains(lower, kw) {
				return concern
			}
		}
	}
	return "general"
}
