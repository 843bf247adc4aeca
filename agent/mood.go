package agent

import (
	"context"
	"strings"
	"sync"

	"github.com/crewmesh/crewmesh/core"
)

var (
	positiveWords = []string{
		"good", "great", "happy", "excellent", "love", "wonderful",
		"amazing", "fantastic", "joy", "excited", "grateful",
	}
	negativeWords = []string{
		"bad", "terrible", "awful", "hate", "miserable", "horrible",
		"angry", "frustrated", "annoyed", "furious",
	}
	anxietyWords = []string{
		"nervous", "scared", "worried", "anxious", "panic", "fear",
		"tense", "uneasy", "apprehensive",
	}
)

// MoodAgent analyzes text for emotional state using simple word-list
// sentiment scoring, optionally combined with a physiological factor from
// vitals data.
type MoodAgent struct {
	*BaseAgent

	mu      sync.Mutex
	history []core.Result
}

// NewMoodAgent constructs the mood worker.
func NewMoodAgent(optFns ...func(o *Options)) *MoodAgent {
	a := &MoodAgent{
		BaseAgent: NewBaseAgent("Mood Detector", "psychological", append([]func(o *Options){func(o *Options) {
			o.ID = "mood_agent"
			o.Capabilities = []string{
				"sentiment_analysis",
				"emotion_detection",
				"mood_tracking",
				"stress_indicator",
			}
		}}, optFns...)...),
	}
	a.Bind(a.dispatch)
	return a
}

func (a *MoodAgent) dispatch(_ context.Context, payload core.Payload) (core.Result, error) {
	action := payload.Action("analyze_mood")
	switch action {
	case "analyze_mood":
		return a.analyze(payload), nil
	case "get_mood_trend":
		return a.trend(), nil
	default:
		return core.UnknownAction(action), nil
	}
}

func (a *MoodAgent) analyze(payload core.Payload) core.Result {
	text := payload.String("text")
	if text == "" {
		text = payload.String("query")
	}
	lower := strings.ToLower(text)

	score := 0.0
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			score++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			score -= 1.5
		}
	}
	for _, w := range anxietyWords {
		if strings.Contains(lower, w) {
			score -= 2
		}
	}

	physiological := "normal"
	if vitals, ok := payload["vitals"].(map[string]any); ok {
		if hr, ok := vitals["heart_rate"].(float64); ok && hr > 90 {
			score--
			physiological = "elevated heart rate"
		}
	}

	sentiment := "neutral"
	switch {
	case score > 0.5:
		sentiment = "positive"
	case score < -0.5:
		sentiment = "negative"
	}

	analysis := core.Result{
		"emotion":        emotionFor(score, lower),
		"score":          score,
		"confidence":     min(100.0, (abs(score)+5)*10),
		"text_sentiment": sentiment,
		"physiological":  physiological,
	}

	a.mu.Lock()
	a.history = append(a.history, analysis)
	if len(a.history) > DefaultMemoryCapacity {
		a.history = a.history[len(a.history)-DefaultMemoryCapacity:]
	}
	a.mu.Unlock()

	return core.Result{"agent": a.Name(), "mood_analysis": analysis, "timestamp": core.Now()}
}

func (a *MoodAgent) trend() core.Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	total := 0.0
	for _, h := range a.history {
		if s, ok := h["score"].(float64); ok {
			total += s
		}
	}
	avg := 0.0
	if len(a.history) > 0 {
		avg = total / float64(len(a.history))
	}
	return core.Result{
		"agent":     a.Name(),
		"samples":   len(a.history),
		"avg_score": avg,
		"trend":     emotionFor(avg, ""),
		"timestamp": core.Now(),
	}
}

func emotionFor(score float64, text string) string {
	for _, w := range anxietyWords {
		if text != "" && strings.Contains(text, w) {
			return "Anxious"
		}
	}
	switch {
	case score >= 2:
		return "Happy"
	case score > 0:
		return "Content"
	case score <= -3:
		return "Distressed"
	case score < 0:
		return "Low"
	default:
		return "Neutral"
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
