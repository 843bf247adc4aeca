package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewmesh/crewmesh/bus"
	"github.com/crewmesh/crewmesh/core"
	"github.com/crewmesh/crewmesh/model"
)

func TestVitalsGetCurrent(t *testing.T) {
	a := NewVitalsAgent()
	assert.Equal(t, "vitals_agent", a.ID())

	res, err := a.Process(context.Background(), core.Payload{"action": "get_current"})
	require.NoError(t, err)

	vitals, ok := res["vitals"].(core.Result)
	require.True(t, ok, "result must carry a vitals block")
	for _, metric := range []string{"heart_rate", "o2_saturation", "co2_level", "temperature", "hr_variability"} {
		assert.Contains(t, vitals, metric)
	}
	o2 := vitals["o2_saturation"].(float64)
	assert.GreaterOrEqual(t, o2, 92.0)
	assert.LessOrEqual(t, o2, 100.0)
	assert.Contains(t, []any{"normal", "warning"}, res["status"])
}

func TestVitalsAnomalyDetection(t *testing.T) {
	a := NewVitalsAgent()

	// no readings yet, no anomalies
	res, err := a.Process(context.Background(), core.Payload{"action": "check_anomalies"})
	require.NoError(t, err)
	assert.Empty(t, res["anomalies"])
	assert.Equal(t, false, res["has_critical"])

	// push the baseline far outside the thresholds so the next reading is
	// anomalous
	_, err = a.Process(context.Background(), core.Payload{"action": "update_baseline", "heart_rate": 180.0})
	require.NoError(t, err)
	_, err = a.Process(context.Background(), core.Payload{"action": "get_current"})
	require.NoError(t, err)

	res, err = a.Process(context.Background(), core.Payload{"action": "check_anomalies"})
	require.NoError(t, err)
	anomalies, ok := res["anomalies"].([]core.Result)
	require.True(t, ok)
	require.NotEmpty(t, anomalies)

	found := false
	for _, an := range anomalies {
		if an["metric"] == "heart_rate" {
			found = true
			assert.Equal(t, "high", an["threshold"])
		}
	}
	assert.True(t, found, "heart_rate anomaly expected")
}

func TestVitalsUpdateBaseline(t *testing.T) {
	a := NewVitalsAgent()
	res, err := a.Process(context.Background(), core.Payload{"action": "update_baseline", "heart_rate": 75.0, "temperature": 37.0})
	require.NoError(t, err)

	baseline, ok := res["baseline"].(core.Result)
	require.True(t, ok)
	assert.Equal(t, 75.0, baseline["heart_rate"])
	assert.Equal(t, 37.0, baseline["temperature"])
	assert.Equal(t, 98.0, baseline["o2_saturation"], "untouched metric keeps its default")
}

func TestAlertLifecycle(t *testing.T) {
	a := NewAlertAgent()

	res, err := a.Process(context.Background(), core.Payload{"action": "get_status"})
	require.NoError(t, err)
	assert.Equal(t, 0, res["active_alerts"])
	assert.Equal(t, "NORMAL", res["system_status"])

	res, err = a.Process(context.Background(), core.Payload{
		"action":   "create_alert",
		"type":     "medical",
		"severity": 3,
		"message":  "elevated heart rate",
		"source":   "vitals_agent",
	})
	require.NoError(t, err)
	alert, ok := res["alert"].(core.Result)
	require.True(t, ok)
	id := alert["id"].(string)
	assert.Contains(t, id, "ALT-")
	assert.Equal(t, "WARNING", alert["severity_name"])

	res, err = a.Process(context.Background(), core.Payload{"action": "acknowledge_alert", "alert_id": id})
	require.NoError(t, err)
	assert.Equal(t, "acknowledged", res["status"])

	res, err = a.Process(context.Background(), core.Payload{"action": "resolve_alert", "alert_id": id, "resolution": "false positive"})
	require.NoError(t, err)
	assert.Equal(t, "resolved", res["status"])

	res, err = a.Process(context.Background(), core.Payload{"action": "get_status"})
	require.NoError(t, err)
	assert.Equal(t, 0, res["active_alerts"])
}

func TestAlertSeverityEscalates(t *testing.T) {
	b := bus.New()
	a := NewAlertAgent(func(o *Options) { o.Bus = b })

	var escalation core.Message
	b.Subscribe("orchestrator", func(_ context.Context, msg core.Message) error {
		escalation = msg
		return nil
	})

	_, err := a.Process(context.Background(), core.Payload{
		"action":   "create_alert",
		"type":     "medical",
		"severity": 1,
		"message":  "cardiac event",
	})
	require.NoError(t, err)

	assert.Equal(t, core.StateAlert, a.Status().State)
	assert.Equal(t, "escalate", escalation.Payload.Action(""))
	assert.Equal(t, "alert_agent", escalation.Source)
}

func TestAlertUnknownSeverityDefaultsToInfo(t *testing.T) {
	a := NewAlertAgent()
	res, err := a.Process(context.Background(), core.Payload{"action": "create_alert", "severity": 9})
	require.NoError(t, err)
	alert := res["alert"].(core.Result)
	assert.Equal(t, 4, alert["severity"])
	assert.Equal(t, "INFO", alert["severity_name"])
	assert.Equal(t, core.StateIdle, a.Status().State, "info alerts never escalate")
}

func TestAlertFilters(t *testing.T) {
	a := NewAlertAgent()
	for _, typ := range []string{"medical", "system", "medical"} {
		_, err := a.Process(context.Background(), core.Payload{"action": "create_alert", "type": typ, "severity": 4})
		require.NoError(t, err)
	}

	res, err := a.Process(context.Background(), core.Payload{"action": "get_alerts", "type": "medical"})
	require.NoError(t, err)
	assert.Equal(t, 2, res["count"])

	res, err = a.Process(context.Background(), core.Payload{"action": "get_alerts", "status": "all"})
	require.NoError(t, err)
	assert.Equal(t, 3, res["count"])
}

func TestAlertGetProtocol(t *testing.T) {
	a := NewAlertAgent()

	res, err := a.Process(context.Background(), core.Payload{"action": "get_protocol", "type": "vitals"})
	require.NoError(t, err)
	protocol, ok := res["protocol"].(core.Result)
	require.True(t, ok)
	assert.Equal(t, "Medical Emergency Protocol", protocol["name"])
	assert.Len(t, protocol["steps"], 5)
	assert.Contains(t, protocol["contacts"], "Flight Surgeon")

	// unknown types fall back to the general protocol
	res, err = a.Process(context.Background(), core.Payload{"action": "get_protocol", "type": "meteor"})
	require.NoError(t, err)
	protocol = res["protocol"].(core.Result)
	assert.Equal(t, "General Emergency Protocol", protocol["name"])
}

func TestAlertCreateCarriesProtocol(t *testing.T) {
	a := NewAlertAgent()
	res, err := a.Process(context.Background(), core.Payload{
		"action":   "create_alert",
		"type":     "system",
		"severity": 3,
		"message":  "co2 scrubber degraded",
	})
	require.NoError(t, err)
	protocol, ok := res["protocol"].(core.Result)
	require.True(t, ok)
	assert.Equal(t, "System Failure Protocol", protocol["name"])
}

func TestMoodAnalyze(t *testing.T) {
	a := NewMoodAgent()

	res, err := a.Process(context.Background(), core.Payload{"action": "analyze_mood", "text": "I feel happy and grateful today"})
	require.NoError(t, err)
	analysis := res["mood_analysis"].(core.Result)
	assert.Equal(t, "positive", analysis["text_sentiment"])
	assert.Equal(t, "Happy", analysis["emotion"])

	res, err = a.Process(context.Background(), core.Payload{"action": "analyze_mood", "text": "I am so worried and scared about tomorrow"})
	require.NoError(t, err)
	analysis = res["mood_analysis"].(core.Result)
	assert.Equal(t, "negative", analysis["text_sentiment"])
	assert.Equal(t, "Anxious", analysis["emotion"])
}

func TestMoodVitalsFactor(t *testing.T) {
	a := NewMoodAgent()
	res, err := a.Process(context.Background(), core.Payload{
		"action": "analyze_mood",
		"text":   "nothing special",
		"vitals": map[string]any{"heart_rate": 105.0},
	})
	require.NoError(t, err)
	analysis := res["mood_analysis"].(core.Result)
	assert.Equal(t, "elevated heart rate", analysis["physiological"])
}

func TestMoodTrend(t *testing.T) {
	a := NewMoodAgent()

	res, err := a.Process(context.Background(), core.Payload{"action": "get_mood_trend"})
	require.NoError(t, err)
	assert.Equal(t, 0, res["samples"])

	for _, text := range []string{"great day", "happy and excited", "wonderful"} {
		_, err := a.Process(context.Background(), core.Payload{"action": "analyze_mood", "text": text})
		require.NoError(t, err)
	}
	res, err = a.Process(context.Background(), core.Payload{"action": "get_mood_trend"})
	require.NoError(t, err)
	assert.Equal(t, 3, res["samples"])
	assert.Greater(t, res["avg_score"].(float64), 0.0)
}

func TestCounselorCannedResponse(t *testing.T) {
	a := NewCounselorAgent()

	res, err := a.Process(context.Background(), core.Payload{"action": "chat", "query": "I feel so lonely and homesick"})
	require.NoError(t, err)
	assert.Equal(t, "loneliness", res["concern"])
	assert.Equal(t, interventionStrategies["loneliness"][0], res["response"])
	assert.Len(t, a.Memory(), 1)
}

func TestCounselorWithCompleter(t *testing.T) {
	mock := model.NewMockCompleter()
	mock.AddResponse("I'm stressed about the workload", "That sounds heavy. Let's unpack it together.")

	a := NewCounselorAgent(func(o *CounselorOptions) { o.Completer = mock })
	res, err := a.Process(context.Background(), core.Payload{"action": "chat", "query": "I'm stressed about the workload"})
	require.NoError(t, err)
	assert.Equal(t, "stress", res["concern"])
	assert.Equal(t, "That sounds heavy. Let's unpack it together.", res["response"])
}

func TestClassifyConcernKeywordOrder(t *testing.T) {
	// "miss" hides inside "mission", and loneliness is checked before
	// stress, so a stressed remark about the mission reads as loneliness
	assert.Equal(t, "loneliness", classifyConcern("I'm stressed about the mission"))
	assert.Equal(t, "stress", classifyConcern("I'm stressed about the workload"))
	assert.Equal(t, "anxiety", classifyConcern("I'm nervous and stressed"))
	assert.Equal(t, "general", classifyConcern("just checking in"))
}

func TestCounselorCompleterFailureFallsBack(t *testing.T) {
	mock := model.NewMockCompleter()
	mock.Fail(errors.New("backend down"))

	a := NewCounselorAgent(func(o *CounselorOptions) { o.Completer = mock })
	res, err := a.Process(context.Background(), core.Payload{"action": "chat", "query": "I feel anxious"})
	require.NoError(t, err)
	assert.Equal(t, "anxiety", res["concern"])
	assert.Equal(t, interventionStrategies["anxiety"][0], res["response"])
}

func TestCounselorStrategies(t *testing.T) {
	a := NewCounselorAgent()

	res, err := a.Process(context.Background(), core.Payload{"action": "get_strategies", "concern": "stress"})
	require.NoError(t, err)
	assert.Equal(t, "stress", res["concern"])
	assert.Equal(t, interventionStrategies["stress"], res["strategies"])

	// unknown concern falls back to general
	res, err = a.Process(context.Background(), core.Payload{"action": "get_strategies", "concern": "boredom"})
	require.NoError(t, err)
	assert.Equal(t, "general", res["concern"])
}

func TestSchedulerAgent(t *testing.T) {
	a := NewSchedulerAgent()

	res, err := a.Process(context.Background(), core.Payload{"action": "get_schedule"})
	require.NoError(t, err)
	schedule := res["schedule"].([]core.Result)
	require.NotEmpty(t, schedule)
	assert.Equal(t, "07:00", schedule[0]["time"])

	res, err = a.Process(context.Background(), core.Payload{"action": "optimize"})
	require.NoError(t, err)
	assert.Contains(t, res["status"], "optimized")
}

func TestTwinAgent(t *testing.T) {
	a := NewTwinAgent()
	assert.Equal(t, "digital_twin", a.ID())

	res, err := a.Process(context.Background(), core.Payload{"action": "predict_health"})
	require.NoError(t, err)
	predictions := res["predictions"].(core.Result)
	fatigue := predictions["fatigue_level"].(int)
	assert.GreaterOrEqual(t, fatigue, 40)
	assert.Less(t, fatigue, 80)
	assert.Equal(t, 24, res["horizon_hours"])

	res, err = a.Process(context.Background(), core.Payload{"action": "risk_assessment"})
	require.NoError(t, err)
	assert.Equal(t, "low", res["risk_level"])
}

func TestTwinWhatIf(t *testing.T) {
	a := NewTwinAgent()

	res, err := a.Process(context.Background(), core.Payload{"action": "what_if", "scenario": "skip_sleep"})
	require.NoError(t, err)
	assert.Equal(t, "skip_sleep", res["scenario"])
	analysis, ok := res["analysis"].(core.Result)
	require.True(t, ok)
	assert.Contains(t, analysis["description"], "skips a night's sleep")
	outcomes := analysis["predicted_outcomes"].(map[string]string)
	assert.Contains(t, outcomes["cognition"], "Decreased")
	confidence := analysis["confidence"].(int)
	assert.GreaterOrEqual(t, confidence, 55)
	assert.Less(t, confidence, 95)

	// unknown scenarios fall back to the intense-exercise model
	res, err = a.Process(context.Background(), core.Payload{"action": "what_if", "scenario": "alien_contact"})
	require.NoError(t, err)
	assert.Equal(t, "exercise_intense", res["scenario"])
}

func TestWellnessAgents(t *testing.T) {
	sleep := NewSleepAgent()
	res, err := sleep.Process(context.Background(), core.Payload{"action": "analyze_sleep"})
	require.NoError(t, err)
	analysis := res["analysis"].(core.Result)
	dur := analysis["duration_hours"].(float64)
	assert.GreaterOrEqual(t, dur, 6.5)
	assert.LessOrEqual(t, dur, 8.0)

	exercise := NewExerciseAgent()
	res, err = exercise.Process(context.Background(), core.Payload{"action": "process"})
	require.NoError(t, err)
	assert.Len(t, res["workout"], 3)

	nutrition := NewNutritionAgent()
	res, err = nutrition.Process(context.Background(), core.Payload{"action": "process"})
	require.NoError(t, err)
	assert.Equal(t, 450, res["total_calories"])

	social := NewSocialAgent()
	res, err = social.Process(context.Background(), core.Payload{"action": "next_window"})
	require.NoError(t, err)
	window := res["next_window"].(core.Result)
	assert.Equal(t, "19:30", window["start"])
}

func TestUnknownActionShape(t *testing.T) {
	for _, a := range []core.Agent{
		NewVitalsAgent(), NewAlertAgent(), NewMoodAgent(), NewCounselorAgent(),
		NewSchedulerAgent(), NewTwinAgent(), NewSleepAgent(), NewExerciseAgent(),
		NewNutritionAgent(), NewSocialAgent(),
	} {
		res, err := a.Process(context.Background(), core.Payload{"action": "self_destruct"})
		require.NoError(t, err, a.ID())
		assert.True(t, res.IsError(), a.ID())
	}
}
