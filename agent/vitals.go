package agent

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/crewmesh/crewmesh/core"
)

const vitalsHistoryLimit = 1000

// vitalsRange bounds a metric; readings outside it are anomalous.
type vitalsRange struct{ min, max float64 }

var vitalsThresholds = map[string]vitalsRange{
	"heart_rate":    {50, 120},
	"o2_saturation": {92, 100},
	"co2_level":     {0, 0.8},
	"temperature":   {35.5, 38.5},
}

// VitalsAgent monitors health vitals: heart rate, O2 saturation, CO2 and
// temperature. Readings are simulated around a configurable baseline with a
// circadian factor.
type VitalsAgent struct {
	*BaseAgent

	mu       sync.Mutex
	baseline map[string]float64
	history  []core.Result
}

// NewVitalsAgent constructs the vitals worker.
func NewVitalsAgent(optFns ...func(o *Options)) *VitalsAgent {
	a := &VitalsAgent{
		BaseAgent: NewBaseAgent("Vitals Monitor", "physical", append([]func(o *Options){func(o *Options) {
			o.ID = "vitals_agent"
			o.Capabilities = []string{
				"heart_rate_monitoring",
				"o2_saturation",
				"co2_monitoring",
				"temperature_tracking",
				"anomaly_detection",
			}
		}}, optFns...)...),
		baseline: map[string]float64{
			"heart_rate":    68,
			"o2_saturation": 98,
			"co2_level":     0.4,
			"temperature":   36.8,
		},
	}
	a.Bind(a.dispatch)
	return a
}

func (a *VitalsAgent) dispatch(_ context.Context, payload core.Payload) (core.Result, error) {
	action := payload.Action("get_current")
	switch action {
	case "get_current":
		return a.currentVitals(), nil
	case "check_anomalies":
		return a.detectAnomalies(), nil
	case "update_baseline":
		return a.updateBaseline(payload), nil
	default:
		return core.UnknownAction(action), nil
	}
}

// currentVitals generates a reading around the baseline, modulated by a
// circadian factor and random activity/stress factors.
func (a *VitalsAgent) currentVitals() core.Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := time.Now()
	circadian := 1 + 0.15*math.Sin(2*math.Pi*float64(now.Hour()-6)/24)
	activity := 1.0
	if rand.Float64() > 0.7 {
		activity = 1.0 + rand.Float64()*0.3
	}
	stress := 1.0 + rand.Float64()*0.2

	heartRate := a.baseline["heart_rate"]*circadian*activity*stress + rand.NormFloat64()*3
	o2 := a.baseline["o2_saturation"] - (activity-1)*2 + rand.NormFloat64()*0.3
	co2 := a.baseline["co2_level"] + (activity-1)*0.1
	temp := a.baseline["temperature"] + (stress-1)*0.3

	vitals := core.Result{
		"heart_rate":     round1(heartRate),
		"o2_saturation":  round1(math.Max(92, math.Min(100, o2))),
		"co2_level":      math.Round(co2*100) / 100,
		"temperature":    round1(temp),
		"hr_variability": round1(30 + rand.Float64()*50),
		"timestamp":      core.Timestamp(now),
	}

	a.history = append(a.history, vitals)
	if len(a.history) > vitalsHistoryLimit {
		a.history = a.history[len(a.history)-vitalsHistoryLimit:]
	}

	status := "normal"
	if !vitalsNormal(vitals) {
		status = "warning"
	}
	return core.Result{
		"agent":     a.Name(),
		"vitals":    vitals,
		"status":    status,
		"timestamp": core.Timestamp(now),
	}
}

func vitalsNormal(vitals core.Result) bool {
	for metric, r := range vitalsThresholds {
		if v, ok := vitals[metric].(float64); ok && (v < r.min || v > r.max) {
			return false
		}
	}
	return true
}

// detectAnomalies checks the latest reading against the metric thresholds.
func (a *VitalsAgent) detectAnomalies() core.Result {
	a.mu.Lock()
	defer a.mu.Unlock()

	var anomalies []core.Result
	if len(a.history) > 0 {
		current := a.history[len(a.history)-1]
		for metric, r := range vitalsThresholds {
			v, ok := current[metric].(float64)
			if !ok {
				continue
			}
			switch {
			case v < r.min:
				severity := "warning"
				if v < r.min*0.9 {
					severity = "critical"
				}
				anomalies = append(anomalies, core.Result{"metric": metric, "value": v, "threshold": "low", "severity": severity})
			case v > r.max:
				severity := "warning"
				if v > r.max*1.1 {
					severity = "critical"
				}
				anomalies = append(anomalies, core.Result{"metric": metric, "value": v, "threshold": "high", "severity": severity})
			}
		}
	}

	hasCritical := false
	for _, an := range anomalies {
		if an["severity"] == "critical" {
			hasCritical = true
		}
	}
	return core.Result{
		"agent":        a.Name(),
		"anomalies":    anomalies,
		"has_critical": hasCritical,
		"timestamp":    core.Now(),
	}
}

func (a *VitalsAgent) updateBaseline(payload core.Payload) core.Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, metric := range []string{"heart_rate", "o2_saturation", "temperature"} {
		if v, ok := payload[metric].(float64); ok {
			a.baseline[metric] = v
		}
	}
	baseline := make(core.Result, len(a.baseline))
	for k, v := range a.baseline {
		baseline[k] = v
	}
	return core.Result{"agent": a.Name(), "baseline": baseline, "timestamp": core.Now()}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
