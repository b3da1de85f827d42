package brain

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cycle outcome labels.
const (
	CycleProcessed = "processed"
	CycleRejected  = "rejected"
	CycleWarmup    = "warmup"
)

// Metrics collects the service counters. A fresh Registerer per instance
// keeps tests independent.
type Metrics struct {
	Cycles           *prometheus.CounterVec
	PumpActivations  prometheus.Counter
	PumpTimeouts     prometheus.Counter
	WeatherRefreshes *prometheus.CounterVec
	ManualOverrides  prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Cycles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "greenbrain",
			Name:      "cycles_total",
			Help:      "Telemetry cycles by outcome",
		}, []string{"result"}),
		PumpActivations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "greenbrain",
			Name:      "pump_activations_total",
			Help:      "Idle to Running pump edges",
		}),
		PumpTimeouts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "greenbrain",
			Name:      "pump_timeouts_total",
			Help:      "Activations ended by the pulse safety timeout",
		}),
		WeatherRefreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "greenbrain",
			Name:      "weather_refreshes_total",
			Help:      "External weather fetches by outcome",
		}, []string{"outcome"}),
		ManualOverrides: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "greenbrain",
			Name:      "manual_overrides_total",
			Help:      "Manual control requests received (acknowledged, not applied)",
		}),
	}
}
