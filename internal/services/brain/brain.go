package brain

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/greenbrain-iot/greenbrain/internal/model/messages"
)

// batteryLevel is a static placeholder; battery telemetry is not wired yet.
const batteryLevel = 85

// Brain owns the full decision state of one device: the smoothing windows,
// the weather snapshot and the pump state machine. Cycles for a device are
// serialized by mu; distinct devices share nothing and run concurrently.
type Brain struct {
	deviceID string
	metrics  *Metrics

	mu       sync.Mutex
	smoother *Smoother
	weather  *WeatherProvider
	pump     *PumpController
}

func NewBrain(deviceID string, client WeatherClient, metrics *Metrics) *Brain {
	b := &Brain{
		deviceID: deviceID,
		metrics:  metrics,
		smoother: NewSmoother(),
		weather:  NewWeatherProvider(client),
		pump:     NewPumpController(),
	}
	if metrics != nil {
		b.weather.OnRefresh = func(ok bool) {
			outcome := "ok"
			if !ok {
				outcome = "fallback"
			}
			metrics.WeatherRefreshes.WithLabelValues(outcome).Inc()
		}
	}
	return b
}

// Cycle processes one telemetry sample and returns the decision record to
// publish. It returns (nil, nil) for warm-up cycles: until the soil window
// holds at least two readings the cycle only feeds the buffers and produces
// no output. An invalid sample is rejected before any buffer mutation.
func (b *Brain) Cycle(ctx context.Context, sample *messages.SensorSample, now time.Time) (*messages.SystemUpdateEvent, error) {
	if err := sample.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sensor sample: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.smoother.Observe(*sample.SoilMoisture, *sample.Temperature, *sample.LightIntensity)
	if b.smoother.SoilCount() < minSoilSamples {
		return nil, nil
	}

	reading := b.smoother.Reading()
	snap := b.weather.Context(ctx, now)

	verdict := Evaluate(EngineInput{
		AvgSoil:         reading.AvgSoil,
		AvgTemp:         reading.AvgTemp,
		Nitrogen:        *sample.Nitrogen,
		Potassium:       *sample.Potassium,
		Condition:       snap.Condition,
		OutsideHumidity: snap.OutsideHumidity,
	})

	res := b.pump.Apply(now, verdict.Lock, verdict.PumpRequest)
	alert := verdict.Alert
	if res.TimedOut {
		// The safety timeout wins over whatever the engine reported.
		alert = AlertPumpTimeout
	}
	if b.metrics != nil {
		if res.Started {
			b.metrics.PumpActivations.Inc()
		}
		if res.TimedOut {
			b.metrics.PumpTimeouts.Inc()
		}
	}

	vpd := 0.0
	if verdict.VPDComputed {
		vpd = round2(verdict.VPD)
	}

	return &messages.SystemUpdateEvent{
		DeviceID:  b.deviceID,
		Timestamp: now,
		Sensors: messages.SensorBlock{
			Soil:  round1(reading.AvgSoil),
			Temp:  round1(reading.AvgTemp),
			Light: round1(reading.AvgLight),
			NPK:   formatNPK(*sample.Nitrogen, *sample.Phosphorus, *sample.Potassium),
		},
		Weather: messages.WeatherBlock{
			Condition: snap.Condition,
			Temp:      snap.OutsideTemp,
			Humidity:  snap.OutsideHumidity,
			VPD:       vpd,
		},
		System: messages.SystemBlock{
			PumpActive:     res.Active,
			AlgorithmState: verdict.Label,
			Alert:          alert,
			BatteryLevel:   batteryLevel,
		},
	}, nil
}

func formatNPK(n, p, k float64) string {
	return fmtNum(n) + "-" + fmtNum(p) + "-" + fmtNum(k)
}

func fmtNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
