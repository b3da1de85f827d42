package brain

import (
	"context"
	"log"
	"time"
)

const (
	// refreshInterval is the staleness throttle: the external provider is
	// queried at most once per interval, whether the fetch succeeds or not,
	// so a failing provider is never retried hotter than a healthy one.
	refreshInterval = 600 * time.Second

	// fallbackCondition replaces the condition after a failed fetch; the
	// numeric outside values are frozen at their previous readings.
	fallbackCondition = "Clouds"

	conditionUnknown = "Unknown"
	conditionRain    = "Rain"

	// Seed values used until the first successful fetch.
	defaultOutsideTemp     = 30.0
	defaultOutsideHumidity = 70.0
)

// Observation is a successfully parsed response from the weather
// collaborator.
type Observation struct {
	Condition string
	Temp      float64
	Humidity  float64
}

// WeatherClient queries the external weather collaborator. Any transport,
// status or schema failure surfaces as an error.
type WeatherClient interface {
	Current(ctx context.Context) (Observation, error)
}

// Snapshot is the cached outside context for one device.
type Snapshot struct {
	Condition       string
	OutsideTemp     float64
	OutsideHumidity float64
	FetchedAt       time.Time
}

// WeatherProvider caches the last snapshot and throttles refreshes.
// It is owned by a single Brain; the Brain's cycle lock serializes access.
type WeatherProvider struct {
	client WeatherClient
	snap   Snapshot

	// OnRefresh, when set, is invoked after every external fetch attempt
	// with the outcome. Used for metrics.
	OnRefresh func(ok bool)
}

func NewWeatherProvider(client WeatherClient) *WeatherProvider {
	return &WeatherProvider{
		client: client,
		snap: Snapshot{
			Condition:       conditionUnknown,
			OutsideTemp:     defaultOutsideTemp,
			OutsideHumidity: defaultOutsideHumidity,
		},
	}
}

// Context returns the current snapshot, refreshing it from the external
// collaborator when the throttle allows. A failed fetch degrades silently:
// the condition falls back, the numeric values stay frozen, and FetchedAt
// still advances so the throttle applies to failures too.
func (p *WeatherProvider) Context(ctx context.Context, now time.Time) Snapshot {
	if now.Sub(p.snap.FetchedAt) < refreshInterval {
		return p.snap
	}

	obs, err := p.client.Current(ctx)
	if err != nil {
		log.Printf("weather: fetch failed, using fallback condition: %v", err)
		p.snap.Condition = fallbackCondition
	} else {
		p.snap.Condition = obs.Condition
		p.snap.OutsideTemp = obs.Temp
		p.snap.OutsideHumidity = obs.Humidity
	}
	p.snap.FetchedAt = now

	if p.OnRefresh != nil {
		p.OnRefresh(err == nil)
	}
	return p.snap
}
