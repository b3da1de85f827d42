package sensor_simulator

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/greenbrain-iot/greenbrain/internal/model"
)

const (
	// gainPerMin: soil moisture gained per minute while the pump is on, in %.
	gainPerMin = 3.0

	// defaultSeed: initial soil moisture when no seed flag is given, in %.
	defaultSeed = 45.0
)

// DataGenerator keeps the internal state of one simulated plant device and
// evolves it over time: soil moisture decays while idle and rises while the
// pump is irrigating; temperature and light follow a diurnal curve; NPK
// drifts slowly as nutrients are taken up.
type DataGenerator struct {
	mu          sync.Mutex
	seeded      bool
	last        time.Time
	moisture    float64 // percent, 0..100
	decayPerMin float64
	npk         [3]float64
	rng         *rand.Rand
}

// NewDataGenerator creates a generator with the given idle decay rate per
// minute (in moisture percent).
func NewDataGenerator(decayPerMin float64, seed int64) *DataGenerator {
	return &DataGenerator{
		decayPerMin: math.Max(0, decayPerMin),
		npk:         [3]float64{50, 50, 50},
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// SeedMoisture sets the starting soil moisture. A no-op after the first tick.
func (g *DataGenerator) SeedMoisture(pct float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.seeded {
		return
	}
	g.moisture = clampPct(pct)
	g.last = time.Now().UTC()
	g.seeded = true
}

// Next advances the internal state and returns the sample to publish.
// pumpActive reflects the last decision record seen for this device.
func (g *DataGenerator) Next(deviceID string, pumpActive bool) *model.SensorSample {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now().UTC()
	if !g.seeded {
		g.moisture = defaultSeed
		g.last = now
		g.seeded = true
	}

	dtMin := now.Sub(g.last).Minutes()
	if dtMin < 0 {
		dtMin = 0
	}
	if pumpActive {
		g.moisture = clampPct(g.moisture + gainPerMin*dtMin)
	} else {
		g.moisture = clampPct(g.moisture - g.decayPerMin*dtMin)
	}
	g.last = now

	// Diurnal curve peaking mid-day, plus sensor noise.
	dayFrac := float64(now.Hour()*3600+now.Minute()*60+now.Second()) / 86400.0
	sun := math.Max(0, math.Sin((dayFrac-0.25)*2*math.Pi))
	temp := 22 + 10*sun + g.rng.NormFloat64()*0.3
	light := 800*sun + g.rng.NormFloat64()*15
	if light < 0 {
		light = 0
	}

	// Nutrients drain slowly and get the occasional feed spike.
	for i := range g.npk {
		g.npk[i] -= 0.02 * dtMin
		if g.npk[i] < 20 && g.rng.Float64() < 0.01 {
			g.npk[i] += 40
		}
	}

	soil := g.moisture + g.rng.NormFloat64()*0.5
	return &model.SensorSample{
		DeviceID:       deviceID,
		SoilMoisture:   ptr(clampPct(soil)),
		Temperature:    ptr(temp),
		LightIntensity: ptr(light),
		Nitrogen:       ptr(g.npk[0]),
		Phosphorus:     ptr(g.npk[1]),
		Potassium:      ptr(g.npk[2]),
		Timestamp:      now,
	}
}

func ptr(v float64) *float64 { return &v }

func clampPct(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 100 {
		return 100
	}
	return x
}
