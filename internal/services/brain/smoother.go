package brain

// windowSize is the per-channel smoothing window. Five readings is enough
// to damp sensor noise without hiding a real moisture drop.
const windowSize = 5

// minSoilSamples gates decision making: cycles observed before the soil
// window holds this many values are dropped without output.
const minSoilSamples = 2

// Window is a fixed-capacity FIFO of the most recent channel readings.
type Window struct {
	capacity int
	vals     []float64
}

func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{capacity: capacity, vals: make([]float64, 0, capacity)}
}

// Append adds v, evicting the oldest reading when the window is full.
func (w *Window) Append(v float64) {
	if len(w.vals) == w.capacity {
		copy(w.vals, w.vals[1:])
		w.vals = w.vals[:len(w.vals)-1]
	}
	w.vals = append(w.vals, v)
}

func (w *Window) Len() int { return len(w.vals) }

// Mean returns the arithmetic mean of the current contents, 0 when empty.
func (w *Window) Mean() float64 {
	if len(w.vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range w.vals {
		sum += v
	}
	return sum / float64(len(w.vals))
}

// SmoothedReading holds the per-cycle channel means.
type SmoothedReading struct {
	AvgSoil  float64
	AvgTemp  float64
	AvgLight float64
}

// Smoother keeps one moving-average window per telemetry channel of a
// single device.
type Smoother struct {
	soil  *Window
	temp  *Window
	light *Window
}

func NewSmoother() *Smoother {
	return &Smoother{
		soil:  NewWindow(windowSize),
		temp:  NewWindow(windowSize),
		light: NewWindow(windowSize),
	}
}

// Observe appends one reading to each channel window.
func (s *Smoother) Observe(soil, temp, light float64) {
	s.soil.Append(soil)
	s.temp.Append(temp)
	s.light.Append(light)
}

// SoilCount reports how many soil readings the window currently holds.
func (s *Smoother) SoilCount() int { return s.soil.Len() }

// Reading recomputes the channel means from the current window contents.
func (s *Smoother) Reading() SmoothedReading {
	return SmoothedReading{
		AvgSoil:  s.soil.Mean(),
		AvgTemp:  s.temp.Mean(),
		AvgLight: s.light.Mean(),
	}
}
