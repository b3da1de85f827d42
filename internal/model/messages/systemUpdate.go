package messages

import "time"

// SystemUpdateEvent is the decision record published once per processed
// cycle. The shape mirrors what the dashboard consumes: smoothed sensors,
// weather context with VPD, and the pump/alert state of the system.
type SystemUpdateEvent struct {
	DeviceID  string       `json:"device_id"`
	Timestamp time.Time    `json:"timestamp"`
	Sensors   SensorBlock  `json:"sensors"`
	Weather   WeatherBlock `json:"weather"`
	System    SystemBlock  `json:"system"`
}

// SensorBlock carries the smoothed channel values, rounded to one decimal,
// plus the raw NPK reading formatted as "N-P-K".
type SensorBlock struct {
	Soil  float64 `json:"soil"`
	Temp  float64 `json:"temp"`
	Light float64 `json:"light"`
	NPK   string  `json:"npk"`
}

// WeatherBlock is the cached outside context at decision time.
// VPD is rounded to two decimals and is 0 when the cycle was locked
// and the intelligence layer never computed it.
type WeatherBlock struct {
	Condition string  `json:"condition"`
	Temp      float64 `json:"temp"`
	Humidity  float64 `json:"humidity"`
	VPD       float64 `json:"vpd"`
}

// SystemBlock reports the applied pump state and the active alert.
type SystemBlock struct {
	PumpActive     bool   `json:"pump_active"`
	AlgorithmState string `json:"algorithm_state"`
	Alert          string `json:"alert"`
	BatteryLevel   int    `json:"battery_level"`
}
