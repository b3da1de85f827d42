package messages

import (
	"fmt"
	"time"
)

// SensorSample is one raw telemetry reading from a plant device.
// Numeric fields are pointers so a missing field is distinguishable
// from a legitimate zero; Validate rejects incomplete samples before
// any per-device state is touched.
type SensorSample struct {
	DeviceID       string    `json:"device_id,omitempty"`
	SoilMoisture   *float64  `json:"soil_moisture"`
	Temperature    *float64  `json:"temperature"`
	LightIntensity *float64  `json:"light_intensity"`
	Nitrogen       *float64  `json:"nitrogen"`
	Phosphorus     *float64  `json:"phosphorus"`
	Potassium      *float64  `json:"potassium"`
	Timestamp      time.Time `json:"timestamp,omitempty"`
}

// Validate checks that every required numeric field is present.
func (s *SensorSample) Validate() error {
	required := []struct {
		name string
		val  *float64
	}{
		{"soil_moisture", s.SoilMoisture},
		{"temperature", s.Temperature},
		{"light_intensity", s.LightIntensity},
		{"nitrogen", s.Nitrogen},
		{"phosphorus", s.Phosphorus},
		{"potassium", s.Potassium},
	}
	for _, f := range required {
		if f.val == nil {
			return fmt.Errorf("missing required field %q", f.name)
		}
	}
	return nil
}
