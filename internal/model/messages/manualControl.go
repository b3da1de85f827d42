package messages

import "time"

// Manual actions requested from the app.
const (
	ActionPumpOn = "pump_on"
)

// ManualControlEvent is a manual action request from the dashboard.
// Accepting one is currently an acknowledged no-op: the pump controller
// never acts on it.
type ManualControlEvent struct {
	DeviceID  string    `json:"device_id,omitempty"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}
