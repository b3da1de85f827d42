package entities

import "time"

// PumpStatus indicates whether the irrigation pump is running.
type PumpStatus string

const (
	PumpIdle    PumpStatus = "idle"
	PumpRunning PumpStatus = "running"
)

// PumpState is the pump controller's view of one device's pump.
// ActivationStartedAt is set only on the Idle→Running edge and bounds
// a single continuous activation.
type PumpState struct {
	Status              PumpStatus `json:"status"`
	ActivationStartedAt time.Time  `json:"activation_started_at,omitempty"`
}
