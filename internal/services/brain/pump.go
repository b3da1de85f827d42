package brain

import (
	"time"

	"github.com/greenbrain-iot/greenbrain/internal/model/entities"
)

// maxPulse caps a single continuous activation. The timer resets only on
// a fresh Idle→Running edge.
const maxPulse = 10 * time.Second

// AlertPumpTimeout overrides the engine's alert on the cycle where the
// safety timeout fires.
const AlertPumpTimeout = "Pump Timeout (Safety)"

// PumpResult reports the pump state after a cycle's transition.
type PumpResult struct {
	Active   bool // pump is running after this cycle
	Started  bool // this cycle was an Idle→Running edge
	TimedOut bool // the safety timeout ended the activation
}

// PumpController is the per-device pump state machine. It is driven once
// per cycle with the engine's lock and request signals; the safety timeout
// wins over every other signal.
type PumpController struct {
	state entities.PumpState
}

func NewPumpController() *PumpController {
	return &PumpController{state: entities.PumpState{Status: entities.PumpIdle}}
}

// State returns a copy of the current pump state.
func (p *PumpController) State() entities.PumpState { return p.state }

// Apply evaluates this cycle's transition.
func (p *PumpController) Apply(now time.Time, lock, request bool) PumpResult {
	if p.state.Status == entities.PumpRunning {
		switch {
		case now.Sub(p.state.ActivationStartedAt) > maxPulse:
			p.state = entities.PumpState{Status: entities.PumpIdle}
			return PumpResult{TimedOut: true}
		case !request || lock:
			p.state = entities.PumpState{Status: entities.PumpIdle}
			return PumpResult{}
		default:
			return PumpResult{Active: true}
		}
	}

	if request && !lock {
		p.state = entities.PumpState{Status: entities.PumpRunning, ActivationStartedAt: now}
		return PumpResult{Active: true, Started: true}
	}
	return PumpResult{}
}
