package model

import (
	"github.com/greenbrain-iot/greenbrain/internal/model/entities"
	"github.com/greenbrain-iot/greenbrain/internal/model/messages"
)

// Aliases exposing the common types to the services.

type (
	SensorSample       = messages.SensorSample
	SystemUpdateEvent  = messages.SystemUpdateEvent
	ManualControlEvent = messages.ManualControlEvent
	PumpState          = entities.PumpState
	PumpStatus         = entities.PumpStatus
)

const (
	PumpIdle    = entities.PumpIdle
	PumpRunning = entities.PumpRunning
)
