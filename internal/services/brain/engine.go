package brain

// Fixed policy thresholds. Rule order and values are policy, not
// configuration.
const (
	saturationSoilPct = 80.0 // above this, watering would waterlog the roots
	heatStressTempC   = 35.0
	salinityLimit     = 200.0 // N or K above this risks nutrient burn

	defaultWateringThreshold = 40.0
	rainWateringThreshold    = 20.0
	dryAirWateringThreshold  = 50.0
	highTranspirationVPD     = 1.2 // kPa
)

// Algorithm state labels reported in the decision record.
const (
	LabelOptimal           = "Optimal"
	LabelSaturationLock    = "Saturation Lock"
	LabelHeatStress        = "Heat Stress"
	LabelSalinityRisk      = "Salinity Risk"
	LabelRainingPassive    = "Raining (Passive)"
	LabelHighTranspiration = "High Transpiration"
	LabelCriticalPulse     = "Critical: Pulse Irrigation"
)

// Alerts raised by the safety layer.
const (
	alertSystemNormal = "System Normal"
	alertSaturation   = "Soil too wet! Pump disabled."
	alertHeatStress   = "High Temp! Watering paused."
	alertSalinity     = "Nutrient Burn Risk! Flush soil."
)

// EngineInput is everything the two-layer policy looks at for one cycle:
// smoothed soil and temperature, the raw NPK reading, and the cached
// outside context.
type EngineInput struct {
	AvgSoil         float64
	AvgTemp         float64
	Nitrogen        float64
	Potassium       float64
	Condition       string
	OutsideHumidity float64
}

// Verdict is the engine's output for one cycle. VPDComputed is false when
// a safety lock skipped the intelligence layer or the VPD domain guard
// tripped; VPD is then 0.
type Verdict struct {
	Label       string
	Alert       string
	Lock        bool
	PumpRequest bool
	VPD         float64
	VPDComputed bool
}

// Evaluate runs the safety layer and, when no interlock fires, the
// VPD-informed intelligence layer. Safety rules are priority-ordered and
// mutually exclusive: only the first match applies.
func Evaluate(in EngineInput) Verdict {
	switch {
	case in.AvgSoil > saturationSoilPct:
		return Verdict{Label: LabelSaturationLock, Alert: alertSaturation, Lock: true}
	case in.AvgTemp > heatStressTempC:
		return Verdict{Label: LabelHeatStress, Alert: alertHeatStress, Lock: true}
	case in.Nitrogen > salinityLimit || in.Potassium > salinityLimit:
		return Verdict{Label: LabelSalinityRisk, Alert: alertSalinity, Lock: true}
	}

	v := Verdict{Label: LabelOptimal, Alert: alertSystemNormal}
	v.VPD, v.VPDComputed = VPD(in.AvgTemp, in.OutsideHumidity)

	// Watering threshold: rain backs it off, dry air brings it forward.
	threshold := defaultWateringThreshold
	if in.Condition == conditionRain {
		threshold = rainWateringThreshold
		v.Label = LabelRainingPassive
	} else if v.VPDComputed && v.VPD > highTranspirationVPD {
		threshold = dryAirWateringThreshold
		v.Label = LabelHighTranspiration
	}

	if in.AvgSoil < threshold {
		v.PumpRequest = true
		v.Label = LabelCriticalPulse
	}
	return v
}
