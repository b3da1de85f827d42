package brain

import "math"

// vpdDomainLimit is the pole of the Tetens saturation formula; at or
// below it the computation is undefined.
const vpdDomainLimit = -237.3

// VPD returns the vapor pressure deficit (kPa) for an air temperature in
// °C and a relative humidity in percent, using the Tetens approximation
// for saturation vapor pressure. The second return is false when the
// temperature is outside the formula's domain; callers then treat the
// value as not available.
func VPD(tempC, humidityPct float64) (float64, bool) {
	if tempC <= vpdDomainLimit {
		return 0, false
	}
	svp := 0.6108 * math.Exp(17.27*tempC/(tempC+237.3))
	avp := svp * (humidityPct / 100.0)
	return svp - avp, true
}
