// Package units provides shared constants and validation for velocity
// display units. The analysis core always works in pixels per timestamp
// unit; conversion happens only at the display layer, and only when a
// pixel pitch calibration is supplied.
package units

// Unit constants
const (
	PXPS = "pxps" // pixels per second
	UMPS = "umps" // micrometres per second
	MMPS = "mmps" // millimetres per second
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{PXPS, UMPS, MMPS}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "pxps, umps, mmps"
}

// ConvertVelocity converts a velocity from pixels per second to the target
// units given the camera's pixel pitch in micrometres. A zero or negative
// pixel pitch means the setup is uncalibrated and the value is returned in
// pixel units unchanged.
func ConvertVelocity(velocityPxps, pixelPitchMicrons float64, targetUnits string) float64 {
	if pixelPitchMicrons <= 0 {
		return velocityPxps
	}
	switch targetUnits {
	case UMPS:
		return velocityPxps * pixelPitchMicrons
	case MMPS:
		return velocityPxps * pixelPitchMicrons / 1000.0
	default:
		return velocityPxps
	}
}
