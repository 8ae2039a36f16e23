// Package units provides shared constants and conversions for speed units.
//
// Tracker speeds are produced in pixels/frame. Conversions to real-world
// units go through the frame rate and a per-camera pixel-speed factor.
package units

// Unit constants
const (
	PxPerFrame = "pxf"
	PxPerSec   = "pxs"
	MPS        = "mps"
	MPH        = "mph"
	KMPH       = "kmph"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{PxPerFrame, PxPerSec, MPS, MPH, KMPH}

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
	return "pxf, pxs, mps, mph, kmph"
}

// DefaultPixelSpeedToMPS is the rough calibration factor converting a
// pixels/frame speed to meters/second for an uncalibrated camera.
const DefaultPixelSpeedToMPS = 0.1

// PxfToPxs converts a pixels/frame speed to pixels/second at the given
// frame rate.
func PxfToPxs(speedPxf, fps float64) float64 {
	return speedPxf * fps
}

// PxfToMPS converts a pixels/frame speed to meters/second using the
// per-camera pixel-speed factor.
func PxfToMPS(speedPxf, pixelSpeedToMPS float64) float64 {
	return speedPxf * pixelSpeedToMPS
}

// ConvertSpeed converts a speed from meters per second to the target units.
func ConvertSpeed(speedMPS float64, targetUnits string) float64 {
	switch targetUnits {
	case MPS:
		return speedMPS
	case MPH:
		return speedMPS * 2.2369362920544
	case KMPH:
		return speedMPS * 3.6
	default:
		return speedMPS
	}
}
