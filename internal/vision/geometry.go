package vision

import "math"

// Calibration holds the fixed monocular distance-estimation constants for
// one camera. Values are supplied once at configuration time.
type Calibration struct {
	// RealVehicleWidth is the assumed physical vehicle width in meters.
	RealVehicleWidth float64
	// FocalLength is the camera focal length in pixels.
	FocalLength float64
	// PixelsPerMeter converts the pinhole projection back to meters.
	PixelsPerMeter float64
}

// DefaultCalibration returns calibration constants for a typical dashcam.
func DefaultCalibration() Calibration {
	return Calibration{
		RealVehicleWidth: 1.8,
		FocalLength:      700,
		PixelsPerMeter:   50,
	}
}

// Distance clamp bounds in meters. Estimates outside this range come from
// implausible box sizes and are not trustworthy.
const (
	MinEstimatedDistanceM = 1.0
	MaxEstimatedDistanceM = 200.0
)

// EstimateDistance estimates the range to a vehicle in meters from its
// bounding-box height. Returns ok=false when the height is degenerate
// (zero or negative), in which case the distance is undefined and must be
// excluded from risk scoring for that frame.
func EstimateDistance(bboxHeight float64, cal Calibration) (float64, bool) {
	if bboxHeight <= 0 {
		return 0, false
	}
	distPixels := (cal.RealVehicleWidth * cal.FocalLength) / bboxHeight
	meters := distPixels / cal.PixelsPerMeter
	if meters < MinEstimatedDistanceM {
		meters = MinEstimatedDistanceM
	} else if meters > MaxEstimatedDistanceM {
		meters = MaxEstimatedDistanceM
	}
	return meters, true
}

// AngleFromCenter returns the angle in degrees from the frame centre to
// the given point, normalised to [0, 360).
func AngleFromCenter(cx, cy, frameCX, frameCY float64) float64 {
	dx := cx - frameCX
	dy := cy - frameCY
	deg := math.Atan2(dy, dx) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

// ViewAngleOffset rotates a raw [0,360) frame angle into the view's
// coordinate convention (0 degrees = straight along the view axis) and
// folds it to degrees-from-centre in [0, 180].
func ViewAngleOffset(angle float64, view View) float64 {
	switch view {
	case ViewBack:
		angle = math.Mod(angle+180, 360)
	case ViewLeft:
		angle = math.Mod(angle+90, 360)
	case ViewRight:
		angle = math.Mod(angle-90+360, 360)
	}
	// Fold to distance-from-zero on the circle.
	if angle > 180 {
		angle = 360 - angle
	}
	return angle
}
