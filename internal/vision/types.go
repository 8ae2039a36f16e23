package vision

import "math"

// Default COCO class ids for the vehicle allow-list.
const (
	ClassCar        = 2
	ClassMotorcycle = 3
	ClassBus        = 5
	ClassTruck      = 7
)

// DefaultVehicleClasses returns the default detection class allow-list.
func DefaultVehicleClasses() []int {
	return []int{ClassCar, ClassMotorcycle, ClassBus, ClassTruck}
}

// BBox is an axis-aligned bounding box in pixel coordinates.
type BBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Center returns the box centre point.
func (b BBox) Center() (float64, float64) {
	return b.X + b.W/2, b.Y + b.H/2
}

// Area returns the box area in square pixels.
func (b BBox) Area() float64 {
	return b.W * b.H
}

// Valid reports whether the box has positive width and height.
// Zero-area and negative-dimension boxes are rejected before association.
func (b BBox) Valid() bool {
	return b.W > 0 && b.H > 0
}

// Detection is a single per-frame observation from the external detector.
// Detections are ephemeral: consumed during one Step call and discarded.
type Detection struct {
	Box        BBox    `json:"box"`
	Class      int     `json:"class"`
	Confidence float64 `json:"confidence"`
}

// View identifies which camera a pipeline instance is attached to.
// Each view runs an independent tracker; there is no cross-view state.
type View string

const (
	ViewFront View = "front"
	ViewBack  View = "back"
	ViewLeft  View = "left"
	ViewRight View = "right"
)

// TrackPoint is a single point in a track's position history.
type TrackPoint struct {
	X     float64
	Y     float64
	Frame int64
}

// MaxHistoryLength caps a track's position history; the oldest point is
// evicted on overflow.
const MaxHistoryLength = 30

// MaxSpeedHistoryLength caps the per-track speed samples kept for
// percentile computation.
const MaxSpeedHistoryLength = 100

// Track is the persistent estimated state of one vehicle across frames.
type Track struct {
	// Identity. IDs are assigned monotonically and never reused, even
	// after a track is pruned.
	ID int64

	// Kalman state: position in pixels, velocity in pixels/frame.
	X  float64
	Y  float64
	VX float64
	VY float64

	// Kalman covariance (4x4, row-major).
	P [16]float64

	// Last associated bounding box, used for monocular distance
	// estimation via its height.
	Box BBox

	// Age counts frames since creation, matched or not.
	Age int

	// Misses counts consecutive frames without an associated detection.
	// Reset to zero on every successful association.
	Misses int

	// History of smoothed positions for trajectory display.
	History []TrackPoint

	// speedHistory feeds percentile statistics.
	speedHistory []float64
}

// Center returns the track's current estimated position.
func (t *Track) Center() (float64, float64) {
	return t.X, t.Y
}

// Speed returns the current speed magnitude in pixels/frame, drawn from
// the Kalman velocity estimate rather than raw frame differencing.
func (t *Track) Speed() float64 {
	return math.Hypot(t.VX, t.VY)
}

// Heading returns the direction of travel in radians.
func (t *Track) Heading() float64 {
	return math.Atan2(t.VY, t.VX)
}

// SpeedHistory returns a copy of the track's recent speed samples.
func (t *Track) SpeedHistory() []float64 {
	if t.speedHistory == nil {
		return nil
	}
	out := make([]float64, len(t.speedHistory))
	copy(out, t.speedHistory)
	return out
}

// recordSpeed appends a speed sample, evicting the oldest on overflow.
func (t *Track) recordSpeed(s float64) {
	t.speedHistory = append(t.speedHistory, s)
	if len(t.speedHistory) > MaxSpeedHistoryLength {
		t.speedHistory = t.speedHistory[1:]
	}
}

// recordPoint appends a history point, evicting the oldest on overflow.
func (t *Track) recordPoint(frame int64) {
	t.History = append(t.History, TrackPoint{X: t.X, Y: t.Y, Frame: frame})
	if len(t.History) > MaxHistoryLength {
		t.History = t.History[1:]
	}
}
