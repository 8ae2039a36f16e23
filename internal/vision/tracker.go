package vision

import (
	"math"
	"sort"

	"github.com/banshee-data/collision.report/internal/monitoring"
)

// TrackerConfig holds configuration parameters for the tracker.
type TrackerConfig struct {
	MaxMisses        int     // Consecutive misses before a track is pruned (occlusion tolerance)
	GatingDistance   float64 // Maximum predicted-to-detection centre distance for a valid match (pixels)
	ProcessNoisePos  float64 // Process noise for position (σ²)
	ProcessNoiseVel  float64 // Process noise for velocity (σ²)
	MeasurementNoise float64 // Measurement noise (σ²)
	VehicleClasses   []int   // Detection class allow-list
	MinConfidence    float64 // Detections below this confidence are ignored
}

// DefaultTrackerConfig returns default tracker configuration.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		MaxMisses:        30,
		GatingDistance:   100.0,
		ProcessNoisePos:  0.03,
		ProcessNoiseVel:  0.03,
		MeasurementNoise: 0.3,
		VehicleClasses:   DefaultVehicleClasses(),
		MinConfidence:    0.25,
	}
}

// priorCovariance is the fresh covariance assigned to new tracks and to
// tracks recovered from a numerically invalid state.
var priorCovariance = [16]float64{
	10, 0, 0, 0,
	0, 10, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// Tracker manages multi-object tracking over a single detection stream.
//
// Step must be called once per frame in strict arrival order and is not
// safe for concurrent use; each camera view gets its own Tracker.
type Tracker struct {
	cfg    TrackerConfig
	tracks map[int64]*Track
	nextID int64
	frame  int64

	// Data-quality counters, readable by the caller.
	rejectedDetections int64
	covarianceResets   int64
}

// NewTracker creates a tracker with the given configuration.
func NewTracker(cfg TrackerConfig) *Tracker {
	return &Tracker{
		cfg:    cfg,
		tracks: make(map[int64]*Track),
		nextID: 1,
	}
}

// Frame returns the number of frames processed so far.
func (t *Tracker) Frame() int64 { return t.frame }

// RejectedDetections returns how many malformed or filtered detections
// have been dropped before association.
func (t *Tracker) RejectedDetections() int64 { return t.rejectedDetections }

// CovarianceResets returns how many tracks have had their covariance
// reset after going numerically invalid.
func (t *Tracker) CovarianceResets() int64 { return t.covarianceResets }

// Step advances the tracker by one frame and returns the live track set.
//
// An empty detection list is a normal steady state: every track coasts on
// its prediction and accrues a miss.
func (t *Tracker) Step(detections []Detection) []*Track {
	t.frame++

	dets := t.admit(detections)

	// Predict every live track one frame forward.
	for _, track := range t.tracks {
		t.predict(track)
		track.Age++
	}

	assignments := t.associate(dets)

	matched := make(map[int64]bool, len(dets))
	for di, id := range assignments {
		if id < 0 {
			continue
		}
		track := t.tracks[id]
		t.correct(track, dets[di])
		track.Misses = 0
		matched[id] = true
	}

	for id, track := range t.tracks {
		if !matched[id] {
			track.Misses++
		}
	}

	// Spawn tracks for unmatched detections.
	for di, id := range assignments {
		if id < 0 {
			t.spawn(dets[di])
		}
	}

	// Prune tracks whose occlusion tolerance is exhausted. Pruning is
	// irreversible: a reappearing vehicle gets a new ID.
	for id, track := range t.tracks {
		if track.Misses > t.cfg.MaxMisses {
			delete(t.tracks, id)
		}
	}

	return t.Live()
}

// Live returns the current live tracks ordered by ascending ID.
func (t *Tracker) Live() []*Track {
	out := make([]*Track, 0, len(t.tracks))
	for _, track := range t.tracks {
		out = append(out, track)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// admit filters the raw detection list down to well-formed vehicle
// detections. Malformed boxes are a data-quality condition, not an error.
func (t *Tracker) admit(detections []Detection) []Detection {
	out := make([]Detection, 0, len(detections))
	for _, d := range detections {
		if !d.Box.Valid() {
			t.rejectedDetections++
			monitoring.Logf("[tracker] frame %d: dropping malformed detection box %+v", t.frame, d.Box)
			continue
		}
		if d.Confidence < t.cfg.MinConfidence || !t.classAllowed(d.Class) {
			t.rejectedDetections++
			continue
		}
		out = append(out, d)
	}
	return out
}

func (t *Tracker) classAllowed(class int) bool {
	for _, c := range t.cfg.VehicleClasses {
		if c == class {
			return true
		}
	}
	return false
}

// predict applies the Kalman prediction step with a constant-velocity
// model and dt fixed at one frame.
func (t *Tracker) predict(track *Track) {
	// State transition F:
	// [1 0 1 0]
	// [0 1 0 1]
	// [0 0 1 0]
	// [0 0 0 1]
	track.X += track.VX
	track.Y += track.VY

	// P' = F * P * F^T + Q, computed directly for the fixed F above.
	P := track.P
	var FP [16]float64
	for j := 0; j < 4; j++ {
		FP[0*4+j] = P[0*4+j] + P[2*4+j]
		FP[1*4+j] = P[1*4+j] + P[3*4+j]
		FP[2*4+j] = P[2*4+j]
		FP[3*4+j] = P[3*4+j]
	}
	for i := 0; i < 4; i++ {
		track.P[i*4+0] = FP[i*4+0] + FP[i*4+2]
		track.P[i*4+1] = FP[i*4+1] + FP[i*4+3]
		track.P[i*4+2] = FP[i*4+2]
		track.P[i*4+3] = FP[i*4+3]
	}

	track.P[0*4+0] += t.cfg.ProcessNoisePos
	track.P[1*4+1] += t.cfg.ProcessNoisePos
	track.P[2*4+2] += t.cfg.ProcessNoiseVel
	track.P[3*4+3] += t.cfg.ProcessNoiseVel
}

// associate matches detections to tracks with Hungarian assignment over a
// Euclidean centre-distance cost matrix. Costs beyond the gating distance
// are forbidden. Returns assignment[i] = track ID for detection i, or -1.
func (t *Tracker) associate(dets []Detection) []int64 {
	assignments := make([]int64, len(dets))
	for i := range assignments {
		assignments[i] = -1
	}
	if len(dets) == 0 || len(t.tracks) == 0 {
		return assignments
	}

	// Columns ordered by ascending track ID so equal-cost ties resolve
	// to the lowest ID.
	ids := make([]int64, 0, len(t.tracks))
	for id := range t.tracks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	cost := make([][]float64, len(dets))
	for di, d := range dets {
		cost[di] = make([]float64, len(ids))
		dcx, dcy := d.Box.Center()
		for ti, id := range ids {
			track := t.tracks[id]
			dist := math.Hypot(dcx-track.X, dcy-track.Y)
			if dist > t.cfg.GatingDistance {
				cost[di][ti] = forbiddenCost
			} else {
				cost[di][ti] = dist
			}
		}
	}

	for di, col := range HungarianAssign(cost) {
		if col >= 0 {
			assignments[di] = ids[col]
		}
	}
	return assignments
}

// correct applies the Kalman measurement update using the detection
// centre as the measurement.
func (t *Tracker) correct(track *Track, det Detection) {
	zX, zY := det.Box.Center()

	// Innovation.
	yX := zX - track.X
	yY := zY - track.Y

	// Innovation covariance S = H * P * H^T + R with H extracting
	// position only.
	S00 := track.P[0*4+0] + t.cfg.MeasurementNoise
	S01 := track.P[0*4+1]
	S10 := track.P[1*4+0]
	S11 := track.P[1*4+1] + t.cfg.MeasurementNoise

	det2 := S00*S11 - S01*S10
	if det2 < minDeterminant {
		// Singular innovation covariance: skip the update, keep the
		// prediction, and refresh the prior so the filter recovers.
		track.P = priorCovariance
		t.covarianceResets++
		return
	}

	invS00 := S11 / det2
	invS01 := -S01 / det2
	invS10 := -S10 / det2
	invS11 := S00 / det2

	// Kalman gain K = P * H^T * S^-1 (4x2).
	var K [8]float64
	for i := 0; i < 4; i++ {
		K[i*2+0] = track.P[i*4+0]*invS00 + track.P[i*4+1]*invS10
		K[i*2+1] = track.P[i*4+0]*invS01 + track.P[i*4+1]*invS11
	}

	track.X += K[0*2+0]*yX + K[0*2+1]*yY
	track.Y += K[1*2+0]*yX + K[1*2+1]*yY
	track.VX += K[2*2+0]*yX + K[2*2+1]*yY
	track.VY += K[3*2+0]*yX + K[3*2+1]*yY

	// P' = (I - K*H) * P.
	var IminusKH [16]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var identity float64
			if i == j {
				identity = 1
			}
			var kh float64
			if j == 0 {
				kh = K[i*2+0]
			} else if j == 1 {
				kh = K[i*2+1]
			}
			IminusKH[i*4+j] = identity - kh
		}
	}
	var newP [16]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += IminusKH[i*4+k] * track.P[k*4+j]
			}
			newP[i*4+j] = sum
		}
	}
	track.P = newP

	if !covarianceHealthy(track.P) {
		track.P = priorCovariance
		t.covarianceResets++
	}

	track.Box = det.Box
	track.recordSpeed(track.Speed())
	track.recordPoint(t.frame)
}

// spawn creates a new track from an unmatched detection.
func (t *Tracker) spawn(det Detection) *Track {
	cx, cy := det.Box.Center()
	track := &Track{
		ID:  t.nextID,
		X:   cx,
		Y:   cy,
		Box: det.Box,
		P:   priorCovariance,
	}
	t.nextID++
	track.History = []TrackPoint{{X: cx, Y: cy, Frame: t.frame}}
	track.speedHistory = make([]float64, 0, MaxSpeedHistoryLength)
	t.tracks[track.ID] = track
	return track
}

const minDeterminant = 1e-9

// covarianceHealthy reports whether a covariance matrix is still usable:
// finite entries and non-negative variances on the diagonal. A failed
// check is recovered by resetting to the fresh prior, never propagated.
func covarianceHealthy(P [16]float64) bool {
	for i, v := range P {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
		if i%5 == 0 && v < 0 {
			return false
		}
	}
	return true
}
