package risk

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Input is one track-frame measurement set handed to the engine.
type Input struct {
	// Distance in meters; only meaningful when DistanceDefined is true.
	// Undefined distance (degenerate bounding box) excludes the track
	// from severity escalation for the frame.
	Distance        float64
	DistanceDefined bool

	// Speed in pixels/frame, from the Kalman velocity estimate.
	Speed float64

	// Angle in degrees from the view axis, folded to [0, 180].
	Angle float64

	// Age in frames since track creation. One-frame-old tracks have no
	// meaningful velocity yet and are excluded from escalation.
	Age int

	// Approaching is true when the track's velocity points toward the
	// frame centre. Gates the time-to-collision estimate.
	Approaching bool
}

// Assessment is the engine's verdict for one track-frame.
type Assessment struct {
	Distance        float64
	DistanceDefined bool
	Speed           float64
	Angle           float64

	Score    float64
	Severity Severity
	Factors  FactorSet

	// TimeToCollision in seconds; +Inf when the track is not approaching
	// or too slow to matter.
	TimeToCollision float64
}

// MarshalJSON renders the assessment with an infinite time-to-collision
// as null, which encoding/json cannot represent as a float.
func (a Assessment) MarshalJSON() ([]byte, error) {
	var ttc *float64
	if !math.IsInf(a.TimeToCollision, 0) && !math.IsNaN(a.TimeToCollision) {
		ttc = &a.TimeToCollision
	}
	return json.Marshal(struct {
		Distance        float64  `json:"distance_m"`
		DistanceDefined bool     `json:"distance_defined"`
		Speed           float64  `json:"speed"`
		Angle           float64  `json:"angle_deg"`
		Score           float64  `json:"score"`
		Severity        string   `json:"severity"`
		Factors         string   `json:"factors"`
		TimeToCollision *float64 `json:"time_to_collision_s"`
	}{
		Distance:        a.Distance,
		DistanceDefined: a.DistanceDefined,
		Speed:           a.Speed,
		Angle:           a.Angle,
		Score:           a.Score,
		Severity:        a.Severity.String(),
		Factors:         a.Factors.String(),
		TimeToCollision: ttc,
	})
}

// Label renders the human-readable alert text, e.g.
// "CRITICAL: CLOSE | FAST | DIRECT".
func (a Assessment) Label() string {
	upper := strings.ToUpper(a.Severity.String())
	if len(a.Factors) == 0 {
		return upper
	}
	return fmt.Sprintf("%s: %s", upper, a.Factors)
}

// Engine scores track-frames against an immutable validated Config.
type Engine struct {
	cfg Config
}

// NewEngine validates the configuration and constructs an engine.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("risk config: %w", err)
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine's tuning.
func (e *Engine) Config() Config { return e.cfg }

// Assess scores one track-frame. Pure: no engine state is touched.
func (e *Engine) Assess(in Input) Assessment {
	c := e.cfg

	distLevel := SeverityNone
	distScore := 0.0
	if in.DistanceDefined {
		distLevel = levelAtMost(in.Distance, c.Distance)
		distScore = e.distanceScore(in.Distance)
	}
	speedLevel := levelAtLeast(in.Speed, c.Speed)
	angleLevel := levelAtMost(in.Angle, c.Angle)

	score := distScore*c.Weights.Distance +
		e.speedScore(in.Speed)*c.Weights.Speed +
		e.angleScore(in.Angle)*c.Weights.Angle

	factors := make(FactorSet)
	if distLevel >= SeverityHigh {
		factors[FactorClose] = true
	}
	if speedLevel >= SeverityHigh {
		factors[FactorFast] = true
	}
	if angleLevel >= SeverityHigh {
		factors[FactorDirectPath] = true
	}

	out := Assessment{
		Distance:        in.Distance,
		DistanceDefined: in.DistanceDefined,
		Speed:           in.Speed,
		Angle:           in.Angle,
		Score:           score,
		Factors:         factors,
		TimeToCollision: e.timeToCollision(in),
	}

	// Transient or unmeasurable tracks never escalate: a one-frame-old
	// track has no velocity estimate and an undefined distance would
	// otherwise read as infinitely close or infinitely far.
	if !in.DistanceDefined || in.Age == 0 {
		out.Severity = SeverityNone
		return out
	}

	out.Severity = e.decide(in.Distance, in.Speed, in.Angle, score)
	return out
}

// decide applies the severity rules in documented precedence order.
// First match wins.
func (e *Engine) decide(d, s, a, score float64) Severity {
	c := e.cfg
	switch {
	case d <= c.Distance.Critical && a <= c.Angle.Critical,
		d <= c.Distance.Critical/2,
		s >= c.Speed.Critical && d <= c.Distance.High && a <= c.Angle.High:
		return SeverityCritical
	case d <= c.Distance.High && s >= c.Speed.Medium && a <= c.Angle.High,
		score >= c.ScoreHigh:
		return SeverityHigh
	case d <= c.Distance.Medium && s > 0 && a <= c.Angle.Medium,
		score >= c.ScoreMedium:
		return SeverityMedium
	case d <= c.Distance.Low && s > 0 && a <= c.Angle.Low,
		score >= c.ScoreLow:
		return SeverityLow
	default:
		return SeverityNone
	}
}

// Band anchor values for the normalised factor scores.
const (
	bandCritical = 1.0
	bandHigh     = 0.8
	bandMedium   = 0.6
	bandLow      = 0.4
)

// Tail extents: how far past the Low band a measurement keeps a non-zero
// score (meters for distance, degrees for angle).
const (
	distanceTailM = 50.0
	angleTailDeg  = 60.0
)

// distanceScore maps distance to [0,1]; closer is higher. Flat band
// anchors with a linear tail to zero beyond the Low band, so the score
// is monotone non-increasing in distance.
func (e *Engine) distanceScore(d float64) float64 {
	t := e.cfg.Distance
	switch {
	case d <= t.Critical:
		return bandCritical
	case d <= t.High:
		return bandHigh
	case d <= t.Medium:
		return bandMedium
	case d <= t.Low:
		return bandLow
	default:
		return math.Max(0, bandLow*(1-(d-t.Low)/distanceTailM))
	}
}

// speedScore maps speed to [0,1]; faster is higher, with a linear ramp
// from zero up to the Low band.
func (e *Engine) speedScore(s float64) float64 {
	t := e.cfg.Speed
	switch {
	case s >= t.Critical:
		return bandCritical
	case s >= t.High:
		return bandHigh
	case s >= t.Medium:
		return bandMedium
	case s >= t.Low:
		return bandLow
	default:
		return math.Max(0, s/t.Low*bandLow)
	}
}

// angleScore maps degrees-from-axis to [0,1]; straighter is higher, with
// a linear tail to zero beyond the Low band.
func (e *Engine) angleScore(a float64) float64 {
	t := e.cfg.Angle
	switch {
	case a <= t.Critical:
		return bandCritical
	case a <= t.High:
		return bandHigh
	case a <= t.Medium:
		return bandMedium
	case a <= t.Low:
		return bandLow
	default:
		return math.Max(0, bandLow*(1-(a-t.Low)/angleTailDeg))
	}
}

// timeToCollision estimates seconds to impact. Only meaningful when the
// track is approaching the frame centre at a non-trivial speed.
func (e *Engine) timeToCollision(in Input) float64 {
	if !in.DistanceDefined || !in.Approaching || in.Speed < e.cfg.Speed.Low {
		return math.Inf(1)
	}
	mps := in.Speed * e.cfg.PixelSpeedToMPS
	if mps <= 0 {
		return math.Inf(1)
	}
	return in.Distance / mps
}

// levelAtMost classifies a measurement where smaller is more dangerous.
func levelAtMost(v float64, t Thresholds) Severity {
	switch {
	case v <= t.Critical:
		return SeverityCritical
	case v <= t.High:
		return SeverityHigh
	case v <= t.Medium:
		return SeverityMedium
	case v <= t.Low:
		return SeverityLow
	default:
		return SeverityNone
	}
}

// levelAtLeast classifies a measurement where larger is more dangerous.
func levelAtLeast(v float64, t Thresholds) Severity {
	switch {
	case v >= t.Critical:
		return SeverityCritical
	case v >= t.High:
		return SeverityHigh
	case v >= t.Medium:
		return SeverityMedium
	case v >= t.Low:
		return SeverityLow
	default:
		return SeverityNone
	}
}
