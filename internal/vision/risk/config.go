package risk

import (
	"fmt"
	"math"
)

// Thresholds holds one factor's four severity band boundaries.
type Thresholds struct {
	Critical float64 `json:"critical"`
	High     float64 `json:"high"`
	Medium   float64 `json:"medium"`
	Low      float64 `json:"low"`
}

// Weights is the factor weighting for the combined risk score.
// The three weights must sum to 1.0.
type Weights struct {
	Distance float64 `json:"distance"`
	Speed    float64 `json:"speed"`
	Angle    float64 `json:"angle"`
}

// Config holds the full risk-engine tuning. It is validated once at
// engine construction and immutable afterwards.
type Config struct {
	// Distance bands in meters: a vehicle at or under a band's
	// boundary is at least that dangerous. Critical < High < Medium < Low.
	Distance Thresholds `json:"distance"`

	// Speed bands in pixels/frame: at or over the boundary.
	// Critical > High > Medium > Low.
	Speed Thresholds `json:"speed"`

	// Angle bands in degrees from the view axis: at or under the
	// boundary. Critical < High < Medium < Low.
	Angle Thresholds `json:"angle"`

	Weights Weights `json:"weights"`

	// Score fallback boundaries for the High/Medium/Low decisions.
	ScoreHigh   float64 `json:"score_high"`
	ScoreMedium float64 `json:"score_medium"`
	ScoreLow    float64 `json:"score_low"`

	// PixelSpeedToMPS converts a pixels/frame speed to meters/second
	// for the time-to-collision estimate.
	PixelSpeedToMPS float64 `json:"pixel_speed_to_mps"`
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		Distance:        Thresholds{Critical: 5.0, High: 10.0, Medium: 20.0, Low: 30.0},
		Speed:           Thresholds{Critical: 20.0, High: 15.0, Medium: 10.0, Low: 5.0},
		Angle:           Thresholds{Critical: 15.0, High: 30.0, Medium: 45.0, Low: 60.0},
		Weights:         Weights{Distance: 0.40, Speed: 0.35, Angle: 0.25},
		ScoreHigh:       0.7,
		ScoreMedium:     0.5,
		ScoreLow:        0.3,
		PixelSpeedToMPS: 0.1,
	}
}

const weightSumTolerance = 1e-9

// Validate fails fast on a configuration the engine cannot score with.
// Validation runs once at construction, never per frame.
func (c Config) Validate() error {
	sum := c.Weights.Distance + c.Weights.Speed + c.Weights.Angle
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("risk weights must sum to 1.0, got %v", sum)
	}
	if c.Weights.Distance < 0 || c.Weights.Speed < 0 || c.Weights.Angle < 0 {
		return fmt.Errorf("risk weights must be non-negative, got %+v", c.Weights)
	}

	if !ascending(c.Distance) {
		return fmt.Errorf("distance thresholds must increase critical<high<medium<low, got %+v", c.Distance)
	}
	if !descending(c.Speed) {
		return fmt.Errorf("speed thresholds must decrease critical>high>medium>low, got %+v", c.Speed)
	}
	if !ascending(c.Angle) {
		return fmt.Errorf("angle thresholds must increase critical<high<medium<low, got %+v", c.Angle)
	}
	if c.Distance.Critical <= 0 || c.Speed.Low <= 0 || c.Angle.Critical <= 0 {
		return fmt.Errorf("thresholds must be positive")
	}

	if !(c.ScoreLow < c.ScoreMedium && c.ScoreMedium < c.ScoreHigh) {
		return fmt.Errorf("score boundaries must increase low<medium<high, got %v/%v/%v",
			c.ScoreLow, c.ScoreMedium, c.ScoreHigh)
	}
	if c.PixelSpeedToMPS <= 0 {
		return fmt.Errorf("pixel speed conversion factor must be positive, got %v", c.PixelSpeedToMPS)
	}
	return nil
}

func ascending(t Thresholds) bool {
	return t.Critical < t.High && t.High < t.Medium && t.Medium < t.Low
}

func descending(t Thresholds) bool {
	return t.Critical > t.High && t.High > t.Medium && t.Medium > t.Low
}
