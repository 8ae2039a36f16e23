package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/collision.report/internal/vision"
	"github.com/banshee-data/collision.report/internal/vision/risk"
)

// TuningConfig is the root run configuration. All fields are optional
// pointers over built-in defaults, so partial JSON configs are safe. The
// same schema serves every camera view; per-view calibration is a matter
// of loading a different file per pipeline instance.
type TuningConfig struct {
	// Frame geometry
	FrameWidth  *float64 `json:"frame_width,omitempty"`
	FrameHeight *float64 `json:"frame_height,omitempty"`
	FrameRate   *float64 `json:"frame_rate,omitempty"`

	// Tracker params
	OcclusionTolerance *int     `json:"occlusion_tolerance,omitempty"`
	GatingDistance     *float64 `json:"gating_distance,omitempty"`
	ProcessNoisePos    *float64 `json:"process_noise_pos,omitempty"`
	ProcessNoiseVel    *float64 `json:"process_noise_vel,omitempty"`
	MeasurementNoise   *float64 `json:"measurement_noise,omitempty"`
	VehicleClasses     []int    `json:"vehicle_classes,omitempty"`
	MinConfidence      *float64 `json:"min_confidence,omitempty"`

	// Calibration params
	RealVehicleWidth *float64 `json:"real_vehicle_width,omitempty"`
	FocalLength      *float64 `json:"focal_length,omitempty"`
	PixelsPerMeter   *float64 `json:"pixels_per_meter,omitempty"`

	// Risk params. When set, the whole nested struct replaces the
	// corresponding default block.
	DistanceThresholds *risk.Thresholds `json:"distance_thresholds,omitempty"`
	SpeedThresholds    *risk.Thresholds `json:"speed_thresholds,omitempty"`
	AngleThresholds    *risk.Thresholds `json:"angle_thresholds,omitempty"`
	Weights            *risk.Weights    `json:"weights,omitempty"`
	PixelSpeedToMPS    *float64         `json:"pixel_speed_to_mps,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. Fields omitted
// from the file retain their defaults. Semantic validation of the
// resolved risk configuration happens once at engine construction.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the structural constraints this layer owns. The risk
// block has its own Validate at engine construction; duplicating the
// band-monotonicity rules here would let the two drift.
func (c *TuningConfig) Validate() error {
	if c.FrameWidth != nil && *c.FrameWidth <= 0 {
		return fmt.Errorf("frame_width must be positive, got %f", *c.FrameWidth)
	}
	if c.FrameHeight != nil && *c.FrameHeight <= 0 {
		return fmt.Errorf("frame_height must be positive, got %f", *c.FrameHeight)
	}
	if c.FrameRate != nil && *c.FrameRate <= 0 {
		return fmt.Errorf("frame_rate must be positive, got %f", *c.FrameRate)
	}
	if c.OcclusionTolerance != nil && *c.OcclusionTolerance < 1 {
		return fmt.Errorf("occlusion_tolerance must be >= 1, got %d", *c.OcclusionTolerance)
	}
	if c.GatingDistance != nil && *c.GatingDistance <= 0 {
		return fmt.Errorf("gating_distance must be positive, got %f", *c.GatingDistance)
	}
	if c.MinConfidence != nil && (*c.MinConfidence < 0 || *c.MinConfidence > 1) {
		return fmt.Errorf("min_confidence must be in [0,1], got %f", *c.MinConfidence)
	}
	if c.RealVehicleWidth != nil && *c.RealVehicleWidth <= 0 {
		return fmt.Errorf("real_vehicle_width must be positive, got %f", *c.RealVehicleWidth)
	}
	if c.FocalLength != nil && *c.FocalLength <= 0 {
		return fmt.Errorf("focal_length must be positive, got %f", *c.FocalLength)
	}
	if c.PixelsPerMeter != nil && *c.PixelsPerMeter <= 0 {
		return fmt.Errorf("pixels_per_meter must be positive, got %f", *c.PixelsPerMeter)
	}
	return nil
}

// GetFrameWidth returns the frame width or the default.
func (c *TuningConfig) GetFrameWidth() float64 {
	if c.FrameWidth == nil {
		return 1280
	}
	return *c.FrameWidth
}

// GetFrameHeight returns the frame height or the default.
func (c *TuningConfig) GetFrameHeight() float64 {
	if c.FrameHeight == nil {
		return 720
	}
	return *c.FrameHeight
}

// GetFrameRate returns the frame rate or the default.
func (c *TuningConfig) GetFrameRate() float64 {
	if c.FrameRate == nil {
		return 30
	}
	return *c.FrameRate
}

// TrackerConfig resolves the tracker configuration with defaults applied.
func (c *TuningConfig) TrackerConfig() vision.TrackerConfig {
	cfg := vision.DefaultTrackerConfig()
	if c.OcclusionTolerance != nil {
		cfg.MaxMisses = *c.OcclusionTolerance
	}
	if c.GatingDistance != nil {
		cfg.GatingDistance = *c.GatingDistance
	}
	if c.ProcessNoisePos != nil {
		cfg.ProcessNoisePos = *c.ProcessNoisePos
	}
	if c.ProcessNoiseVel != nil {
		cfg.ProcessNoiseVel = *c.ProcessNoiseVel
	}
	if c.MeasurementNoise != nil {
		cfg.MeasurementNoise = *c.MeasurementNoise
	}
	if len(c.VehicleClasses) > 0 {
		cfg.VehicleClasses = c.VehicleClasses
	}
	if c.MinConfidence != nil {
		cfg.MinConfidence = *c.MinConfidence
	}
	return cfg
}

// Calibration resolves the camera calibration with defaults applied.
func (c *TuningConfig) Calibration() vision.Calibration {
	cal := vision.DefaultCalibration()
	if c.RealVehicleWidth != nil {
		cal.RealVehicleWidth = *c.RealVehicleWidth
	}
	if c.FocalLength != nil {
		cal.FocalLength = *c.FocalLength
	}
	if c.PixelsPerMeter != nil {
		cal.PixelsPerMeter = *c.PixelsPerMeter
	}
	return cal
}

// RiskConfig resolves the risk-engine configuration with defaults applied.
func (c *TuningConfig) RiskConfig() risk.Config {
	cfg := risk.DefaultConfig()
	if c.DistanceThresholds != nil {
		cfg.Distance = *c.DistanceThresholds
	}
	if c.SpeedThresholds != nil {
		cfg.Speed = *c.SpeedThresholds
	}
	if c.AngleThresholds != nil {
		cfg.Angle = *c.AngleThresholds
	}
	if c.Weights != nil {
		cfg.Weights = *c.Weights
	}
	if c.PixelSpeedToMPS != nil {
		cfg.PixelSpeedToMPS = *c.PixelSpeedToMPS
	}
	return cfg
}
