package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestEmptyTuningConfigDefaults(t *testing.T) {
	cfg := EmptyTuningConfig()

	if got := cfg.GetFrameWidth(); got != 1280 {
		t.Errorf("default frame width = %v, want 1280", got)
	}
	if got := cfg.GetFrameHeight(); got != 720 {
		t.Errorf("default frame height = %v, want 720", got)
	}
	if got := cfg.GetFrameRate(); got != 30 {
		t.Errorf("default frame rate = %v, want 30", got)
	}

	tracker := cfg.TrackerConfig()
	if tracker.MaxMisses != 30 {
		t.Errorf("default occlusion tolerance = %d, want 30", tracker.MaxMisses)
	}

	cal := cfg.Calibration()
	if cal.FocalLength != 700 {
		t.Errorf("default focal length = %v, want 700", cal.FocalLength)
	}

	if err := cfg.RiskConfig().Validate(); err != nil {
		t.Errorf("resolved default risk config invalid: %v", err)
	}
}

func TestLoadTuningConfigPartial(t *testing.T) {
	path := writeConfig(t, "tuning.json", `{
		"frame_width": 1920,
		"frame_height": 1080,
		"occlusion_tolerance": 45,
		"vehicle_classes": [2, 7],
		"focal_length": 900,
		"weights": {"distance": 0.5, "speed": 0.3, "angle": 0.2}
	}`)

	cfg, err := LoadTuningConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 1920.0, cfg.GetFrameWidth())
	assert.Equal(t, 1080.0, cfg.GetFrameHeight())
	// Unset fields keep their defaults.
	assert.Equal(t, 30.0, cfg.GetFrameRate())

	tracker := cfg.TrackerConfig()
	assert.Equal(t, 45, tracker.MaxMisses)
	assert.Equal(t, []int{2, 7}, tracker.VehicleClasses)
	assert.Equal(t, 100.0, tracker.GatingDistance)

	cal := cfg.Calibration()
	assert.Equal(t, 900.0, cal.FocalLength)
	assert.Equal(t, 1.8, cal.RealVehicleWidth)

	rc := cfg.RiskConfig()
	assert.Equal(t, 0.5, rc.Weights.Distance)
	assert.Equal(t, 0.3, rc.Weights.Speed)
	assert.Equal(t, 0.2, rc.Weights.Angle)
	assert.Equal(t, 5.0, rc.Distance.Critical, "distance thresholds should keep defaults")
	require.NoError(t, rc.Validate())
}

func TestLoadTuningConfigRejectsNonJSON(t *testing.T) {
	path := writeConfig(t, "tuning.yaml", "frame_width: 1920")
	if _, err := LoadTuningConfig(path); err == nil {
		t.Error("expected error for non-.json extension")
	}
}

func TestLoadTuningConfigMissingFile(t *testing.T) {
	if _, err := LoadTuningConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadTuningConfigMalformedJSON(t *testing.T) {
	path := writeConfig(t, "bad.json", `{"frame_width": }`)
	if _, err := LoadTuningConfig(path); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestLoadTuningConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative frame width", `{"frame_width": -1}`},
		{"zero frame rate", `{"frame_rate": 0}`},
		{"zero occlusion tolerance", `{"occlusion_tolerance": 0}`},
		{"confidence above one", `{"min_confidence": 1.5}`},
		{"zero pixels per meter", `{"pixels_per_meter": 0}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, "tuning.json", tc.content)
			if _, err := LoadTuningConfig(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
