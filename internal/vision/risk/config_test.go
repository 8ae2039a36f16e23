package risk

import (
	"strings"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		errPart string
	}{
		{
			"weights over one",
			func(c *Config) { c.Weights.Speed = 0.95 },
			"sum to 1.0",
		},
		{
			"weights under one",
			func(c *Config) { c.Weights.Angle = 0.0 },
			"sum to 1.0",
		},
		{
			"negative weight",
			func(c *Config) { c.Weights = Weights{Distance: 1.2, Speed: -0.1, Angle: -0.1} },
			"non-negative",
		},
		{
			"distance bands out of order",
			func(c *Config) { c.Distance = Thresholds{Critical: 30, High: 20, Medium: 10, Low: 5} },
			"distance thresholds",
		},
		{
			"speed bands out of order",
			func(c *Config) { c.Speed = Thresholds{Critical: 5, High: 10, Medium: 15, Low: 20} },
			"speed thresholds",
		},
		{
			"angle bands out of order",
			func(c *Config) { c.Angle.High = 10 },
			"angle thresholds",
		},
		{
			"zero critical distance",
			func(c *Config) { c.Distance = Thresholds{Critical: 0, High: 10, Medium: 20, Low: 30} },
			"positive",
		},
		{
			"score boundaries out of order",
			func(c *Config) { c.ScoreLow = 0.9 },
			"score boundaries",
		},
		{
			"zero speed conversion",
			func(c *Config) { c.PixelSpeedToMPS = 0 },
			"conversion factor",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.errPart) {
				t.Errorf("error %q does not mention %q", err, tc.errPart)
			}
		})
	}
}

func TestValidateWeightTolerance(t *testing.T) {
	// Float splits that sum to 1.0 only within rounding must pass.
	cfg := DefaultConfig()
	cfg.Weights = Weights{Distance: 0.1, Speed: 0.2, Angle: 0.7}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected tolerance to absorb float error: %v", err)
	}
}
