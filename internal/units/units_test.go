package units

import (
	"math"
	"testing"
)

func TestIsValid(t *testing.T) {
	for _, u := range ValidUnits {
		if !IsValid(u) {
			t.Errorf("expected %q to be valid", u)
		}
	}
	for _, u := range []string{"", "knots", "MPH"} {
		if IsValid(u) {
			t.Errorf("expected %q to be invalid", u)
		}
	}
}

func TestPxfConversions(t *testing.T) {
	if got := PxfToPxs(5, 30); got != 150 {
		t.Errorf("PxfToPxs(5, 30) = %v, want 150", got)
	}
	if got := PxfToMPS(5, DefaultPixelSpeedToMPS); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("PxfToMPS(5, default) = %v, want 0.5", got)
	}
}

func TestConvertSpeed(t *testing.T) {
	tests := []struct {
		units string
		want  float64
	}{
		{MPS, 10},
		{KMPH, 36},
		{MPH, 22.369362920544},
		{"unknown", 10},
	}
	for _, tc := range tests {
		if got := ConvertSpeed(10, tc.units); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("ConvertSpeed(10, %q) = %v, want %v", tc.units, got, tc.want)
		}
	}
}
