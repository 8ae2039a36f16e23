package vision

import (
	"math"
	"testing"
)

func TestComputeSpeedStatsEmpty(t *testing.T) {
	s := ComputeSpeedStats(nil)
	if s != (SpeedStats{}) {
		t.Errorf("expected zero stats for empty history, got %+v", s)
	}
}

func TestComputeSpeedStatsSingle(t *testing.T) {
	s := ComputeSpeedStats([]float64{7.5})
	if s.Avg != 7.5 || s.Peak != 7.5 || s.P50 != 7.5 || s.P95 != 7.5 {
		t.Errorf("expected all stats 7.5 for single sample, got %+v", s)
	}
}

func TestComputeSpeedStats(t *testing.T) {
	speeds := make([]float64, 100)
	for i := range speeds {
		speeds[i] = float64(i + 1) // 1..100
	}

	s := ComputeSpeedStats(speeds)
	if math.Abs(s.Avg-50.5) > 1e-9 {
		t.Errorf("expected mean 50.5, got %v", s.Avg)
	}
	if s.Peak != 100 {
		t.Errorf("expected peak 100, got %v", s.Peak)
	}
	if s.P50 < 49 || s.P50 > 52 {
		t.Errorf("P50 out of range: %v", s.P50)
	}
	if s.P85 < 84 || s.P85 > 87 {
		t.Errorf("P85 out of range: %v", s.P85)
	}
	if s.P95 < 94 || s.P95 > 97 {
		t.Errorf("P95 out of range: %v", s.P95)
	}
	if !(s.P50 <= s.P85 && s.P85 <= s.P95 && s.P95 <= s.Peak) {
		t.Errorf("quantiles not ordered: %+v", s)
	}
}

func TestComputeSpeedStatsDoesNotMutateInput(t *testing.T) {
	speeds := []float64{5, 1, 3}
	ComputeSpeedStats(speeds)
	if speeds[0] != 5 || speeds[1] != 1 || speeds[2] != 3 {
		t.Errorf("input slice was reordered: %v", speeds)
	}
}
