package vision

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// SpeedStats summarises a track's speed history in pixels/frame.
type SpeedStats struct {
	Avg  float64
	Peak float64
	P50  float64
	P85  float64
	P95  float64
}

// ComputeSpeedStats computes summary statistics over a track's speed
// history. Returns the zero value when the history is empty.
func ComputeSpeedStats(speeds []float64) SpeedStats {
	if len(speeds) == 0 {
		return SpeedStats{}
	}

	sorted := make([]float64, len(speeds))
	copy(sorted, speeds)
	sort.Float64s(sorted)

	var s SpeedStats
	s.Avg = stat.Mean(sorted, nil)
	s.Peak = sorted[len(sorted)-1]
	s.P50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	s.P85 = stat.Quantile(0.85, stat.Empirical, sorted, nil)
	s.P95 = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	return s
}
