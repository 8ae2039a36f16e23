package sqlite

import (
	"fmt"

	"github.com/banshee-data/collision.report/internal/vision/risk"
)

// TrackSummary is the stored per-track aggregate for one run.
type TrackSummary struct {
	TrackID          int64
	FirstFrame       int64
	LastFrame        int64
	Age              int64
	ObservationCount int64
	AvgSpeed         float64
	PeakSpeed        float64
	P50Speed         float64
	P85Speed         float64
	P95Speed         float64
	LastSeverity     risk.Severity
}

// StoredVerdict is one persisted track-frame verdict, together with the
// track's smoothed position and velocity at that frame.
type StoredVerdict struct {
	TrackID         int64
	Frame           int64
	X               float64
	Y               float64
	VX              float64
	VY              float64
	Distance        float64
	DistanceDefined bool
	Speed           float64
	Angle           float64
	Score           float64
	Severity        risk.Severity
	Factors         risk.FactorSet
}

// StoredEvent is one persisted alert transition.
type StoredEvent struct {
	EventID string
	TrackID int64
	Frame   int64
	From    risk.Severity
	To      risk.Severity
	Label   string
	Cleared bool
}

// FramePoint is one sample of the per-frame severity timeline.
type FramePoint struct {
	Frame       int64
	MaxScore    float64
	MaxSeverity risk.Severity
}

// GetTrackSummaries returns all track aggregates for a run, by track id.
func (s *Store) GetTrackSummaries(runID string) ([]TrackSummary, error) {
	rows, err := s.Query(
		`SELECT track_id, first_frame, last_frame, age, observation_count,
		        avg_speed, peak_speed, p50_speed, p85_speed, p95_speed, last_severity
		 FROM tracks WHERE run_id = ? ORDER BY track_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("get track summaries: %w", err)
	}
	defer rows.Close()

	var out []TrackSummary
	for rows.Next() {
		var t TrackSummary
		var severity string
		if err := rows.Scan(&t.TrackID, &t.FirstFrame, &t.LastFrame, &t.Age, &t.ObservationCount,
			&t.AvgSpeed, &t.PeakSpeed, &t.P50Speed, &t.P85Speed, &t.P95Speed, &severity); err != nil {
			return nil, fmt.Errorf("scan track summary: %w", err)
		}
		t.LastSeverity, _ = risk.ParseSeverity(severity)
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetVerdicts returns a run's verdicts in frame order, optionally
// filtered to one track. Limit <= 0 means no limit.
func (s *Store) GetVerdicts(runID string, trackID int64, limit int) ([]StoredVerdict, error) {
	query := `SELECT track_id, frame, pos_x, pos_y, vel_x, vel_y,
	                 distance_m, distance_defined, speed, angle_deg, score, severity, factors
	          FROM verdicts WHERE run_id = ?`
	args := []any{runID}
	if trackID > 0 {
		query += ` AND track_id = ?`
		args = append(args, trackID)
	}
	query += ` ORDER BY frame, track_id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("get verdicts: %w", err)
	}
	defer rows.Close()

	var out []StoredVerdict
	for rows.Next() {
		var v StoredVerdict
		var defined int
		var severity, factors string
		if err := rows.Scan(&v.TrackID, &v.Frame, &v.X, &v.Y, &v.VX, &v.VY,
			&v.Distance, &defined, &v.Speed, &v.Angle, &v.Score, &severity, &factors); err != nil {
			return nil, fmt.Errorf("scan verdict: %w", err)
		}
		v.DistanceDefined = defined != 0
		v.Severity, _ = risk.ParseSeverity(severity)
		v.Factors = risk.ParseFactorSet(factors)
		out = append(out, v)
	}
	return out, rows.Err()
}

// GetAlertEvents returns a run's alert events in frame order.
func (s *Store) GetAlertEvents(runID string) ([]StoredEvent, error) {
	rows, err := s.Query(
		`SELECT event_id, track_id, frame, from_severity, to_severity, label, cleared
		 FROM alert_events WHERE run_id = ? ORDER BY frame, track_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("get alert events: %w", err)
	}
	defer rows.Close()

	var out []StoredEvent
	for rows.Next() {
		var e StoredEvent
		var from, to string
		var cleared int
		if err := rows.Scan(&e.EventID, &e.TrackID, &e.Frame, &from, &to, &e.Label, &cleared); err != nil {
			return nil, fmt.Errorf("scan alert event: %w", err)
		}
		e.From, _ = risk.ParseSeverity(from)
		e.To, _ = risk.ParseSeverity(to)
		e.Cleared = cleared != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

// FrameSeveritySeries returns, per frame, the worst score and severity
// across the frame's verdicts. Feeds the risk-timeline chart.
func (s *Store) FrameSeveritySeries(runID string) ([]FramePoint, error) {
	verdicts, err := s.GetVerdicts(runID, 0, 0)
	if err != nil {
		return nil, err
	}

	var out []FramePoint
	for _, v := range verdicts {
		if len(out) == 0 || out[len(out)-1].Frame != v.Frame {
			out = append(out, FramePoint{Frame: v.Frame})
		}
		p := &out[len(out)-1]
		if v.Score > p.MaxScore {
			p.MaxScore = v.Score
		}
		if v.Severity > p.MaxSeverity {
			p.MaxSeverity = v.Severity
		}
	}
	return out, nil
}

// TrackTrajectory returns one track's verdicts in frame order; the
// embedded positions trace the track's smoothed trajectory.
func (s *Store) TrackTrajectory(runID string, trackID int64) ([]StoredVerdict, error) {
	return s.GetVerdicts(runID, trackID, 0)
}
