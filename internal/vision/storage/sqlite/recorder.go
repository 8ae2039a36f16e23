package sqlite

import (
	"fmt"

	"github.com/banshee-data/collision.report/internal/vision"
	"github.com/banshee-data/collision.report/internal/vision/pipeline"
)

// Recorder persists one run's frame results. It implements
// pipeline.PersistenceSink.
type Recorder struct {
	store *Store
	runID string
}

var _ pipeline.PersistenceSink = (*Recorder)(nil)

// NewRecorder creates a persistence sink for the given run.
func (s *Store) NewRecorder(runID string) *Recorder {
	return &Recorder{store: s, runID: runID}
}

// RecordFrame writes one frame's verdicts, events and track summaries in
// a single transaction.
func (r *Recorder) RecordFrame(res pipeline.FrameResult) error {
	tx, err := r.store.Begin()
	if err != nil {
		return fmt.Errorf("record frame %d: begin: %w", res.Frame, err)
	}
	defer tx.Rollback()

	byID := make(map[int64]*vision.Track, len(res.Tracks))
	for _, t := range res.Tracks {
		byID[t.ID] = t
	}

	for _, v := range res.Verdicts {
		a := v.Assessment
		defined := 0
		if a.DistanceDefined {
			defined = 1
		}
		var x, y, vx, vy float64
		if t := byID[v.TrackID]; t != nil {
			x, y, vx, vy = t.X, t.Y, t.VX, t.VY
		}
		_, err := tx.Exec(
			`INSERT INTO verdicts (run_id, track_id, frame, pos_x, pos_y, vel_x, vel_y,
			                       distance_m, distance_defined, speed, angle_deg, score, severity, factors)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.runID, v.TrackID, res.Frame, x, y, vx, vy, a.Distance, defined,
			a.Speed, a.Angle, a.Score, a.Severity.String(), a.Factors.String(),
		)
		if err != nil {
			return fmt.Errorf("insert verdict track %d frame %d: %w", v.TrackID, res.Frame, err)
		}
	}

	for _, ev := range res.Events {
		cleared := 0
		if ev.Cleared {
			cleared = 1
		}
		_, err := tx.Exec(
			`INSERT INTO alert_events (event_id, run_id, track_id, frame, from_severity, to_severity, label, cleared)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			ev.EventID, r.runID, ev.TrackID, ev.Frame,
			ev.From.String(), ev.To.String(), ev.Label, cleared,
		)
		if err != nil {
			return fmt.Errorf("insert alert event %s: %w", ev.EventID, err)
		}
	}

	severities := make(map[int64]string, len(res.Verdicts))
	for _, v := range res.Verdicts {
		severities[v.TrackID] = v.Assessment.Severity.String()
	}
	for _, t := range res.Tracks {
		stats := vision.ComputeSpeedStats(t.SpeedHistory())
		_, err := tx.Exec(
			`INSERT INTO tracks (run_id, track_id, first_frame, last_frame, age, observation_count,
			                     avg_speed, peak_speed, p50_speed, p85_speed, p95_speed, last_severity)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(run_id, track_id) DO UPDATE SET
			   last_frame = excluded.last_frame,
			   age = excluded.age,
			   observation_count = excluded.observation_count,
			   avg_speed = excluded.avg_speed,
			   peak_speed = excluded.peak_speed,
			   p50_speed = excluded.p50_speed,
			   p85_speed = excluded.p85_speed,
			   p95_speed = excluded.p95_speed,
			   last_severity = excluded.last_severity`,
			r.runID, t.ID, res.Frame-int64(t.Age), res.Frame, t.Age, len(t.History),
			stats.Avg, stats.Peak, stats.P50, stats.P85, stats.P95, severities[t.ID],
		)
		if err != nil {
			return fmt.Errorf("upsert track %d: %w", t.ID, err)
		}
	}

	if _, err := tx.Exec(`UPDATE runs SET frames = ? WHERE run_id = ?`, res.Frame, r.runID); err != nil {
		return fmt.Errorf("update run frames: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record frame %d: commit: %w", res.Frame, err)
	}
	return nil
}
