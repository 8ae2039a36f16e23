package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/collision.report/internal/vision"
)

// Store wraps the results database.
type Store struct {
	*sql.DB
}

// Open opens (creating if necessary) a results database at path.
// Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open results db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create results schema: %w", err)
	}

	return &Store{db}, nil
}

const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		run_id             TEXT PRIMARY KEY,
		view               TEXT NOT NULL,
		started_unix_nanos BIGINT NOT NULL,
		config_json        TEXT,
		frames             BIGINT NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS tracks (
		run_id            TEXT NOT NULL,
		track_id          BIGINT NOT NULL,
		first_frame       BIGINT NOT NULL,
		last_frame        BIGINT NOT NULL,
		age               BIGINT NOT NULL,
		observation_count BIGINT NOT NULL,
		avg_speed         DOUBLE NOT NULL DEFAULT 0,
		peak_speed        DOUBLE NOT NULL DEFAULT 0,
		p50_speed         DOUBLE NOT NULL DEFAULT 0,
		p85_speed         DOUBLE NOT NULL DEFAULT 0,
		p95_speed         DOUBLE NOT NULL DEFAULT 0,
		last_severity     TEXT NOT NULL DEFAULT 'none',
		PRIMARY KEY (run_id, track_id),
		FOREIGN KEY (run_id) REFERENCES runs(run_id)
	);
	CREATE TABLE IF NOT EXISTS verdicts (
		run_id           TEXT NOT NULL,
		track_id         BIGINT NOT NULL,
		frame            BIGINT NOT NULL,
		pos_x            DOUBLE NOT NULL DEFAULT 0,
		pos_y            DOUBLE NOT NULL DEFAULT 0,
		vel_x            DOUBLE NOT NULL DEFAULT 0,
		vel_y            DOUBLE NOT NULL DEFAULT 0,
		distance_m       DOUBLE NOT NULL,
		distance_defined INTEGER NOT NULL,
		speed            DOUBLE NOT NULL,
		angle_deg        DOUBLE NOT NULL,
		score            DOUBLE NOT NULL,
		severity         TEXT NOT NULL,
		factors          TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (run_id) REFERENCES runs(run_id)
	);
	CREATE INDEX IF NOT EXISTS idx_verdicts_run_frame ON verdicts(run_id, frame);
	CREATE TABLE IF NOT EXISTS alert_events (
		event_id      TEXT PRIMARY KEY,
		run_id        TEXT NOT NULL,
		track_id      BIGINT NOT NULL,
		frame         BIGINT NOT NULL,
		from_severity TEXT NOT NULL,
		to_severity   TEXT NOT NULL,
		label         TEXT NOT NULL DEFAULT '',
		cleared       INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (run_id) REFERENCES runs(run_id)
	);
	CREATE INDEX IF NOT EXISTS idx_alert_events_run ON alert_events(run_id, frame);
`

// Run is one recorded pipeline session.
type Run struct {
	RunID      string
	View       vision.View
	StartedAt  time.Time
	ConfigJSON string
	Frames     int64
}

// CreateRun registers a new pipeline session and returns its id.
func (s *Store) CreateRun(view vision.View, configJSON string) (Run, error) {
	run := Run{
		RunID:      uuid.NewString(),
		View:       view,
		StartedAt:  time.Now(),
		ConfigJSON: configJSON,
	}
	_, err := s.Exec(
		`INSERT INTO runs (run_id, view, started_unix_nanos, config_json) VALUES (?, ?, ?, ?)`,
		run.RunID, string(run.View), run.StartedAt.UnixNano(), run.ConfigJSON,
	)
	if err != nil {
		return Run{}, fmt.Errorf("create run: %w", err)
	}
	return run, nil
}

// GetRun loads one run by id.
func (s *Store) GetRun(runID string) (Run, error) {
	var run Run
	var view string
	var startedNanos int64
	err := s.QueryRow(
		`SELECT run_id, view, started_unix_nanos, config_json, frames FROM runs WHERE run_id = ?`,
		runID,
	).Scan(&run.RunID, &view, &startedNanos, &run.ConfigJSON, &run.Frames)
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	run.View = vision.View(view)
	run.StartedAt = time.Unix(0, startedNanos)
	return run, nil
}

// ListRuns returns runs newest-first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Query(
		`SELECT run_id, view, started_unix_nanos, config_json, frames
		 FROM runs ORDER BY started_unix_nanos DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var view string
		var startedNanos int64
		if err := rows.Scan(&run.RunID, &view, &startedNanos, &run.ConfigJSON, &run.Frames); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.View = vision.View(view)
		run.StartedAt = time.Unix(0, startedNanos)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
