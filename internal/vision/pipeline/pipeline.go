// Package pipeline wires the tracker, risk engine and alert coordinator
// into the per-frame processing loop, and fans results out to sinks.
package pipeline

import (
	"fmt"

	"github.com/banshee-data/collision.report/internal/monitoring"
	"github.com/banshee-data/collision.report/internal/vision"
	"github.com/banshee-data/collision.report/internal/vision/alert"
	"github.com/banshee-data/collision.report/internal/vision/risk"
)

// Verdict pairs a live track with its risk assessment for one frame.
type Verdict struct {
	TrackID    int64           `json:"track_id"`
	Assessment risk.Assessment `json:"assessment"`
}

// FrameResult is everything one ProcessFrame call produced.
type FrameResult struct {
	Frame    int64           `json:"frame"`
	Tracks   []*vision.Track `json:"tracks"`
	Verdicts []Verdict       `json:"verdicts"`
	Events   []alert.Event   `json:"events"`

	// MaxSeverity is the worst severity across the frame's verdicts.
	MaxSeverity risk.Severity `json:"max_severity"`
}

// PersistenceSink writes frame results to storage.
type PersistenceSink interface {
	RecordFrame(FrameResult) error
}

// PublishSink sends frame results to external consumers (monitor UI,
// alert renderers). Publish must not block the frame loop.
type PublishSink interface {
	Publish(FrameResult)
}

// Config holds the per-view pipeline wiring.
type Config struct {
	View        vision.View
	FrameWidth  float64
	FrameHeight float64

	Tracker     vision.TrackerConfig
	Risk        risk.Config
	Calibration vision.Calibration
}

// Pipeline runs one camera view's detection stream through tracking,
// risk scoring and alerting. Like the tracker it owns, a pipeline is a
// single logical stream: ProcessFrame must be called from one goroutine
// in strict frame order. Independent views run independent pipelines.
type Pipeline struct {
	cfg     Config
	tracker *vision.Tracker
	engine  *risk.Engine
	alerts  *alert.Coordinator

	persist PersistenceSink
	publish PublishSink

	// liveIDs from the previous frame, for destruction detection.
	liveIDs map[int64]bool
}

// New validates the configuration and constructs a pipeline.
func New(cfg Config, persist PersistenceSink, publish PublishSink) (*Pipeline, error) {
	if cfg.FrameWidth <= 0 || cfg.FrameHeight <= 0 {
		return nil, fmt.Errorf("pipeline: frame dimensions must be positive, got %vx%v",
			cfg.FrameWidth, cfg.FrameHeight)
	}
	engine, err := risk.NewEngine(cfg.Risk)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	return &Pipeline{
		cfg:     cfg,
		tracker: vision.NewTracker(cfg.Tracker),
		engine:  engine,
		alerts:  alert.NewCoordinator(),
		persist: persist,
		publish: publish,
		liveIDs: make(map[int64]bool),
	}, nil
}

// Tracker exposes the underlying tracker for data-quality counters.
func (p *Pipeline) Tracker() *vision.Tracker { return p.tracker }

// ProcessFrame advances the pipeline by one frame.
func (p *Pipeline) ProcessFrame(detections []vision.Detection) FrameResult {
	tracks := p.tracker.Step(detections)
	frame := p.tracker.Frame()

	result := FrameResult{
		Frame:    frame,
		Tracks:   tracks,
		Verdicts: make([]Verdict, 0, len(tracks)),
	}

	// Retire tracks pruned this frame before scoring the survivors, so
	// a cleared event never interleaves after its track's last verdict.
	current := make(map[int64]bool, len(tracks))
	for _, t := range tracks {
		current[t.ID] = true
	}
	for id := range p.liveIDs {
		if !current[id] {
			if ev, ok := p.alerts.Drop(id, frame); ok {
				result.Events = append(result.Events, ev)
			}
		}
	}
	p.liveIDs = current

	assessments := make([]risk.Assessment, 0, len(tracks))
	for _, t := range tracks {
		a := p.engine.Assess(p.input(t))
		assessments = append(assessments, a)
		result.Verdicts = append(result.Verdicts, Verdict{TrackID: t.ID, Assessment: a})
		if ev, ok := p.alerts.Observe(t.ID, frame, a); ok {
			result.Events = append(result.Events, ev)
		}
	}
	result.MaxSeverity = alert.MaxSeverity(assessments)

	if p.persist != nil {
		if err := p.persist.RecordFrame(result); err != nil {
			monitoring.Logf("[pipeline] %s frame %d: persistence failed: %v", p.cfg.View, frame, err)
		}
	}
	if p.publish != nil {
		p.publish.Publish(result)
	}
	return result
}

// input derives the risk-engine measurements for one track.
func (p *Pipeline) input(t *vision.Track) risk.Input {
	cx, cy := t.Center()
	frameCX := p.cfg.FrameWidth / 2
	frameCY := p.cfg.FrameHeight / 2

	dist, defined := vision.EstimateDistance(t.Box.H, p.cfg.Calibration)
	raw := vision.AngleFromCenter(cx, cy, frameCX, frameCY)
	angle := vision.ViewAngleOffset(raw, p.cfg.View)

	// Approaching when velocity points back toward the frame centre.
	approaching := t.VX*(cx-frameCX)+t.VY*(cy-frameCY) < 0

	return risk.Input{
		Distance:        dist,
		DistanceDefined: defined,
		Speed:           t.Speed(),
		Angle:           angle,
		Age:             t.Age,
		Approaching:     approaching,
	}
}
