// Package alert turns per-frame risk assessments into discrete alert
// events. Events are edge-triggered: a severity change in either
// direction emits exactly one event, repeated identical-severity frames
// emit none. There is no debounce on de-escalation; over-alerting is
// safer than masking a worsening-then-improving trajectory.
package alert

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/banshee-data/collision.report/internal/vision/risk"
)

// Event is one severity transition for one track.
type Event struct {
	EventID string        `json:"event_id"`
	TrackID int64         `json:"track_id"`
	Frame   int64         `json:"frame"`
	From    risk.Severity `json:"from"`
	To      risk.Severity `json:"to"`
	Label   string        `json:"label"`
	Cleared bool          `json:"cleared"`
}

func (e Event) String() string {
	if e.Cleared {
		return fmt.Sprintf("track %d frame %d: cleared (%s -> none)", e.TrackID, e.Frame, e.From)
	}
	return fmt.Sprintf("track %d frame %d: %s -> %s (%s)", e.TrackID, e.Frame, e.From, e.To, e.Label)
}

// Coordinator holds the last emitted severity per track and applies the
// edge-trigger rule. One coordinator per camera view; not safe for
// concurrent use, matching the tracker it sits behind.
type Coordinator struct {
	last map[int64]risk.Severity
}

// NewCoordinator creates an empty coordinator.
func NewCoordinator() *Coordinator {
	return &Coordinator{last: make(map[int64]risk.Severity)}
}

// Observe feeds one assessment for a live track. Returns the transition
// event and true when the severity changed since the last frame;
// unchanged severity updates nothing and emits nothing.
func (c *Coordinator) Observe(trackID, frame int64, a risk.Assessment) (Event, bool) {
	prev := c.last[trackID]
	if a.Severity == prev {
		return Event{}, false
	}
	c.last[trackID] = a.Severity
	return Event{
		EventID: uuid.NewString(),
		TrackID: trackID,
		Frame:   frame,
		From:    prev,
		To:      a.Severity,
		Label:   a.Label(),
	}, true
}

// Drop retires a destroyed track. Emits a final cleared event when the
// last known severity was not None.
func (c *Coordinator) Drop(trackID, frame int64) (Event, bool) {
	prev, ok := c.last[trackID]
	delete(c.last, trackID)
	if !ok || prev == risk.SeverityNone {
		return Event{}, false
	}
	return Event{
		EventID: uuid.NewString(),
		TrackID: trackID,
		Frame:   frame,
		From:    prev,
		To:      risk.SeverityNone,
		Cleared: true,
	}, true
}

// Severity returns the last emitted severity for a track.
func (c *Coordinator) Severity(trackID int64) risk.Severity {
	return c.last[trackID]
}

// MaxSeverity returns the worst severity across a frame's assessments.
func MaxSeverity(assessments []risk.Assessment) risk.Severity {
	max := risk.SeverityNone
	for _, a := range assessments {
		if a.Severity > max {
			max = a.Severity
		}
	}
	return max
}
