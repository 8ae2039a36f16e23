package monitor

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/banshee-data/collision.report/internal/vision"
	"github.com/banshee-data/collision.report/internal/vision/alert"
	"github.com/banshee-data/collision.report/internal/vision/pipeline"
	"github.com/banshee-data/collision.report/internal/vision/risk"
)

func testFrameResult(frame int64) pipeline.FrameResult {
	return pipeline.FrameResult{
		Frame: frame,
		Tracks: []*vision.Track{{
			ID: 1, X: 640, Y: 360, VX: 3,
			Box: vision.BBox{X: 620, Y: 340, W: 40, H: 40},
			Age: int(frame),
		}},
		Verdicts: []pipeline.Verdict{{
			TrackID: 1,
			Assessment: risk.Assessment{
				Distance: 12, DistanceDefined: true, Speed: 3, Angle: 20,
				Score: 0.45, Severity: risk.SeverityMedium,
				Factors:         risk.FactorSet{},
				TimeToCollision: math.Inf(1),
			},
		}},
		MaxSeverity: risk.SeverityMedium,
	}
}

func TestHandleHealth(t *testing.T) {
	ws := NewWebServer("127.0.0.1:0", vision.ViewFront)

	rec := httptest.NewRecorder()
	ws.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["view"] != "front" {
		t.Errorf("unexpected health body %v", body)
	}
}

func TestHandleTracksEmpty(t *testing.T) {
	ws := NewWebServer("127.0.0.1:0", vision.ViewFront)

	rec := httptest.NewRecorder()
	ws.handleTracks(rec, httptest.NewRequest(http.MethodGet, "/api/tracks", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 before first frame, got %d", rec.Code)
	}
}

func TestHandleTracks(t *testing.T) {
	ws := NewWebServer("127.0.0.1:0", vision.ViewFront)
	ws.Publish(testFrameResult(1))
	ws.Publish(testFrameResult(2))

	rec := httptest.NewRecorder()
	ws.handleTracks(rec, httptest.NewRequest(http.MethodGet, "/api/tracks", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var body struct {
		Frame  int64 `json:"frame"`
		Tracks []struct {
			ID    int64   `json:"id"`
			Speed float64 `json:"speed"`
		} `json:"tracks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Frame != 2 {
		t.Errorf("expected latest frame 2, got %d", body.Frame)
	}
	if len(body.Tracks) != 1 || body.Tracks[0].ID != 1 {
		t.Errorf("unexpected tracks %+v", body.Tracks)
	}
	if body.Tracks[0].Speed != 3 {
		t.Errorf("speed = %v, want 3", body.Tracks[0].Speed)
	}
}

func TestHandleTracksMethodNotAllowed(t *testing.T) {
	ws := NewWebServer("127.0.0.1:0", vision.ViewFront)

	rec := httptest.NewRecorder()
	ws.handleTracks(rec, httptest.NewRequest(http.MethodPost, "/api/tracks", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestHandleVerdicts(t *testing.T) {
	ws := NewWebServer("127.0.0.1:0", vision.ViewFront)
	ws.Publish(testFrameResult(1))

	rec := httptest.NewRecorder()
	ws.handleVerdicts(rec, httptest.NewRequest(http.MethodGet, "/api/verdicts", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"max_severity":"medium"`) {
		t.Errorf("expected named max severity in %s", body)
	}
	// The infinite TTC must not break encoding.
	if !strings.Contains(body, `"time_to_collision_s":null`) {
		t.Errorf("expected null TTC in %s", body)
	}
}

func TestHandleEventsLimit(t *testing.T) {
	ws := NewWebServer("127.0.0.1:0", vision.ViewFront)

	for f := int64(1); f <= 5; f++ {
		res := testFrameResult(f)
		res.Events = []alert.Event{{
			EventID: "ev", TrackID: 1, Frame: f,
			From: risk.SeverityNone, To: risk.SeverityMedium,
		}}
		ws.Publish(res)
	}

	rec := httptest.NewRecorder()
	ws.handleEvents(rec, httptest.NewRequest(http.MethodGet, "/api/events?limit=2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var events []alert.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &events); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Frame != 4 || events[1].Frame != 5 {
		t.Errorf("expected the two newest events, got frames %d and %d",
			events[0].Frame, events[1].Frame)
	}
}

func TestPublishRingBounded(t *testing.T) {
	ws := NewWebServer("127.0.0.1:0", vision.ViewFront)

	for f := int64(1); f <= DefaultRingSize+50; f++ {
		ws.Publish(testFrameResult(f))
	}

	ws.mu.RLock()
	n := len(ws.ring)
	oldest := ws.ring[0].Frame
	ws.mu.RUnlock()
	if n != DefaultRingSize {
		t.Errorf("ring size = %d, want %d", n, DefaultRingSize)
	}
	if oldest != 51 {
		t.Errorf("oldest buffered frame = %d, want 51", oldest)
	}
}

func TestHandleRiskTimeline(t *testing.T) {
	ws := NewWebServer("127.0.0.1:0", vision.ViewFront)

	rec := httptest.NewRecorder()
	ws.handleRiskTimeline(rec, httptest.NewRequest(http.MethodGet, "/debug/risk-timeline", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 with no frames, got %d", rec.Code)
	}

	for f := int64(1); f <= 10; f++ {
		ws.Publish(testFrameResult(f))
	}
	rec = httptest.NewRecorder()
	ws.handleRiskTimeline(rec, httptest.NewRequest(http.MethodGet, "/debug/risk-timeline?frames=5", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q, want text/html", ct)
	}
	if !strings.Contains(rec.Body.String(), "Risk Timeline") {
		t.Error("rendered chart missing title")
	}
}
