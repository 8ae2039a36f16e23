// Package monitor provides the debugging HTTP interface for a running
// pipeline: live tracks, latest verdicts, recent alert events, and an
// ECharts risk timeline. Endpoints are unauthenticated debug tooling.
package monitor

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/banshee-data/collision.report/internal/version"
	"github.com/banshee-data/collision.report/internal/vision"
	"github.com/banshee-data/collision.report/internal/vision/alert"
	"github.com/banshee-data/collision.report/internal/vision/pipeline"
)

// DefaultRingSize is how many recent frame results the monitor keeps.
const DefaultRingSize = 600

// WebServer serves pipeline state over HTTP. It implements
// pipeline.PublishSink: Publish appends to an in-memory ring and never
// blocks the frame loop.
type WebServer struct {
	address string
	view    vision.View
	server  *http.Server

	mu     sync.RWMutex
	ring   []pipeline.FrameResult
	events []alert.Event
}

var _ pipeline.PublishSink = (*WebServer)(nil)

// NewWebServer creates a monitor for one pipeline view.
func NewWebServer(address string, view vision.View) *WebServer {
	ws := &WebServer{
		address: address,
		view:    view,
	}
	ws.server = &http.Server{
		Addr:    ws.address,
		Handler: ws.setupRoutes(),
	}
	return ws
}

// Publish records a frame result for serving. Part of the frame loop;
// holds the lock only for the append and trim.
func (ws *WebServer) Publish(res pipeline.FrameResult) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	ws.ring = append(ws.ring, res)
	if len(ws.ring) > DefaultRingSize {
		ws.ring = ws.ring[1:]
	}
	ws.events = append(ws.events, res.Events...)
	if len(ws.events) > DefaultRingSize {
		ws.events = ws.events[len(ws.events)-DefaultRingSize:]
	}
}

// Start begins the HTTP server and blocks until ctx is cancelled.
func (ws *WebServer) Start(ctx context.Context) error {
	go func() {
		log.Printf("Starting monitor HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start monitor server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down monitor HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("monitor server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			log.Printf("monitor server force close error: %v", err)
		}
	}
	return nil
}

func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/api/tracks", ws.handleTracks)
	mux.HandleFunc("/api/verdicts", ws.handleVerdicts)
	mux.HandleFunc("/api/events", ws.handleEvents)
	mux.HandleFunc("/debug/risk-timeline", ws.handleRiskTimeline)
	return mux
}

func (ws *WebServer) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (ws *WebServer) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[monitor] write response: %v", err)
	}
}

// latest returns the most recent frame result, if any.
func (ws *WebServer) latest() (pipeline.FrameResult, bool) {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	if len(ws.ring) == 0 {
		return pipeline.FrameResult{}, false
	}
	return ws.ring[len(ws.ring)-1], true
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	ws.writeJSON(w, map[string]string{
		"status":  "ok",
		"view":    string(ws.view),
		"version": version.Version,
	})
}

// handleTracks returns the latest frame's live tracks.
func (ws *WebServer) handleTracks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	res, ok := ws.latest()
	if !ok {
		ws.writeJSONError(w, http.StatusNotFound, "no frames processed yet")
		return
	}

	type trackJSON struct {
		ID     int64       `json:"id"`
		X      float64     `json:"x"`
		Y      float64     `json:"y"`
		VX     float64     `json:"vx"`
		VY     float64     `json:"vy"`
		Speed  float64     `json:"speed"`
		Age    int         `json:"age"`
		Misses int         `json:"misses"`
		Box    vision.BBox `json:"box"`
	}
	out := struct {
		Frame  int64       `json:"frame"`
		View   vision.View `json:"view"`
		Tracks []trackJSON `json:"tracks"`
	}{Frame: res.Frame, View: ws.view}
	for _, t := range res.Tracks {
		out.Tracks = append(out.Tracks, trackJSON{
			ID: t.ID, X: t.X, Y: t.Y, VX: t.VX, VY: t.VY,
			Speed: t.Speed(), Age: t.Age, Misses: t.Misses, Box: t.Box,
		})
	}
	ws.writeJSON(w, out)
}

// handleVerdicts returns the latest frame's risk verdicts.
func (ws *WebServer) handleVerdicts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	res, ok := ws.latest()
	if !ok {
		ws.writeJSONError(w, http.StatusNotFound, "no frames processed yet")
		return
	}
	ws.writeJSON(w, struct {
		Frame       int64              `json:"frame"`
		MaxSeverity string             `json:"max_severity"`
		Verdicts    []pipeline.Verdict `json:"verdicts"`
	}{Frame: res.Frame, MaxSeverity: res.MaxSeverity.String(), Verdicts: res.Verdicts})
}

// handleEvents returns recent alert events, newest last.
// Query params:
//
//	limit (optional, default 50)
func (ws *WebServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}

	ws.mu.RLock()
	events := ws.events
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	out := make([]alert.Event, len(events))
	copy(out, events)
	ws.mu.RUnlock()

	ws.writeJSON(w, out)
}
