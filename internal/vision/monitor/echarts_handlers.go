package monitor

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/collision.report/internal/vision/pipeline"
)

// handleRiskTimeline renders a quick line chart (HTML) of the recent
// per-frame maximum risk score and severity using go-echarts. This is a
// debugging-only endpoint (no auth) to eyeball the risk trajectory
// without a full UI.
// Query params:
//   - frames (optional; default all buffered) to reduce payload size
func (ws *WebServer) handleRiskTimeline(w http.ResponseWriter, r *http.Request) {
	ws.mu.RLock()
	ring := make([]pipeline.FrameResult, len(ws.ring))
	copy(ring, ws.ring)
	ws.mu.RUnlock()

	if len(ring) == 0 {
		ws.writeJSONError(w, http.StatusNotFound, "no frames buffered")
		return
	}

	if f := r.URL.Query().Get("frames"); f != "" {
		if v, err := strconv.Atoi(f); err == nil && v > 0 && v < len(ring) {
			ring = ring[len(ring)-v:]
		}
	}

	frames := make([]string, 0, len(ring))
	scores := make([]opts.LineData, 0, len(ring))
	severities := make([]opts.LineData, 0, len(ring))
	for _, res := range ring {
		var maxScore float64
		for _, v := range res.Verdicts {
			if v.Assessment.Score > maxScore {
				maxScore = v.Assessment.Score
			}
		}
		frames = append(frames, strconv.FormatInt(res.Frame, 10))
		scores = append(scores, opts.LineData{Value: maxScore})
		severities = append(severities, opts.LineData{Value: int(res.MaxSeverity)})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Collision Risk Timeline", Theme: "dark", Width: "1200px", Height: "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Risk Timeline",
			Subtitle: fmt.Sprintf("view=%s frames=%d", ws.view, len(ring)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "frame"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "max score / severity", Min: 0}),
	)
	line.SetXAxis(frames).
		AddSeries("max score", scores).
		AddSeries("max severity", severities,
			charts.WithLineChartOpts(opts.LineChart{Step: "end"}))

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
