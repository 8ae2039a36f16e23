// Command risk-report renders an offline HTML report for a recorded run:
// the per-frame risk timeline and the alert event log, charted with
// go-echarts.
//
// Usage:
//
//	go run ./cmd/tools/risk-report -db collision_results.db [-run RUN_ID] [-o report.html]
//
// With no -run flag the most recent run is reported.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/collision.report/internal/security"
	storage "github.com/banshee-data/collision.report/internal/vision/storage/sqlite"
)

func main() {
	dbPath := flag.String("db", "collision_results.db", "Path to results database")
	runID := flag.String("run", "", "Run ID (default: most recent)")
	output := flag.String("o", "report.html", "Output HTML path")
	flag.Parse()

	if err := security.ValidateExportPath(*output); err != nil {
		log.Fatalf("Invalid output path: %v", err)
	}

	store, err := storage.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open results database: %v", err)
	}
	defer store.Close()

	id := *runID
	if id == "" {
		runs, err := store.ListRuns(1)
		if err != nil || len(runs) == 0 {
			log.Fatalf("No runs found in %s", *dbPath)
		}
		id = runs[0].RunID
	}

	run, err := store.GetRun(id)
	if err != nil {
		log.Fatalf("Failed to load run: %v", err)
	}

	series, err := store.FrameSeveritySeries(id)
	if err != nil {
		log.Fatalf("Failed to load severity series: %v", err)
	}
	events, err := store.GetAlertEvents(id)
	if err != nil {
		log.Fatalf("Failed to load alert events: %v", err)
	}
	tracks, err := store.GetTrackSummaries(id)
	if err != nil {
		log.Fatalf("Failed to load track summaries: %v", err)
	}

	page := components.NewPage()
	page.SetPageTitle("Collision Risk Report")
	page.AddCharts(timelineChart(run, series), eventChart(events))

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create output: %v", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		log.Fatalf("Failed to render report: %v", err)
	}

	log.Printf("✓ Report: %s (run=%s view=%s frames=%d tracks=%d events=%d)",
		*output, run.RunID, run.View, run.Frames, len(tracks), len(events))
}

func timelineChart(run storage.Run, series []storage.FramePoint) *charts.Line {
	frames := make([]string, 0, len(series))
	scores := make([]opts.LineData, 0, len(series))
	severities := make([]opts.LineData, 0, len(series))
	for _, p := range series {
		frames = append(frames, strconv.FormatInt(p.Frame, 10))
		scores = append(scores, opts.LineData{Value: p.MaxScore})
		severities = append(severities, opts.LineData{Value: int(p.MaxSeverity)})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Risk Timeline",
			Subtitle: fmt.Sprintf("run=%s view=%s", run.RunID, run.View),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "frame"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "max score / severity", Min: 0}),
	)
	line.SetXAxis(frames).
		AddSeries("max score", scores).
		AddSeries("max severity", severities,
			charts.WithLineChartOpts(opts.LineChart{Step: "end"}))
	return line
}

func eventChart(events []storage.StoredEvent) *charts.Scatter {
	data := make([]opts.ScatterData, 0, len(events))
	for _, e := range events {
		data = append(data, opts.ScatterData{
			Value: []interface{}{e.Frame, int(e.To), e.Label},
		})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Alert Events", Subtitle: fmt.Sprintf("%d transitions", len(events))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "frame"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "severity", Min: 0, Max: 4}),
	)
	scatter.AddSeries("events", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))
	return scatter
}
