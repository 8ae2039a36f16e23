// Command track-plot renders the smoothed trajectories of a recorded
// run to a PNG using gonum/plot. Each track becomes one line in frame
// pixel coordinates, with the Y axis flipped to match image orientation.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/collision.report/internal/security"
	storage "github.com/banshee-data/collision.report/internal/vision/storage/sqlite"
)

var palette = []color.RGBA{
	{R: 0xe6, G: 0x19, B: 0x4b, A: 0xff},
	{R: 0x3c, G: 0xb4, B: 0x4b, A: 0xff},
	{R: 0x43, G: 0x63, B: 0xd8, A: 0xff},
	{R: 0xf5, G: 0x82, B: 0x31, A: 0xff},
	{R: 0x91, G: 0x1e, B: 0xb4, A: 0xff},
	{R: 0x46, G: 0xf0, B: 0xf0, A: 0xff},
}

func main() {
	dbPath := flag.String("db", "collision_results.db", "Path to results database")
	runID := flag.String("run", "", "Run ID (default: most recent)")
	output := flag.String("o", "tracks.png", "Output PNG path")
	frameH := flag.Float64("h", 720, "Frame height, for Y-axis flip")
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

	summaries, err := store.GetTrackSummaries(id)
	if err != nil {
		log.Fatalf("Failed to load track summaries: %v", err)
	}
	if len(summaries) == 0 {
		log.Fatalf("Run %s has no tracks", id)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Track trajectories (run %s)", id)
	p.X.Label.Text = "x (px)"
	p.Y.Label.Text = "y (px, image orientation)"

	plotted := 0
	for _, s := range summaries {
		verdicts, err := store.TrackTrajectory(id, s.TrackID)
		if err != nil {
			log.Fatalf("Failed to load trajectory for track %d: %v", s.TrackID, err)
		}
		if len(verdicts) < 2 {
			continue
		}

		pts := make(plotter.XYs, 0, len(verdicts))
		for _, v := range verdicts {
			pts = append(pts, plotter.XY{X: v.X, Y: *frameH - v.Y})
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			log.Fatalf("Failed to build line for track %d: %v", s.TrackID, err)
		}
		line.Width = vg.Points(1.5)
		line.Color = palette[plotted%len(palette)]
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("track %d (%s)", s.TrackID, s.LastSeverity), line)
		plotted++
	}

	if plotted == 0 {
		log.Fatalf("Run %s has no tracks with enough observations to plot", id)
	}

	if err := p.Save(10*vg.Inch, 6*vg.Inch, *output); err != nil {
		log.Fatalf("Failed to save plot: %v", err)
	}
	log.Printf("✓ Plot: %s (%d tracks)", *output, plotted)
}
