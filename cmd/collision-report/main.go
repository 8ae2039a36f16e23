// Command collision-report replays a recorded detection log through the
// tracking and risk pipeline, persists verdicts and alert events to a
// results database, and serves the monitor HTTP endpoints while running.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/collision.report/internal/config"
	"github.com/banshee-data/collision.report/internal/version"
	"github.com/banshee-data/collision.report/internal/vision"
	"github.com/banshee-data/collision.report/internal/vision/detlog"
	"github.com/banshee-data/collision.report/internal/vision/monitor"
	"github.com/banshee-data/collision.report/internal/vision/pipeline"
	storage "github.com/banshee-data/collision.report/internal/vision/storage/sqlite"
)

const defaultDBFile = "collision_results.db"

var (
	logPath    = flag.String("log", "", "Path to detection log (JSONL, required)")
	dbPath     = flag.String("db", defaultDBFile, "Path to results database")
	configPath = flag.String("config", "", "Path to tuning config JSON (optional)")
	view       = flag.String("view", "front", "Camera view: front, back, left, right")
	listen     = flag.String("listen", ":8080", "Monitor listen address")
	fast       = flag.Bool("fast", false, "Replay as fast as possible instead of real time")
	migrateDir = flag.String("migrations", "", "Apply migrations from this directory before starting")
	showVer    = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("collision-report %s (%s, built %s)\n",
			version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if *logPath == "" {
		log.Fatal("Error: -log flag is required")
	}

	tuning := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		tuning, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	store, err := storage.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open results database: %v", err)
	}
	defer store.Close()

	if *migrateDir != "" {
		if err := store.MigrateUp(*migrateDir); err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
	}

	configJSON, _ := json.Marshal(tuning)
	run, err := store.CreateRun(vision.View(*view), string(configJSON))
	if err != nil {
		log.Fatalf("Failed to create run: %v", err)
	}
	log.Printf("Run %s (view=%s, db=%s)", run.RunID, *view, *dbPath)

	ws := monitor.NewWebServer(*listen, vision.View(*view))

	p, err := pipeline.New(pipeline.Config{
		View:        vision.View(*view),
		FrameWidth:  tuning.GetFrameWidth(),
		FrameHeight: tuning.GetFrameHeight(),
		Tracker:     tuning.TrackerConfig(),
		Risk:        tuning.RiskConfig(),
		Calibration: tuning.Calibration(),
	}, store.NewRecorder(run.RunID), ws)
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ws.Start(ctx); err != nil {
			log.Printf("monitor server: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Println("interrupted, stopping replay")
		cancel()
	}()

	if err := replay(ctx, p, *logPath, tuning.GetFrameRate(), *fast); err != nil {
		log.Printf("replay: %v", err)
	}

	log.Printf("Processed %d frames (%d detections rejected, %d covariance resets)",
		p.Tracker().Frame(), p.Tracker().RejectedDetections(), p.Tracker().CovarianceResets())

	cancel()
	wg.Wait()
}

// replay feeds the detection log through the pipeline, pacing frames at
// the configured rate unless fast is set.
func replay(ctx context.Context, p *pipeline.Pipeline, path string, fps float64, fast bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open detection log: %w", err)
	}
	defer f.Close()

	interval := time.Duration(float64(time.Second) / fps)
	reader := detlog.NewReader(f)

	var ticker *time.Ticker
	if !fast {
		ticker = time.NewTicker(interval)
		defer ticker.Stop()
	}

	for {
		frame, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		res := p.ProcessFrame(frame.Detections)
		for _, ev := range res.Events {
			log.Printf("[alert] %s", ev)
		}

		if fast {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			continue
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
