// Command gen-detlog generates sample detection logs for testing replay.
//
// The synthetic scene puts a handful of vehicles on straight-line paths
// through the frame, one of them closing on the camera so the risk
// pipeline has something to escalate about.
package main

import (
	"flag"
	"log"
	"math/rand"
	"os"

	"github.com/banshee-data/collision.report/internal/security"
	"github.com/banshee-data/collision.report/internal/vision"
	"github.com/banshee-data/collision.report/internal/vision/detlog"
)

func main() {
	output := flag.String("o", "sample_detections.jsonl", "output path")
	frames := flag.Int("n", 300, "number of frames")
	width := flag.Float64("w", 1280, "frame width")
	height := flag.Float64("h", 720, "frame height")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	if err := security.ValidateExportPath(*output); err != nil {
		log.Fatalf("invalid output path: %v", err)
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("create output: %v", err)
	}
	defer f.Close()

	rng := rand.New(rand.NewSource(*seed))
	w := detlog.NewWriter(f)

	vehicles := []*synthVehicle{
		// Closing on the camera near the view axis: the box grows as it
		// nears, which the distance estimator reads as approach.
		{x: *width * 0.55, y: *height * 0.5, vx: -1.5, vy: 0.2, h: 40, growth: 1.012, class: vision.ClassCar},
		// Crossing traffic, roughly constant size.
		{x: *width * 0.1, y: *height * 0.35, vx: 6.0, vy: 0, h: 60, growth: 1.0, class: vision.ClassTruck},
		// Distant vehicle drifting out of frame.
		{x: *width * 0.8, y: *height * 0.3, vx: 2.5, vy: -0.5, h: 25, growth: 0.999, class: vision.ClassMotorcycle},
	}

	for i := 0; i < *frames; i++ {
		frame := detlog.Frame{Frame: int64(i + 1)}
		for _, v := range vehicles {
			if det, ok := v.step(*width, *height, rng); ok {
				frame.Detections = append(frame.Detections, det)
			}
		}
		if err := w.Write(frame); err != nil {
			log.Fatalf("write frame %d: %v", i+1, err)
		}
		if (i+1)%100 == 0 {
			log.Printf("%d/%d frames", i+1, *frames)
		}
	}

	if err := w.Flush(); err != nil {
		log.Fatalf("flush: %v", err)
	}
	log.Printf("✓ Created: %s", *output)
}

type synthVehicle struct {
	x, y, vx, vy float64
	h            float64
	growth       float64
	class        int
}

// step advances the vehicle one frame and returns its detection, with a
// little measurement jitter. Vehicles outside the frame produce nothing.
func (v *synthVehicle) step(width, height float64, rng *rand.Rand) (vision.Detection, bool) {
	v.x += v.vx
	v.y += v.vy
	v.h *= v.growth

	if v.x < 0 || v.x > width || v.y < 0 || v.y > height {
		return vision.Detection{}, false
	}

	jx := rng.NormFloat64() * 1.5
	jy := rng.NormFloat64() * 1.5
	boxW := v.h * 1.4
	return vision.Detection{
		Box: vision.BBox{
			X: v.x - boxW/2 + jx,
			Y: v.y - v.h/2 + jy,
			W: boxW,
			H: v.h,
		},
		Class:      v.class,
		Confidence: 0.6 + rng.Float64()*0.35,
	}, true
}
