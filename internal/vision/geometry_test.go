package vision

import (
	"math"
	"testing"
)

func TestBBoxCenter(t *testing.T) {
	b := BBox{X: 100, Y: 200, W: 40, H: 60}
	cx, cy := b.Center()
	if cx != 120 || cy != 230 {
		t.Errorf("expected center (120, 230), got (%v, %v)", cx, cy)
	}
}

func TestBBoxValid(t *testing.T) {
	tests := []struct {
		name string
		box  BBox
		want bool
	}{
		{"normal", BBox{X: 0, Y: 0, W: 10, H: 10}, true},
		{"zero width", BBox{X: 0, Y: 0, W: 0, H: 10}, false},
		{"zero height", BBox{X: 0, Y: 0, W: 10, H: 0}, false},
		{"negative width", BBox{X: 0, Y: 0, W: -5, H: 10}, false},
		{"negative height", BBox{X: 0, Y: 0, W: 10, H: -5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.box.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEstimateDistance(t *testing.T) {
	cal := DefaultCalibration()

	// distance = (1.8 * 700) / (h * 50)
	d, ok := EstimateDistance(50, cal)
	if !ok {
		t.Fatal("expected defined distance for positive height")
	}
	want := (1.8 * 700) / (50 * 50.0)
	if math.Abs(d-want) > 1e-9 {
		t.Errorf("expected distance %v, got %v", want, d)
	}
}

func TestEstimateDistanceDegenerate(t *testing.T) {
	cal := DefaultCalibration()
	for _, h := range []float64{0, -1} {
		if _, ok := EstimateDistance(h, cal); ok {
			t.Errorf("expected undefined distance for height %v", h)
		}
	}
}

func TestEstimateDistanceClamped(t *testing.T) {
	cal := DefaultCalibration()

	// Tiny box: implausibly far.
	d, ok := EstimateDistance(0.01, cal)
	if !ok || d != MaxEstimatedDistanceM {
		t.Errorf("expected far clamp %v, got %v (ok=%v)", MaxEstimatedDistanceM, d, ok)
	}

	// Enormous box: implausibly close.
	d, ok = EstimateDistance(1e6, cal)
	if !ok || d != MinEstimatedDistanceM {
		t.Errorf("expected near clamp %v, got %v (ok=%v)", MinEstimatedDistanceM, d, ok)
	}
}

func TestAngleFromCenter(t *testing.T) {
	tests := []struct {
		name   string
		cx, cy float64
		want   float64
	}{
		{"right", 740, 360, 0},
		{"below", 640, 460, 90}, // +y is down in image coordinates
		{"left", 540, 360, 180},
		{"above", 640, 260, 270},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AngleFromCenter(tt.cx, tt.cy, 640, 360)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected %v degrees, got %v", tt.want, got)
			}
		})
	}
}

func TestAngleFromCenternormalised(t *testing.T) {
	got := AngleFromCenter(640, 260, 640, 360) // atan2 yields -90
	if got < 0 || got >= 360 {
		t.Errorf("angle %v not normalised to [0,360)", got)
	}
}

func TestViewAngleOffset(t *testing.T) {
	tests := []struct {
		name  string
		angle float64
		view  View
		want  float64
	}{
		{"front on axis", 0, ViewFront, 0},
		{"front slightly off", 10, ViewFront, 10},
		{"front wrapped", 350, ViewFront, 10},
		{"front opposite", 180, ViewFront, 180},
		{"back flips", 180, ViewBack, 0},
		{"back off axis", 170, ViewBack, 10},
		{"left axis", 270, ViewLeft, 0},
		{"right axis", 90, ViewRight, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ViewAngleOffset(tt.angle, tt.view)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ViewAngleOffset(%v, %s) = %v, want %v", tt.angle, tt.view, got, tt.want)
			}
		})
	}
}

func TestViewAngleOffsetRange(t *testing.T) {
	for _, view := range []View{ViewFront, ViewBack, ViewLeft, ViewRight} {
		for a := 0.0; a < 360; a += 7.3 {
			got := ViewAngleOffset(a, view)
			if got < 0 || got > 180 {
				t.Fatalf("ViewAngleOffset(%v, %s) = %v out of [0,180]", a, view, got)
			}
		}
	}
}
