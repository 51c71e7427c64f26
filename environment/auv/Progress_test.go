package auv

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ThomasNLarsen/gym-auv-3D/environment/auv/path"
)

func TestProgressTrustsClosestPointOnPath(t *testing.T) {
	curve := straightNorthCurve(t, 400)
	tracker := newProgressTracker(testConfig())

	// On the path, aligned with it: the closest point is trusted
	update := tracker.update(r2.Vec{X: 150, Y: 0}, 0, 1.5, curve, 100)
	if math.Abs(update.Progress-150) > 1 {
		t.Errorf("progress = %v, want 150 (closest arclength)",
			update.Progress)
	}
	if math.Abs(update.MaxProgress-150) > 1 {
		t.Errorf("max progress = %v, want 150", update.MaxProgress)
	}
}

func TestProgressHandlesCornerCutting(t *testing.T) {
	curve := straightNorthCurve(t, 400)
	tracker := newProgressTracker(testConfig())

	// The vessel re-joined the path well ahead of the integrated
	// progress. Close to the path, the closest point wins even though
	// forward projection would lag at ~100.
	update := tracker.update(r2.Vec{X: 250, Y: 1}, 0, 1.5, curve, 100)
	if math.Abs(update.Progress-250) > 1 {
		t.Errorf("progress after corner cut = %v, want 250", update.Progress)
	}
}

func TestProgressForwardProjectionWhenOffPath(t *testing.T) {
	cfg := testConfig()
	curve := straightNorthCurve(t, 400)
	tracker := newProgressTracker(cfg)

	// Far starboard of the path and steering hard across it: neither
	// closeness criterion holds, so progress advances by the speed
	// component along the tangent at the previous max progress.
	course := 1.0 // heading error 1 rad > cfg.MaxClosestPointHeadingError
	speed := 2.0
	update := tracker.update(r2.Vec{X: 100, Y: 30}, course, speed, curve, 100)

	want := 100 + math.Cos(1.0)*speed*cfg.TStepSize
	if math.Abs(update.Progress-want) > 1e-9 {
		t.Errorf("projected progress = %v, want %v", update.Progress, want)
	}
}

func TestMaxProgressNonDecreasing(t *testing.T) {
	curve := straightNorthCurve(t, 400)
	tracker := newProgressTracker(testConfig())

	// Moving backwards along the path: progress drops but the maximum
	// must not
	update := tracker.update(r2.Vec{X: 80, Y: 0}, 0, 1.5, curve, 120)
	if update.Progress > 81 {
		t.Errorf("progress = %v, want ~80", update.Progress)
	}
	if update.MaxProgress < 120 {
		t.Errorf("max progress decreased to %v from 120", update.MaxProgress)
	}
}

func TestProgressClampedToPathLength(t *testing.T) {
	cfg := testConfig()
	curve := straightNorthCurve(t, 400)
	tracker := newProgressTracker(cfg)

	// Off the path, aligned forward, with the previous maximum at the
	// end: the projection must clamp to the path length
	update := tracker.update(r2.Vec{X: 399, Y: 30}, 1.0, 2.0, curve, 399.9)
	if update.Progress > curve.Length() {
		t.Errorf("progress %v exceeds path length %v", update.Progress,
			curve.Length())
	}
}

// degeneratePath has no extent at all
type degeneratePath struct{}

func (degeneratePath) Point(float64) r2.Vec               { return r2.Vec{} }
func (degeneratePath) Direction(float64) float64          { return 0 }
func (degeneratePath) Length() float64                    { return 0 }
func (degeneratePath) Sample(n int) []r2.Vec              { return make([]r2.Vec, n) }
func (degeneratePath) ClosestPoint(r2.Vec) (s, d float64) { return 0, 0 }

var _ path.Path = degeneratePath{}

func TestDegeneratePathYieldsZeroProgress(t *testing.T) {
	tracker := newProgressTracker(testConfig())

	update := tracker.update(r2.Vec{X: 1, Y: 1}, 0.5, 1.5, degeneratePath{}, 0)
	if update.Progress != 0 {
		t.Errorf("progress on degenerate path = %v, want 0", update.Progress)
	}
	if update.MaxProgress != 0 {
		t.Errorf("max progress on degenerate path = %v, want 0",
			update.MaxProgress)
	}
}

func TestHeadingErrorsWrapped(t *testing.T) {
	curve := straightNorthCurve(t, 400)
	tracker := newProgressTracker(testConfig())

	for _, course := range []float64{0, 1, -1, 3, -3, math.Pi} {
		update := tracker.update(r2.Vec{X: 100, Y: 3}, course, 1.5, curve, 50)

		for name, angle := range map[string]float64{
			"closest heading error": update.ClosestHeadingError,
			"course path angle":     update.CoursePathAngle,
		} {
			if angle <= -math.Pi || angle > math.Pi {
				t.Errorf("%v = %v outside (-π, π] for course %v",
					name, angle, course)
			}
		}
	}
}
