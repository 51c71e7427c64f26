package auv

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ThomasNLarsen/gym-auv-3D/environment/auv/path"
	"github.com/ThomasNLarsen/gym-auv-3D/utils/floatutils"
	"github.com/ThomasNLarsen/gym-auv-3D/utils/geomutils"
)

// progressTracker maps the vessel's continuous 2D position to an
// arclength coordinate on the path.
//
// Pure closest-point tracking fails on self-intersecting and looping
// paths, where the globally closest point can jump to a far branch.
// Pure forward integration of speed along the path fails when the
// vessel deviates sharply, e.g. when it cuts a corner and re-joins the
// path ahead of its integrated arclength. The tracker therefore
// switches between the two: when the vessel is close to the path, or
// well aligned with the tangent at its closest point, the closest
// point is trusted directly; otherwise progress advances by the speed
// component along the path tangent at the last known maximum progress.
type progressTracker struct {
	maxClosestPointDistance     float64
	maxClosestPointHeadingError float64
	tStepSize                   float64
}

// progressUpdate carries everything one tracking step computed, so
// that observation and reward code never re-derives geometry.
type progressUpdate struct {
	Progress    float64
	MaxProgress float64

	ClosestArclength    float64
	ClosestDistance     float64
	ClosestHeadingError float64
	CrossTrackError     float64 // signed: positive when right of path
	CoursePathAngle     float64
}

func newProgressTracker(cfg Config) progressTracker {
	return progressTracker{
		maxClosestPointDistance:     cfg.MaxClosestPointDistance,
		maxClosestPointHeadingError: cfg.MaxClosestPointHeadingError,
		tStepSize:                   cfg.TStepSize,
	}
}

// update computes the new progress along the path from the vessel pose
// and the previous maximum progress. The returned MaxProgress is
// non-decreasing across calls within an episode.
func (p progressTracker) update(position r2.Vec, course, speed float64,
	pa path.Path, prevMaxProgress float64) progressUpdate {

	if pa.Length() <= 0 {
		// Degenerate path: no direction is defined anywhere
		return progressUpdate{MaxProgress: prevMaxProgress}
	}

	closestDistance, closestArclength := pa.ClosestPoint(position)
	closestHeadingError := geomutils.Princip(
		pa.Direction(closestArclength) - course)
	coursePathAngle := geomutils.Princip(
		pa.Direction(prevMaxProgress) - course)

	var progress float64
	if closestDistance < p.maxClosestPointDistance ||
		math.Abs(closestHeadingError) < p.maxClosestPointHeadingError {
		// The vessel is close to the path or aligned with it, so the
		// closest point is unambiguous. This branch also recovers from
		// corner cutting, where forward integration lags reality.
		progress = closestArclength
	} else {
		dprog := math.Cos(coursePathAngle) * speed * p.tStepSize
		progress = floatutils.Clip(prevMaxProgress+dprog, 0, pa.Length())
	}

	return progressUpdate{
		Progress:            progress,
		MaxProgress:         math.Max(prevMaxProgress, progress),
		ClosestArclength:    closestArclength,
		ClosestDistance:     closestDistance,
		ClosestHeadingError: closestHeadingError,
		CrossTrackError:     signedCrossTrack(position, pa, closestArclength, closestDistance),
		CoursePathAngle:     coursePathAngle,
	}
}

// signedCrossTrack gives the closest-point distance a sign: positive
// when the vessel is starboard of the path direction
func signedCrossTrack(position r2.Vec, pa path.Path,
	closestArclength, closestDistance float64) float64 {

	tangent := geomutils.Heading(pa.Direction(closestArclength))
	offset := r2.Sub(position, pa.Point(closestArclength))
	if tangent.X*offset.Y-tangent.Y*offset.X < 0 {
		return -closestDistance
	}
	return closestDistance
}
