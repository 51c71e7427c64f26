// Package path implements arclength-parameterized planar curves for a
// vessel to follow. Positions use the north-east convention of
// geomutils: X is north, Y is east.
package path

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ThomasNLarsen/gym-auv-3D/utils/floatutils"
	"github.com/ThomasNLarsen/gym-auv-3D/utils/geomutils"
)

// resolution of the arclength lookup table built at construction
const tableSize int = 1000

// Path is a parametric curve indexed by arclength s ∈ [0, Length()].
// Implementations must be immutable for the lifetime of an episode.
type Path interface {
	// Point returns the position of the curve at an arclength
	Point(s float64) r2.Vec

	// Direction returns the tangent heading of the curve at an
	// arclength
	Direction(s float64) float64

	// Length returns the total arclength of the curve
	Length() float64

	// Sample returns n positions evenly spaced in arclength along the
	// curve
	Sample(n int) []r2.Vec

	// ClosestPoint returns the distance from a point to the curve and
	// the arclength of the closest point on the curve
	ClosestPoint(p r2.Vec) (dist, s float64)
}

// Curve is a smooth curve through a sequence of waypoints, fit with
// Akima splines on the north and east coordinates separately and
// reparameterized by arclength through a lookup table.
//
// Curve implements the Path interface.
type Curve struct {
	north interp.AkimaSpline
	east  interp.AkimaSpline

	// ts[i] is the spline parameter whose arclength from the curve
	// start is ss[i]; both are strictly increasing
	ts []float64
	ss []float64

	length  float64
	samples []r2.Vec // Sample(tableSize) cache used by ClosestPoint
}

// NewCurve fits a curve through at least four waypoints. Waypoints are
// parameterized by normalized chord length before fitting, so they may
// form loops and self-intersections, but consecutive waypoints must be
// distinct.
func NewCurve(waypoints []r2.Vec) (*Curve, error) {
	if len(waypoints) < 4 {
		return nil, fmt.Errorf("newCurve: need at least 4 waypoints, got %v",
			len(waypoints))
	}

	// Chord-length parameterization
	params := make([]float64, len(waypoints))
	norths := make([]float64, len(waypoints))
	easts := make([]float64, len(waypoints))
	norths[0], easts[0] = waypoints[0].X, waypoints[0].Y
	for i := 1; i < len(waypoints); i++ {
		chord := geomutils.Dist(waypoints[i], waypoints[i-1])
		if chord == 0 {
			return nil, fmt.Errorf("newCurve: waypoints %v and %v coincide",
				i-1, i)
		}
		params[i] = params[i-1] + chord
		norths[i], easts[i] = waypoints[i].X, waypoints[i].Y
	}
	total := params[len(params)-1]
	for i := range params {
		params[i] /= total
	}

	c := new(Curve)
	if err := c.north.Fit(params, norths); err != nil {
		return nil, fmt.Errorf("newCurve: could not fit north spline: %v", err)
	}
	if err := c.east.Fit(params, easts); err != nil {
		return nil, fmt.Errorf("newCurve: could not fit east spline: %v", err)
	}

	c.buildArclengthTable()
	return c, nil
}

// buildArclengthTable numerically accumulates arclength over a dense
// grid of spline parameters
func (c *Curve) buildArclengthTable() {
	c.ts = make([]float64, tableSize+1)
	c.ss = make([]float64, tableSize+1)
	c.samples = make([]r2.Vec, tableSize+1)

	prev := c.at(0)
	c.samples[0] = prev
	for i := 1; i <= tableSize; i++ {
		t := float64(i) / float64(tableSize)
		p := c.at(t)
		c.ts[i] = t
		c.ss[i] = c.ss[i-1] + geomutils.Dist(p, prev)
		c.samples[i] = p
		prev = p
	}
	c.length = c.ss[tableSize]
}

// at evaluates the splines at a raw spline parameter in [0, 1]
func (c *Curve) at(t float64) r2.Vec {
	return r2.Vec{X: c.north.Predict(t), Y: c.east.Predict(t)}
}

// param converts an arclength to a spline parameter by interpolating
// in the lookup table
func (c *Curve) param(s float64) float64 {
	if c.length <= 0 {
		return 0
	}
	s = floatutils.Clip(s, 0, c.length)

	i := sort.SearchFloat64s(c.ss, s)
	if i == 0 {
		return c.ts[0]
	}
	if i > tableSize {
		return c.ts[tableSize]
	}

	ds := c.ss[i] - c.ss[i-1]
	if ds == 0 {
		return c.ts[i]
	}
	frac := (s - c.ss[i-1]) / ds
	return c.ts[i-1] + frac*(c.ts[i]-c.ts[i-1])
}

// Point returns the position of the curve at an arclength. Arclengths
// outside [0, Length()] are clamped.
func (c *Curve) Point(s float64) r2.Vec {
	return c.at(c.param(s))
}

// Direction returns the tangent heading of the curve at an arclength,
// in (-π, π] measured from north
func (c *Curve) Direction(s float64) float64 {
	h := c.length / float64(2*tableSize)
	s = floatutils.Clip(s, 0, c.length)

	// One-sided differences at the endpoints
	lo := floatutils.Clip(s-h, 0, c.length)
	hi := floatutils.Clip(s+h, 0, c.length)

	delta := r2.Sub(c.Point(hi), c.Point(lo))
	return geomutils.VecAngle(delta)
}

// Length returns the total arclength of the curve
func (c *Curve) Length() float64 {
	return c.length
}

// Sample returns n positions evenly spaced in arclength along the curve
func (c *Curve) Sample(n int) []r2.Vec {
	if n < 2 {
		n = 2
	}
	points := make([]r2.Vec, n)
	for i := range points {
		s := c.length * float64(i) / float64(n-1)
		points[i] = c.Point(s)
	}
	return points
}

// ClosestPoint returns the distance from a point to the curve and the
// arclength of the closest point on the curve. A dense-sample scan
// seeds the search so that self-intersecting curves resolve to the
// globally closest branch; the seed is then refined by golden-section
// search on the neighbouring arclength interval.
func (c *Curve) ClosestPoint(p r2.Vec) (dist, s float64) {
	best := 0
	bestDist := geomutils.Dist(p, c.samples[0])
	for i := 1; i <= tableSize; i++ {
		if d := geomutils.Dist(p, c.samples[i]); d < bestDist {
			bestDist = d
			best = i
		}
	}

	lo := c.ss[intMax(best-1, 0)]
	hi := c.ss[intMin(best+1, tableSize)]
	s = c.refineClosest(p, lo, hi)
	return geomutils.Dist(p, c.Point(s)), s
}

// refineClosest runs a golden-section search for the arclength
// minimizing the distance to p on [lo, hi]
func (c *Curve) refineClosest(p r2.Vec, lo, hi float64) float64 {
	const invPhi = 0.6180339887498949
	const iterations = 32

	a, b := lo, hi
	x1 := b - invPhi*(b-a)
	x2 := a + invPhi*(b-a)
	f1 := geomutils.Dist(p, c.Point(x1))
	f2 := geomutils.Dist(p, c.Point(x2))

	for i := 0; i < iterations; i++ {
		if f1 < f2 {
			b, x2, f2 = x2, x1, f1
			x1 = b - invPhi*(b-a)
			f1 = geomutils.Dist(p, c.Point(x1))
		} else {
			a, x1, f1 = x1, x2, f2
			x2 = a + invPhi*(b-a)
			f2 = geomutils.Dist(p, c.Point(x2))
		}
	}
	return (a + b) / 2
}

func intMin(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func intMax(a, b int) int {
	if a > b {
		return a
	}
	return b
}

var _ Path = (*Curve)(nil)
