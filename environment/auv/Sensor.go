package auv

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ThomasNLarsen/gym-auv-3D/utils/floatutils"
	"github.com/ThomasNLarsen/gym-auv-3D/utils/geomutils"
)

// SensorArray is a fixed fan of range sensors spanning the forward
// half-plane of the vessel. Sensor angles are computed once at
// construction; measurements are recomputed every simulation step.
//
// The i-th of n sensors points at -π/2 + (i+1)/(n+1)·π relative to the
// vessel course, so the fan covers (-π/2, π/2) exclusive of the beam
// directions. Sensors are grouped into contiguous angular sectors and
// each sector reports one obstacle-closeness and one path-closeness
// feature, both in [0, 1].
type SensorArray struct {
	angles    []float64
	nSectors  int
	perSector int
	maxRange  float64

	// Last measurements, per sensor, kept for rendering and debugging.
	// A sensor that hit nothing records maxRange.
	obstDistances []float64
	pathDistances []float64
}

// NewSensorArray constructs the fan geometry
func NewSensorArray(nSectors, sensorsPerSector int,
	maxRange float64) *SensorArray {

	n := nSectors * sensorsPerSector
	angles := make([]float64, n)
	for i := range angles {
		angles[i] = -math.Pi/2 + float64(i+1)/float64(n+1)*math.Pi
	}

	return &SensorArray{
		angles:        angles,
		nSectors:      nSectors,
		perSector:     sensorsPerSector,
		maxRange:      maxRange,
		obstDistances: make([]float64, n),
		pathDistances: make([]float64, n),
	}
}

// Sense casts every sensor ray against the nearby obstacles and the
// path polyline and aggregates per-sector closeness features. The
// returned slices have length NSectors; obstacle and path closeness
// are 1 at zero distance, 0 at maxRange or beyond, and a sector with
// no hits among its member sensors reports 0.
//
// pathPoints may be nil to disable path sensing.
func (s *SensorArray) Sense(position r2.Vec, course float64,
	obstacles []Obstacle, pathPoints []r2.Vec) (obstCloseness,
	pathCloseness []float64) {

	nearby := nearbyObstacles(position, obstacles, s.maxRange)
	segments := s.nearbySegments(position, pathPoints)

	for i, relative := range s.angles {
		direction := geomutils.Heading(geomutils.Princip(course + relative))
		s.obstDistances[i] = s.castObstacles(position, direction, nearby)
		s.pathDistances[i] = s.castSegments(position, direction, segments)
	}

	return s.aggregate(s.obstDistances), s.aggregate(s.pathDistances)
}

// Distances returns the latest per-sensor obstacle intercept
// distances, one per sensor angle, with maxRange meaning no hit
func (s *SensorArray) Distances() []float64 {
	return s.obstDistances
}

// Angles returns the fixed sensor angles relative to the vessel course
func (s *SensorArray) Angles() []float64 {
	return s.angles
}

// aggregate reduces per-sensor distances to per-sector closeness by
// taking the minimum distance among the member sensors of each sector
func (s *SensorArray) aggregate(distances []float64) []float64 {
	features := make([]float64, s.nSectors)
	for sector := range features {
		min := s.maxRange
		for i := 0; i < s.perSector; i++ {
			min = math.Min(min, distances[sector*s.perSector+i])
		}
		features[sector] = s.closeness(min)
	}
	return features
}

// closeness maps a distance to [0, 1], 1 meaning touching
func (s *SensorArray) closeness(distance float64) float64 {
	return floatutils.Clip(1-distance/s.maxRange, 0, 1)
}

// castObstacles returns the distance along a ray to the nearest
// obstacle circle, or maxRange if none intersects within range
func (s *SensorArray) castObstacles(origin, direction r2.Vec,
	obstacles []Obstacle) float64 {

	min := s.maxRange
	for _, obst := range obstacles {
		if d, hit := rayCircle(origin, direction, obst, s.maxRange); hit {
			min = math.Min(min, d)
		}
	}
	return min
}

// castSegments returns the distance along a ray to the nearest path
// segment, or maxRange if none intersects within range
func (s *SensorArray) castSegments(origin, direction r2.Vec,
	segments [][2]r2.Vec) float64 {

	min := s.maxRange
	for _, seg := range segments {
		if d, hit := raySegment(origin, direction, seg[0], seg[1]); hit {
			min = math.Min(min, d)
		}
	}
	return min
}

// nearbySegments filters the path polyline to segments that could lie
// within sensing range, bounding the per-step intersection cost
func (s *SensorArray) nearbySegments(position r2.Vec,
	points []r2.Vec) [][2]r2.Vec {

	if len(points) < 2 {
		return nil
	}

	segments := make([][2]r2.Vec, 0)
	for i := 1; i < len(points); i++ {
		segLen := geomutils.Dist(points[i-1], points[i])
		if geomutils.Dist(position, points[i-1]) <= s.maxRange+segLen {
			segments = append(segments, [2]r2.Vec{points[i-1], points[i]})
		}
	}
	return segments
}

// rayCircle intersects a ray with a circle, returning the smallest
// non-negative distance along the ray within maxRange
func rayCircle(origin, direction r2.Vec, obst Obstacle,
	maxRange float64) (float64, bool) {

	// Solve |origin + t·direction - center|² = r² for t ≥ 0
	oc := r2.Sub(origin, obst.Position)
	b := 2 * (direction.X*oc.X + direction.Y*oc.Y)
	c := oc.X*oc.X + oc.Y*oc.Y - obst.Radius*obst.Radius

	discriminant := b*b - 4*c
	if discriminant < 0 {
		return 0, false
	}

	sqrt := math.Sqrt(discriminant)
	t := (-b - sqrt) / 2
	if t < 0 {
		// Ray origin inside the circle, or circle behind the origin
		t = (-b + sqrt) / 2
	}
	if t < 0 || t > maxRange {
		return 0, false
	}
	return t, true
}

// raySegment intersects a ray with a line segment, returning the
// distance along the ray
func raySegment(origin, direction, a, b r2.Vec) (float64, bool) {
	seg := r2.Sub(b, a)
	denom := direction.X*seg.Y - direction.Y*seg.X
	if math.Abs(denom) < 1e-12 {
		return 0, false // parallel
	}

	ao := r2.Sub(a, origin)
	t := (ao.X*seg.Y - ao.Y*seg.X) / denom
	u := (ao.X*direction.Y - ao.Y*direction.X) / denom

	if t < 0 || u < 0 || u > 1 {
		return 0, false
	}
	return t, true
}
