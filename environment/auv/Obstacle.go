package auv

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ThomasNLarsen/gym-auv-3D/utils/geomutils"
)

var inf = math.Inf(1)

// Obstacle is a circular obstacle in the plane. The environment holds
// obstacles as a non-owning, order-free list.
type Obstacle struct {
	Position r2.Vec
	Radius   float64
}

// Clearance returns the distance from a point to the obstacle surface.
// Negative values mean the point is inside the obstacle.
func (o Obstacle) Clearance(p r2.Vec) float64 {
	return geomutils.Dist(o.Position, p) - o.Radius
}

// nearbyObstacles filters obstacles to those whose surface lies within
// the sensing range of a position. The filter runs before the
// per-sensor intersection loop to bound its cost.
func nearbyObstacles(p r2.Vec, obstacles []Obstacle,
	sensingRange float64) []Obstacle {

	nearby := make([]Obstacle, 0, len(obstacles))
	for _, obst := range obstacles {
		if geomutils.Dist(obst.Position, p) <= sensingRange+obst.Radius {
			nearby = append(nearby, obst)
		}
	}
	return nearby
}

// minClearance returns the smallest clearance from a point to any
// obstacle, or +Inf when there are none
func minClearance(p r2.Vec, obstacles []Obstacle) float64 {
	min := inf
	for _, obst := range obstacles {
		if c := obst.Clearance(p); c < min {
			min = c
		}
	}
	return min
}
