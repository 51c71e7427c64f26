package path

import (
	"math"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ThomasNLarsen/gym-auv-3D/utils/geomutils"
)

// RandomCurveThroughOrigin generates a curved path of roughly the
// requested length whose midpoint is the origin. The curve runs from
// -length/2 to length/2 along a uniformly random bearing, with
// intermediate waypoints displaced orthogonally by Gaussian noise so
// that every episode sees a differently bent path.
func RandomCurveThroughOrigin(rng *rand.Rand, nWaypoints int,
	length float64) (*Curve, error) {

	if nWaypoints < 5 {
		nWaypoints = 5
	}
	if nWaypoints%2 == 0 {
		// Keep an odd count so the middle waypoint is exactly the origin
		nWaypoints++
	}

	bearing := distuv.Uniform{Min: 0, Max: 2 * math.Pi, Src: rng}
	noise := distuv.Normal{Mu: 0, Sigma: length / 20, Src: rng}

	direction := geomutils.Heading(bearing.Rand())
	normal := geomutils.Rotate(direction, math.Pi/2)
	start := r2.Scale(-length/2, direction)
	end := r2.Scale(length/2, direction)

	waypoints := make([]r2.Vec, nWaypoints)
	for i := range waypoints {
		frac := float64(i) / float64(nWaypoints-1)
		base := r2.Add(start, r2.Scale(frac, r2.Sub(end, start)))

		// Endpoints and midpoint stay fixed; the rest wander sideways
		if i == 0 || i == nWaypoints-1 || i == nWaypoints/2 {
			waypoints[i] = base
			continue
		}
		waypoints[i] = r2.Add(base, r2.Scale(noise.Rand(), normal))
	}

	return NewCurve(waypoints)
}
