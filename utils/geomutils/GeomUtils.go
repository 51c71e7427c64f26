// Package geomutils provides planar geometry utilities for marine
// navigation, using the north-east coordinate convention: the X
// component of an r2.Vec is the north position, the Y component the
// east position, and headings are measured clockwise from north.
package geomutils

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Princip wraps an angle in radians to the principal range (-π, π]
func Princip(angle float64) float64 {
	wrapped := math.Mod(angle+math.Pi, 2*math.Pi)
	if wrapped <= 0 {
		wrapped += 2 * math.Pi
	}
	return wrapped - math.Pi
}

// Heading returns the unit vector pointing along a heading
func Heading(heading float64) r2.Vec {
	return r2.Vec{X: math.Cos(heading), Y: math.Sin(heading)}
}

// VecAngle returns the heading of a vector, measured from north
func VecAngle(v r2.Vec) float64 {
	return math.Atan2(v.Y, v.X)
}

// Rotate rotates a vector by an angle in radians
func Rotate(v r2.Vec, angle float64) r2.Vec {
	sin, cos := math.Sin(angle), math.Cos(angle)
	return r2.Vec{
		X: cos*v.X - sin*v.Y,
		Y: sin*v.X + cos*v.Y,
	}
}

// Dist returns the Euclidean distance between two points
func Dist(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(a, b))
}
