package environment

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
)

// UniformStarter samples starting state features independently and
// uniformly from per-feature intervals
type UniformStarter struct {
	features int
	seed     uint64
	rand     *distmv.Uniform
}

// NewUniformStarter creates a new UniformStarter that samples each
// starting state feature from the corresponding interval in bounds
func NewUniformStarter(bounds []r1.Interval, seed uint64) UniformStarter {
	source := rand.NewSource(seed)
	rand := distmv.NewUniform(bounds, source)

	return UniformStarter{len(bounds), seed, rand}
}

// Start samples and returns a starting state vector
func (u UniformStarter) Start() mat.Vector {
	return mat.NewVecDense(u.features, u.rand.Rand(nil))
}
