// Package environment outlines the interfaces and structs needed to implement
// concrete environments
package environment

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ThomasNLarsen/gym-auv-3D/timestep"
)

// Starter implements a distribution of starting states and samples starting
// states for environments
type Starter interface {
	Start() mat.Vector
}

// Ender decides whether a timestep ends its episode. If so, End
// modifies the timestep so that its StepType is timestep.Last and its
// EndType records why the episode ended.
type Ender interface {
	End(*timestep.TimeStep) bool
}

// Environment implements a simulated environment. Environments hold
// mutable per-episode state and are not safe for concurrent use; run
// parallel rollouts with independent instances.
type Environment interface {
	// Reset resets the environment between episodes and returns the
	// first timestep of the new episode
	Reset() (timestep.TimeStep, error)

	// Step takes one environmental step given an action, returning the
	// next timestep and whether it is the last of the episode
	Step(action *mat.VecDense) (timestep.TimeStep, bool, error)

	// CurrentTimeStep returns the last timestep of the environment
	CurrentTimeStep() timestep.TimeStep

	DiscountSpec() Spec
	ObservationSpec() Spec
	ActionSpec() Spec
	RewardSpec() Spec
}
