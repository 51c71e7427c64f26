// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that a TimeStep can be, either the first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// EndType describes why an episode ended. A TimeStep that is not the
// last of its episode has EndType NotEnded.
type EndType int

const (
	NotEnded EndType = iota
	// TerminalStateReached denotes that the episode goal was reached
	TerminalStateReached
	// Timeout denotes that the episode step budget was exhausted
	Timeout
	// Collision denotes that the agent collided with an object
	Collision
	// OutOfBounds denotes that the agent left the legal region of the
	// state space
	OutOfBounds
)

func (e EndType) String() string {
	switch e {
	case TerminalStateReached:
		return "TerminalStateReached"
	case Timeout:
		return "Timeout"
	case Collision:
		return "Collision"
	case OutOfBounds:
		return "OutOfBounds"
	default:
		return "NotEnded"
	}
}

// TimeStep packages together a single timestep in an environment. The
// Info map is a side channel for diagnostic scalars that are not part
// of the observation, e.g. the fraction of an episode goal completed.
type TimeStep struct {
	StepType    StepType
	Reward      float64
	Discount    float64
	Observation mat.Vector
	Number      int
	EndType     EndType
	Info        map[string]float64
}

// New constructs a new TimeStep with no Info entries
func New(t StepType, r, d float64, o mat.Vector, n int) TimeStep {
	return TimeStep{t, r, d, o, n, NotEnded, make(map[string]float64)}
}

// SetEnd marks why the TimeStep ended its episode
func (t *TimeStep) SetEnd(e EndType) {
	t.EndType = e
}

// First returns whether a TimeStep is the first in an environment
func (t *TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an environment
func (t *TimeStep) Mid() bool {
	return t.StepType == Mid
}

// Last returns whether a TimeStep is the last step in an environment
func (t *TimeStep) Last() bool {
	return t.StepType == Last
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Discount: %.2f  |  " +
		"Step Number:  %v"

	return fmt.Sprintf(str, t.StepType, t.Reward, t.Discount, t.Number)
}
