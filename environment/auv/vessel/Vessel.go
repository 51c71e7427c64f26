// Package vessel implements the surface vessel controlled by the
// learning agent. Positions use the north-east convention: the X
// component of an r2.Vec is north, the Y component east, and the
// course is measured clockwise from north in (-π, π].
package vessel

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ThomasNLarsen/gym-auv-3D/utils/floatutils"
	"github.com/ThomasNLarsen/gym-auv-3D/utils/geomutils"
)

// Vessel is the dynamics collaborator of the episode. Step integrates
// a 2-element action (propulsion in [0, 1], rudder in [-1, 1]) into a
// new pose and velocity; all other methods are read-only.
type Vessel interface {
	// Step advances the vessel one timestep under an action
	Step(action mat.Vector)

	// Position returns the current north-east position
	Position() r2.Vec

	// Course returns the current course in (-π, π]
	Course() float64

	// Speed returns the current speed, always non-negative
	Speed() float64

	// PathTaken returns every position the vessel has occupied, in
	// order, including the current one
	PathTaken() []r2.Vec
}

// Auv is a first-order response model of an autonomous underwater
// vehicle moving in the horizontal plane. The propulsion command sets
// a surge setpoint in [0, maxSpeed] and the rudder command a yaw-rate
// setpoint in [-maxYawRate, maxYawRate]; both states approach their
// setpoints with first-order lags before Euler integration of the
// pose.
//
// Auv implements the Vessel interface.
type Auv struct {
	position r2.Vec
	course   float64
	speed    float64
	yawRate  float64

	maxSpeed   float64
	maxYawRate float64
	surgeGain  float64
	yawGain    float64
	dt         float64

	pathTaken []r2.Vec
}

// Default response parameters. The lags are deliberately slower than
// the timestep so that the agent has to anticipate turns.
const (
	DefaultMaxYawRate float64 = 0.6
	DefaultSurgeGain  float64 = 1.0
	DefaultYawGain    float64 = 2.5
)

// NewAuv returns a vessel at a pose with an initial speed
func NewAuv(position r2.Vec, course, speed, maxSpeed, dt float64) *Auv {
	return &Auv{
		position:   position,
		course:     geomutils.Princip(course),
		speed:      floatutils.Clip(speed, 0, maxSpeed),
		maxSpeed:   maxSpeed,
		maxYawRate: DefaultMaxYawRate,
		surgeGain:  DefaultSurgeGain,
		yawGain:    DefaultYawGain,
		dt:         dt,
		pathTaken:  []r2.Vec{position},
	}
}

// Step advances the vessel one timestep under an action. Actions
// outside the legal box [0, 1] × [-1, 1] are clipped.
func (a *Auv) Step(action mat.Vector) {
	propulsion := floatutils.Clip(action.AtVec(0), 0, 1)
	rudder := floatutils.Clip(action.AtVec(1), -1, 1)

	speedSetpoint := propulsion * a.maxSpeed
	a.speed += (speedSetpoint - a.speed) * a.surgeGain * a.dt
	a.speed = floatutils.Clip(a.speed, 0, a.maxSpeed)

	yawSetpoint := rudder * a.maxYawRate
	a.yawRate += (yawSetpoint - a.yawRate) * a.yawGain * a.dt

	a.course = geomutils.Princip(a.course + a.yawRate*a.dt)
	a.position = r2.Add(a.position,
		r2.Scale(a.speed*a.dt, geomutils.Heading(a.course)))
	a.pathTaken = append(a.pathTaken, a.position)
}

// Position returns the current north-east position
func (a *Auv) Position() r2.Vec { return a.position }

// Course returns the current course in (-π, π]
func (a *Auv) Course() float64 { return a.course }

// Speed returns the current speed
func (a *Auv) Speed() float64 { return a.speed }

// PathTaken returns every position the vessel has occupied so far
func (a *Auv) PathTaken() []r2.Vec {
	return a.pathTaken
}

var _ Vessel = (*Auv)(nil)
