package auv

import (
	"math"

	"github.com/ThomasNLarsen/gym-auv-3D/environment"
	"github.com/ThomasNLarsen/gym-auv-3D/timestep"
	"github.com/ThomasNLarsen/gym-auv-3D/utils/floatutils"
)

// Episodes end when the progress fraction comes within this tolerance
// of the path end
const reachEndTolerance float64 = 0.01

// Info keys written by the environment each step and consumed by the
// enders below
const (
	infoProgress     = "progress"
	infoMinClearance = "min_clearance"
	infoCrossTrack   = "cross_track_error"
)

// stepErrors collects the error terms of one step. Speed is
// dimensionless (normalized by max speed); the angular errors are in
// (-π, π]; CrossTrack is a signed distance.
type stepErrors struct {
	Speed      float64
	CrossTrack float64
	Heading    float64
	LaHeading  float64
}

// rewardShaper combines error terms and progress into the scalar step
// reward and decides episode termination. Termination conditions are
// checked in a fixed precedence order: step budget, collision, path
// end reached, corridor left. The first matching condition sets the
// EndType of the timestep and only that condition's terminal
// adjustment applies.
type rewardShaper struct {
	cfg       Config
	stepLimit environment.StepLimit
	enders    []environment.Ender
}

func newRewardShaper(cfg Config) rewardShaper {
	stepLimit := environment.NewStepLimit(cfg.MaxTimesteps)
	return rewardShaper{
		cfg:       cfg,
		stepLimit: stepLimit,
		enders: []environment.Ender{
			stepLimit,
			collisionEnder{},
			reachEndEnder{},
			corridorEnder{bound: cfg.MaxCrossTrackError},
		},
	}
}

// shape computes the shaped step reward from one step's errors, the
// progress made during the step, and the closeness of the nearest
// obstacle. Every term is a configured weight times a dimensionless
// normalized error.
func (r rewardShaper) shape(errs stepErrors, ds float64,
	minObstClearance float64) float64 {

	reward := r.cfg.RewardDs * ds
	reward += r.cfg.RewardSpeedError * math.Abs(errs.Speed)
	reward += r.cfg.RewardCrossTrackError *
		math.Abs(errs.CrossTrack) / r.cfg.MaxCrossTrackError
	reward += r.cfg.RewardLaHeadingError * math.Abs(errs.LaHeading) / math.Pi

	closeness := floatutils.Clip(1-minObstClearance/r.cfg.ObstRewardRange, 0, 1)
	reward += r.cfg.RewardCloseness * closeness

	return reward
}

// finalize applies the termination conditions to a timestep whose Info
// map has been filled in, returning the terminal reward adjustment and
// whether the episode is over
func (r rewardShaper) finalize(t *timestep.TimeStep) (float64, bool) {
	for _, ender := range r.enders {
		if !ender.End(t) {
			continue
		}
		switch t.EndType {
		case timestep.Collision:
			return r.cfg.RewardCollision, true
		case timestep.TerminalStateReached:
			return r.cfg.RewardReachEnd, true
		default:
			return 0, true
		}
	}
	return 0, false
}

// collisionEnder ends the episode when the vessel touches an obstacle
type collisionEnder struct{}

func (collisionEnder) End(t *timestep.TimeStep) bool {
	clearance, ok := t.Info[infoMinClearance]
	if ok && clearance <= 0 {
		t.StepType = timestep.Last
		t.SetEnd(timestep.Collision)
		return true
	}
	return false
}

// reachEndEnder ends the episode when the vessel has progressed to the
// end of the path
type reachEndEnder struct{}

func (reachEndEnder) End(t *timestep.TimeStep) bool {
	if t.Info[infoProgress] >= 1-reachEndTolerance {
		t.StepType = timestep.Last
		t.SetEnd(timestep.TerminalStateReached)
		return true
	}
	return false
}

// corridorEnder ends the episode when the vessel leaves the path
// corridor
type corridorEnder struct {
	bound float64
}

func (c corridorEnder) End(t *timestep.TimeStep) bool {
	if math.Abs(t.Info[infoCrossTrack]) > c.bound {
		t.StepType = timestep.Last
		t.SetEnd(timestep.OutOfBounds)
		return true
	}
	return false
}
