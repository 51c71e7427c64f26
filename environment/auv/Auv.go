// Package auv implements a marine-vessel path-following environment
// with obstacle avoidance, sensed through a radial sensor fan. A
// vessel controlled by the learning agent must follow a procedurally
// generated curved path while avoiding circular obstacles.
//
// The environment is single-threaded: each Step call completes fully
// before the next may be issued, and parallel rollouts must use
// independent instances. Each instance owns its random source, seeded
// explicitly through Seed or implicitly on first Reset.
package auv

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ThomasNLarsen/gym-auv-3D/environment"
	"github.com/ThomasNLarsen/gym-auv-3D/environment/auv/path"
	"github.com/ThomasNLarsen/gym-auv-3D/environment/auv/vessel"
	"github.com/ThomasNLarsen/gym-auv-3D/timestep"
	"github.com/ThomasNLarsen/gym-auv-3D/utils/floatutils"
	"github.com/ThomasNLarsen/gym-auv-3D/utils/geomutils"
)

const (
	// NStates is the number of state features preceding the sector
	// features in the observation vector
	NStates int = 7

	// ExtendedObsBound bounds the remaining-lookahead-arclength
	// observation slot; every other slot lies in [-1, 1]
	ExtendedObsBound float64 = 10000

	// ActionDims is propulsion plus rudder
	ActionDims int = 2

	// memorySamples is how densely the path is sampled into the
	// post-episode memory record
	memorySamples int = 1000
)

// envState tracks the episode state machine
type envState int

const (
	uninitialized envState = iota
	ready                  // reset has produced an initial observation
	running                // steps accepted
	done                   // terminal; no steps until the next reset
)

// Env simulates episodes of the path-following task. It orchestrates
// one step at a time: advance the vessel, update path progress, sense
// obstacles, assemble the observation, shape the reward, and check
// termination.
//
// Env implements the environment.Environment interface.
type Env struct {
	cfg      Config
	scenario Scenario
	discount float64

	rng    *rand.Rand
	seeded bool

	pa          path.Path
	vessel      vessel.Vessel
	obstacles   []Obstacle
	pathSamples []r2.Vec

	sensors *SensorArray
	tracker progressTracker
	shaper  rewardShaper

	state envState

	// Per-episode bookkeeping, reset on every Reset. The history
	// slices are append-only and grow by exactly one entry per step.
	cumulativeReward float64
	maxPathProg      float64
	targetArclength  float64
	lastProgress     float64
	pathProg         []float64
	pastActions      []*mat.VecDense
	pastObs          []*mat.VecDense
	pastRewards      []float64
	pastErrors       map[string][]float64
	tStep            int

	// Scalars persisting across resets
	totalTSteps int
	episode     int
	memory      *Memory

	// Scratch state of the most recent step, read by Observe and
	// StepReward
	lastUpdate   progressUpdate
	errs         stepErrors
	obstFeatures []float64
	pathFeatures []float64
	minObstClear float64
	lastDs       float64

	currentStep timestep.TimeStep
}

// New validates the configuration and creates an environment. The
// environment starts uninitialized: Reset must be called before the
// first Step.
func New(scenario Scenario, cfg Config, discount float64) (*Env, error) {
	if scenario == nil {
		return nil, fmt.Errorf("new: no scenario provided")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}
	if discount < 0 || discount > 1 {
		return nil, fmt.Errorf("new: discount must be in [0, 1], got %v",
			discount)
	}

	return &Env{
		cfg:      cfg,
		scenario: scenario,
		discount: discount,
		sensors: NewSensorArray(cfg.NSectors, cfg.NSensorsPerSector,
			cfg.ObstDetectionRange),
		tracker: newProgressTracker(cfg),
		shaper:  newRewardShaper(cfg),
		state:   uninitialized,
	}, nil
}

// Seed fixes the random source of the environment. Seeding after the
// first Reset replaces the stream; not seeding at all draws a seed
// from the wall clock on first Reset.
func (e *Env) Seed(seed uint64) {
	e.rng = rand.New(rand.NewSource(seed))
	e.seeded = true
}

// Reset ends the current episode, snapshots it into the retrievable
// memory record if any steps ran, generates a fresh world through the
// scenario, and returns the first timestep of the new episode.
func (e *Env) Reset() (timestep.TimeStep, error) {
	if e.tStep > 0 {
		e.memory = &Memory{
			Path:      e.pathSamples,
			PathTaken: e.vessel.PathTaken(),
			Obstacles: e.obstacles,
		}
	}

	e.cumulativeReward = 0
	e.maxPathProg = 0
	e.targetArclength = 0
	e.pathProg = e.pathProg[:0:0]
	e.pastObs = nil
	e.pastRewards = nil
	e.pastActions = []*mat.VecDense{mat.NewVecDense(ActionDims, nil)}
	e.pastErrors = map[string][]float64{
		"speed":       {},
		"cross_track": {},
		"heading":     {},
		"la_heading":  {},
	}
	e.tStep = 0
	e.lastDs = 0

	// The seed state survives resets so that an explicitly seeded
	// environment stays reproducible across episodes
	if !e.seeded {
		e.Seed(uint64(time.Now().UnixNano()))
	}

	pa, v, obstacles, err := e.scenario.Generate(e.rng, e.cfg)
	if err != nil {
		return timestep.TimeStep{}, fmt.Errorf("reset: %v", err)
	}
	e.pa, e.vessel, e.obstacles = pa, v, obstacles
	e.pathSamples = pa.Sample(memorySamples)

	// Measure geometry once so the initial observation is coherent,
	// but start the episode with zero recorded progress
	update := e.measure()
	e.lastProgress = update.Progress
	e.maxPathProg = 0
	e.setTargetArclength()
	e.refreshErrors()

	obs, err := e.scenario.Observe(e)
	if err != nil {
		return timestep.TimeStep{}, fmt.Errorf("reset: %v", err)
	}
	obsVec := mat.NewVecDense(len(obs), obs)
	if err := validateObservation(obsVec); err != nil {
		return timestep.TimeStep{}, fmt.Errorf("reset: %v", err)
	}

	e.pastObs = append(e.pastObs, obsVec)
	e.currentStep = timestep.New(timestep.First, 0, e.discount, obsVec, 0)
	e.state = ready
	e.episode++

	return e.currentStep, nil
}

// Step simulates the environment for one timestep under an action.
// The action's propulsion component is clipped to [0, 1] and its
// rudder component to [-1, 1]. Step returns the next timestep and
// whether it ended the episode; stepping a done or uninitialized
// environment is an error.
func (e *Env) Step(action *mat.VecDense) (timestep.TimeStep, bool, error) {
	switch e.state {
	case uninitialized:
		return timestep.TimeStep{}, false, fmt.Errorf("step: environment " +
			"must be Reset before stepping")
	case done:
		return timestep.TimeStep{}, false, fmt.Errorf("step: episode is " +
			"done; call Reset")
	}
	if action.Len() != ActionDims {
		return timestep.TimeStep{}, false, fmt.Errorf("step: action must "+
			"have %v elements, got %v", ActionDims, action.Len())
	}
	e.state = running

	clipped := mat.NewVecDense(ActionDims, []float64{
		floatutils.Clip(action.AtVec(0), 0, 1),
		floatutils.Clip(action.AtVec(1), -1, 1),
	})
	e.pastActions = append(e.pastActions, clipped)
	e.vessel.Step(clipped)

	update := e.measure()
	e.maxPathProg = update.MaxProgress
	e.pathProg = append(e.pathProg, update.Progress)
	e.lastDs = update.Progress - e.lastProgress
	e.lastProgress = update.Progress
	e.setTargetArclength()
	e.refreshErrors()

	obs, err := e.scenario.Observe(e)
	if err != nil {
		e.state = done
		return timestep.TimeStep{}, false, fmt.Errorf("step: %v", err)
	}
	obsVec := mat.NewVecDense(len(obs), obs)
	if err := validateObservation(obsVec); err != nil {
		e.state = done
		return timestep.TimeStep{}, false, fmt.Errorf("step: %v", err)
	}

	reward, err := e.scenario.StepReward(e)
	if err != nil {
		e.state = done
		return timestep.TimeStep{}, false, fmt.Errorf("step: %v", err)
	}
	if !floatutils.Finite(reward) {
		e.state = done
		return timestep.TimeStep{}, false, fmt.Errorf("step: reward %v is "+
			"not finite", reward)
	}

	next := timestep.New(timestep.Mid, reward, e.discount, obsVec,
		e.currentStep.Number+1)
	next.Info[infoProgress] = e.progressFraction(update.Progress)
	next.Info[infoMinClearance] = math.Min(e.minObstClear,
		e.cfg.ObstDetectionRange)
	next.Info[infoCrossTrack] = update.CrossTrackError

	terminal, finished := e.shaper.finalize(&next)
	next.Reward += terminal

	e.pastObs = append(e.pastObs, obsVec)
	e.pastRewards = append(e.pastRewards, next.Reward)
	e.cumulativeReward += next.Reward
	e.tStep++
	e.totalTSteps++
	e.currentStep = next

	if finished {
		e.state = done
	}
	return next, finished, nil
}

// measure runs the progress tracker and the sensor array against the
// current vessel pose, refreshing the scratch state of the step
func (e *Env) measure() progressUpdate {
	update := e.tracker.update(e.vessel.Position(), e.vessel.Course(),
		e.vessel.Speed(), e.pa, e.maxPathProg)
	e.lastUpdate = update

	e.obstFeatures, e.pathFeatures = e.sensors.Sense(e.vessel.Position(),
		e.vessel.Course(), e.obstacles, e.pathSamples)
	e.minObstClear = minClearance(e.vessel.Position(), e.obstacles)

	return update
}

// setTargetArclength derives the look-ahead target from the maximum
// progress achieved so far. The updated maximum is used, so the target
// always leads the vessel by at least the configured distance unless
// clamped by the path end.
func (e *Env) setTargetArclength() {
	e.targetArclength = floatutils.Clip(e.maxPathProg+e.cfg.MinLaDist,
		0, e.pa.Length())
}

// refreshErrors recomputes the per-step error terms and appends them
// to the error history
func (e *Env) refreshErrors() {
	e.errs = stepErrors{
		Speed:      (e.vessel.Speed() - e.cfg.CruiseSpeed) / e.cfg.MaxSpeed,
		CrossTrack: e.lastUpdate.CrossTrackError,
		Heading:    e.lastUpdate.ClosestHeadingError,
		LaHeading: geomutils.Princip(
			e.pa.Direction(e.targetArclength) - e.vessel.Course()),
	}
	e.pastErrors["speed"] = append(e.pastErrors["speed"], e.errs.Speed)
	e.pastErrors["cross_track"] = append(e.pastErrors["cross_track"],
		e.errs.CrossTrack)
	e.pastErrors["heading"] = append(e.pastErrors["heading"], e.errs.Heading)
	e.pastErrors["la_heading"] = append(e.pastErrors["la_heading"],
		e.errs.LaHeading)
}

// stateObservation assembles the default observation layout: seven
// state features followed by the per-sector obstacle closeness and
// path closeness features
func (e *Env) stateObservation() []float64 {
	obs := make([]float64, NStates+2*e.cfg.NSectors)
	obs[0] = floatutils.Clip(e.vessel.Speed()/e.cfg.MaxSpeed, 0, 1)
	obs[1] = floatutils.Clip(e.errs.Speed, -1, 1)
	obs[2] = e.errs.Heading / math.Pi
	obs[3] = e.errs.LaHeading / math.Pi
	obs[4] = floatutils.Clip(
		e.errs.CrossTrack/e.cfg.MaxCrossTrackError, -1, 1)
	obs[5] = e.lastUpdate.CoursePathAngle / math.Pi
	obs[6] = floatutils.Clip(e.targetArclength-e.maxPathProg,
		-ExtendedObsBound, ExtendedObsBound)

	copy(obs[NStates:], e.obstFeatures)
	copy(obs[NStates+e.cfg.NSectors:], e.pathFeatures)
	return obs
}

// shapedReward computes the shaped step reward from the scratch state
// of the current step
func (e *Env) shapedReward() float64 {
	return e.shaper.shape(e.errs, e.lastDs, e.minObstClear)
}

// progressFraction maps an arclength to a fraction of the path length,
// guarding degenerate paths
func (e *Env) progressFraction(progress float64) float64 {
	if e.pa.Length() <= 0 {
		return 0
	}
	return progress / e.pa.Length()
}

// validateObservation rejects observation vectors containing NaN or
// infinite values. Such values are a programming-contract violation,
// so the offending vector is included in the diagnostic.
func validateObservation(obs *mat.VecDense) error {
	for i := 0; i < obs.Len(); i++ {
		if !floatutils.Finite(obs.AtVec(i)) {
			return fmt.Errorf("observation vector %v contains non-finite "+
				"values", mat.Formatted(obs.T()))
		}
	}
	return nil
}

// CurrentTimeStep returns the last timestep of the environment
func (e *Env) CurrentTimeStep() timestep.TimeStep {
	return e.currentStep
}

// Memory returns the record of the last finished episode. The second
// return value is false until one full episode has run and been
// followed by a Reset.
func (e *Env) Memory() (Memory, bool) {
	if e.memory == nil {
		return Memory{}, false
	}
	return *e.memory, true
}

// CumulativeReward returns the reward accumulated in the current
// episode
func (e *Env) CumulativeReward() float64 { return e.cumulativeReward }

// MaxPathProg returns the maximum arclength progress achieved in the
// current episode; it is non-decreasing between resets
func (e *Env) MaxPathProg() float64 { return e.maxPathProg }

// TargetArclength returns the current look-ahead target arclength
func (e *Env) TargetArclength() float64 { return e.targetArclength }

// Episode returns how many episodes have been started
func (e *Env) Episode() int { return e.episode }

// TotalTSteps returns the number of steps taken across all episodes
func (e *Env) TotalTSteps() int { return e.totalTSteps }

// PastRewards returns the per-step rewards of the current episode
func (e *Env) PastRewards() []float64 { return e.pastRewards }

// PastErrors returns the per-error-type history of the current
// episode, keyed by "speed", "cross_track", "heading" and "la_heading"
func (e *Env) PastErrors() map[string][]float64 { return e.pastErrors }

// SensorDistances returns the latest per-sensor obstacle intercept
// distances for rendering and debugging
func (e *Env) SensorDistances() []float64 { return e.sensors.Distances() }

// ObservationSpec returns the observation specification of the
// environment
func (e *Env) ObservationSpec() environment.Spec {
	n := NStates + 2*e.cfg.NSectors
	low := make([]float64, n)
	high := make([]float64, n)
	for i := range low {
		low[i], high[i] = -1, 1
	}
	low[6], high[6] = -ExtendedObsBound, ExtendedObsBound
	for i := NStates; i < n; i++ {
		low[i] = 0 // sector closeness features are non-negative
	}

	return environment.NewSpec(mat.NewVecDense(n, nil),
		environment.Observation, mat.NewVecDense(n, low),
		mat.NewVecDense(n, high), environment.Continuous)
}

// ActionSpec returns the action specification of the environment
func (e *Env) ActionSpec() environment.Spec {
	low := mat.NewVecDense(ActionDims, []float64{0, -1})
	high := mat.NewVecDense(ActionDims, []float64{1, 1})

	return environment.NewSpec(mat.NewVecDense(ActionDims, nil),
		environment.Action, low, high, environment.Continuous)
}

// DiscountSpec returns the discount specification of the environment
func (e *Env) DiscountSpec() environment.Spec {
	bound := mat.NewVecDense(1, []float64{e.discount})

	return environment.NewSpec(mat.NewVecDense(1, nil),
		environment.Discount, bound, bound, environment.Continuous)
}

// RewardSpec returns the reward specification of the environment,
// bounding one step's reward given the configured weights
func (e *Env) RewardSpec() environment.Spec {
	maxDs := e.cfg.MaxSpeed * e.cfg.TStepSize

	low, high := 0.0, 0.0
	for _, term := range []float64{
		e.cfg.RewardDs * maxDs,
		e.cfg.RewardSpeedError,
		e.cfg.RewardCrossTrackError,
		e.cfg.RewardLaHeadingError,
		e.cfg.RewardCloseness,
		e.cfg.RewardCollision,
		e.cfg.RewardReachEnd,
	} {
		low += math.Min(term, -term)
		high += math.Max(term, -term)
	}

	return environment.NewSpec(mat.NewVecDense(1, nil), environment.Reward,
		mat.NewVecDense(1, []float64{low}), mat.NewVecDense(1, []float64{high}),
		environment.Continuous)
}

var _ environment.Environment = (*Env)(nil)
