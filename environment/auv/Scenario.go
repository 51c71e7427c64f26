package auv

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ThomasNLarsen/gym-auv-3D/environment"
	"github.com/ThomasNLarsen/gym-auv-3D/environment/auv/path"
	"github.com/ThomasNLarsen/gym-auv-3D/environment/auv/vessel"
	"github.com/ThomasNLarsen/gym-auv-3D/utils/geomutils"
)

// Scenario supplies the episode content that varies between tasks: the
// generated world, the observation layout, and the reward scheme. The
// environment calls through this interface every reset and step; a
// missing scenario is a fatal configuration error, never silently
// defaulted.
type Scenario interface {
	// Generate produces a fresh path, vessel, and obstacle set for a
	// new episode
	Generate(rng *rand.Rand, cfg Config) (path.Path, vessel.Vessel,
		[]Obstacle, error)

	// Observe assembles the observation vector for the current state
	// of the environment
	Observe(e *Env) ([]float64, error)

	// StepReward computes the scalar step reward for the current step.
	// Termination conditions and terminal reward adjustments are then
	// applied by the environment's reward shaper.
	StepReward(e *Env) (float64, error)
}

// PathFollow is the obstacle-free scenario: the vessel must follow a
// randomly generated curved path at cruise speed.
type PathFollow struct {
	nWaypoints int
}

// NewPathFollow returns the path-following scenario
func NewPathFollow() *PathFollow {
	return &PathFollow{nWaypoints: 7}
}

// Generate produces a random curve through the origin and a vessel
// starting at its beginning, with a small random perturbation of the
// initial course
func (p *PathFollow) Generate(rng *rand.Rand, cfg Config) (path.Path,
	vessel.Vessel, []Obstacle, error) {

	curve, err := path.RandomCurveThroughOrigin(rng, p.nWaypoints,
		cfg.PathLength)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("generate: %v", err)
	}

	starter := environment.NewUniformStarter([]r1.Interval{
		{Min: -math.Pi / 18, Max: math.Pi / 18}, // course offset
		{Min: 0, Max: 0.3 * cfg.CruiseSpeed},    // initial speed
	}, rng.Uint64())
	start := starter.Start()

	course := geomutils.Princip(curve.Direction(0) + start.AtVec(0))
	v := vessel.NewAuv(curve.Point(0), course, start.AtVec(1), cfg.MaxSpeed,
		cfg.TStepSize)

	return curve, v, nil, nil
}

// Observe assembles the default observation layout shared by all
// bundled scenarios: seven state features followed by one obstacle-
// closeness and one path-closeness feature per sector. All state
// features lie in [-1, 1] except the remaining-lookahead-arclength
// slot, which is bounded by ±extendedObsBound.
func (p *PathFollow) Observe(e *Env) ([]float64, error) {
	return e.stateObservation(), nil
}

// StepReward shapes the reward from the tracked errors and progress
func (p *PathFollow) StepReward(e *Env) (float64, error) {
	return e.shapedReward(), nil
}

// Colav is the collision-avoidance scenario: path following among
// randomly placed circular obstacles near the path.
type Colav struct {
	*PathFollow
}

// NewColav returns the collision-avoidance scenario
func NewColav() *Colav {
	return &Colav{NewPathFollow()}
}

// Generate produces the PathFollow world plus cfg.NObstacles circular
// obstacles scattered around the path, skipping placements that would
// overlap the vessel start
func (c *Colav) Generate(rng *rand.Rand, cfg Config) (path.Path,
	vessel.Vessel, []Obstacle, error) {

	curve, v, _, err := c.PathFollow.Generate(rng, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	arclength := distuv.Uniform{Min: 0.1, Max: 0.9, Src: rng}
	offset := distuv.Normal{Mu: 0, Sigma: cfg.MaxCrossTrackError, Src: rng}
	radius := distuv.Uniform{Min: 2, Max: 8, Src: rng}

	obstacles := make([]Obstacle, 0, cfg.NObstacles)
	for len(obstacles) < cfg.NObstacles {
		s := arclength.Rand() * curve.Length()
		normal := geomutils.Rotate(
			geomutils.Heading(curve.Direction(s)), math.Pi/2)

		obst := Obstacle{
			Position: r2.Add(curve.Point(s), r2.Scale(offset.Rand(), normal)),
			Radius:   radius.Rand(),
		}
		if obst.Clearance(v.Position()) <= cfg.ObstDetectionRange {
			continue // too close to the start
		}
		obstacles = append(obstacles, obst)
	}

	return curve, v, obstacles, nil
}
