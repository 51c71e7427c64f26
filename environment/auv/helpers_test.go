package auv

import (
	"testing"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ThomasNLarsen/gym-auv-3D/environment/auv/path"
	"github.com/ThomasNLarsen/gym-auv-3D/environment/auv/vessel"
	"github.com/ThomasNLarsen/gym-auv-3D/utils/geomutils"
)

func testConfig() Config {
	return Config{
		NSectors:           9,
		NSensorsPerSector:  1,
		ObstDetectionRange: 40,
		ObstRewardRange:    20,

		TStepSize:    0.1,
		CruiseSpeed:  1.5,
		MaxSpeed:     2.0,
		MaxTimesteps: 1000,

		MinLaDist:                   50,
		MaxClosestPointDistance:     5,
		MaxClosestPointHeadingError: 0.35,
		MaxCrossTrackError:          50,

		RewardDs:              1.0,
		RewardSpeedError:      -0.08,
		RewardCrossTrackError: -0.5,
		RewardLaHeadingError:  -0.1,
		RewardCloseness:       -0.5,
		RewardCollision:       -500,
		RewardReachEnd:        100,

		PathLength: 400,
		NObstacles: 0,
	}
}

// straightNorthCurve is a 400 m straight path due north from the
// origin
func straightNorthCurve(t *testing.T, length float64) *path.Curve {
	t.Helper()
	curve, err := path.NewCurve([]r2.Vec{
		{X: 0, Y: 0},
		{X: length * 0.25, Y: 0},
		{X: length * 0.5, Y: 0},
		{X: length * 0.75, Y: 0},
		{X: length, Y: 0},
	})
	if err != nil {
		t.Fatalf("could not create straight curve: %v", err)
	}
	return curve
}

// scriptVessel moves at a constant speed along a fixed course,
// ignoring the agent's actions. It stands in for the real dynamics in
// tests that need exactly predictable motion.
type scriptVessel struct {
	pos    r2.Vec
	course float64
	speed  float64
	dt     float64
	taken  []r2.Vec
}

func newScriptVessel(pos r2.Vec, course, speed, dt float64) *scriptVessel {
	return &scriptVessel{
		pos:    pos,
		course: course,
		speed:  speed,
		dt:     dt,
		taken:  []r2.Vec{pos},
	}
}

func (v *scriptVessel) Step(mat.Vector) {
	v.pos = r2.Add(v.pos, r2.Scale(v.speed*v.dt, geomutils.Heading(v.course)))
	v.taken = append(v.taken, v.pos)
}

func (v *scriptVessel) Position() r2.Vec    { return v.pos }
func (v *scriptVessel) Course() float64     { return v.course }
func (v *scriptVessel) Speed() float64      { return v.speed }
func (v *scriptVessel) PathTaken() []r2.Vec { return v.taken }

var _ vessel.Vessel = (*scriptVessel)(nil)

// lineScenario generates a straight north path with a scripted vessel
// and a fixed obstacle set, so that every geometric quantity of the
// episode is known in closed form
type lineScenario struct {
	t         *testing.T
	length    float64
	speed     float64
	startS    float64 // vessel start arclength along the path
	obstacles []Obstacle
}

func (s *lineScenario) Generate(_ *rand.Rand, cfg Config) (path.Path,
	vessel.Vessel, []Obstacle, error) {

	curve := straightNorthCurve(s.t, s.length)
	v := newScriptVessel(r2.Vec{X: s.startS, Y: 0}, 0, s.speed, cfg.TStepSize)
	return curve, v, s.obstacles, nil
}

func (s *lineScenario) Observe(e *Env) ([]float64, error) {
	return e.stateObservation(), nil
}

func (s *lineScenario) StepReward(e *Env) (float64, error) {
	return e.shapedReward(), nil
}

var _ Scenario = (*lineScenario)(nil)

func newLineEnv(t *testing.T, cfg Config, scenario *lineScenario) *Env {
	t.Helper()
	env, err := New(scenario, cfg, 1.0)
	if err != nil {
		t.Fatalf("could not create environment: %v", err)
	}
	env.Seed(192382)
	return env
}

func noopAction() *mat.VecDense {
	return mat.NewVecDense(ActionDims, []float64{0.5, 0})
}
