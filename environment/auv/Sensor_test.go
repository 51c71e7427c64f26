package auv

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestSensorFanGeometry(t *testing.T) {
	array := NewSensorArray(9, 3, 40)

	angles := array.Angles()
	if len(angles) != 27 {
		t.Fatalf("sensor fan has %v sensors, want 27", len(angles))
	}

	for i, angle := range angles {
		if angle <= -math.Pi/2 || angle >= math.Pi/2 {
			t.Errorf("sensor %v angle %v outside forward arc", i, angle)
		}
		if i > 0 && angle <= angles[i-1] {
			t.Errorf("sensor angles not strictly increasing at %v", i)
		}
	}

	// With an odd sensor count the fan is symmetric about dead ahead
	mid := angles[len(angles)/2]
	if math.Abs(mid) > 1e-12 {
		t.Errorf("middle sensor angle = %v, want 0", mid)
	}
}

func TestObstacleOnSensorRay(t *testing.T) {
	// 9 sectors, 1 sensor each: the middle sensor points dead ahead
	array := NewSensorArray(9, 1, 40)

	obstacles := []Obstacle{
		{Position: r2.Vec{X: 20, Y: 0}, Radius: 5},
	}
	obstCloseness, _ := array.Sense(r2.Vec{}, 0, obstacles, nil)

	// The ray hits the obstacle surface at 15, so closeness is
	// 1 - 15/40
	want := 1 - 15.0/40.0
	if math.Abs(obstCloseness[4]-want) > 1e-9 {
		t.Errorf("dead-ahead sector closeness = %v, want %v",
			obstCloseness[4], want)
	}

	for sector, c := range obstCloseness {
		if sector == 4 {
			continue
		}
		if c != 0 {
			t.Errorf("sector %v closeness = %v, want 0 (no obstacle on its "+
				"rays)", sector, c)
		}
	}
}

func TestNoObstaclesAllSectorsZero(t *testing.T) {
	array := NewSensorArray(9, 2, 40)

	obstCloseness, pathCloseness := array.Sense(r2.Vec{}, 0.7, nil, nil)
	for sector := range obstCloseness {
		if obstCloseness[sector] != 0 || pathCloseness[sector] != 0 {
			t.Errorf("sector %v reports closeness (%v, %v) in an empty "+
				"scene", sector, obstCloseness[sector], pathCloseness[sector])
		}
	}
}

func TestObstacleBeyondRangeIgnored(t *testing.T) {
	array := NewSensorArray(9, 1, 40)

	obstacles := []Obstacle{
		{Position: r2.Vec{X: 100, Y: 0}, Radius: 5},
	}
	obstCloseness, _ := array.Sense(r2.Vec{}, 0, obstacles, nil)
	for sector, c := range obstCloseness {
		if c != 0 {
			t.Errorf("sector %v closeness = %v for an out-of-range "+
				"obstacle", sector, c)
		}
	}
}

func TestSectorTakesClosestMemberSensor(t *testing.T) {
	// One sector spanning the whole fan with three member sensors
	array := NewSensorArray(1, 3, 40)

	// An obstacle dead ahead is hit by the middle sensor only
	obstacles := []Obstacle{
		{Position: r2.Vec{X: 30, Y: 0}, Radius: 2},
	}
	obstCloseness, _ := array.Sense(r2.Vec{}, 0, obstacles, nil)

	want := 1 - 28.0/40.0
	if math.Abs(obstCloseness[0]-want) > 1e-9 {
		t.Errorf("sector closeness = %v, want %v (minimum distance among "+
			"member sensors)", obstCloseness[0], want)
	}
}

func TestClosenessBounds(t *testing.T) {
	array := NewSensorArray(4, 4, 40)

	// Vessel inside an obstacle: closeness saturates at 1
	obstacles := []Obstacle{
		{Position: r2.Vec{X: 1, Y: 0}, Radius: 5},
	}
	obstCloseness, _ := array.Sense(r2.Vec{}, 0, obstacles, nil)
	for sector, c := range obstCloseness {
		if c < 0 || c > 1 {
			t.Errorf("sector %v closeness = %v outside [0, 1]", sector, c)
		}
	}
}

func TestPathSensing(t *testing.T) {
	array := NewSensorArray(9, 1, 40)

	// A crossing line 20 ahead of the vessel, perpendicular to its
	// course: the dead-ahead sensor hits it at 20
	pathPoints := []r2.Vec{
		{X: 20, Y: -50},
		{X: 20, Y: 0},
		{X: 20, Y: 50},
	}
	_, pathCloseness := array.Sense(r2.Vec{}, 0, nil, pathPoints)

	want := 1 - 20.0/40.0
	if math.Abs(pathCloseness[4]-want) > 1e-9 {
		t.Errorf("dead-ahead path closeness = %v, want %v",
			pathCloseness[4], want)
	}
}

func TestSensorDistancesReported(t *testing.T) {
	array := NewSensorArray(3, 1, 40)

	obstCloseness, _ := array.Sense(r2.Vec{}, 0, nil, nil)
	_ = obstCloseness

	for i, d := range array.Distances() {
		if d != 40 {
			t.Errorf("sensor %v distance = %v, want max range for no hit",
				i, d)
		}
	}
}
