package auv

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every parameter of the environment. All fields are
// required: Validate rejects configurations with missing or degenerate
// values instead of inferring defaults.
type Config struct {
	// Observation / sensing geometry
	NSectors           int     `yaml:"n_sectors"`
	NSensorsPerSector  int     `yaml:"n_sensors_per_sector"`
	ObstDetectionRange float64 `yaml:"obst_detection_range"`
	ObstRewardRange    float64 `yaml:"obst_reward_range"`

	// Simulation
	TStepSize    float64 `yaml:"t_step_size"`
	CruiseSpeed  float64 `yaml:"cruise_speed"`
	MaxSpeed     float64 `yaml:"max_speed"`
	MaxTimesteps int     `yaml:"max_timestemps"`

	// Guidance
	MinLaDist                   float64 `yaml:"min_la_dist"`
	MaxClosestPointDistance     float64 `yaml:"max_closest_point_distance"`
	MaxClosestPointHeadingError float64 `yaml:"max_closest_point_heading_error"`
	MaxCrossTrackError          float64 `yaml:"max_cross_track_error"`

	// Reward weights. Shaping weights multiply normalized error terms
	// each step; RewardCollision and RewardReachEnd are one-off
	// terminal adjustments and may be zero to disable them.
	RewardDs              float64 `yaml:"reward_ds"`
	RewardSpeedError      float64 `yaml:"reward_speed_error"`
	RewardCrossTrackError float64 `yaml:"reward_cross_track_error"`
	RewardLaHeadingError  float64 `yaml:"reward_la_heading_error"`
	RewardCloseness       float64 `yaml:"reward_closeness"`
	RewardCollision       float64 `yaml:"reward_collision"`
	RewardReachEnd        float64 `yaml:"reward_reach_end"`

	// Scenario generation
	PathLength float64 `yaml:"path_length"`
	NObstacles int     `yaml:"n_obstacles"`
}

// LoadConfig reads a Config from a YAML file
func LoadConfig(file string) (Config, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return Config{}, fmt.Errorf("loadConfig: %v", err)
	}

	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("loadConfig: could not parse %v: %v",
			file, err)
	}
	return c, c.Validate()
}

// Validate checks that every required parameter is present and usable.
// A zero value for a structurally required parameter is treated as a
// missing key.
func (c Config) Validate() error {
	positive := map[string]float64{
		"n_sectors":                       float64(c.NSectors),
		"n_sensors_per_sector":            float64(c.NSensorsPerSector),
		"obst_detection_range":            c.ObstDetectionRange,
		"obst_reward_range":               c.ObstRewardRange,
		"t_step_size":                     c.TStepSize,
		"cruise_speed":                    c.CruiseSpeed,
		"max_speed":                       c.MaxSpeed,
		"max_timestemps":                  float64(c.MaxTimesteps),
		"min_la_dist":                     c.MinLaDist,
		"max_closest_point_distance":      c.MaxClosestPointDistance,
		"max_closest_point_heading_error": c.MaxClosestPointHeadingError,
		"max_cross_track_error":           c.MaxCrossTrackError,
		"path_length":                     c.PathLength,
	}
	for key, value := range positive {
		if value <= 0 {
			return fmt.Errorf("config: required key %q missing or not "+
				"positive (got %v)", key, value)
		}
	}

	if c.CruiseSpeed > c.MaxSpeed {
		return fmt.Errorf("config: cruise_speed %v exceeds max_speed %v",
			c.CruiseSpeed, c.MaxSpeed)
	}
	if c.NObstacles < 0 {
		return fmt.Errorf("config: n_obstacles must be non-negative, got %v",
			c.NObstacles)
	}

	weights := map[string]float64{
		"reward_ds":                c.RewardDs,
		"reward_speed_error":       c.RewardSpeedError,
		"reward_cross_track_error": c.RewardCrossTrackError,
		"reward_la_heading_error":  c.RewardLaHeadingError,
		"reward_closeness":         c.RewardCloseness,
		"reward_collision":         c.RewardCollision,
		"reward_reach_end":         c.RewardReachEnd,
	}
	for key, value := range weights {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("config: reward weight %q is not finite", key)
		}
	}

	return nil
}

// nSensors returns the total number of range sensors
func (c Config) nSensors() int {
	return c.NSectors * c.NSensorsPerSector
}
