package auv

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	if err := testConfig().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestValidateRejectsMissingKeys(t *testing.T) {
	mutations := map[string]func(*Config){
		"n_sectors":             func(c *Config) { c.NSectors = 0 },
		"n_sensors_per_sector":  func(c *Config) { c.NSensorsPerSector = 0 },
		"obst_detection_range":  func(c *Config) { c.ObstDetectionRange = 0 },
		"t_step_size":           func(c *Config) { c.TStepSize = -0.1 },
		"cruise_speed":          func(c *Config) { c.CruiseSpeed = 0 },
		"max_timestemps":        func(c *Config) { c.MaxTimesteps = 0 },
		"min_la_dist":           func(c *Config) { c.MinLaDist = 0 },
		"max_cross_track_error": func(c *Config) { c.MaxCrossTrackError = 0 },
		"path_length":           func(c *Config) { c.PathLength = 0 },
	}

	for key, mutate := range mutations {
		cfg := testConfig()
		mutate(&cfg)
		err := cfg.Validate()
		if err == nil {
			t.Errorf("config with zeroed %v accepted", key)
			continue
		}
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error for zeroed %v does not name the key: %v", key, err)
		}
	}
}

func TestValidateRejectsInconsistentSpeeds(t *testing.T) {
	cfg := testConfig()
	cfg.CruiseSpeed = cfg.MaxSpeed + 1
	if err := cfg.Validate(); err == nil {
		t.Error("config with cruise_speed > max_speed accepted")
	}
}

func TestValidateRejectsNegativeObstacleCount(t *testing.T) {
	cfg := testConfig()
	cfg.NObstacles = -1
	if err := cfg.Validate(); err == nil {
		t.Error("config with negative n_obstacles accepted")
	}
}

func TestValidateRejectsNonFiniteWeights(t *testing.T) {
	for _, mutate := range []func(*Config){
		func(c *Config) { c.RewardDs = math.NaN() },
		func(c *Config) { c.RewardCollision = math.Inf(-1) },
	} {
		cfg := testConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Error("config with non-finite reward weight accepted")
		}
	}
}

const configYAML = `
n_sectors: 9
n_sensors_per_sector: 3
obst_detection_range: 40.0
obst_reward_range: 20.0
t_step_size: 0.1
cruise_speed: 1.5
max_speed: 2.0
max_timestemps: 10000
min_la_dist: 50.0
max_closest_point_distance: 5.0
max_closest_point_heading_error: 0.35
max_cross_track_error: 50.0
reward_ds: 1.0
reward_speed_error: -0.08
reward_cross_track_error: -0.5
reward_la_heading_error: -0.1
reward_closeness: -0.5
reward_collision: -500.0
reward_reach_end: 100.0
path_length: 400.0
n_obstacles: 20
`

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(file, []byte(contents), 0o644); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}
	return file
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfigFile(t, configYAML))
	if err != nil {
		t.Fatalf("could not load config: %v", err)
	}

	if cfg.NSectors != 9 || cfg.NSensorsPerSector != 3 {
		t.Errorf("sensor geometry = %v×%v, want 9×3", cfg.NSectors,
			cfg.NSensorsPerSector)
	}
	if cfg.nSensors() != 27 {
		t.Errorf("nSensors() = %v, want 27", cfg.nSensors())
	}
	if cfg.MaxTimesteps != 10000 {
		t.Errorf("max_timestemps = %v, want 10000", cfg.MaxTimesteps)
	}
	if cfg.RewardCollision != -500 {
		t.Errorf("reward_collision = %v, want -500", cfg.RewardCollision)
	}
	if cfg.PathLength != 400 {
		t.Errorf("path_length = %v, want 400", cfg.PathLength)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	file := writeConfigFile(t, configYAML+"no_such_key: 1\n")
	if _, err := LoadConfig(file); err == nil {
		t.Error("config with an unknown key accepted")
	}
}

func TestLoadConfigRejectsIncompleteFile(t *testing.T) {
	file := writeConfigFile(t, "n_sectors: 9\n")
	if _, err := LoadConfig(file); err == nil {
		t.Error("config missing required keys accepted")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestShippedConfigLoads(t *testing.T) {
	cfg, err := LoadConfig("../../configs/pathfollow.yaml")
	if err != nil {
		t.Fatalf("shipped config does not load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("shipped config invalid: %v", err)
	}
}
