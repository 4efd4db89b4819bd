// Package config provides configuration loading for the contagion CLI.
// Defaults reproduce the reference experiment; a YAML file overrides them.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"contagion/internal/sim"
)

// Config bundles all settings the CLI commands need.
type Config struct {
	// Simulation holds the run parameters shared by every command.
	Simulation sim.Config `yaml:"simulation"`

	// Ensemble controls the multi-run experiment.
	Ensemble EnsembleConfig `yaml:"ensemble"`

	// Output controls where and how results are written.
	Output OutputConfig `yaml:"output"`

	// Serve controls the live websocket viewer.
	Serve ServeConfig `yaml:"serve"`
}

// EnsembleConfig controls the multi-run experiment.
type EnsembleConfig struct {
	// Trials is the number of independent stochastic runs.
	Trials int `yaml:"trials"`

	// TMax is the simulated time horizon per run.
	TMax float64 `yaml:"t_max"`

	// Seed drives initial-condition generation and per-trial stream seeds.
	Seed int64 `yaml:"seed"`

	// Workers bounds trial parallelism; zero means one per CPU.
	Workers int `yaml:"workers"`
}

// OutputConfig controls result files.
type OutputConfig struct {
	// Dir is the output directory, created on demand.
	Dir string `yaml:"dir"`

	// Results is the JSON report file name.
	Results string `yaml:"results"`

	// Curves and Pie are the chart PNG file names.
	Curves string `yaml:"curves"`
	Pie    string `yaml:"pie"`

	// Animation is the animation file name; .gif and .avi are supported.
	Animation string `yaml:"animation"`

	// FrameEvery captures one animation frame every this many steps.
	FrameEvery int `yaml:"frame_every"`

	// FrameWidth is the square frame size in pixels.
	FrameWidth int `yaml:"frame_width"`

	// Note is free text embedded in the report metadata.
	Note string `yaml:"note"`
}

// ServeConfig controls the live viewer.
type ServeConfig struct {
	// Addr is the HTTP listen address.
	Addr string `yaml:"addr"`

	// IntervalMS is the wall-clock delay between broadcast frames.
	IntervalMS int `yaml:"interval_ms"`

	// StepsPerFrame is how many simulation steps each frame advances.
	StepsPerFrame int `yaml:"steps_per_frame"`
}

// Default returns the reference experiment configuration.
func Default() *Config {
	return &Config{
		Simulation: sim.Config{
			Domain:          10,
			Population:      200,
			InitialInfected: 5,
			MaxSpeed:        0.5,
			Radius:          0.3,
			Beta:            0.8,
			Gamma:           0.1,
			Dt:              0.1,
		},
		Ensemble: EnsembleConfig{
			Trials: 10,
			TMax:   100,
			Seed:   12345,
		},
		Output: OutputConfig{
			Dir:        "out",
			Results:    "sir_particles_results.json",
			Curves:     "sir_curves.png",
			Pie:        "sir_final.png",
			Animation:  "sir_particles.gif",
			FrameEvery: 5,
			FrameWidth: 600,
			Note:       "fixed initial conditions for all runs; stochastic dynamics per step",
		},
		Serve: ServeConfig{
			Addr:          ":8080",
			IntervalMS:    50,
			StepsPerFrame: 1,
		},
	}
}

// LoadFromFile reads a YAML config file over the defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Load returns the file configuration when path is set, the defaults
// otherwise.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFromFile(path)
}
