package sim

import "fmt"

// Config holds the parameters of one simulation run. It is immutable once a
// run starts: the engine copies it at construction and never looks back.
//
// The JSON field names follow the report contract consumed by downstream
// tooling, so renaming them is a breaking change.
type Config struct {
	// Domain is the side length L of the square [0, L] x [0, L].
	Domain float64 `json:"L" yaml:"domain"`

	// Population is the total number of agents N.
	Population int `json:"Ntotal" yaml:"population"`

	// InitialInfected is the number of agents seeded as Infected at t=0.
	InitialInfected int `json:"I0" yaml:"initial_infected"`

	// MaxSpeed bounds agent speed; individual speeds are drawn uniformly
	// from [0.5*MaxSpeed, MaxSpeed].
	MaxSpeed float64 `json:"vmax" yaml:"max_speed"`

	// Radius is the contagion radius below which a susceptible agent may be
	// exposed to an infected one. Zero or negative means no contagion ever.
	Radius float64 `json:"r" yaml:"radius"`

	// Beta is the per-contact infection rate; the per-step infection
	// probability is Beta*Dt.
	Beta float64 `json:"beta" yaml:"beta"`

	// Gamma is the recovery rate; the per-step recovery probability is
	// Gamma*Dt.
	Gamma float64 `json:"gamma" yaml:"gamma"`

	// Dt is the fixed time step.
	Dt float64 `json:"dt" yaml:"dt"`
}

// Validate rejects configurations that cannot produce a well-defined run.
// Rate checks guard the Bernoulli parameters: Beta*Dt and Gamma*Dt must be
// valid probabilities, and the engine refuses to clamp them silently.
func (c Config) Validate() error {
	if c.Population <= 0 {
		return fmt.Errorf("population must be positive, got %d", c.Population)
	}
	if c.Domain <= 0 {
		return fmt.Errorf("domain size must be positive, got %v", c.Domain)
	}
	if c.Dt <= 0 {
		return fmt.Errorf("time step must be positive, got %v", c.Dt)
	}
	if c.InitialInfected < 0 {
		return fmt.Errorf("initial infected count must not be negative, got %d", c.InitialInfected)
	}
	if c.InitialInfected > c.Population {
		return fmt.Errorf("initial infected count %d exceeds population %d", c.InitialInfected, c.Population)
	}
	if c.MaxSpeed < 0 {
		return fmt.Errorf("max speed must not be negative, got %v", c.MaxSpeed)
	}
	if c.Beta < 0 || c.Beta*c.Dt > 1 {
		return fmt.Errorf("beta=%v with dt=%v yields an invalid infection probability %v", c.Beta, c.Dt, c.Beta*c.Dt)
	}
	if c.Gamma < 0 || c.Gamma*c.Dt > 1 {
		return fmt.Errorf("gamma=%v with dt=%v yields an invalid recovery probability %v", c.Gamma, c.Dt, c.Gamma*c.Dt)
	}
	return nil
}

// Steps returns the number of Advance calls needed to reach tmax.
func (c Config) Steps(tmax float64) int {
	if tmax <= 0 {
		return 0
	}
	return int(tmax / c.Dt)
}
