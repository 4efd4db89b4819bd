// Package sim implements an agent-based SIR epidemic as a particle system:
// agents move inside a bounded square, infect each other on proximity, and
// recover, all on a fixed discrete time grid.
package sim

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Sample is one recorded time point of aggregate compartment counts.
// S+I+R equals the population size at every sample.
type Sample struct {
	Time float64
	S    int
	I    int
	R    int
}

// Engine owns the full mutable state of a single epidemic run. It is not safe
// for concurrent use: each run owns its engine exclusively, and Advance runs
// to completion before returning.
type Engine struct {
	cfg     Config
	agents  []Agent
	now     float64
	history []Sample
	rng     *rand.Rand
}

// New builds an engine with freshly drawn initial conditions: positions
// uniform over the domain, velocities with uniform direction and speed in
// [0.5*vmax, vmax], and InitialInfected agents chosen without replacement.
// A nil rng falls back to a time-seeded source.
func New(cfg Config, rng *rand.Rand) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return newEngine(cfg, GenerateInitial(cfg, rng), rng), nil
}

// NewFromInitial builds an engine from pre-generated initial conditions,
// copying them so that sibling runs sharing the same slice never alias each
// other's state. The rng drives only the stochastic transitions during
// stepping; a nil rng falls back to a time-seeded source.
func NewFromInitial(cfg Config, initial []Agent, rng *rand.Rand) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if len(initial) != cfg.Population {
		return nil, fmt.Errorf("initial conditions hold %d agents, population is %d", len(initial), cfg.Population)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	agents := make([]Agent, len(initial))
	copy(agents, initial)
	return newEngine(cfg, agents, rng), nil
}

func newEngine(cfg Config, agents []Agent, rng *rand.Rand) *Engine {
	e := &Engine{cfg: cfg, agents: agents, rng: rng}
	e.history = append(e.history, e.sample())
	return e
}

// GenerateInitial draws a starting population from rng. Exposed so an
// ensemble can generate initial conditions once and reuse them verbatim
// across trials.
func GenerateInitial(cfg Config, rng *rand.Rand) []Agent {
	agents := make([]Agent, cfg.Population)
	for i := range agents {
		angle := rng.Float64() * 2 * math.Pi
		speed := (0.5 + 0.5*rng.Float64()) * cfg.MaxSpeed
		agents[i] = Agent{
			X:  rng.Float64() * cfg.Domain,
			Y:  rng.Float64() * cfg.Domain,
			VX: speed * math.Cos(angle),
			VY: speed * math.Sin(angle),
		}
	}
	for _, idx := range rng.Perm(cfg.Population)[:cfg.InitialInfected] {
		agents[idx].Health = Infected
	}
	return agents
}

// Advance steps the simulation by one dt: motion and wall reflection, then
// proximity infections, then recoveries, then the clock and history append.
func (e *Engine) Advance() {
	cfg := e.cfg
	for i := range e.agents {
		e.agents[i].Move(cfg.Dt, cfg.Domain)
	}

	// Compartments are snapshotted before any transition: an agent infected
	// during this step neither transmits nor recovers until the next one.
	var susceptible, infected []int
	for i := range e.agents {
		switch e.agents[i].Health {
		case Susceptible:
			susceptible = append(susceptible, i)
		case Infected:
			infected = append(infected, i)
		}
	}

	pInfect := cfg.Beta * cfg.Dt
	for _, s := range susceptible {
		for _, i := range infected {
			if e.agents[s].DistanceTo(e.agents[i]) < cfg.Radius {
				if e.rng.Float64() < pInfect {
					e.agents[s].Health = Infected
					e.agents[s].InfectedAt = e.now
				}
				// The first in-range contact consumes this agent's single
				// draw for the step, whatever the outcome.
				break
			}
		}
	}

	// Recovery is memoryless: one draw per infected agent, independent of
	// how long it has carried the infection.
	pRecover := cfg.Gamma * cfg.Dt
	for _, i := range infected {
		if e.rng.Float64() < pRecover {
			e.agents[i].Health = Recovered
		}
	}

	e.now += cfg.Dt
	e.history = append(e.history, e.sample())
}

func (e *Engine) sample() Sample {
	s := Sample{Time: e.now}
	for i := range e.agents {
		switch e.agents[i].Health {
		case Susceptible:
			s.S++
		case Infected:
			s.I++
		default:
			s.R++
		}
	}
	return s
}

// Config returns the immutable run configuration.
func (e *Engine) Config() Config { return e.cfg }

// Time returns the current simulation time.
func (e *Engine) Time() float64 { return e.now }

// Counts returns the current aggregate compartment counts.
func (e *Engine) Counts() Sample { return e.history[len(e.history)-1] }

// Agents returns a copy of the current agent population, positions and
// health states included, for rendering and streaming.
func (e *Engine) Agents() []Agent {
	out := make([]Agent, len(e.agents))
	copy(out, e.agents)
	return out
}

// History returns a copy of the recorded time series, one sample per elapsed
// step plus the initial t=0 entry.
func (e *Engine) History() []Sample {
	out := make([]Sample, len(e.history))
	copy(out, e.history)
	return out
}
