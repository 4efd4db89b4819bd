package sim

import "math"

// Health is an agent's compartment in the SIR model. Transitions are
// one-directional: Susceptible -> Infected -> Recovered.
type Health uint8

const (
	Susceptible Health = iota
	Infected
	Recovered
)

func (h Health) String() string {
	switch h {
	case Susceptible:
		return "susceptible"
	case Infected:
		return "infected"
	case Recovered:
		return "recovered"
	default:
		return "unknown"
	}
}

// Agent is one moving participant in the simulation space. Velocity magnitude
// stays constant for the lifetime of a run; only wall reflections change its
// components, and only by sign.
type Agent struct {
	X, Y   float64
	VX, VY float64
	Health Health

	// InfectedAt is the simulation time the agent became infected. It is
	// meaningless while Health is Susceptible.
	InfectedAt float64
}

// Move advances the agent's position by dt and reflects it elastically off
// the walls of [0, domain] on each axis independently. A corner hit flips
// both velocity components in the same step.
func (a *Agent) Move(dt, domain float64) {
	a.X += a.VX * dt
	if a.X < 0 {
		a.X = 0
		a.VX = -a.VX
	} else if a.X > domain {
		a.X = domain
		a.VX = -a.VX
	}

	a.Y += a.VY * dt
	if a.Y < 0 {
		a.Y = 0
		a.VY = -a.VY
	} else if a.Y > domain {
		a.Y = domain
		a.VY = -a.VY
	}
}

// DistanceTo returns the Euclidean distance between two agents.
func (a Agent) DistanceTo(b Agent) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}
