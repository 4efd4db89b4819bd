package sim

import (
	"math"
	"math/rand"
	"reflect"
	"testing"
)

func testConfig() Config {
	return Config{
		Domain:          10,
		Population:      200,
		InitialInfected: 5,
		MaxSpeed:        0.5,
		Radius:          0.3,
		Beta:            0.8,
		Gamma:           0.1,
		Dt:              0.1,
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero population", func(c *Config) { c.Population = 0 }},
		{"negative domain", func(c *Config) { c.Domain = -1 }},
		{"zero time step", func(c *Config) { c.Dt = 0 }},
		{"negative initial infected", func(c *Config) { c.InitialInfected = -1 }},
		{"initial infected exceeds population", func(c *Config) { c.InitialInfected = c.Population + 1 }},
		{"negative max speed", func(c *Config) { c.MaxSpeed = -0.1 }},
		{"negative beta", func(c *Config) { c.Beta = -0.5 }},
		{"infection probability above one", func(c *Config) { c.Beta = 11 }},
		{"negative gamma", func(c *Config) { c.Gamma = -0.5 }},
		{"recovery probability above one", func(c *Config) { c.Gamma = 11 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
			if _, err := New(cfg, rand.New(rand.NewSource(1))); err == nil {
				t.Fatalf("expected constructor to reject config")
			}
		})
	}
}

func TestValidateAcceptsUnitProbability(t *testing.T) {
	cfg := testConfig()
	cfg.Beta = 10 // beta*dt == 1 is still a valid Bernoulli parameter
	cfg.Gamma = 10
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestNewSeedsHistoryWithInitialCounts(t *testing.T) {
	cfg := testConfig()
	engine, err := New(cfg, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	history := engine.History()
	if len(history) != 1 {
		t.Fatalf("expected one seeded history entry, got %d", len(history))
	}
	want := Sample{Time: 0, S: 195, I: 5, R: 0}
	if history[0] != want {
		t.Fatalf("expected initial sample %+v, got %+v", want, history[0])
	}
}

func TestGenerateInitialIsDeterministic(t *testing.T) {
	cfg := testConfig()
	a := GenerateInitial(cfg, rand.New(rand.NewSource(12345)))
	b := GenerateInitial(cfg, rand.New(rand.NewSource(12345)))
	if !reflect.DeepEqual(a, b) {
		t.Fatal("expected identical initial conditions for identical seeds")
	}
}

func TestGenerateInitialSpeedsAndStates(t *testing.T) {
	cfg := testConfig()
	agents := GenerateInitial(cfg, rand.New(rand.NewSource(7)))

	infected := 0
	for i, a := range agents {
		if a.X < 0 || a.X > cfg.Domain || a.Y < 0 || a.Y > cfg.Domain {
			t.Fatalf("agent %d outside domain: (%v,%v)", i, a.X, a.Y)
		}
		speed := math.Hypot(a.VX, a.VY)
		if speed < 0.5*cfg.MaxSpeed-1e-12 || speed > cfg.MaxSpeed+1e-12 {
			t.Fatalf("agent %d speed %v outside [%v,%v]", i, speed, 0.5*cfg.MaxSpeed, cfg.MaxSpeed)
		}
		if a.Health == Infected {
			infected++
		}
	}
	if infected != cfg.InitialInfected {
		t.Fatalf("expected %d initially infected, got %d", cfg.InitialInfected, infected)
	}
}

func TestConservationAndContainment(t *testing.T) {
	cfg := testConfig()
	engine, err := New(cfg, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for step := 0; step < 200; step++ {
		engine.Advance()
		counts := engine.Counts()
		if counts.S+counts.I+counts.R != cfg.Population {
			t.Fatalf("step %d: S+I+R=%d, want %d", step, counts.S+counts.I+counts.R, cfg.Population)
		}
		for i, a := range engine.Agents() {
			if a.X < 0 || a.X > cfg.Domain || a.Y < 0 || a.Y > cfg.Domain {
				t.Fatalf("step %d: agent %d escaped domain: (%v,%v)", step, i, a.X, a.Y)
			}
		}
	}
}

func TestHealthTransitionsAreMonotone(t *testing.T) {
	cfg := testConfig()
	cfg.Beta = 5 // aggressive spread to exercise many transitions
	cfg.Gamma = 2
	engine, err := New(cfg, rand.New(rand.NewSource(9)))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	prev := engine.Agents()
	for step := 0; step < 150; step++ {
		engine.Advance()
		curr := engine.Agents()
		for i := range curr {
			if curr[i].Health < prev[i].Health {
				t.Fatalf("step %d: agent %d regressed from %v to %v", step, i, prev[i].Health, curr[i].Health)
			}
		}
		prev = curr
	}
}

func TestNoContagionWhenBetaZero(t *testing.T) {
	cfg := testConfig()
	cfg.Beta = 0
	engine, err := New(cfg, rand.New(rand.NewSource(11)))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for step := 0; step < 300; step++ {
		engine.Advance()
		if counts := engine.Counts(); counts.I > cfg.InitialInfected {
			t.Fatalf("step %d: infected count %d exceeds initial %d with beta=0",
				step, counts.I, cfg.InitialInfected)
		}
	}
}

func TestNoRecoveryWhenGammaZero(t *testing.T) {
	cfg := testConfig()
	cfg.Gamma = 0
	engine, err := New(cfg, rand.New(rand.NewSource(13)))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for step := 0; step < 300; step++ {
		engine.Advance()
		if counts := engine.Counts(); counts.R != 0 {
			t.Fatalf("step %d: recovered count %d with gamma=0", step, counts.R)
		}
	}
}

func TestNoInitialInfectedMeansNoEpidemic(t *testing.T) {
	cfg := testConfig()
	cfg.InitialInfected = 0
	engine, err := New(cfg, rand.New(rand.NewSource(17)))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for step := 0; step < 300; step++ {
		engine.Advance()
		if counts := engine.Counts(); counts.I != 0 {
			t.Fatalf("step %d: infected count %d without any contagion source", step, counts.I)
		}
	}
}

func TestSameStepInfectionIsNotEligibleForRecovery(t *testing.T) {
	// With both per-step probabilities at exactly one, the pre-step infected
	// agent must recover while the agent it infects this step must not.
	cfg := Config{
		Domain:          10,
		Population:      2,
		InitialInfected: 1,
		MaxSpeed:        0,
		Radius:          0.3,
		Beta:            10,
		Gamma:           10,
		Dt:              0.1,
	}
	initial := []Agent{
		{X: 1, Y: 1, Health: Infected},
		{X: 1.05, Y: 1},
	}
	engine, err := NewFromInitial(cfg, initial, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewFromInitial failed: %v", err)
	}

	engine.Advance()

	agents := engine.Agents()
	if agents[0].Health != Recovered {
		t.Fatalf("expected source agent recovered, got %v", agents[0].Health)
	}
	if agents[1].Health != Infected {
		t.Fatalf("expected contact agent infected, got %v", agents[1].Health)
	}
	if agents[1].InfectedAt != 0 {
		t.Fatalf("expected infection timestamped at pre-step time 0, got %v", agents[1].InfectedAt)
	}
	if counts := engine.Counts(); counts.S != 0 || counts.I != 1 || counts.R != 1 {
		t.Fatalf("unexpected counts after step: %+v", counts)
	}
}

func TestNewFromInitialCopiesAgents(t *testing.T) {
	cfg := testConfig()
	initial := GenerateInitial(cfg, rand.New(rand.NewSource(19)))
	backup := make([]Agent, len(initial))
	copy(backup, initial)

	engine, err := NewFromInitial(cfg, initial, rand.New(rand.NewSource(20)))
	if err != nil {
		t.Fatalf("NewFromInitial failed: %v", err)
	}
	for i := 0; i < 50; i++ {
		engine.Advance()
	}

	if !reflect.DeepEqual(initial, backup) {
		t.Fatal("stepping the engine mutated the caller's initial conditions")
	}
}

func TestNewFromInitialRejectsPopulationMismatch(t *testing.T) {
	cfg := testConfig()
	if _, err := NewFromInitial(cfg, make([]Agent, 3), rand.New(rand.NewSource(1))); err == nil {
		t.Fatal("expected population mismatch error")
	}
}

func TestReferenceScenario(t *testing.T) {
	cfg := testConfig()
	engine, err := New(cfg, rand.New(rand.NewSource(12345)))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	steps := cfg.Steps(100)
	if steps != 1000 {
		t.Fatalf("expected 1000 steps for T=100 dt=0.1, got %d", steps)
	}
	for s := 0; s < steps; s++ {
		engine.Advance()
	}

	history := engine.History()
	if len(history) != 1001 {
		t.Fatalf("expected 1001 history entries, got %d", len(history))
	}
	first := history[0]
	if first.Time != 0 || first.S != 195 || first.I != 5 || first.R != 0 {
		t.Fatalf("unexpected first entry %+v", first)
	}
	last := history[len(history)-1]
	if math.Abs(last.Time-100) > 1e-9 {
		t.Fatalf("expected final time 100, got %v", last.Time)
	}
	for i, sample := range history {
		if sample.S+sample.I+sample.R != cfg.Population {
			t.Fatalf("entry %d: S+I+R=%d, want %d", i, sample.S+sample.I+sample.R, cfg.Population)
		}
	}
}
