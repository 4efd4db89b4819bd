// Package ensemble runs repeated stochastic trials of a simulation that all
// start from one shared initial configuration, so that the spread between
// trajectories measures path variance alone.
package ensemble

import (
	"fmt"
	"log"
	"math/rand"
	"runtime"
	"sync"

	"contagion/internal/sim"
)

// Options controls how an ensemble is executed.
type Options struct {
	// Trials is the number of independent stochastic runs Nexp.
	Trials int

	// TMax is the simulated time horizon; every trial performs exactly
	// floor(TMax/dt) steps.
	TMax float64

	// Seed initialises the deterministic source used once to generate the
	// shared initial conditions and the per-trial stream seeds.
	Seed int64

	// Workers bounds trial parallelism. Zero means runtime.NumCPU.
	Workers int
}

// Trajectory is one trial's complete recorded time series.
type Trajectory struct {
	RunID   int
	Samples []sim.Sample
}

// Mean is the element-wise average of the trial series. It is only defined
// when all trials recorded the same number of samples.
type Mean struct {
	Times []float64
	S     []float64
	I     []float64
	R     []float64
}

// Result bundles everything a report needs: the configuration, the options,
// the shared starting population, the per-trial series, and their mean.
type Result struct {
	Config  sim.Config
	Options Options
	Initial []sim.Agent
	Runs    []Trajectory
	Mean    Mean
}

// Run generates the shared initial conditions from opts.Seed, executes
// opts.Trials independent runs on a bounded worker pool, and averages their
// trajectories. Each trial steps with its own random source, seeded from the
// base stream, so parallel trials never share or duplicate draws.
func Run(cfg sim.Config, opts Options) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if opts.Trials <= 0 {
		return nil, fmt.Errorf("trial count must be positive, got %d", opts.Trials)
	}
	if opts.TMax <= 0 {
		return nil, fmt.Errorf("time horizon must be positive, got %v", opts.TMax)
	}
	steps := cfg.Steps(opts.TMax)

	rng := rand.New(rand.NewSource(opts.Seed))
	initial := sim.GenerateInitial(cfg, rng)
	seeds := make([]int64, opts.Trials)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > opts.Trials {
		workers = opts.Trials
	}

	log.Printf("ensemble: %d trials, %d steps each, %d workers", opts.Trials, steps, workers)

	runs := make([]Trajectory, opts.Trials)
	errs := make([]error, opts.Trials)
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := range jobs {
				// NewFromInitial copies the shared population, so trials
				// mutate private state only.
				engine, err := sim.NewFromInitial(cfg, initial, rand.New(rand.NewSource(seeds[k])))
				if err != nil {
					errs[k] = fmt.Errorf("trial %d: %w", k, err)
					continue
				}
				for s := 0; s < steps; s++ {
					engine.Advance()
				}
				runs[k] = Trajectory{RunID: k, Samples: engine.History()}
			}
		}()
	}
	for k := 0; k < opts.Trials; k++ {
		jobs <- k
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	mean, err := meanOf(runs)
	if err != nil {
		return nil, err
	}
	log.Printf("ensemble: done, %d samples per trial", len(runs[0].Samples))

	return &Result{
		Config:  cfg,
		Options: opts,
		Initial: initial,
		Runs:    runs,
		Mean:    mean,
	}, nil
}

func meanOf(runs []Trajectory) (Mean, error) {
	length := len(runs[0].Samples)
	for _, r := range runs[1:] {
		if len(r.Samples) != length {
			return Mean{}, fmt.Errorf("trial %d recorded %d samples, want %d: mean requires aligned series",
				r.RunID, len(r.Samples), length)
		}
	}

	m := Mean{
		Times: make([]float64, length),
		S:     make([]float64, length),
		I:     make([]float64, length),
		R:     make([]float64, length),
	}
	n := float64(len(runs))
	for idx := 0; idx < length; idx++ {
		m.Times[idx] = runs[0].Samples[idx].Time
		var s, i, r float64
		for _, run := range runs {
			s += float64(run.Samples[idx].S)
			i += float64(run.Samples[idx].I)
			r += float64(run.Samples[idx].R)
		}
		m.S[idx] = s / n
		m.I[idx] = i / n
		m.R[idx] = r / n
	}
	return m, nil
}
