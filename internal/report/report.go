// Package report assembles ensemble results into the persisted JSON record
// consumed by downstream plotting and analysis tooling. Field names and
// nesting are a contract; changing them breaks every consumer.
package report

import (
	"encoding/json"
	"fmt"
	"os"

	"contagion/internal/ensemble"
	"contagion/internal/sim"
)

// Meta records everything needed to reproduce the run alongside its results.
type Meta struct {
	Model  string     `json:"model"`
	Params sim.Config `json:"params"`
	Trials int        `json:"Nexp"`
	TMax   float64    `json:"T_max"`
	Dt     float64    `json:"dt"`
	Seed   int64      `json:"seed_init"`
	Note   string     `json:"note"`
}

// Series is one trial's trajectory, split into parallel arrays.
type Series struct {
	RunID int       `json:"run_id"`
	T     []float64 `json:"t"`
	S     []float64 `json:"s"`
	I     []float64 `json:"i"`
	R     []float64 `json:"r"`
}

// MeanSeries is the cross-trial mean trajectory.
type MeanSeries struct {
	T []float64 `json:"t"`
	S []float64 `json:"s"`
	I []float64 `json:"i"`
	R []float64 `json:"r"`
}

// Payload is the full persisted record.
type Payload struct {
	Meta Meta       `json:"meta"`
	Runs []Series   `json:"runs"`
	Mean MeanSeries `json:"mean"`
}

// New converts an ensemble result into the persisted payload shape.
func New(res *ensemble.Result, note string) *Payload {
	p := &Payload{
		Meta: Meta{
			Model:  "particles",
			Params: res.Config,
			Trials: res.Options.Trials,
			TMax:   res.Options.TMax,
			Dt:     res.Config.Dt,
			Seed:   res.Options.Seed,
			Note:   note,
		},
		Runs: make([]Series, len(res.Runs)),
		Mean: MeanSeries{
			T: res.Mean.Times,
			S: res.Mean.S,
			I: res.Mean.I,
			R: res.Mean.R,
		},
	}
	for i, run := range res.Runs {
		p.Runs[i] = seriesOf(run)
	}
	return p
}

func seriesOf(run ensemble.Trajectory) Series {
	s := Series{
		RunID: run.RunID,
		T:     make([]float64, len(run.Samples)),
		S:     make([]float64, len(run.Samples)),
		I:     make([]float64, len(run.Samples)),
		R:     make([]float64, len(run.Samples)),
	}
	for i, sample := range run.Samples {
		s.T[i] = sample.Time
		s.S[i] = float64(sample.S)
		s.I[i] = float64(sample.I)
		s.R[i] = float64(sample.R)
	}
	return s
}

// WriteFile writes the payload as indented JSON.
func (p *Payload) WriteFile(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
