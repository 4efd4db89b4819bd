package render

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"contagion/internal/sim"
)

// Curves renders S/I/R trajectories as a PNG line chart. The series must be
// index-aligned with t and hold at least two points.
func Curves(w io.Writer, t, s, i, r []float64, population int) error {
	if len(t) < 2 {
		return fmt.Errorf("need at least two samples to chart, got %d", len(t))
	}

	graph := chart.Chart{
		Width:  800,
		Height: 450,
		XAxis: chart.XAxis{
			Name:  "time",
			Range: &chart.ContinuousRange{Min: 0, Max: t[len(t)-1]},
		},
		YAxis: chart.YAxis{
			Name:  "individuals",
			Range: &chart.ContinuousRange{Min: 0, Max: float64(population)},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Susceptible",
				XValues: t,
				YValues: s,
				Style: chart.Style{
					StrokeColor: drawing.Color{R: 52, G: 152, B: 219, A: 255},
					StrokeWidth: 2.0,
				},
			},
			chart.ContinuousSeries{
				Name:    "Infected",
				XValues: t,
				YValues: i,
				Style: chart.Style{
					StrokeColor: chart.ColorRed,
					StrokeWidth: 2.0,
				},
			},
			chart.ContinuousSeries{
				Name:    "Recovered",
				XValues: t,
				YValues: r,
				Style: chart.Style{
					StrokeColor: chart.ColorGreen,
					StrokeWidth: 2.0,
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph.Render(chart.PNG, w)
}

// HistoryCurves charts a single run's recorded time series.
func HistoryCurves(w io.Writer, history []sim.Sample, population int) error {
	t := make([]float64, len(history))
	s := make([]float64, len(history))
	i := make([]float64, len(history))
	r := make([]float64, len(history))
	for idx, sample := range history {
		t[idx] = sample.Time
		s[idx] = float64(sample.S)
		i[idx] = float64(sample.I)
		r[idx] = float64(sample.R)
	}
	return Curves(w, t, s, i, r, population)
}

// Pie renders the final population distribution as a PNG pie chart.
// Empty compartments are omitted so the chart never draws zero slices.
func Pie(w io.Writer, final sim.Sample) error {
	total := final.S + final.I + final.R
	if total == 0 {
		return fmt.Errorf("cannot chart an empty population")
	}

	var values []chart.Value
	add := func(name string, count int) {
		if count == 0 {
			return
		}
		values = append(values, chart.Value{
			Value: float64(count),
			Label: fmt.Sprintf("%s %d (%.1f%%)", name, count, pct(count, total)),
		})
	}
	add("Susceptible", final.S)
	add("Infected", final.I)
	add("Recovered", final.R)

	pie := chart.PieChart{
		Width:  450,
		Height: 450,
		Values: values,
	}
	return pie.Render(chart.PNG, w)
}
