package main

import (
	"fmt"
	"image"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"contagion/internal/render"
	"contagion/internal/sim"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single simulation and write its charts and animation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			seed, _ := cmd.Flags().GetInt64("seed")
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			tmax, _ := cmd.Flags().GetFloat64("t-max")
			if tmax <= 0 {
				tmax = cfg.Ensemble.TMax
			}

			engine, err := sim.New(cfg.Simulation, rand.New(rand.NewSource(seed)))
			if err != nil {
				return err
			}

			simCfg := cfg.Simulation
			frameOpts := render.FrameOptions{Width: cfg.Output.FrameWidth}
			frames := []image.Image{
				render.Frame(engine.Agents(), simCfg.Domain, engine.Time(), engine.Counts(), frameOpts),
			}

			steps := simCfg.Steps(tmax)
			log.Printf("run: seed=%d, %d steps of dt=%v", seed, steps, simCfg.Dt)
			for s := 1; s <= steps; s++ {
				engine.Advance()
				if cfg.Output.FrameEvery > 0 && s%cfg.Output.FrameEvery == 0 {
					frames = append(frames,
						render.Frame(engine.Agents(), simCfg.Domain, engine.Time(), engine.Counts(), frameOpts))
				}
			}

			counts := engine.Counts()
			log.Printf("run: finished at t=%.1f S=%d I=%d R=%d", engine.Time(), counts.S, counts.I, counts.R)

			if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}

			if cfg.Output.Curves != "" {
				path := filepath.Join(cfg.Output.Dir, cfg.Output.Curves)
				if err := writeChart(path, func(f *os.File) error {
					return render.HistoryCurves(f, engine.History(), simCfg.Population)
				}); err != nil {
					return err
				}
				log.Printf("run: wrote %s", path)
			}

			if cfg.Output.Pie != "" {
				path := filepath.Join(cfg.Output.Dir, cfg.Output.Pie)
				if err := writeChart(path, func(f *os.File) error {
					return render.Pie(f, counts)
				}); err != nil {
					return err
				}
				log.Printf("run: wrote %s", path)
			}

			if cfg.Output.Animation != "" {
				path := filepath.Join(cfg.Output.Dir, cfg.Output.Animation)
				if err := writeAnimation(path, frames); err != nil {
					return err
				}
				log.Printf("run: wrote %s (%d frames)", path, len(frames))
			}
			return nil
		},
	}
	cmd.Flags().Int64("seed", 0, "Random seed (0 picks a time-based seed)")
	cmd.Flags().Float64("t-max", 0, "Simulated time horizon (0 uses the config value)")
	return cmd
}

func writeChart(path string, renderTo func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := renderTo(f); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}

func writeAnimation(path string, frames []image.Image) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gif":
		return render.WriteGIF(path, frames, 5)
	case ".avi":
		return render.WriteAVI(path, frames, 20)
	default:
		return fmt.Errorf("unsupported animation format %q (want .gif or .avi)", filepath.Ext(path))
	}
}
