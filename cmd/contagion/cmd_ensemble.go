package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"contagion/internal/ensemble"
	"contagion/internal/render"
	"contagion/internal/report"
)

func newEnsembleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ensemble",
		Short: "Run repeated trials from fixed initial conditions and write the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			opts := ensemble.Options{
				Trials:  cfg.Ensemble.Trials,
				TMax:    cfg.Ensemble.TMax,
				Seed:    cfg.Ensemble.Seed,
				Workers: cfg.Ensemble.Workers,
			}
			if v, _ := cmd.Flags().GetInt("trials"); v > 0 {
				opts.Trials = v
			}
			if v, _ := cmd.Flags().GetFloat64("t-max"); v > 0 {
				opts.TMax = v
			}
			if v, _ := cmd.Flags().GetInt64("seed"); v != 0 {
				opts.Seed = v
			}
			if v, _ := cmd.Flags().GetInt("workers"); v > 0 {
				opts.Workers = v
			}

			res, err := ensemble.Run(cfg.Simulation, opts)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}

			resultsPath := filepath.Join(cfg.Output.Dir, cfg.Output.Results)
			if err := report.New(res, cfg.Output.Note).WriteFile(resultsPath); err != nil {
				return err
			}
			log.Printf("ensemble: wrote %s", resultsPath)

			if cfg.Output.Curves != "" {
				path := filepath.Join(cfg.Output.Dir, cfg.Output.Curves)
				if err := writeChart(path, func(f *os.File) error {
					return render.Curves(f, res.Mean.Times, res.Mean.S, res.Mean.I, res.Mean.R,
						cfg.Simulation.Population)
				}); err != nil {
					return err
				}
				log.Printf("ensemble: wrote %s", path)
			}
			return nil
		},
	}
	cmd.Flags().Int("trials", 0, "Number of trials (0 uses the config value)")
	cmd.Flags().Float64("t-max", 0, "Simulated time horizon (0 uses the config value)")
	cmd.Flags().Int64("seed", 0, "Random seed (0 uses the config value)")
	cmd.Flags().Int("workers", 0, "Trial parallelism (0 uses one worker per CPU)")
	return cmd
}
