package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"contagion/internal/config"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "contagion",
		Short: "Agent-based SIR epidemic simulator",
		Long: `contagion simulates an SIR epidemic as a particle system: agents move
inside a bounded square, infect each other on proximity, and recover
stochastically on a fixed time grid.

It runs single simulations with plots and animation, multi-run ensembles
with fixed initial conditions, and a live websocket viewer.`,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newEnsembleCmd(),
		newServeCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("contagion version %s\n", version)
		},
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}
