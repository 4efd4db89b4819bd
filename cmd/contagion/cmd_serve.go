package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"contagion/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Stream a live simulation to websocket viewers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = cfg.Serve.Addr
			}
			seed, _ := cmd.Flags().GetInt64("seed")

			srv, err := server.New(cfg.Simulation, server.Options{
				Interval:      time.Duration(cfg.Serve.IntervalMS) * time.Millisecond,
				StepsPerFrame: cfg.Serve.StepsPerFrame,
				Seed:          seed,
			})
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go srv.Run(ctx)

			mux := http.NewServeMux()
			mux.Handle("/ws/live", srv.Handler())
			mux.Handle("/proto/", http.StripPrefix("/proto/", http.FileServer(http.Dir("proto"))))

			log.Printf("serving live view on ws://localhost%v/ws/live", addr)
			return http.ListenAndServe(addr, mux)
		},
	}
	cmd.Flags().String("addr", "", "HTTP listen address (empty uses the config value)")
	cmd.Flags().Int64("seed", 0, "Random seed (0 picks a time-based seed)")
	return cmd
}
