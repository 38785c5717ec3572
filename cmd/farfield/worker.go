package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/wiless/farfield/dispatch"
)

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve-worker",
		Short: "compute element grids queued on redis until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			client, err := dispatch.NewRedisClient(ctx, cfg.Redis)
			if err != nil {
				return err
			}
			defer client.Close()
			w := &dispatch.Worker{Client: client, Prefix: cfg.Redis.Prefix}
			return w.Serve(ctx)
		},
	}
}
