package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/typetrace/typetrace/internal/service"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the background job workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := buildApp()
		defer a.log.Sync()

		service.RegisterHandlers(a.queue, a.evaluator, a.processor, a.notifier, a.intake)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a.log.Infow("worker running", "workers", a.cfg.WorkerCount)
		return a.queue.Run(ctx, a.cfg.WorkerCount)
	},
}
