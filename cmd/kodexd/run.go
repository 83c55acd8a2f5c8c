package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/anthropics/kodex/internal/klog"
	"github.com/anthropics/kodex/internal/orchestrator"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the expansion engine daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := orchestrator.Open(orchestrator.Options{
				Paths: paths(),
				Log:   klog.Component(rootLogger, "orchestrator"),
			})
			if err != nil {
				return err
			}
			defer o.Stop()

			if err := o.Start(); err != nil {
				return err
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh
			return nil
		},
	}
}
