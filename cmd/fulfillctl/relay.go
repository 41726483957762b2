package main

import (
	"context"
	"log/slog"
	"time"

	"scent-fulfillment/cmd/bootstrap"
	"scent-fulfillment/internal/usecase/commands"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func relayCmd() *cobra.Command {
	var (
		limit    int32
		interval time.Duration
		once     bool
	)

	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Publish queued notification jobs to Kafka",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				relay  *commands.NotificationRelay
				logger *slog.Logger
			)
			return runApp(cmd.Context(), func(ctx context.Context) error {
				ticker := time.NewTicker(interval)
				defer ticker.Stop()
				for {
					stats, err := relay.RunOnce(ctx, limit)
					if err != nil {
						logger.Error("relay pass failed", "error", err.Error())
						if once {
							return err
						}
					} else if stats.Sent+stats.Failed > 0 {
						logger.Info("relay pass", "sent", stats.Sent, "failed", stats.Failed)
					}
					if once {
						return nil
					}
					select {
					case <-ctx.Done():
						return nil
					case <-ticker.C:
					}
				}
			}, bootstrap.CoreModule, bootstrap.RelayModule, fx.Populate(&relay, &logger))
		},
	}

	cmd.Flags().Int32Var(&limit, "limit", 100, "Maximum jobs per pass")
	cmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "Delay between passes")
	cmd.Flags().BoolVar(&once, "once", false, "Run a single pass and exit")

	return cmd
}
