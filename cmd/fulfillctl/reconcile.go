package main

import (
	"context"
	"fmt"

	"scent-fulfillment/cmd/bootstrap"
	"scent-fulfillment/internal/domain/order"
	"scent-fulfillment/internal/usecase/commands"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile [orderNumber]",
		Short: "Confirm an order's payment with the gateway and settle it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := order.ParseNumber(args[0])
			if err != nil {
				return err
			}

			var orders commands.OrderCommands
			return runApp(cmd.Context(), func(ctx context.Context) error {
				res, err := orders.Reconcile(ctx, number)
				if err != nil {
					return err
				}
				out := "settled"
				if res.Replayed {
					out = "already settled"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", number, out, res.Order.Status())
				return nil
			}, bootstrap.CoreModule, fx.Populate(&orders))
		},
	}
}
