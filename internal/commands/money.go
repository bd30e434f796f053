package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newMoneyCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "money",
		Short: "Add money to or subtract money from a child's balance (parent only)",
	}
	cmd.AddCommand(newMoneyAddCommand(a), newMoneySubtractCommand(a))
	return cmd
}

func newMoneyAddCommand(a *app) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "add <child> <amount>",
		Short: "Credit a child's balance, applying auto-split categories",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(true, func(ctx context.Context, cmd *cobra.Command, args []string) error {
			c, err := a.parentChild(ctx, args[0])
			if err != nil {
				return err
			}
			res, err := a.bank.Credit(ctx, c.ID, parseAmount(args[1]), reason)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Added %s to %s\n", a.format(ctx, res.Amount), c.Name)
			for _, sp := range res.Splits {
				fmt.Fprintf(out, "  %s -> %s\n", a.format(ctx, sp.Amount), sp.CategoryName)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&reason, "reason", "", "shown in the child's notification")
	return cmd
}

func newMoneySubtractCommand(a *app) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "subtract <child> <amount>",
		Short: "Debit a child's balance",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(true, func(ctx context.Context, cmd *cobra.Command, args []string) error {
			c, err := a.parentChild(ctx, args[0])
			if err != nil {
				return err
			}
			amount := parseAmount(args[1])
			if err := a.bank.Debit(ctx, c.ID, amount, reason); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Subtracted %s from %s\n", a.format(ctx, amount), c.Name)
			return nil
		}),
	}
	cmd.Flags().StringVar(&reason, "reason", "", "shown in the child's notification")
	return cmd
}
