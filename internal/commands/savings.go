package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newSavingsCommand(a *app) *cobra.Command {
	var childRef string
	cmd := &cobra.Command{
		Use:   "savings",
		Short: "Move money between the balance and the piggy bank",
	}
	cmd.PersistentFlags().StringVar(&childRef, "child", "", "child name or ID (parent sessions)")

	depositCmd := &cobra.Command{
		Use:   "deposit <amount>",
		Short: "Move money from the balance into the piggy bank",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(true, func(ctx context.Context, cmd *cobra.Command, args []string) error {
			c, err := a.actingChild(ctx, childRef)
			if err != nil {
				return err
			}
			amount := parseAmount(args[0])
			if err := a.bank.TransferToSavings(ctx, c.ID, amount); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s into savings\n", a.format(ctx, amount))
			return nil
		}),
	}

	withdrawCmd := &cobra.Command{
		Use:   "withdraw <amount>",
		Short: "Move money from the piggy bank back to the balance",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(true, func(ctx context.Context, cmd *cobra.Command, args []string) error {
			c, err := a.actingChild(ctx, childRef)
			if err != nil {
				return err
			}
			amount := parseAmount(args[0])
			if err := a.bank.WithdrawFromSavings(ctx, c.ID, amount); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s out of savings\n", a.format(ctx, amount))
			return nil
		}),
	}

	cmd.AddCommand(depositCmd, withdrawCmd)
	return cmd
}
