package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piggybank-dev/piggybank/internal/currency"
)

func newSettingsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Change app settings (parent only)",
	}

	currencyCmd := &cobra.Command{
		Use:   "currency <INR|USD>",
		Short: "Switch the display currency; amounts are not converted",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(true, func(ctx context.Context, cmd *cobra.Command, args []string) error {
			if err := a.requireParent(ctx); err != nil {
				return err
			}
			cur, err := currency.Parse(args[0])
			if err != nil {
				return err
			}
			if err := a.sessions.SetCurrency(ctx, cur); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Currency set to %s (%s)\n", currency.Name(cur), currency.Symbol(cur))
			return nil
		}),
	}

	var current, next string
	pinCmd := &cobra.Command{
		Use:   "pin",
		Short: "Change the parent PIN",
		Args:  cobra.NoArgs,
		RunE: a.run(true, func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			if err := a.requireParent(ctx); err != nil {
				return err
			}
			if err := a.sessions.ChangeParentPIN(ctx, current, next); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Parent PIN updated.")
			return nil
		}),
	}
	pinCmd.Flags().StringVar(&current, "current", "", "current parent PIN")
	pinCmd.Flags().StringVar(&next, "new", "", "new 4-digit parent PIN")
	_ = pinCmd.MarkFlagRequired("current")
	_ = pinCmd.MarkFlagRequired("new")

	cmd.AddCommand(currencyCmd, pinCmd)
	return cmd
}
