package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCommand(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase all children, notifications and settings (parent only)",
		Long: `Erase all children, notifications and settings. The ledger and the
configuration file are kept.`,
		Args: cobra.NoArgs,
		RunE: a.run(true, func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			if err := a.requireParent(ctx); err != nil {
				return err
			}
			if !yes {
				return errors.New("reset erases everything; pass --yes to confirm")
			}
			if err := a.sessions.Reset(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All data erased. Run 'piggybank setup' to start again.")
			return nil
		}),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm")
	return cmd
}
