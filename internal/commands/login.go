package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piggybank-dev/piggybank/internal/pin"
)

func newLoginCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Start a parent or child session",
	}

	var parentPIN string
	parentCmd := &cobra.Command{
		Use:   "parent",
		Short: "Log in as the parent",
		Args:  cobra.NoArgs,
		RunE: a.run(false, func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			if err := a.sessions.ParentLogin(ctx, pin.FormatInput(parentPIN)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged in as parent.")
			return nil
		}),
	}
	parentCmd.Flags().StringVar(&parentPIN, "pin", "", "parent PIN")
	_ = parentCmd.MarkFlagRequired("pin")

	var childPIN string
	kidCmd := &cobra.Command{
		Use:   "kid <child>",
		Short: "Log in as a child, by name or ID",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(false, func(ctx context.Context, cmd *cobra.Command, args []string) error {
			if err := a.requireSetup(ctx); err != nil {
				return err
			}
			c, err := a.bank.FindChild(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.sessions.ChildLogin(ctx, c.ID, pin.FormatInput(childPIN)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Hi %s!\n", c.Name)
			return nil
		}),
	}
	kidCmd.Flags().StringVar(&childPIN, "pin", "", "child PIN, if one is set")

	cmd.AddCommand(parentCmd, kidCmd)
	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the parent and child sessions",
		Args:  cobra.NoArgs,
		RunE: a.run(false, func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			if err := a.sessions.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		}),
	}
}
