package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piggybank-dev/piggybank/internal/bank"
)

func newGoalCommand(a *app) *cobra.Command {
	var childRef string
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Manage savings goals",
		Long: `Manage savings goals. A logged-in child acts on their own goals; a parent
names the child with --child. Adjusting a goal by hand is parent only.`,
	}
	cmd.PersistentFlags().StringVar(&childRef, "child", "", "child name or ID (parent sessions)")

	createCmd := &cobra.Command{
		Use:   "create <name> <target>",
		Short: "Create a goal",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(true, func(ctx context.Context, cmd *cobra.Command, args []string) error {
			c, err := a.actingChild(ctx, childRef)
			if err != nil {
				return err
			}
			g, err := a.bank.CreateGoal(ctx, c.ID, args[0], parseAmount(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created goal %s: %s\n", g.Name, a.format(ctx, g.TargetAmount))
			return nil
		}),
	}

	contributeCmd := &cobra.Command{
		Use:   "contribute <goal>",
		Short: "Move as much of the balance as the goal still needs",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(true, func(ctx context.Context, cmd *cobra.Command, args []string) error {
			c, err := a.actingChild(ctx, childRef)
			if err != nil {
				return err
			}
			res, err := a.bank.ContributeToGoal(ctx, c.ID, args[0])
			if err != nil {
				return err
			}
			printContribution(ctx, cmd, a, args[0], res)
			return nil
		}),
	}

	addCmd := &cobra.Command{
		Use:   "add <goal> <amount>",
		Short: "Move an amount from the balance into a goal",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(true, func(ctx context.Context, cmd *cobra.Command, args []string) error {
			c, err := a.parentChild(ctx, childRef)
			if err != nil {
				return err
			}
			res, err := a.bank.AddToGoal(ctx, c.ID, args[0], parseAmount(args[1]))
			if err != nil {
				return err
			}
			printContribution(ctx, cmd, a, args[0], res)
			return nil
		}),
	}

	subtractCmd := &cobra.Command{
		Use:   "subtract <goal> <amount>",
		Short: "Move an amount from a goal back to the balance",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(true, func(ctx context.Context, cmd *cobra.Command, args []string) error {
			c, err := a.parentChild(ctx, childRef)
			if err != nil {
				return err
			}
			amount := parseAmount(args[1])
			if err := a.bank.SubtractFromGoal(ctx, c.ID, args[0], amount); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Returned %s from %s to the balance\n", a.format(ctx, amount), args[0])
			return nil
		}),
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <goal>",
		Short: "Delete an empty goal",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(true, func(ctx context.Context, cmd *cobra.Command, args []string) error {
			c, err := a.actingChild(ctx, childRef)
			if err != nil {
				return err
			}
			if err := a.bank.DeleteGoal(ctx, c.ID, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted goal %s\n", args[0])
			return nil
		}),
	}

	cmd.AddCommand(createCmd, contributeCmd, addCmd, subtractCmd, deleteCmd)
	return cmd
}

func printContribution(ctx context.Context, cmd *cobra.Command, a *app, goal string, res bank.Contribution) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Moved %s into %s\n", a.format(ctx, res.Amount), goal)
	if res.Completed {
		fmt.Fprintf(out, "Goal %s completed!\n", goal)
	}
}
