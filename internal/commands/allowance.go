package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piggybank-dev/piggybank/internal/allowance"
	"github.com/piggybank-dev/piggybank/internal/cli"
	"github.com/piggybank-dev/piggybank/internal/model"
)

func newAllowanceCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "allowance",
		Short: "Check and pay recurring allowances",
		Long: `Check and pay recurring allowances. Every command already pays due
allowances on its first run of the day; "allowance sweep" checks again now.`,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [child]",
		Short: "Credit allowances that are due now (parent only)",
		Args:  cobra.MaximumNArgs(1),
		RunE: a.run(true, func(ctx context.Context, cmd *cobra.Command, args []string) error {
			if err := a.requireParent(ctx); err != nil {
				return err
			}
			var children []model.Child
			if len(args) > 0 {
				c, err := a.bank.FindChild(ctx, args[0])
				if err != nil {
					return err
				}
				children = append(children, c)
			} else {
				var err error
				if children, err = a.bank.Children(ctx); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			paid := 0
			for _, c := range children {
				p, ok, err := a.allowances.SweepChild(ctx, c.ID)
				if err != nil {
					return err
				}
				if ok {
					paid++
					fmt.Fprintf(out, "Paid %s to %s\n", a.format(ctx, p.Amount), p.ChildName)
				}
			}
			if paid == 0 {
				fmt.Fprintln(out, cli.Muted("No allowances due."))
			}
			return nil
		}),
	}

	var childRef string
	nextCmd := &cobra.Command{
		Use:   "next",
		Short: "Show when each allowance is next due",
		Args:  cobra.NoArgs,
		RunE: a.run(false, func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			var children []model.Child
			if childRef == "" && a.sessions.RequireParent(ctx) == nil {
				var err error
				if children, err = a.bank.Children(ctx); err != nil {
					return err
				}
			} else {
				c, err := a.actingChild(ctx, childRef)
				if err != nil {
					return err
				}
				children = append(children, c)
			}

			cur, err := a.currency(ctx)
			if err != nil {
				return err
			}
			now := a.clock.Now()
			t := cli.Table{
				Headers:    []string{"Child", "Allowance", "Next", "In"},
				RightAlign: map[int]bool{3: true},
			}
			for _, c := range children {
				next, ok := allowance.NextDue(c.Allowance)
				if !ok {
					continue
				}
				wait, _ := allowance.TimeUntil(c.Allowance, now)
				t.Rows = append(t.Rows, []string{c.Name, allowanceSummary(c.Allowance, cur), cli.FormatTimestamp(next), allowance.FormatTimeUntil(wait)})
			}
			if len(t.Rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.Muted("No allowances configured."))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable(t))
			return nil
		}),
	}
	nextCmd.Flags().StringVar(&childRef, "child", "", "child name or ID (parent sessions)")

	cmd.AddCommand(sweepCmd, nextCmd)
	return cmd
}
