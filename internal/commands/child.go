package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/piggybank-dev/piggybank/internal/bank"
	"github.com/piggybank-dev/piggybank/internal/cli"
	"github.com/piggybank-dev/piggybank/internal/currency"
	"github.com/piggybank-dev/piggybank/internal/id"
	"github.com/piggybank-dev/piggybank/internal/model"
)

func newChildCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "child",
		Short: "Manage child profiles (parent only)",
	}
	cmd.AddCommand(
		newChildAddCommand(a),
		newChildDeleteCommand(a),
		newChildListCommand(a),
		newChildShowCommand(a),
		newChildPINCommand(a),
		newChildUnpinCommand(a),
		newChildAllowanceCommand(a),
		newChildAllowanceClearCommand(a),
	)
	return cmd
}

func newChildAddCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a child",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(true, func(ctx context.Context, cmd *cobra.Command, args []string) error {
			if err := a.requireParent(ctx); err != nil {
				return err
			}
			c, err := a.bank.AddChild(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", c.Name, id.Short(c.ID))
			return nil
		}),
	}
}

func newChildDeleteCommand(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <child>",
		Short: "Delete a child and decline their pending withdrawal requests",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(true, func(ctx context.Context, cmd *cobra.Command, args []string) error {
			c, err := a.parentChild(ctx, args[0])
			if err != nil {
				return err
			}
			if !yes {
				return fmt.Errorf("deleting %s discards %s; pass --yes to confirm", c.Name, a.format(ctx, c.Balance.Add(c.PiggyBank)))
			}
			if err := a.bank.DeleteChild(ctx, c.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", c.Name)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

func newChildListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List children",
		Args:  cobra.NoArgs,
		RunE: a.run(false, func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			if err := a.requireParent(ctx); err != nil {
				return err
			}
			children, err := a.bank.Children(ctx)
			if err != nil {
				return err
			}
			cur, err := a.currency(ctx)
			if err != nil {
				return err
			}
			t := cli.Table{
				Headers:    []string{"ID", "Name", "Balance", "Savings", "Created"},
				RightAlign: map[int]bool{2: true, 3: true},
			}
			for _, c := range children {
				t.Rows = append(t.Rows, []string{
					id.Short(c.ID),
					c.Name,
					currency.Format(c.Balance, cur),
					currency.Format(c.PiggyBank, cur),
					cli.FormatDate(c.CreatedAt),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable(t))
			return nil
		}),
	}
}

func newChildShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [child]",
		Short: "Show a child's balances, categories and goals",
		Args:  cobra.MaximumNArgs(1),
		RunE: a.run(false, func(ctx context.Context, cmd *cobra.Command, args []string) error {
			c, err := a.actingChild(ctx, optionalArg(args))
			if err != nil {
				return err
			}
			return renderChild(ctx, cmd.OutOrStdout(), a, c)
		}),
	}
}

func newChildPINCommand(a *app) *cobra.Command {
	var newPIN string
	cmd := &cobra.Command{
		Use:   "pin <child>",
		Short: "Set or change a child's PIN",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(true, func(ctx context.Context, cmd *cobra.Command, args []string) error {
			c, err := a.parentChild(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.bank.SetChildPIN(ctx, c.ID, newPIN); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "PIN updated for %s\n", c.Name)
			return nil
		}),
	}
	cmd.Flags().StringVar(&newPIN, "pin", "", "new 4-digit PIN")
	_ = cmd.MarkFlagRequired("pin")
	return cmd
}

func newChildUnpinCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unpin <child>",
		Short: "Remove a child's PIN",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(true, func(ctx context.Context, cmd *cobra.Command, args []string) error {
			c, err := a.parentChild(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.bank.RemoveChildPIN(ctx, c.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "PIN removed for %s\n", c.Name)
			return nil
		}),
	}
}

func newChildAllowanceCommand(a *app) *cobra.Command {
	var (
		amount    string
		frequency string
		interval  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "allowance <child>",
		Short: "Configure a child's recurring allowance",
		Example: `  piggybank child allowance Asha --amount 50 --frequency weekly
  piggybank child allowance Asha --amount 5 --frequency custom --interval 72h`,
		Args: cobra.ExactArgs(1),
		RunE: a.run(true, func(ctx context.Context, cmd *cobra.Command, args []string) error {
			c, err := a.parentChild(ctx, args[0])
			if err != nil {
				return err
			}
			p := bank.AllowanceParams{
				Amount:          parseAmount(amount),
				Frequency:       model.Frequency(frequency),
				IntervalSeconds: int64(interval / time.Second),
			}
			if err := a.bank.ConfigureAllowance(ctx, c.ID, p); err != nil {
				return err
			}
			c, err = a.bank.Child(ctx, c.ID)
			if err != nil {
				return err
			}
			cur, err := a.currency(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now gets %s\n", c.Name, allowanceSummary(c.Allowance, cur))
			return nil
		}),
	}
	cmd.Flags().StringVar(&amount, "amount", "", "allowance amount")
	cmd.Flags().StringVar(&frequency, "frequency", string(model.FrequencyWeekly), "daily, weekly or custom")
	cmd.Flags().DurationVar(&interval, "interval", 0, "interval for the custom frequency, e.g. 72h")
	return cmd
}

func newChildAllowanceClearCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "allowance-clear <child>",
		Short: "Stop a child's recurring allowance",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(true, func(ctx context.Context, cmd *cobra.Command, args []string) error {
			c, err := a.parentChild(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.bank.ClearAllowance(ctx, c.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Allowance cleared for %s\n", c.Name)
			return nil
		}),
	}
}

func optionalArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
