package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/piggybank-dev/piggybank/internal/bank"
)

func newCategoryCommand(a *app) *cobra.Command {
	var childRef string
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage a child's spending categories (parent only)",
	}
	cmd.PersistentFlags().StringVar(&childRef, "child", "", "child name or ID")
	_ = cmd.MarkPersistentFlagRequired("child")

	var percent, fixed string
	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a category, optionally auto-splitting incoming money into it",
		Example: `  piggybank category create Books --child Asha
  piggybank category create Charity --child Asha --percent 10
  piggybank category create Snacks --child Asha --fixed 20`,
		Args: cobra.ExactArgs(1),
		RunE: a.run(true, func(ctx context.Context, cmd *cobra.Command, args []string) error {
			c, err := a.parentChild(ctx, childRef)
			if err != nil {
				return err
			}
			p := bank.CategoryParams{Name: args[0]}
			if cmd.Flags().Changed("percent") {
				p.AutoSplit = true
				p.Percentage = decimalPtr(parsePercent(percent))
			}
			if cmd.Flags().Changed("fixed") {
				p.AutoSplit = true
				p.FixedAmount = decimalPtr(parseAmount(fixed))
			}
			cat, err := a.bank.CreateCategory(ctx, c.ID, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created category %s for %s\n", cat.Name, c.Name)
			return nil
		}),
	}
	createCmd.Flags().StringVar(&percent, "percent", "", "auto-split this percentage of every credit")
	createCmd.Flags().StringVar(&fixed, "fixed", "", "auto-split this fixed amount from every credit")
	createCmd.MarkFlagsMutuallyExclusive("percent", "fixed")

	deleteCmd := &cobra.Command{
		Use:   "delete <category>",
		Short: "Delete an empty category",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(true, func(ctx context.Context, cmd *cobra.Command, args []string) error {
			c, err := a.parentChild(ctx, childRef)
			if err != nil {
				return err
			}
			if err := a.bank.DeleteCategory(ctx, c.ID, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %s\n", args[0])
			return nil
		}),
	}

	addCmd := &cobra.Command{
		Use:   "add <category> <amount>",
		Short: "Increase a category's balance",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(true, func(ctx context.Context, cmd *cobra.Command, args []string) error {
			c, err := a.parentChild(ctx, childRef)
			if err != nil {
				return err
			}
			amount := parseAmount(args[1])
			if err := a.bank.AddToCategory(ctx, c.ID, args[0], amount); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s\n", a.format(ctx, amount), args[0])
			return nil
		}),
	}

	subtractCmd := &cobra.Command{
		Use:   "subtract <category> <amount>",
		Short: "Decrease a category's balance",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(true, func(ctx context.Context, cmd *cobra.Command, args []string) error {
			c, err := a.parentChild(ctx, childRef)
			if err != nil {
				return err
			}
			amount := parseAmount(args[1])
			if err := a.bank.SubtractFromCategory(ctx, c.ID, args[0], amount); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Subtracted %s from %s\n", a.format(ctx, amount), args[0])
			return nil
		}),
	}

	cmd.AddCommand(createCmd, deleteCmd, addCmd, subtractCmd)
	return cmd
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

// parsePercent accepts "20" or "20%".
func parsePercent(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if err != nil {
		return decimal.Zero
	}
	return d
}
