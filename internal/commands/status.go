package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/piggybank-dev/piggybank/internal/allowance"
	"github.com/piggybank-dev/piggybank/internal/cli"
	"github.com/piggybank-dev/piggybank/internal/currency"
	"github.com/piggybank-dev/piggybank/internal/id"
	"github.com/piggybank-dev/piggybank/internal/model"
)

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the dashboard for whoever is logged in",
		Args:  cobra.NoArgs,
		RunE: a.run(false, func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			return runStatus(ctx, cmd.OutOrStdout(), a)
		}),
	}
}

func runStatus(ctx context.Context, out io.Writer, a *app) error {
	if err := a.requireSetup(ctx); err != nil {
		return err
	}
	if a.sessions.RequireParent(ctx) == nil {
		return renderParentDashboard(ctx, out, a)
	}
	if childID, err := a.sessions.RequireChild(ctx); err == nil {
		c, err := a.bank.Child(ctx, childID)
		if err != nil {
			return err
		}
		return renderChild(ctx, out, a, c)
	}
	fmt.Fprintln(out, "Not logged in. Use 'piggybank login parent' or 'piggybank login kid <name>'.")
	return nil
}

func renderParentDashboard(ctx context.Context, out io.Writer, a *app) error {
	st, err := a.repo.Load(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, cli.RenderTitle("Parent dashboard"))

	if len(st.Children) == 0 {
		fmt.Fprintln(out, cli.Muted("No children yet. Add one with 'piggybank child add <name>'."))
	} else {
		t := cli.Table{
			Headers:    []string{"Name", "Balance", "Savings", "Total", "Goals", "Allowance", "PIN"},
			RightAlign: map[int]bool{1: true, 2: true, 3: true},
		}
		for _, c := range st.Children {
			done := 0
			total := c.Balance.Add(c.PiggyBank).Add(c.CategoryTotal())
			for _, g := range c.Goals {
				total = total.Add(g.CurrentAmount)
				if g.Completed {
					done++
				}
			}
			lock := ""
			if c.HasPIN() {
				lock = "yes"
			}
			t.Rows = append(t.Rows, []string{
				c.Name,
				currency.Format(c.Balance, st.Currency),
				currency.Format(c.PiggyBank, st.Currency),
				currency.FormatShort(total, st.Currency),
				fmt.Sprintf("%d/%d", done, len(c.Goals)),
				allowanceSummary(c.Allowance, st.Currency),
				lock,
			})
		}
		fmt.Fprintln(out, cli.RenderTable(t))
	}

	pending := 0
	for _, r := range st.WithdrawalRequests {
		if r.Pending() {
			pending++
		}
	}
	unread := 0
	for _, n := range st.ParentNotifications {
		if !n.Read {
			unread++
		}
	}
	if pending > 0 {
		fmt.Fprintln(out, cli.Warn(fmt.Sprintf("%d pending withdrawal request(s)", pending)))
	}
	if unread > 0 {
		fmt.Fprintln(out, cli.Warn(fmt.Sprintf("%d unread notification(s)", unread)))
	}
	return nil
}

func allowanceSummary(al *model.Allowance, cur model.Currency) string {
	if al == nil {
		return "-"
	}
	return currency.Format(al.Amount, cur) + " " + cli.FormatFrequency(al)
}

// renderChild prints a child's balances, categories, goals and allowance.
func renderChild(ctx context.Context, out io.Writer, a *app, c model.Child) error {
	cur, err := a.currency(ctx)
	if err != nil {
		return err
	}
	unread, err := a.repo.UnreadCount(ctx, c.ID)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, cli.RenderTitle(c.Name))
	fmt.Fprintf(out, "Balance:  %s\n", currency.Format(c.Balance, cur))
	fmt.Fprintf(out, "Savings:  %s\n", currency.Format(c.PiggyBank, cur))
	fmt.Fprintf(out, "ID:       %s\n", cli.Muted(id.Short(c.ID)))

	if len(c.Categories) > 0 {
		t := cli.Table{
			Title:      "Categories",
			Headers:    []string{"Name", "Balance", "Auto-split"},
			RightAlign: map[int]bool{1: true},
		}
		for _, cat := range c.Categories {
			t.Rows = append(t.Rows, []string{cat.Name, currency.Format(cat.Balance, cur), splitRule(cat, cur)})
		}
		fmt.Fprintln(out, cli.RenderTable(t))
	}

	if len(c.Goals) > 0 {
		t := cli.Table{
			Title:      "Goals",
			Headers:    []string{"Name", "Saved", "Target", "Progress"},
			RightAlign: map[int]bool{1: true, 2: true},
		}
		for _, g := range c.Goals {
			progress := cli.RenderProgressBar(g.CurrentAmount, g.TargetAmount, 20)
			if g.Completed {
				progress = cli.Success("completed " + cli.FormatDate(*g.CompletedDate))
			}
			t.Rows = append(t.Rows, []string{g.Name, currency.Format(g.CurrentAmount, cur), currency.Format(g.TargetAmount, cur), progress})
		}
		fmt.Fprintln(out, cli.RenderTable(t))
	}

	if c.Allowance != nil {
		line := "Allowance: " + allowanceSummary(c.Allowance, cur)
		if d, ok := allowance.TimeUntil(c.Allowance, a.clock.Now()); ok {
			line += ", next in " + allowance.FormatTimeUntil(d)
		}
		fmt.Fprintln(out, line)
	}
	if unread > 0 {
		fmt.Fprintln(out, cli.Warn(fmt.Sprintf("%d unread notification(s)", unread)))
	}
	return nil
}

func splitRule(cat model.Category, cur model.Currency) string {
	switch {
	case !cat.AutoSplit:
		return "-"
	case cat.Percentage != nil:
		return cat.Percentage.String() + "%"
	case cat.FixedAmount != nil:
		return currency.Format(*cat.FixedAmount, cur)
	default:
		return "-"
	}
}

