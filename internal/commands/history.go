package commands

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/piggybank-dev/piggybank/internal/cli"
	"github.com/piggybank-dev/piggybank/internal/currency"
	"github.com/piggybank-dev/piggybank/internal/ledger"
)

func newHistoryCommand(a *app) *cobra.Command {
	var childRef string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded balance movements, newest first",
		Args:  cobra.NoArgs,
		RunE: a.run(false, func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			entries, err := a.ledger.Read()
			if err != nil {
				return err
			}

			if childRef != "" || a.sessions.RequireParent(ctx) != nil {
				c, err := a.actingChild(ctx, childRef)
				if err != nil {
					return err
				}
				entries = ledger.ForChild(entries, c.ID)
			}

			st, err := a.repo.Load(ctx)
			if err != nil {
				return err
			}
			names := make(map[string]string, len(st.Children))
			for _, c := range st.Children {
				names[c.ID] = c.Name
			}

			slices.Reverse(entries)
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, cli.Muted("No history yet."))
				return nil
			}

			t := cli.Table{
				Headers:    []string{"When", "Child", "Kind", "Amount", "Balance", "Detail"},
				RightAlign: map[int]bool{3: true, 4: true},
			}
			for _, e := range entries {
				name, ok := names[e.ChildID]
				if !ok {
					name = cli.Muted("(deleted)")
				}
				t.Rows = append(t.Rows, []string{
					cli.FormatTimestamp(e.Timestamp),
					name,
					string(e.Kind),
					currency.Format(e.Amount, st.Currency),
					currency.Format(e.Balance, st.Currency),
					e.Detail,
				})
			}
			fmt.Fprintln(out, cli.RenderTable(t))
			return nil
		}),
	}
	cmd.Flags().StringVar(&childRef, "child", "", "child name or ID (parent sessions)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries to show; 0 shows all")

	return cmd
}
