package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/piggybank-dev/piggybank/internal/cli"
	"github.com/piggybank-dev/piggybank/internal/state"
)

func newCheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the stored data is readable and consistent",
		Args:  cobra.NoArgs,
		RunE: a.run(false, func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			return runCheck(ctx, cmd, a)
		}),
	}
}

func runCheck(ctx context.Context, cmd *cobra.Command, a *app) error {
	out := cmd.OutOrStdout()

	raw, ok, err := a.store.Get(ctx, state.KeyAppState)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(out, cli.Muted("No data yet."))
		return nil
	}
	st, err := state.Decode(raw)
	if err != nil {
		return err
	}

	if _, err := a.ledger.Read(); err != nil {
		return fmt.Errorf("ledger: %w", err)
	}

	vs := state.Validate(st)
	if len(vs) == 0 {
		fmt.Fprintln(out, cli.Success("OK")+fmt.Sprintf(" %d children, %d withdrawal requests", len(st.Children), len(st.WithdrawalRequests)))
		return nil
	}
	for _, v := range vs {
		fmt.Fprintln(out, cli.Error("✗")+" "+v.Error())
	}
	return fmt.Errorf("%d problem(s) found", len(vs))
}
