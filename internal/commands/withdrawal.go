package commands

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/piggybank-dev/piggybank/internal/cli"
	"github.com/piggybank-dev/piggybank/internal/currency"
	"github.com/piggybank-dev/piggybank/internal/id"
	"github.com/piggybank-dev/piggybank/internal/model"
)

func newWithdrawalCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "withdrawal",
		Aliases: []string{"withdrawals"},
		Short:   "Request, approve and decline withdrawals",
	}

	var childRef, reason string
	requestCmd := &cobra.Command{
		Use:   "request <amount>",
		Short: "Ask the parent to take money out of the balance",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(true, func(ctx context.Context, cmd *cobra.Command, args []string) error {
			c, err := a.actingChild(ctx, childRef)
			if err != nil {
				return err
			}
			req, err := a.withdrawals.Request(ctx, c.ID, parseAmount(args[0]), reason)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Requested %s (%s); waiting for approval\n", a.format(ctx, req.Amount), id.Short(req.ID))
			return nil
		}),
	}
	requestCmd.Flags().StringVar(&childRef, "child", "", "child name or ID (parent sessions)")
	requestCmd.Flags().StringVar(&reason, "reason", "", "what the money is for")

	approveCmd := &cobra.Command{
		Use:   "approve <request>",
		Short: "Approve a pending request and debit the child",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(true, func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return runRespond(ctx, cmd.OutOrStdout(), a, args[0], true)
		}),
	}

	declineCmd := &cobra.Command{
		Use:   "decline <request>",
		Short: "Decline a pending request",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(true, func(ctx context.Context, cmd *cobra.Command, args []string) error {
			return runRespond(ctx, cmd.OutOrStdout(), a, args[0], false)
		}),
	}

	var all bool
	var listChild string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List withdrawal requests",
		Long: `List withdrawal requests. Parents see pending requests, or every request
with --all. Children see their own requests.`,
		Args: cobra.NoArgs,
		RunE: a.run(false, func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			return runWithdrawalList(ctx, cmd.OutOrStdout(), a, listChild, all)
		}),
	}
	listCmd.Flags().BoolVar(&all, "all", false, "include answered requests")
	listCmd.Flags().StringVar(&listChild, "child", "", "only this child's requests (parent sessions)")

	cmd.AddCommand(requestCmd, approveCmd, declineCmd, listCmd)
	return cmd
}

func runRespond(ctx context.Context, out io.Writer, a *app, ref string, approve bool) error {
	if err := a.requireParent(ctx); err != nil {
		return err
	}
	req, err := a.withdrawals.Find(ctx, ref)
	if err != nil {
		return err
	}

	var updated model.WithdrawalRequest
	if approve {
		updated, err = a.withdrawals.Approve(ctx, req.ID)
	} else {
		updated, err = a.withdrawals.Decline(ctx, req.ID)
	}
	if err != nil {
		return err
	}
	if req.Status != model.RequestPending {
		fmt.Fprintf(out, "Request %s was already %s\n", id.Short(req.ID), req.Status)
		return nil
	}
	fmt.Fprintf(out, "%s %s for %s\n", cli.FormatStatus(updated.Status), a.format(ctx, updated.Amount), updated.ChildName)
	return nil
}

func runWithdrawalList(ctx context.Context, out io.Writer, a *app, childRef string, all bool) error {
	var (
		reqs []model.WithdrawalRequest
		err  error
	)
	switch {
	case childRef != "" || a.sessions.RequireParent(ctx) != nil:
		c, cerr := a.actingChild(ctx, childRef)
		if cerr != nil {
			return cerr
		}
		reqs, err = a.withdrawals.ForChild(ctx, c.ID)
	case all:
		var st *model.AppState
		st, err = a.repo.Load(ctx)
		if err == nil {
			reqs = slices.Clone(st.WithdrawalRequests)
			slices.Reverse(reqs)
		}
	default:
		reqs, err = a.withdrawals.Pending(ctx)
	}
	if err != nil {
		return err
	}

	if len(reqs) == 0 {
		fmt.Fprintln(out, cli.Muted("No withdrawal requests."))
		return nil
	}
	cur, err := a.currency(ctx)
	if err != nil {
		return err
	}
	t := cli.Table{
		Headers:    []string{"ID", "Child", "Amount", "Reason", "Status", "Requested"},
		RightAlign: map[int]bool{2: true},
	}
	for _, r := range reqs {
		t.Rows = append(t.Rows, []string{
			id.Short(r.ID),
			r.ChildName,
			currency.Format(r.Amount, cur),
			r.Reason,
			cli.FormatStatus(r.Status),
			cli.FormatTimestamp(r.RequestedAt),
		})
	}
	fmt.Fprintln(out, cli.RenderTable(t))
	return nil
}
