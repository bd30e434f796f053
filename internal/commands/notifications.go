package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/piggybank-dev/piggybank/internal/cli"
	"github.com/piggybank-dev/piggybank/internal/id"
	"github.com/piggybank-dev/piggybank/internal/model"
)

func newNotificationsCommand(a *app) *cobra.Command {
	var childRef string
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"inbox"},
		Short:   "Show and acknowledge notifications",
		Long: `Show and acknowledge notifications. A parent sees the parent inbox, or a
child's inbox with --child. A logged-in child sees their own.`,
	}
	cmd.PersistentFlags().StringVar(&childRef, "child", "", "child name or ID (parent sessions)")

	var unreadOnly bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications, newest first",
		Args:  cobra.NoArgs,
		RunE: a.run(false, func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			ns, err := a.inbox(ctx, childRef)
			if err != nil {
				return err
			}
			renderNotifications(cmd.OutOrStdout(), ns, unreadOnly, a.clock.Now())
			return nil
		}),
	}
	listCmd.Flags().BoolVar(&unreadOnly, "unread", false, "only unread notifications")

	readCmd := &cobra.Command{
		Use:   "read <notification|all>",
		Short: "Mark a notification, or all of them, as read",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(true, func(ctx context.Context, cmd *cobra.Command, args []string) error {
			ns, err := a.inbox(ctx, childRef)
			if err != nil {
				return err
			}
			parent := childRef == "" && a.sessions.RequireParent(ctx) == nil

			var targets []model.Notification
			if args[0] == "all" {
				for _, n := range ns {
					if !n.Read {
						targets = append(targets, n)
					}
				}
			} else {
				n, err := matchNotification(ns, args[0])
				if err != nil {
					return err
				}
				targets = append(targets, n)
			}

			for _, n := range targets {
				if parent {
					err = a.repo.MarkParentNotificationRead(ctx, n.ID)
				} else {
					err = a.repo.MarkNotificationRead(ctx, n.ID)
				}
				if err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %d notification(s) as read\n", len(targets))
			return nil
		}),
	}

	cmd.AddCommand(listCmd, readCmd)
	return cmd
}

// inbox returns the notifications the caller may see.
func (a *app) inbox(ctx context.Context, childRef string) ([]model.Notification, error) {
	if childRef == "" && a.sessions.RequireParent(ctx) == nil {
		return a.repo.ParentNotifications(ctx)
	}
	c, err := a.actingChild(ctx, childRef)
	if err != nil {
		return nil, err
	}
	return a.repo.ChildNotifications(ctx, c.ID)
}

func matchNotification(ns []model.Notification, ref string) (model.Notification, error) {
	var matches []model.Notification
	for _, n := range ns {
		if n.ID == ref {
			return n, nil
		}
		if id.MatchesPrefix(n.ID, ref) {
			matches = append(matches, n)
		}
	}
	switch len(matches) {
	case 0:
		return model.Notification{}, &model.NotFoundError{Kind: "notification", ID: ref}
	case 1:
		return matches[0], nil
	default:
		return model.Notification{}, model.NewValidationError("notification", fmt.Sprintf("%q matches %d notifications", ref, len(matches)))
	}
}

func renderNotifications(out io.Writer, ns []model.Notification, unreadOnly bool, now time.Time) {
	t := cli.Table{Headers: []string{"", "ID", "When", "Message"}}
	for _, n := range ns {
		if unreadOnly && n.Read {
			continue
		}
		t.Rows = append(t.Rows, []string{cli.Unread(n.Read), id.Short(n.ID), cli.FormatAgo(n.Timestamp, now), n.Message})
	}
	if len(t.Rows) == 0 {
		fmt.Fprintln(out, cli.Muted("No notifications."))
		return
	}
	fmt.Fprintln(out, cli.RenderTable(t))
}
