package state

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/piggybank-dev/piggybank/internal/id"
	"github.com/piggybank-dev/piggybank/internal/log"
	"github.com/piggybank-dev/piggybank/internal/model"
)

// Notification loads a notification body. ok is false if it does not exist.
func (r *Repository) Notification(ctx context.Context, notificationID string) (model.Notification, bool, error) {
	raw, ok, err := r.store.Get(ctx, id.NotificationKey(notificationID))
	if err != nil {
		return model.Notification{}, false, fmt.Errorf("reading notification %s: %w", notificationID, err)
	}
	if !ok {
		return model.Notification{}, false, nil
	}
	var n model.Notification
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		return model.Notification{}, false, fmt.Errorf("decoding notification %s: %w", notificationID, err)
	}
	return n, true, nil
}

// SaveNotification writes a notification body.
func (r *Repository) SaveNotification(ctx context.Context, n model.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encoding notification %s: %w", n.ID, err)
	}
	if err := r.store.Set(ctx, id.NotificationKey(n.ID), string(data)); err != nil {
		return fmt.Errorf("writing notification %s: %w", n.ID, err)
	}
	return nil
}

// ChildNotifications returns a child's notifications, newest first.
// IDs whose body is missing or unreadable are skipped.
func (r *Repository) ChildNotifications(ctx context.Context, childID string) ([]model.Notification, error) {
	st, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	c := st.Child(childID)
	if c == nil {
		return nil, &model.NotFoundError{Kind: "child", ID: childID}
	}

	out := make([]model.Notification, 0, len(c.Notifications))
	for i := len(c.Notifications) - 1; i >= 0; i-- {
		n, ok, err := r.Notification(ctx, c.Notifications[i])
		if err != nil {
			r.log.Warn("skipping notification", log.FieldChildID, childID, log.FieldError, err)
			continue
		}
		if ok {
			out = append(out, n)
		}
	}
	return out, nil
}

// MarkNotificationRead flags a notification as read. Marking twice is harmless.
func (r *Repository) MarkNotificationRead(ctx context.Context, notificationID string) error {
	n, ok, err := r.Notification(ctx, notificationID)
	if err != nil {
		return err
	}
	if !ok {
		return &model.NotFoundError{Kind: "notification", ID: notificationID}
	}
	if n.Read {
		return nil
	}
	n.Read = true
	return r.SaveNotification(ctx, n)
}

// UnreadCount returns how many of a child's notifications are unread.
func (r *Repository) UnreadCount(ctx context.Context, childID string) (int, error) {
	ns, err := r.ChildNotifications(ctx, childID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, n := range ns {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

// ParentNotifications returns the parent's notifications, newest first.
func (r *Repository) ParentNotifications(ctx context.Context) ([]model.Notification, error) {
	st, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := slices.Clone(st.ParentNotifications)
	slices.Reverse(out)
	return out, nil
}

// MarkParentNotificationRead flags a parent notification as read.
func (r *Repository) MarkParentNotificationRead(ctx context.Context, notificationID string) error {
	return r.Update(ctx, func(tx *Tx) error {
		for i := range tx.State.ParentNotifications {
			if tx.State.ParentNotifications[i].ID == notificationID {
				tx.State.ParentNotifications[i].Read = true
				return nil
			}
		}
		return &model.NotFoundError{Kind: "notification", ID: notificationID}
	})
}
