package state

import (
	"time"

	"github.com/piggybank-dev/piggybank/internal/id"
	"github.com/piggybank-dev/piggybank/internal/ledger"
	"github.com/piggybank-dev/piggybank/internal/model"
)

// Tx is the working copy handed to an Update callback. Notifications and
// ledger entries staged on it are written only if the Update commits.
type Tx struct {
	State *model.AppState

	now           time.Time
	notifications []model.Notification
	entries       []ledger.Entry
}

// Now is the timestamp shared by everything in the transaction.
func (tx *Tx) Now() time.Time {
	return tx.now
}

// Child returns the child with the given ID or a NotFoundError.
func (tx *Tx) Child(childID string) (*model.Child, error) {
	c := tx.State.Child(childID)
	if c == nil {
		return nil, &model.NotFoundError{Kind: "child", ID: childID}
	}
	return c, nil
}

// Request returns the withdrawal request with the given ID or a NotFoundError.
func (tx *Tx) Request(requestID string) (*model.WithdrawalRequest, error) {
	r := tx.State.Request(requestID)
	if r == nil {
		return nil, &model.NotFoundError{Kind: "withdrawal request", ID: requestID}
	}
	return r, nil
}

// NotifyChild stages a notification for c and links it to the child.
func (tx *Tx) NotifyChild(c *model.Child, n model.Notification) model.Notification {
	n = tx.stamp(n)
	n.ChildID = c.ID
	n.ChildName = c.Name
	c.Notifications = append(c.Notifications, n.ID)
	tx.notifications = append(tx.notifications, n)
	return n
}

// NotifyParent appends a notification to the parent's list.
func (tx *Tx) NotifyParent(n model.Notification) model.Notification {
	n = tx.stamp(n)
	tx.State.ParentNotifications = append(tx.State.ParentNotifications, n)
	return n
}

// Record stages a ledger entry.
func (tx *Tx) Record(e ledger.Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = tx.now
	}
	tx.entries = append(tx.entries, e)
}

func (tx *Tx) stamp(n model.Notification) model.Notification {
	if n.ID == "" {
		n.ID = id.New()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = tx.now
	}
	n.Read = false
	return n
}
