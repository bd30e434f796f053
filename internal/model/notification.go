package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// NotificationType tags what kind of event a notification describes.
type NotificationType string

const (
	NotifyMoneyAdded         NotificationType = "money_added"
	NotifyMoneySubtracted    NotificationType = "money_subtracted"
	NotifyAllowance          NotificationType = "allowance"
	NotifyGoalCompleted      NotificationType = "goal_completed"
	NotifyPasswordChanged    NotificationType = "password_changed"
	NotifyFailedLogin        NotificationType = "failed_login"
	NotifyCategorySplit      NotificationType = "category_split" // reserved, never emitted
	NotifyWithdrawalRequest  NotificationType = "withdrawal_request"
	NotifyWithdrawalApproved NotificationType = "withdrawal_approved"
	NotifyWithdrawalDeclined NotificationType = "withdrawal_declined"
	NotifyMoneyTransferred   NotificationType = "money_transferred"
	NotifyMoneyWithdrawn     NotificationType = "money_withdrawn"
)

// Notification is an immutable event record addressed to a child or the parent.
// Only Read changes after creation.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	ChildID   string           `json:"childId,omitempty"`
	ChildName string           `json:"childName,omitempty"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	Read      bool             `json:"read"`
	RequestID string           `json:"requestId,omitempty"`
}

// WithAmount returns a copy of n carrying amount.
func (n Notification) WithAmount(amount decimal.Decimal) Notification {
	n.Amount = &amount
	return n
}
