package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus is the lifecycle state of a withdrawal request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestDeclined RequestStatus = "declined"
)

// WithdrawalRequest is a child's request to take money out, pending parent approval.
type WithdrawalRequest struct {
	ID          string          `json:"id"`
	ChildID     string          `json:"childId"`
	ChildName   string          `json:"childName"`
	Amount      decimal.Decimal `json:"amount"`
	Reason      string          `json:"reason,omitempty"`
	Status      RequestStatus   `json:"status"`
	RequestedAt time.Time       `json:"requestedAt"`
	RespondedAt *time.Time      `json:"respondedAt,omitempty"`
}

// Pending reports whether the request can still be approved or declined.
func (r WithdrawalRequest) Pending() bool {
	return r.Status == RequestPending
}
