// Package withdrawal manages child withdrawal requests awaiting parent approval.
package withdrawal

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/piggybank-dev/piggybank/internal/currency"
	"github.com/piggybank-dev/piggybank/internal/id"
	"github.com/piggybank-dev/piggybank/internal/ledger"
	"github.com/piggybank-dev/piggybank/internal/log"
	"github.com/piggybank-dev/piggybank/internal/model"
	"github.com/piggybank-dev/piggybank/internal/state"
)

// Service runs the request lifecycle: pending, then approved or declined.
type Service struct {
	repo *state.Repository
	log  *log.Logger
}

// NewService creates a withdrawal Service.
func NewService(repo *state.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Discard()
	}
	return &Service{repo: repo, log: logger.WithComponent(log.ComponentWithdrawal)}
}

// Request files a pending withdrawal and notifies the parent.
func (s *Service) Request(ctx context.Context, childID string, amount decimal.Decimal, reason string) (model.WithdrawalRequest, error) {
	var req model.WithdrawalRequest
	err := s.repo.Update(ctx, func(tx *state.Tx) error {
		if err := model.ValidateAmount("amount", amount); err != nil {
			return err
		}
		c, err := tx.Child(childID)
		if err != nil {
			return err
		}
		if amount.GreaterThan(c.Balance) {
			return &model.InsufficientFundsError{Bucket: "balance", Available: c.Balance, Requested: amount}
		}

		req = model.WithdrawalRequest{
			ID:          id.New(),
			ChildID:     c.ID,
			ChildName:   c.Name,
			Amount:      amount,
			Reason:      strings.TrimSpace(reason),
			Status:      model.RequestPending,
			RequestedAt: tx.Now(),
		}
		tx.State.WithdrawalRequests = append(tx.State.WithdrawalRequests, req)

		msg := fmt.Sprintf("%s requested %s withdrawal", c.Name, currency.Format(amount, tx.State.Currency))
		if req.Reason != "" {
			msg += " (" + req.Reason + ")"
		}
		tx.NotifyParent(model.Notification{
			Type:      model.NotifyWithdrawalRequest,
			Message:   msg,
			ChildID:   c.ID,
			ChildName: c.Name,
			RequestID: req.ID,
		}.WithAmount(amount))
		return nil
	})
	if err != nil {
		return model.WithdrawalRequest{}, fmt.Errorf("requesting withdrawal: %w", err)
	}
	s.log.Debug("withdrawal requested", log.FieldChildID, childID, log.FieldRequestID, req.ID, log.FieldAmount, amount.StringFixed(2))
	return req, nil
}

// Approve debits the child and closes the request. If the balance no longer
// covers the amount the request stays pending. Requests that are not pending
// are returned unchanged.
func (s *Service) Approve(ctx context.Context, requestID string) (model.WithdrawalRequest, error) {
	return s.respond(ctx, requestID, model.RequestApproved)
}

// Decline closes the request without moving money. Requests that are not
// pending are returned unchanged.
func (s *Service) Decline(ctx context.Context, requestID string) (model.WithdrawalRequest, error) {
	return s.respond(ctx, requestID, model.RequestDeclined)
}

var errUnchanged = errors.New("request not pending")

func (s *Service) respond(ctx context.Context, requestID string, status model.RequestStatus) (model.WithdrawalRequest, error) {
	var out model.WithdrawalRequest
	err := s.repo.Update(ctx, func(tx *state.Tx) error {
		r, err := tx.Request(requestID)
		if err != nil {
			return err
		}
		out = *r
		if !r.Pending() {
			// Abort the update so nothing is rewritten.
			return errUnchanged
		}

		c, err := tx.Child(r.ChildID)
		if err != nil {
			return err
		}
		amountText := currency.Format(r.Amount, tx.State.Currency)

		if status == model.RequestApproved {
			if r.Amount.GreaterThan(c.Balance) {
				return &model.InsufficientFundsError{Bucket: "balance", Available: c.Balance, Requested: r.Amount}
			}
			c.Balance = c.Balance.Sub(r.Amount)
			tx.Record(ledger.Entry{ChildID: c.ID, Kind: ledger.KindWithdrawal, Amount: r.Amount, Balance: c.Balance, Detail: r.Reason})
			tx.NotifyChild(c, model.Notification{
				Type:      model.NotifyWithdrawalApproved,
				Message:   fmt.Sprintf("Your withdrawal request for %s was approved", amountText),
				RequestID: r.ID,
			}.WithAmount(r.Amount))
		} else {
			tx.NotifyChild(c, model.Notification{
				Type:      model.NotifyWithdrawalDeclined,
				Message:   fmt.Sprintf("Your withdrawal request for %s was declined", amountText),
				RequestID: r.ID,
			}.WithAmount(r.Amount))
		}

		now := tx.Now()
		r.Status = status
		r.RespondedAt = &now
		out = *r
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return out, nil
	}
	if err != nil {
		return model.WithdrawalRequest{}, fmt.Errorf("%s withdrawal: %w", verb(status), err)
	}
	s.log.Debug("withdrawal "+string(status), log.FieldRequestID, requestID)
	return out, nil
}

func verb(status model.RequestStatus) string {
	if status == model.RequestApproved {
		return "approving"
	}
	return "declining"
}

// Get returns one request.
func (s *Service) Get(ctx context.Context, requestID string) (model.WithdrawalRequest, error) {
	st, err := s.repo.Load(ctx)
	if err != nil {
		return model.WithdrawalRequest{}, err
	}
	r := st.Request(requestID)
	if r == nil {
		return model.WithdrawalRequest{}, &model.NotFoundError{Kind: "withdrawal request", ID: requestID}
	}
	return *r, nil
}

// Find resolves a request by full ID or unambiguous ID prefix.
func (s *Service) Find(ctx context.Context, ref string) (model.WithdrawalRequest, error) {
	st, err := s.repo.Load(ctx)
	if err != nil {
		return model.WithdrawalRequest{}, err
	}
	if r := st.Request(ref); r != nil {
		return *r, nil
	}
	var matches []model.WithdrawalRequest
	for _, r := range st.WithdrawalRequests {
		if id.MatchesPrefix(r.ID, ref) {
			matches = append(matches, r)
		}
	}
	switch len(matches) {
	case 0:
		return model.WithdrawalRequest{}, &model.NotFoundError{Kind: "withdrawal request", ID: ref}
	case 1:
		return matches[0], nil
	default:
		return model.WithdrawalRequest{}, model.NewValidationError("request", fmt.Sprintf("%q matches %d requests", ref, len(matches)))
	}
}

// Pending returns every pending request, oldest first.
func (s *Service) Pending(ctx context.Context) ([]model.WithdrawalRequest, error) {
	return s.filter(ctx, func(r model.WithdrawalRequest) bool { return r.Pending() })
}

// ForChild returns a child's requests, newest first.
func (s *Service) ForChild(ctx context.Context, childID string) ([]model.WithdrawalRequest, error) {
	out, err := s.filter(ctx, func(r model.WithdrawalRequest) bool { return r.ChildID == childID })
	if err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}

func (s *Service) filter(ctx context.Context, keep func(model.WithdrawalRequest) bool) ([]model.WithdrawalRequest, error) {
	st, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.WithdrawalRequest
	for _, r := range st.WithdrawalRequests {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out, nil
}
