// Package bank implements the balance operations on child accounts.
package bank

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/piggybank-dev/piggybank/internal/currency"
	"github.com/piggybank-dev/piggybank/internal/id"
	"github.com/piggybank-dev/piggybank/internal/log"
	"github.com/piggybank-dev/piggybank/internal/model"
	"github.com/piggybank-dev/piggybank/internal/state"
)

// Service provides business logic for child accounts.
type Service struct {
	repo *state.Repository
	log  *log.Logger
}

// NewService creates a bank Service.
func NewService(repo *state.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Discard()
	}
	return &Service{repo: repo, log: logger.WithComponent(log.ComponentBank)}
}

// AddChild creates a child profile. Names must be non-empty and unique ignoring case.
func (s *Service) AddChild(ctx context.Context, name string) (model.Child, error) {
	name = strings.TrimSpace(name)
	var child model.Child
	err := s.repo.Update(ctx, func(tx *state.Tx) error {
		if name == "" {
			return model.NewValidationError("name", "must not be empty")
		}
		for _, c := range tx.State.Children {
			if strings.EqualFold(c.Name, name) {
				return model.NewValidationError("name", fmt.Sprintf("a child named %q already exists", c.Name))
			}
		}
		child = model.Child{
			ID:            id.New(),
			Name:          name,
			Balance:       decimal.Zero,
			PiggyBank:     decimal.Zero,
			Categories:    []model.Category{},
			Goals:         []model.Goal{},
			Notifications: []string{},
			CreatedAt:     tx.Now(),
		}
		tx.State.Children = append(tx.State.Children, child)
		return nil
	})
	if err != nil {
		return model.Child{}, fmt.Errorf("adding child: %w", err)
	}
	s.log.Debug("child added", log.FieldChildID, child.ID)
	return child, nil
}

// DeleteChild removes a child. Their pending withdrawal requests are declined.
func (s *Service) DeleteChild(ctx context.Context, childID string) error {
	err := s.repo.Update(ctx, func(tx *state.Tx) error {
		if _, err := tx.Child(childID); err != nil {
			return err
		}
		tx.State.Children = slices.DeleteFunc(tx.State.Children, func(c model.Child) bool {
			return c.ID == childID
		})
		now := tx.Now()
		for i := range tx.State.WithdrawalRequests {
			r := &tx.State.WithdrawalRequests[i]
			if r.ChildID == childID && r.Pending() {
				r.Status = model.RequestDeclined
				r.RespondedAt = &now
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting child: %w", err)
	}
	s.log.Debug("child deleted", log.FieldChildID, childID)
	return nil
}

// Child returns a copy of one child.
func (s *Service) Child(ctx context.Context, childID string) (model.Child, error) {
	st, err := s.repo.Load(ctx)
	if err != nil {
		return model.Child{}, err
	}
	c := st.Child(childID)
	if c == nil {
		return model.Child{}, &model.NotFoundError{Kind: "child", ID: childID}
	}
	return *c, nil
}

// Children returns every child in creation order.
func (s *Service) Children(ctx context.Context) ([]model.Child, error) {
	st, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return st.Children, nil
}

// FindChild resolves a user-typed reference: an exact ID, a name (ignoring
// case) or an unambiguous ID prefix.
func (s *Service) FindChild(ctx context.Context, ref string) (model.Child, error) {
	children, err := s.Children(ctx)
	if err != nil {
		return model.Child{}, err
	}
	for _, c := range children {
		if c.ID == ref || strings.EqualFold(c.Name, ref) {
			return c, nil
		}
	}
	var matches []model.Child
	for _, c := range children {
		if id.MatchesPrefix(c.ID, ref) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return model.Child{}, &model.NotFoundError{Kind: "child", ID: ref}
	case 1:
		return matches[0], nil
	default:
		return model.Child{}, model.NewValidationError("child", fmt.Sprintf("%q matches %d children", ref, len(matches)))
	}
}

func formatAmount(tx *state.Tx, amount decimal.Decimal) string {
	return currency.Format(amount, tx.State.Currency)
}
