package bank

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/piggybank-dev/piggybank/internal/log"
	"github.com/piggybank-dev/piggybank/internal/model"
	"github.com/piggybank-dev/piggybank/internal/pin"
	"github.com/piggybank-dev/piggybank/internal/state"
)

// SetChildPIN protects a child's account with a PIN and tells the child.
func (s *Service) SetChildPIN(ctx context.Context, childID, newPIN string) error {
	err := s.repo.Update(ctx, func(tx *state.Tx) error {
		digest, err := pin.Hash(newPIN)
		if err != nil {
			return err
		}
		c, err := tx.Child(childID)
		if err != nil {
			return err
		}
		c.PinHash = digest
		tx.NotifyChild(c, model.Notification{
			Type:    model.NotifyPasswordChanged,
			Message: "Your PIN has been updated by your parent",
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("setting child PIN: %w", err)
	}
	s.log.Debug("child PIN set", log.FieldChildID, childID)
	return nil
}

// RemoveChildPIN lets the child log in without a PIN.
func (s *Service) RemoveChildPIN(ctx context.Context, childID string) error {
	err := s.repo.Update(ctx, func(tx *state.Tx) error {
		c, err := tx.Child(childID)
		if err != nil {
			return err
		}
		c.PinHash = ""
		return nil
	})
	if err != nil {
		return fmt.Errorf("removing child PIN: %w", err)
	}
	return nil
}

// AllowanceParams holds parameters for configuring an allowance.
type AllowanceParams struct {
	Amount          decimal.Decimal
	Frequency       model.Frequency
	IntervalSeconds int64 // custom frequency only
}

// ConfigureAllowance sets a child's allowance. The schedule starts now, so the
// first payment comes one period later.
func (s *Service) ConfigureAllowance(ctx context.Context, childID string, p AllowanceParams) error {
	err := s.repo.Update(ctx, func(tx *state.Tx) error {
		if err := model.ValidateAmount("allowance amount", p.Amount); err != nil {
			return err
		}
		if !p.Frequency.Valid() {
			return model.NewValidationError("frequency", fmt.Sprintf("unknown frequency %q", p.Frequency))
		}
		interval := int64(0)
		if p.Frequency == model.FrequencyCustom {
			if p.IntervalSeconds <= 0 {
				return model.NewValidationError("interval", "custom allowance needs a positive interval")
			}
			interval = p.IntervalSeconds
		}
		c, err := tx.Child(childID)
		if err != nil {
			return err
		}
		c.Allowance = &model.Allowance{
			Amount:          p.Amount,
			Frequency:       p.Frequency,
			IntervalSeconds: interval,
			LastDate:        tx.Now(),
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("configuring allowance: %w", err)
	}
	s.log.Debug("allowance configured", log.FieldChildID, childID, log.FieldAmount, p.Amount.StringFixed(2), "frequency", p.Frequency)
	return nil
}

// ClearAllowance removes a child's allowance.
func (s *Service) ClearAllowance(ctx context.Context, childID string) error {
	err := s.repo.Update(ctx, func(tx *state.Tx) error {
		c, err := tx.Child(childID)
		if err != nil {
			return err
		}
		c.Allowance = nil
		return nil
	})
	if err != nil {
		return fmt.Errorf("clearing allowance: %w", err)
	}
	return nil
}
