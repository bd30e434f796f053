package allowance

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/piggybank-dev/piggybank/internal/currency"
	"github.com/piggybank-dev/piggybank/internal/ledger"
	"github.com/piggybank-dev/piggybank/internal/log"
	"github.com/piggybank-dev/piggybank/internal/model"
	"github.com/piggybank-dev/piggybank/internal/state"
)

// Engine credits due allowances.
type Engine struct {
	repo *state.Repository
	log  *log.Logger
}

// NewEngine creates an allowance Engine.
func NewEngine(repo *state.Repository, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Discard()
	}
	return &Engine{repo: repo, log: logger.WithComponent(log.ComponentAllowance)}
}

// Payment describes one credited allowance.
type Payment struct {
	ChildID   string
	ChildName string
	Amount    decimal.Decimal
}

// Apply credits c's allowance inside tx: balance grows by the amount, the last
// date moves to now and the child is notified. Categories are not split.
func Apply(tx *state.Tx, c *model.Child) Payment {
	amount := c.Allowance.Amount
	c.Balance = c.Balance.Add(amount)
	c.Allowance.LastDate = tx.Now()

	tx.NotifyChild(c, model.Notification{
		Type:    model.NotifyAllowance,
		Message: fmt.Sprintf("You received %s as allowance!", currency.Format(amount, tx.State.Currency)),
	}.WithAmount(amount))
	tx.Record(ledger.Entry{
		ChildID: c.ID,
		Kind:    ledger.KindAllowance,
		Amount:  amount,
		Balance: c.Balance,
		Detail:  string(c.Allowance.Frequency),
	})
	return Payment{ChildID: c.ID, ChildName: c.Name, Amount: amount}
}

// Sweep credits every due child once per calendar day. A sweep on a day that
// has already been swept does nothing.
func (e *Engine) Sweep(ctx context.Context) ([]Payment, error) {
	now := e.repo.Clock().Now()
	today := now.Format(state.DateLayout)

	last, err := e.repo.LastAllowanceCheck(ctx)
	if err != nil {
		return nil, err
	}
	if last == today {
		e.log.Debug("allowance already checked today", "date", today)
		return nil, nil
	}

	due := false
	err = e.repo.View(ctx, func(st *model.AppState) error {
		for i := range st.Children {
			due = due || IsDue(st.Children[i].Allowance, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !due {
		return nil, e.repo.SetLastAllowanceCheck(ctx, now)
	}

	var paid []Payment
	err = e.repo.Update(ctx, func(tx *state.Tx) error {
		paid = nil
		for i := range tx.State.Children {
			c := &tx.State.Children[i]
			if IsDue(c.Allowance, tx.Now()) {
				paid = append(paid, Apply(tx, c))
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("applying allowances: %w", err)
	}

	if err := e.repo.SetLastAllowanceCheck(ctx, now); err != nil {
		return paid, err
	}
	for _, p := range paid {
		e.log.Info("allowance credited", log.FieldChildID, p.ChildID, log.FieldAmount, p.Amount.StringFixed(2))
	}
	return paid, nil
}

// SweepChild credits one child's allowance if it is due, regardless of the daily marker.
// ok is false when nothing was due.
func (e *Engine) SweepChild(ctx context.Context, childID string) (Payment, bool, error) {
	var (
		p  Payment
		ok bool
	)
	err := e.repo.Update(ctx, func(tx *state.Tx) error {
		c, err := tx.Child(childID)
		if err != nil {
			return err
		}
		if IsDue(c.Allowance, tx.Now()) {
			p, ok = Apply(tx, c), true
		}
		return nil
	})
	if err != nil {
		return Payment{}, false, err
	}
	if ok {
		e.log.Info("allowance credited", log.FieldChildID, p.ChildID, log.FieldAmount, p.Amount.StringFixed(2))
	}
	return p, ok, nil
}
