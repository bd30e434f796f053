package bank

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/piggybank-dev/piggybank/internal/id"
	"github.com/piggybank-dev/piggybank/internal/ledger"
	"github.com/piggybank-dev/piggybank/internal/log"
	"github.com/piggybank-dev/piggybank/internal/model"
	"github.com/piggybank-dev/piggybank/internal/state"
)

// Contribution reports money moved into a goal.
type Contribution struct {
	Amount    decimal.Decimal
	Completed bool // the goal was completed by this contribution
}

func findGoal(c *model.Child, ref string) (*model.Goal, error) {
	if g := c.Goal(ref); g != nil {
		return g, nil
	}
	if g := c.GoalByName(ref); g != nil {
		return g, nil
	}
	return nil, &model.NotFoundError{Kind: "goal", ID: ref}
}

// CreateGoal adds a goal with a positive target.
func (s *Service) CreateGoal(ctx context.Context, childID, name string, target decimal.Decimal) (model.Goal, error) {
	name = strings.TrimSpace(name)
	var g model.Goal
	err := s.repo.Update(ctx, func(tx *state.Tx) error {
		if name == "" {
			return model.NewValidationError("name", "must not be empty")
		}
		if err := model.ValidateAmount("target", target); err != nil {
			return err
		}
		c, err := tx.Child(childID)
		if err != nil {
			return err
		}
		if c.GoalByName(name) != nil {
			return model.NewValidationError("name", fmt.Sprintf("goal %q already exists", name))
		}
		g = model.Goal{ID: id.New(), Name: name, TargetAmount: target, CurrentAmount: decimal.Zero}
		c.Goals = append(c.Goals, g)
		return nil
	})
	if err != nil {
		return model.Goal{}, fmt.Errorf("creating goal: %w", err)
	}
	return g, nil
}

// moveIntoGoal shifts amount from the balance into g and completes it once the target is met.
func moveIntoGoal(tx *state.Tx, c *model.Child, g *model.Goal, amount decimal.Decimal) Contribution {
	c.Balance = c.Balance.Sub(amount)
	g.CurrentAmount = g.CurrentAmount.Add(amount)
	tx.Record(ledger.Entry{ChildID: c.ID, Kind: ledger.KindGoalIn, Amount: amount, Balance: c.Balance, Detail: g.Name})

	res := Contribution{Amount: amount}
	if !g.Completed && g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount) {
		now := tx.Now()
		g.Completed = true
		g.CompletedDate = &now
		res.Completed = true
		tx.NotifyChild(c, model.Notification{
			Type:    model.NotifyGoalCompleted,
			Message: fmt.Sprintf(`Congratulations! You completed the goal "%s"!`, g.Name),
		}.WithAmount(g.TargetAmount))
	}
	return res
}

// ContributeToGoal moves as much of the balance as the goal still needs.
func (s *Service) ContributeToGoal(ctx context.Context, childID, goalRef string) (Contribution, error) {
	var res Contribution
	err := s.repo.Update(ctx, func(tx *state.Tx) error {
		c, err := tx.Child(childID)
		if err != nil {
			return err
		}
		g, err := findGoal(c, goalRef)
		if err != nil {
			return err
		}
		if g.Completed {
			return model.NewValidationError("goal", fmt.Sprintf("%q is already completed", g.Name))
		}
		if !c.Balance.IsPositive() {
			return &model.InsufficientFundsError{Bucket: "balance", Available: c.Balance, Requested: g.Remaining()}
		}
		res = moveIntoGoal(tx, c, g, decimal.Min(c.Balance, g.Remaining()))
		return nil
	})
	if err != nil {
		return Contribution{}, fmt.Errorf("contributing to goal: %w", err)
	}
	s.log.Debug("goal contribution", log.FieldChildID, childID, log.FieldAmount, res.Amount.StringFixed(2), "completed", res.Completed)
	return res, nil
}

// AddToGoal moves up to amount from the balance into a goal, capped at what the goal still needs.
func (s *Service) AddToGoal(ctx context.Context, childID, goalRef string, amount decimal.Decimal) (Contribution, error) {
	var res Contribution
	err := s.repo.Update(ctx, func(tx *state.Tx) error {
		if err := model.ValidateAmount("amount", amount); err != nil {
			return err
		}
		c, err := tx.Child(childID)
		if err != nil {
			return err
		}
		g, err := findGoal(c, goalRef)
		if err != nil {
			return err
		}
		if g.Completed {
			return model.NewValidationError("goal", fmt.Sprintf("%q is already completed", g.Name))
		}
		move := decimal.Min(amount, g.Remaining())
		if move.GreaterThan(c.Balance) {
			return &model.InsufficientFundsError{Bucket: "balance", Available: c.Balance, Requested: move}
		}
		res = moveIntoGoal(tx, c, g, move)
		return nil
	})
	if err != nil {
		return Contribution{}, fmt.Errorf("adding to goal: %w", err)
	}
	return res, nil
}

// SubtractFromGoal returns amount from a goal to the balance. A completed goal
// that drops below its target is no longer completed.
func (s *Service) SubtractFromGoal(ctx context.Context, childID, goalRef string, amount decimal.Decimal) error {
	err := s.repo.Update(ctx, func(tx *state.Tx) error {
		if err := model.ValidateAmount("amount", amount); err != nil {
			return err
		}
		c, err := tx.Child(childID)
		if err != nil {
			return err
		}
		g, err := findGoal(c, goalRef)
		if err != nil {
			return err
		}
		if amount.GreaterThan(g.CurrentAmount) {
			return &model.InsufficientFundsError{Bucket: "goal " + g.Name, Available: g.CurrentAmount, Requested: amount}
		}
		g.CurrentAmount = g.CurrentAmount.Sub(amount)
		c.Balance = c.Balance.Add(amount)
		if g.CurrentAmount.LessThan(g.TargetAmount) {
			g.Completed = false
			g.CompletedDate = nil
		}
		tx.Record(ledger.Entry{ChildID: c.ID, Kind: ledger.KindGoalOut, Amount: amount, Balance: c.Balance, Detail: g.Name})
		return nil
	})
	if err != nil {
		return fmt.Errorf("subtracting from goal: %w", err)
	}
	return nil
}

// DeleteGoal removes a goal that holds no money.
func (s *Service) DeleteGoal(ctx context.Context, childID, goalRef string) error {
	err := s.repo.Update(ctx, func(tx *state.Tx) error {
		c, err := tx.Child(childID)
		if err != nil {
			return err
		}
		g, err := findGoal(c, goalRef)
		if err != nil {
			return err
		}
		if !g.CurrentAmount.IsZero() {
			return model.NewValidationError("goal", fmt.Sprintf("%q still holds %s", g.Name, formatAmount(tx, g.CurrentAmount)))
		}
		goalID := g.ID
		c.Goals = slices.DeleteFunc(c.Goals, func(x model.Goal) bool { return x.ID == goalID })
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting goal: %w", err)
	}
	return nil
}
