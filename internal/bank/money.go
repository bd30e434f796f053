package bank

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/piggybank-dev/piggybank/internal/ledger"
	"github.com/piggybank-dev/piggybank/internal/log"
	"github.com/piggybank-dev/piggybank/internal/model"
	"github.com/piggybank-dev/piggybank/internal/state"
)

// Split is the part of a credit routed into one category.
type Split struct {
	CategoryID   string
	CategoryName string
	Amount       decimal.Decimal
}

// CreditResult reports where a credit ended up.
type CreditResult struct {
	Amount decimal.Decimal // gross amount credited
	Net    decimal.Decimal // part left in the main balance
	Splits []Split
}

// SplitTotal sums the category splits.
func (r CreditResult) SplitTotal() decimal.Decimal {
	total := decimal.Zero
	for _, sp := range r.Splits {
		total = total.Add(sp.Amount)
	}
	return total
}

var hundred = decimal.NewFromInt(100)

// planSplits computes auto-split shares for amount in category order. The
// running total never exceeds amount; later categories may receive less or nothing.
func planSplits(categories []model.Category, amount decimal.Decimal) []Split {
	var splits []Split
	remaining := amount
	for _, cat := range categories {
		if !cat.AutoSplit || !remaining.IsPositive() {
			continue
		}
		var share decimal.Decimal
		switch {
		case cat.Percentage != nil:
			share = amount.Mul(*cat.Percentage).Div(hundred).Round(2)
		case cat.FixedAmount != nil:
			share = *cat.FixedAmount
		default:
			continue
		}
		share = decimal.Min(share, remaining)
		if !share.IsPositive() {
			continue
		}
		remaining = remaining.Sub(share)
		splits = append(splits, Split{CategoryID: cat.ID, CategoryName: cat.Name, Amount: share})
	}
	return splits
}

// Credit adds amount to a child's balance, then routes auto-split shares into
// categories. The child receives one money_added notification.
func (s *Service) Credit(ctx context.Context, childID string, amount decimal.Decimal, reason string) (CreditResult, error) {
	var res CreditResult
	err := s.repo.Update(ctx, func(tx *state.Tx) error {
		if err := model.ValidateAmount("amount", amount); err != nil {
			return err
		}
		c, err := tx.Child(childID)
		if err != nil {
			return err
		}

		c.Balance = c.Balance.Add(amount)
		tx.Record(ledger.Entry{ChildID: c.ID, Kind: ledger.KindCredit, Amount: amount, Balance: c.Balance, Detail: reason})

		res = CreditResult{Amount: amount, Splits: planSplits(c.Categories, amount)}
		for _, sp := range res.Splits {
			cat := c.Category(sp.CategoryID)
			cat.Balance = cat.Balance.Add(sp.Amount)
			c.Balance = c.Balance.Sub(sp.Amount)
			tx.Record(ledger.Entry{ChildID: c.ID, Kind: ledger.KindSplit, Amount: sp.Amount, Balance: c.Balance, Detail: cat.Name})
		}
		res.Net = amount.Sub(res.SplitTotal())

		var notes []string
		if reason != "" {
			notes = append(notes, reason)
		}
		if split := res.SplitTotal(); split.IsPositive() {
			notes = append(notes, formatAmount(tx, split)+" split into categories")
		}
		msg := formatAmount(tx, amount) + " has been added to your account"
		if len(notes) > 0 {
			msg += " (" + strings.Join(notes, "; ") + ")"
		}
		tx.NotifyChild(c, model.Notification{Type: model.NotifyMoneyAdded, Message: msg}.WithAmount(amount))
		return nil
	})
	if err != nil {
		return CreditResult{}, fmt.Errorf("crediting: %w", err)
	}
	s.log.Debug("credited", log.FieldChildID, childID, log.FieldAmount, amount.StringFixed(2), "splits", len(res.Splits))
	return res, nil
}

// Debit removes amount from a child's balance. The balance must cover it.
func (s *Service) Debit(ctx context.Context, childID string, amount decimal.Decimal, reason string) error {
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

		c.Balance = c.Balance.Sub(amount)
		tx.Record(ledger.Entry{ChildID: c.ID, Kind: ledger.KindDebit, Amount: amount, Balance: c.Balance, Detail: reason})

		msg := formatAmount(tx, amount) + " has been subtracted from your account"
		if reason != "" {
			msg += " (" + reason + ")"
		}
		tx.NotifyChild(c, model.Notification{Type: model.NotifyMoneySubtracted, Message: msg}.WithAmount(amount))
		return nil
	})
	if err != nil {
		return fmt.Errorf("debiting: %w", err)
	}
	s.log.Debug("debited", log.FieldChildID, childID, log.FieldAmount, amount.StringFixed(2))
	return nil
}

// TransferToSavings moves amount from the balance into the piggy bank.
func (s *Service) TransferToSavings(ctx context.Context, childID string, amount decimal.Decimal) error {
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

		c.Balance = c.Balance.Sub(amount)
		c.PiggyBank = c.PiggyBank.Add(amount)
		tx.Record(ledger.Entry{ChildID: c.ID, Kind: ledger.KindSavingsIn, Amount: amount, Balance: c.Balance})
		tx.NotifyChild(c, model.Notification{
			Type:    model.NotifyMoneyTransferred,
			Message: fmt.Sprintf("Transferred %s to Savings", formatAmount(tx, amount)),
		}.WithAmount(amount))
		return nil
	})
	if err != nil {
		return fmt.Errorf("transferring to savings: %w", err)
	}
	return nil
}

// WithdrawFromSavings moves amount from the piggy bank back into the balance.
func (s *Service) WithdrawFromSavings(ctx context.Context, childID string, amount decimal.Decimal) error {
	err := s.repo.Update(ctx, func(tx *state.Tx) error {
		if err := model.ValidateAmount("amount", amount); err != nil {
			return err
		}
		c, err := tx.Child(childID)
		if err != nil {
			return err
		}
		if amount.GreaterThan(c.PiggyBank) {
			return &model.InsufficientFundsError{Bucket: "savings", Available: c.PiggyBank, Requested: amount}
		}

		c.PiggyBank = c.PiggyBank.Sub(amount)
		c.Balance = c.Balance.Add(amount)
		tx.Record(ledger.Entry{ChildID: c.ID, Kind: ledger.KindSavingsOut, Amount: amount, Balance: c.Balance})
		tx.NotifyChild(c, model.Notification{
			Type:    model.NotifyMoneyWithdrawn,
			Message: fmt.Sprintf("Withdrew %s from Savings", formatAmount(tx, amount)),
		}.WithAmount(amount))
		return nil
	})
	if err != nil {
		return fmt.Errorf("withdrawing from savings: %w", err)
	}
	return nil
}
