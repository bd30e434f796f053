package bank

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/piggybank-dev/piggybank/internal/id"
	"github.com/piggybank-dev/piggybank/internal/ledger"
	"github.com/piggybank-dev/piggybank/internal/model"
	"github.com/piggybank-dev/piggybank/internal/state"
)

// CategoryParams holds parameters for creating a category.
type CategoryParams struct {
	Name        string
	AutoSplit   bool
	Percentage  *decimal.Decimal
	FixedAmount *decimal.Decimal
}

func (p CategoryParams) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return model.NewValidationError("name", "must not be empty")
	}
	if !p.AutoSplit {
		return nil
	}
	switch {
	case p.Percentage != nil && p.FixedAmount != nil:
		return model.NewValidationError("split", "choose either a percentage or a fixed amount")
	case p.Percentage != nil:
		if !p.Percentage.IsPositive() || p.Percentage.GreaterThan(hundred) {
			return model.NewValidationError("percentage", "must be between 0 and 100")
		}
	case p.FixedAmount != nil:
		return model.ValidateAmount("fixed amount", *p.FixedAmount)
	default:
		return model.NewValidationError("split", "auto-split needs a percentage or a fixed amount")
	}
	return nil
}

// findCategory resolves a category by ID or case-insensitive name.
func findCategory(c *model.Child, ref string) (*model.Category, error) {
	if cat := c.Category(ref); cat != nil {
		return cat, nil
	}
	if cat := c.CategoryByName(ref); cat != nil {
		return cat, nil
	}
	return nil, &model.NotFoundError{Kind: "category", ID: ref}
}

// CreateCategory adds an empty category to a child.
func (s *Service) CreateCategory(ctx context.Context, childID string, p CategoryParams) (model.Category, error) {
	var cat model.Category
	err := s.repo.Update(ctx, func(tx *state.Tx) error {
		if err := p.validate(); err != nil {
			return err
		}
		c, err := tx.Child(childID)
		if err != nil {
			return err
		}
		name := strings.TrimSpace(p.Name)
		if c.CategoryByName(name) != nil {
			return model.NewValidationError("name", fmt.Sprintf("category %q already exists", name))
		}

		cat = model.Category{ID: id.New(), Name: name, Balance: decimal.Zero, AutoSplit: p.AutoSplit}
		if p.AutoSplit {
			cat.Percentage = p.Percentage
			cat.FixedAmount = p.FixedAmount
		}
		c.Categories = append(c.Categories, cat)
		return nil
	})
	if err != nil {
		return model.Category{}, fmt.Errorf("creating category: %w", err)
	}
	return cat, nil
}

// DeleteCategory removes an empty category.
func (s *Service) DeleteCategory(ctx context.Context, childID, categoryRef string) error {
	err := s.repo.Update(ctx, func(tx *state.Tx) error {
		c, err := tx.Child(childID)
		if err != nil {
			return err
		}
		cat, err := findCategory(c, categoryRef)
		if err != nil {
			return err
		}
		if !cat.Balance.IsZero() {
			return model.NewValidationError("category", fmt.Sprintf("%q still holds %s", cat.Name, formatAmount(tx, cat.Balance)))
		}
		catID := cat.ID
		c.Categories = slices.DeleteFunc(c.Categories, func(k model.Category) bool { return k.ID == catID })
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	return nil
}

// AddToCategory increases a category balance without touching the main balance.
func (s *Service) AddToCategory(ctx context.Context, childID, categoryRef string, amount decimal.Decimal) error {
	err := s.repo.Update(ctx, func(tx *state.Tx) error {
		if err := model.ValidateAmount("amount", amount); err != nil {
			return err
		}
		c, err := tx.Child(childID)
		if err != nil {
			return err
		}
		cat, err := findCategory(c, categoryRef)
		if err != nil {
			return err
		}
		cat.Balance = cat.Balance.Add(amount)
		tx.Record(ledger.Entry{ChildID: c.ID, Kind: ledger.KindCategoryIn, Amount: amount, Balance: c.Balance, Detail: cat.Name})
		return nil
	})
	if err != nil {
		return fmt.Errorf("adding to category: %w", err)
	}
	return nil
}

// SubtractFromCategory decreases a category balance without touching the main balance.
func (s *Service) SubtractFromCategory(ctx context.Context, childID, categoryRef string, amount decimal.Decimal) error {
	err := s.repo.Update(ctx, func(tx *state.Tx) error {
		if err := model.ValidateAmount("amount", amount); err != nil {
			return err
		}
		c, err := tx.Child(childID)
		if err != nil {
			return err
		}
		cat, err := findCategory(c, categoryRef)
		if err != nil {
			return err
		}
		if amount.GreaterThan(cat.Balance) {
			return &model.InsufficientFundsError{Bucket: "category " + cat.Name, Available: cat.Balance, Requested: amount}
		}
		cat.Balance = cat.Balance.Sub(amount)
		tx.Record(ledger.Entry{ChildID: c.ID, Kind: ledger.KindCategoryOut, Amount: amount, Balance: c.Balance, Detail: cat.Name})
		return nil
	})
	if err != nil {
		return fmt.Errorf("subtracting from category: %w", err)
	}
	return nil
}
