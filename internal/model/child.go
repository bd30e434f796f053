package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Frequency controls how often a child's allowance comes due.
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
	FrequencyCustom Frequency = "custom"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyCustom:
		return true
	}
	return false
}

// Allowance is a child's recurring allowance configuration.
type Allowance struct {
	Amount          decimal.Decimal `json:"amount"`
	Frequency       Frequency       `json:"frequency"`
	IntervalSeconds int64           `json:"intervalSeconds,omitempty"` // custom frequency only
	LastDate        time.Time       `json:"lastAllowanceDate"`
}

// Category is a named sub-bucket carved out of a child's funds.
type Category struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Balance     decimal.Decimal  `json:"balance"`
	AutoSplit   bool             `json:"autoSplit"`
	Percentage  *decimal.Decimal `json:"percentage,omitempty"`
	FixedAmount *decimal.Decimal `json:"fixedAmount,omitempty"`
}

// Goal is a named savings target.
type Goal struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	Completed     bool            `json:"completed"`
	CompletedDate *time.Time      `json:"completedDate,omitempty"`
}

// Remaining returns how much is still needed to reach the target.
func (g Goal) Remaining() decimal.Decimal {
	r := g.TargetAmount.Sub(g.CurrentAmount)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// Child is a single child profile.
type Child struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	PinHash       string          `json:"pinHash,omitempty"`
	Balance       decimal.Decimal `json:"balance"`
	PiggyBank     decimal.Decimal `json:"piggyBank"`
	Categories    []Category      `json:"categories"`
	Goals         []Goal          `json:"goals"`
	Notifications []string        `json:"notifications"`
	CreatedAt     time.Time       `json:"createdAt"`
	Allowance     *Allowance      `json:"allowance,omitempty"`
}

// HasPIN reports whether the child's account is PIN protected.
func (c *Child) HasPIN() bool {
	return c.PinHash != ""
}

// Category returns a pointer to the category with the given ID, or nil.
func (c *Child) Category(id string) *Category {
	for i := range c.Categories {
		if c.Categories[i].ID == id {
			return &c.Categories[i]
		}
	}
	return nil
}

// CategoryByName finds a category by case-insensitive name.
func (c *Child) CategoryByName(name string) *Category {
	for i := range c.Categories {
		if strings.EqualFold(c.Categories[i].Name, name) {
			return &c.Categories[i]
		}
	}
	return nil
}

// Goal returns a pointer to the goal with the given ID, or nil.
func (c *Child) Goal(id string) *Goal {
	for i := range c.Goals {
		if c.Goals[i].ID == id {
			return &c.Goals[i]
		}
	}
	return nil
}

// GoalByName finds a goal by case-insensitive name.
func (c *Child) GoalByName(name string) *Goal {
	for i := range c.Goals {
		if strings.EqualFold(c.Goals[i].Name, name) {
			return &c.Goals[i]
		}
	}
	return nil
}

// CategoryTotal sums the balances of all categories.
func (c *Child) CategoryTotal() decimal.Decimal {
	total := decimal.Zero
	for _, cat := range c.Categories {
		total = total.Add(cat.Balance)
	}
	return total
}
