package state

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/piggybank-dev/piggybank/internal/model"
)

// Violation describes a single broken invariant.
type Violation struct {
	Subject     string // "child Asha", "goal Bike", "request 3f2a..."
	Description string
}

func (v Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Subject, v.Description)
}

var hundred = decimal.NewFromInt(100)

// Validate checks the whole document and returns every violation found.
func Validate(st *model.AppState) Violations {
	var vs Violations
	add := func(subject, format string, args ...any) {
		vs = append(vs, Violation{Subject: subject, Description: fmt.Sprintf(format, args...)})
	}

	if st.Currency != model.CurrencyINR && st.Currency != model.CurrencyUSD {
		add("app", "unsupported currency %q", st.Currency)
	}

	childIDs := make(map[string]bool)
	childNames := make(map[string]bool)
	for i := range st.Children {
		c := &st.Children[i]
		subject := "child " + c.Name

		if childIDs[c.ID] {
			add(subject, "duplicate id %s", c.ID)
		}
		childIDs[c.ID] = true

		if strings.TrimSpace(c.Name) == "" {
			add("child "+c.ID, "empty name")
		}
		key := strings.ToLower(c.Name)
		if childNames[key] {
			add(subject, "duplicate name")
		}
		childNames[key] = true

		checkBucket(add, subject, "balance", c.Balance)
		checkBucket(add, subject, "piggy bank", c.PiggyBank)
		validateCategories(add, c)
		validateGoals(add, c)

		if a := c.Allowance; a != nil {
			if !a.Amount.IsPositive() {
				add(subject, "allowance amount %s must be positive", a.Amount)
			}
			if !a.Frequency.Valid() {
				add(subject, "unknown allowance frequency %q", a.Frequency)
			}
			if a.Frequency == model.FrequencyCustom && a.IntervalSeconds <= 0 {
				add(subject, "custom allowance needs a positive interval")
			}
		}
	}

	requestIDs := make(map[string]bool)
	for _, r := range st.WithdrawalRequests {
		subject := "request " + r.ID
		if requestIDs[r.ID] {
			add(subject, "duplicate id")
		}
		requestIDs[r.ID] = true

		if !r.Amount.IsPositive() || !model.HasCents(r.Amount) {
			add(subject, "invalid amount %s", r.Amount)
		}
		switch r.Status {
		case model.RequestPending:
			if !childIDs[r.ChildID] {
				add(subject, "pending request for unknown child %s", r.ChildID)
			}
		case model.RequestApproved, model.RequestDeclined:
			if r.RespondedAt == nil {
				add(subject, "%s request has no response time", r.Status)
			}
		default:
			add(subject, "unknown status %q", r.Status)
		}
	}

	return vs
}

type addFunc func(subject, format string, args ...any)

func checkBucket(add addFunc, subject, bucket string, amount decimal.Decimal) {
	if amount.IsNegative() {
		add(subject, "%s is negative (%s)", bucket, amount.StringFixed(2))
	}
	if !model.HasCents(amount) {
		add(subject, "%s %s has more than 2 decimal places", bucket, amount)
	}
}

func validateCategories(add addFunc, c *model.Child) {
	ids := make(map[string]bool)
	names := make(map[string]bool)
	for _, cat := range c.Categories {
		subject := fmt.Sprintf("category %s/%s", c.Name, cat.Name)
		if ids[cat.ID] {
			add(subject, "duplicate id %s", cat.ID)
		}
		ids[cat.ID] = true
		key := strings.ToLower(cat.Name)
		if names[key] {
			add(subject, "duplicate name")
		}
		names[key] = true

		checkBucket(add, subject, "balance", cat.Balance)

		if !cat.AutoSplit {
			continue
		}
		switch {
		case cat.Percentage != nil && cat.FixedAmount != nil:
			add(subject, "auto-split has both a percentage and a fixed amount")
		case cat.Percentage != nil:
			if !cat.Percentage.IsPositive() || cat.Percentage.GreaterThan(hundred) {
				add(subject, "split percentage %s outside (0, 100]", cat.Percentage)
			}
		case cat.FixedAmount != nil:
			if !cat.FixedAmount.IsPositive() || !model.HasCents(*cat.FixedAmount) {
				add(subject, "invalid fixed split %s", cat.FixedAmount)
			}
		default:
			add(subject, "auto-split has no split value")
		}
	}
}

func validateGoals(add addFunc, c *model.Child) {
	ids := make(map[string]bool)
	names := make(map[string]bool)
	for _, g := range c.Goals {
		subject := fmt.Sprintf("goal %s/%s", c.Name, g.Name)
		if ids[g.ID] {
			add(subject, "duplicate id %s", g.ID)
		}
		ids[g.ID] = true
		key := strings.ToLower(g.Name)
		if names[key] {
			add(subject, "duplicate name")
		}
		names[key] = true

		if !g.TargetAmount.IsPositive() {
			add(subject, "target %s must be positive", g.TargetAmount)
		}
		checkBucket(add, subject, "current amount", g.CurrentAmount)
		if g.CurrentAmount.GreaterThan(g.TargetAmount) {
			add(subject, "current %s exceeds target %s", g.CurrentAmount.StringFixed(2), g.TargetAmount.StringFixed(2))
		}
		reached := g.TargetAmount.IsPositive() && g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
		if g.Completed != reached {
			add(subject, "completed flag is %t but current is %s of %s", g.Completed, g.CurrentAmount.StringFixed(2), g.TargetAmount.StringFixed(2))
		}
	}
}
