package bank

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piggybank-dev/piggybank/internal/kv"
	"github.com/piggybank-dev/piggybank/internal/ledger"
	"github.com/piggybank-dev/piggybank/internal/model"
	"github.com/piggybank-dev/piggybank/internal/state"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

type testEnv struct {
	svc    *Service
	repo   *state.Repository
	ledger *ledger.File
	ctx    context.Context
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	led := ledger.NewFile(t.TempDir())
	repo := state.NewRepository(kv.NewMemory(), state.Options{
		Clock:  clockwork.NewFakeClockAt(testNow),
		Ledger: led,
	})
	return &testEnv{svc: NewService(repo, nil), repo: repo, ledger: led, ctx: context.Background()}
}

// childWith creates a child and credits balance without any categories in place.
func (e *testEnv) childWith(t *testing.T, name, balance string) string {
	t.Helper()
	c, err := e.svc.AddChild(e.ctx, name)
	require.NoError(t, err)
	if b := d(balance); b.IsPositive() {
		_, err = e.svc.Credit(e.ctx, c.ID, b, "")
		require.NoError(t, err)
	}
	return c.ID
}

func (e *testEnv) child(t *testing.T, childID string) model.Child {
	t.Helper()
	c, err := e.svc.Child(e.ctx, childID)
	require.NoError(t, err)
	return c
}

func (e *testEnv) notifications(t *testing.T, childID string) []model.Notification {
	t.Helper()
	ns, err := e.repo.ChildNotifications(e.ctx, childID)
	require.NoError(t, err)
	return ns
}

func TestAddChild(t *testing.T) {
	e := newEnv(t)

	c, err := e.svc.AddChild(e.ctx, "  Asha ")
	require.NoError(t, err)
	assert.Equal(t, "Asha", c.Name)
	assert.NotEmpty(t, c.ID)
	assert.True(t, c.Balance.IsZero())
	assert.Equal(t, testNow, c.CreatedAt)

	_, err = e.svc.AddChild(e.ctx, "asha")
	assert.ErrorIs(t, err, model.ErrValidation)
	_, err = e.svc.AddChild(e.ctx, "   ")
	assert.ErrorIs(t, err, model.ErrValidation)

	children, err := e.svc.Children(e.ctx)
	require.NoError(t, err)
	assert.Len(t, children, 1)
}

func TestFindChild(t *testing.T) {
	e := newEnv(t)
	asha := e.childWith(t, "Asha", "0")
	e.childWith(t, "Ravi", "0")

	c, err := e.svc.FindChild(e.ctx, "ASHA")
	require.NoError(t, err)
	assert.Equal(t, asha, c.ID)

	c, err = e.svc.FindChild(e.ctx, asha[:8])
	require.NoError(t, err)
	assert.Equal(t, asha, c.ID)

	_, err = e.svc.FindChild(e.ctx, "Nobody")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteChild_DeclinesPendingRequests(t *testing.T) {
	e := newEnv(t)
	childID := e.childWith(t, "Asha", "50")
	require.NoError(t, e.repo.Update(e.ctx, func(tx *state.Tx) error {
		tx.State.WithdrawalRequests = append(tx.State.WithdrawalRequests, model.WithdrawalRequest{
			ID: "r1", ChildID: childID, ChildName: "Asha", Amount: d("5"), Status: model.RequestPending, RequestedAt: tx.Now(),
		})
		return nil
	}))

	require.NoError(t, e.svc.DeleteChild(e.ctx, childID))

	st, err := e.repo.Load(e.ctx)
	require.NoError(t, err)
	assert.Empty(t, st.Children)
	require.Len(t, st.WithdrawalRequests, 1)
	assert.Equal(t, model.RequestDeclined, st.WithdrawalRequests[0].Status)
	assert.NotNil(t, st.WithdrawalRequests[0].RespondedAt)

	assert.ErrorIs(t, e.svc.DeleteChild(e.ctx, childID), model.ErrNotFound)
}

func TestCredit_WithPercentageSplit(t *testing.T) {
	e := newEnv(t)
	childID := e.childWith(t, "Asha", "0")
	_, err := e.svc.CreateCategory(e.ctx, childID, CategoryParams{Name: "Books", AutoSplit: true, Percentage: dp("20")})
	require.NoError(t, err)

	res, err := e.svc.Credit(e.ctx, childID, d("100"), "birthday")
	require.NoError(t, err)
	assert.True(t, res.Net.Equal(d("80")))
	require.Len(t, res.Splits, 1)
	assert.True(t, res.Splits[0].Amount.Equal(d("20")))

	c := e.child(t, childID)
	assert.True(t, c.Balance.Equal(d("80")))
	assert.True(t, c.Categories[0].Balance.Equal(d("20")))

	ns := e.notifications(t, childID)
	require.Len(t, ns, 1)
	assert.Equal(t, model.NotifyMoneyAdded, ns[0].Type)
	assert.Equal(t, "₹100.00 has been added to your account (birthday; ₹20.00 split into categories)", ns[0].Message)
	assert.True(t, ns[0].Amount.Equal(d("100")))

	entries, err := e.ledger.Read()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ledger.KindCredit, entries[0].Kind)
	assert.Equal(t, ledger.KindSplit, entries[1].Kind)
	assert.True(t, entries[1].Balance.Equal(d("80")))
}

func TestCredit_SplitsCappedAtAmount(t *testing.T) {
	e := newEnv(t)
	childID := e.childWith(t, "Asha", "3")
	for _, p := range []CategoryParams{
		{Name: "Fixed", AutoSplit: true, FixedAmount: dp("8")},
		{Name: "Half", AutoSplit: true, Percentage: dp("50")},
		{Name: "Manual"},
	} {
		_, err := e.svc.CreateCategory(e.ctx, childID, p)
		require.NoError(t, err)
	}

	res, err := e.svc.Credit(e.ctx, childID, d("10"), "")
	require.NoError(t, err)
	require.Len(t, res.Splits, 2)
	assert.True(t, res.Splits[0].Amount.Equal(d("8")))
	assert.True(t, res.Splits[1].Amount.Equal(d("2")), "second split limited to what is left")
	assert.True(t, res.Net.IsZero())

	c := e.child(t, childID)
	assert.True(t, c.Balance.Equal(d("3")), "balance never dips below its starting value")
	assert.True(t, c.Categories[2].Balance.IsZero())
}

func TestCredit_PercentageRoundsToCents(t *testing.T) {
	e := newEnv(t)
	childID := e.childWith(t, "Asha", "0")
	_, err := e.svc.CreateCategory(e.ctx, childID, CategoryParams{Name: "Third", AutoSplit: true, Percentage: dp("33.333")})
	require.NoError(t, err)

	res, err := e.svc.Credit(e.ctx, childID, d("10"), "")
	require.NoError(t, err)
	assert.True(t, res.Splits[0].Amount.Equal(d("3.33")))
	assert.True(t, e.child(t, childID).Balance.Equal(d("6.67")))
}

func TestCredit_Invalid(t *testing.T) {
	e := newEnv(t)
	childID := e.childWith(t, "Asha", "0")
	_, err := e.svc.CreateCategory(e.ctx, childID, CategoryParams{Name: "Books", AutoSplit: true, Percentage: dp("20")})
	require.NoError(t, err)

	_, err = e.svc.Credit(e.ctx, childID, d("0"), "")
	assert.ErrorIs(t, err, model.ErrValidation)
	_, err = e.svc.Credit(e.ctx, childID, d("-5"), "")
	assert.ErrorIs(t, err, model.ErrValidation)
	_, err = e.svc.Credit(e.ctx, childID, d("1.234"), "")
	assert.ErrorIs(t, err, model.ErrValidation)
	_, err = e.svc.Credit(e.ctx, "missing", d("1"), "")
	assert.ErrorIs(t, err, model.ErrNotFound)

	c := e.child(t, childID)
	assert.True(t, c.Balance.IsZero())
	assert.True(t, c.Categories[0].Balance.IsZero(), "rejected credits leave categories untouched")
	assert.Empty(t, e.notifications(t, childID))
}

func TestDebit(t *testing.T) {
	e := newEnv(t)
	childID := e.childWith(t, "Asha", "10")
	before := len(e.notifications(t, childID))

	err := e.svc.Debit(e.ctx, childID, d("15"), "")
	var ferr *model.InsufficientFundsError
	require.ErrorAs(t, err, &ferr)
	assert.True(t, ferr.Available.Equal(d("10")))
	assert.True(t, e.child(t, childID).Balance.Equal(d("10")))
	assert.Len(t, e.notifications(t, childID), before, "no notification on failure")

	require.NoError(t, e.svc.Debit(e.ctx, childID, d("4"), "snacks"))
	assert.True(t, e.child(t, childID).Balance.Equal(d("6")))
	ns := e.notifications(t, childID)
	assert.Equal(t, model.NotifyMoneySubtracted, ns[0].Type)
	assert.Equal(t, "₹4.00 has been subtracted from your account (snacks)", ns[0].Message)
}

func TestCategories(t *testing.T) {
	e := newEnv(t)
	childID := e.childWith(t, "Asha", "10")

	tests := []struct {
		name string
		p    CategoryParams
	}{
		{"empty name", CategoryParams{Name: " "}},
		{"split without value", CategoryParams{Name: "A", AutoSplit: true}},
		{"split with both values", CategoryParams{Name: "A", AutoSplit: true, Percentage: dp("10"), FixedAmount: dp("1")}},
		{"zero percent", CategoryParams{Name: "A", AutoSplit: true, Percentage: dp("0")}},
		{"over 100 percent", CategoryParams{Name: "A", AutoSplit: true, Percentage: dp("100.01")}},
		{"negative fixed", CategoryParams{Name: "A", AutoSplit: true, FixedAmount: dp("-1")}},
	}
	for _, tt := range tests {
		_, err := e.svc.CreateCategory(e.ctx, childID, tt.p)
		assert.ErrorIs(t, err, model.ErrValidation, tt.name)
	}

	cat, err := e.svc.CreateCategory(e.ctx, childID, CategoryParams{Name: "Books"})
	require.NoError(t, err)
	_, err = e.svc.CreateCategory(e.ctx, childID, CategoryParams{Name: "BOOKS"})
	assert.ErrorIs(t, err, model.ErrValidation)

	require.NoError(t, e.svc.AddToCategory(e.ctx, childID, "books", d("5")))
	c := e.child(t, childID)
	assert.True(t, c.Categories[0].Balance.Equal(d("5")))
	assert.True(t, c.Balance.Equal(d("10")), "category adjustments leave the balance alone")

	err = e.svc.SubtractFromCategory(e.ctx, childID, cat.ID, d("6"))
	assert.ErrorIs(t, err, model.ErrInsufficientFunds)

	err = e.svc.DeleteCategory(e.ctx, childID, cat.ID)
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Len(t, e.child(t, childID).Categories, 1)

	require.NoError(t, e.svc.SubtractFromCategory(e.ctx, childID, cat.ID, d("5")))
	require.NoError(t, e.svc.DeleteCategory(e.ctx, childID, cat.ID))
	assert.Empty(t, e.child(t, childID).Categories)

	assert.ErrorIs(t, e.svc.DeleteCategory(e.ctx, childID, "nope"), model.ErrNotFound)
}

func TestContributeToGoal(t *testing.T) {
	e := newEnv(t)
	childID := e.childWith(t, "Asha", "45")
	g, err := e.svc.CreateGoal(e.ctx, childID, "Bike", d("50"))
	require.NoError(t, err)

	// Bring the goal to 40 with 5 left in the balance.
	_, err = e.svc.AddToGoal(e.ctx, childID, g.ID, d("40"))
	require.NoError(t, err)

	res, err := e.svc.ContributeToGoal(e.ctx, childID, g.ID)
	require.NoError(t, err)
	assert.True(t, res.Amount.Equal(d("5")))
	assert.False(t, res.Completed)
	c := e.child(t, childID)
	assert.True(t, c.Goals[0].CurrentAmount.Equal(d("45")))
	assert.True(t, c.Balance.IsZero())

	_, err = e.svc.ContributeToGoal(e.ctx, childID, g.ID)
	assert.ErrorIs(t, err, model.ErrInsufficientFunds)

	_, err = e.svc.Credit(e.ctx, childID, d("20"), "")
	require.NoError(t, err)
	res, err = e.svc.ContributeToGoal(e.ctx, childID, "bike")
	require.NoError(t, err)
	assert.True(t, res.Amount.Equal(d("5")))
	assert.True(t, res.Completed)

	c = e.child(t, childID)
	assert.True(t, c.Goals[0].CurrentAmount.Equal(d("50")))
	assert.True(t, c.Goals[0].Completed)
	require.NotNil(t, c.Goals[0].CompletedDate)
	assert.True(t, c.Balance.Equal(d("15")))

	completed := 0
	for _, n := range e.notifications(t, childID) {
		if n.Type == model.NotifyGoalCompleted {
			completed++
			assert.Equal(t, `Congratulations! You completed the goal "Bike"!`, n.Message)
		}
	}
	assert.Equal(t, 1, completed)

	_, err = e.svc.ContributeToGoal(e.ctx, childID, g.ID)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestAddAndSubtractGoal(t *testing.T) {
	e := newEnv(t)
	childID := e.childWith(t, "Asha", "30")
	g, err := e.svc.CreateGoal(e.ctx, childID, "Game", d("20"))
	require.NoError(t, err)

	_, err = e.svc.CreateGoal(e.ctx, childID, "game", d("5"))
	assert.ErrorIs(t, err, model.ErrValidation)
	_, err = e.svc.CreateGoal(e.ctx, childID, "Zero", d("0"))
	assert.ErrorIs(t, err, model.ErrValidation)

	res, err := e.svc.AddToGoal(e.ctx, childID, g.ID, d("25"))
	require.NoError(t, err)
	assert.True(t, res.Amount.Equal(d("20")), "capped at target")
	assert.True(t, res.Completed)
	assert.True(t, e.child(t, childID).Balance.Equal(d("10")))

	require.NoError(t, e.svc.SubtractFromGoal(e.ctx, childID, g.ID, d("5")))
	c := e.child(t, childID)
	assert.True(t, c.Goals[0].CurrentAmount.Equal(d("15")))
	assert.False(t, c.Goals[0].Completed)
	assert.Nil(t, c.Goals[0].CompletedDate)
	assert.True(t, c.Balance.Equal(d("15")))

	err = e.svc.SubtractFromGoal(e.ctx, childID, g.ID, d("16"))
	assert.ErrorIs(t, err, model.ErrInsufficientFunds)

	err = e.svc.DeleteGoal(e.ctx, childID, g.ID)
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Len(t, e.child(t, childID).Goals, 1)

	require.NoError(t, e.svc.SubtractFromGoal(e.ctx, childID, g.ID, d("15")))
	require.NoError(t, e.svc.DeleteGoal(e.ctx, childID, g.ID))
	assert.Empty(t, e.child(t, childID).Goals)
}

func TestAddToGoal_InsufficientBalance(t *testing.T) {
	e := newEnv(t)
	childID := e.childWith(t, "Asha", "5")
	g, err := e.svc.CreateGoal(e.ctx, childID, "Game", d("20"))
	require.NoError(t, err)

	_, err = e.svc.AddToGoal(e.ctx, childID, g.ID, d("10"))
	assert.ErrorIs(t, err, model.ErrInsufficientFunds)
	c := e.child(t, childID)
	assert.True(t, c.Balance.Equal(d("5")))
	assert.True(t, c.Goals[0].CurrentAmount.IsZero())
}

func TestSavings(t *testing.T) {
	e := newEnv(t)
	childID := e.childWith(t, "Asha", "20")

	require.NoError(t, e.svc.TransferToSavings(e.ctx, childID, d("15")))
	c := e.child(t, childID)
	assert.True(t, c.Balance.Equal(d("5")))
	assert.True(t, c.PiggyBank.Equal(d("15")))
	assert.Equal(t, model.NotifyMoneyTransferred, e.notifications(t, childID)[0].Type)

	assert.ErrorIs(t, e.svc.TransferToSavings(e.ctx, childID, d("6")), model.ErrInsufficientFunds)
	assert.ErrorIs(t, e.svc.WithdrawFromSavings(e.ctx, childID, d("16")), model.ErrInsufficientFunds)

	require.NoError(t, e.svc.WithdrawFromSavings(e.ctx, childID, d("10")))
	c = e.child(t, childID)
	assert.True(t, c.Balance.Equal(d("15")))
	assert.True(t, c.PiggyBank.Equal(d("5")))
	ns := e.notifications(t, childID)
	assert.Equal(t, model.NotifyMoneyWithdrawn, ns[0].Type)
	assert.Equal(t, "Withdrew ₹10.00 from Savings", ns[0].Message)
}

func TestChildPIN(t *testing.T) {
	e := newEnv(t)
	childID := e.childWith(t, "Asha", "0")

	assert.ErrorIs(t, e.svc.SetChildPIN(e.ctx, childID, "12a4"), model.ErrValidation)
	noPIN := e.child(t, childID)
	assert.False(t, noPIN.HasPIN())

	require.NoError(t, e.svc.SetChildPIN(e.ctx, childID, "1234"))
	c := e.child(t, childID)
	assert.Equal(t, "wcoy", c.PinHash)
	ns := e.notifications(t, childID)
	require.Len(t, ns, 1)
	assert.Equal(t, model.NotifyPasswordChanged, ns[0].Type)

	require.NoError(t, e.svc.RemoveChildPIN(e.ctx, childID))
	removed := e.child(t, childID)
	assert.False(t, removed.HasPIN())
	assert.Len(t, e.notifications(t, childID), 1)
}

func TestConfigureAllowance(t *testing.T) {
	e := newEnv(t)
	childID := e.childWith(t, "Asha", "0")

	err := e.svc.ConfigureAllowance(e.ctx, childID, AllowanceParams{Amount: d("10"), Frequency: model.FrequencyCustom})
	assert.ErrorIs(t, err, model.ErrValidation)
	err = e.svc.ConfigureAllowance(e.ctx, childID, AllowanceParams{Amount: d("0"), Frequency: model.FrequencyDaily})
	assert.ErrorIs(t, err, model.ErrValidation)
	err = e.svc.ConfigureAllowance(e.ctx, childID, AllowanceParams{Amount: d("5"), Frequency: "monthly"})
	assert.ErrorIs(t, err, model.ErrValidation)

	require.NoError(t, e.svc.ConfigureAllowance(e.ctx, childID, AllowanceParams{Amount: d("10"), Frequency: model.FrequencyWeekly, IntervalSeconds: 99}))
	a := e.child(t, childID).Allowance
	require.NotNil(t, a)
	assert.True(t, a.LastDate.Equal(testNow))
	assert.Zero(t, a.IntervalSeconds, "interval only kept for custom")

	require.NoError(t, e.svc.ClearAllowance(e.ctx, childID))
	assert.Nil(t, e.child(t, childID).Allowance)
}
