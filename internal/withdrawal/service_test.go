package withdrawal

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piggybank-dev/piggybank/internal/kv"
	"github.com/piggybank-dev/piggybank/internal/model"
	"github.com/piggybank-dev/piggybank/internal/state"
)

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func setup(t *testing.T, balance string) (*Service, *state.Repository, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(testNow)
	repo := state.NewRepository(kv.NewMemory(), state.Options{Clock: clock})
	require.NoError(t, repo.Update(context.Background(), func(tx *state.Tx) error {
		tx.State.Children = append(tx.State.Children, model.Child{
			ID:            "c1",
			Name:          "Asha",
			Balance:       d(balance),
			Categories:    []model.Category{},
			Goals:         []model.Goal{},
			Notifications: []string{},
		})
		return nil
	}))
	return NewService(repo, nil), repo, clock
}

func balance(t *testing.T, repo *state.Repository) decimal.Decimal {
	t.Helper()
	st, err := repo.Load(context.Background())
	require.NoError(t, err)
	return st.Child("c1").Balance
}

func TestRequest(t *testing.T) {
	svc, repo, _ := setup(t, "50")
	ctx := context.Background()

	req, err := svc.Request(ctx, "c1", d("30"), " toy ")
	require.NoError(t, err)
	assert.Equal(t, model.RequestPending, req.Status)
	assert.Equal(t, "Asha", req.ChildName)
	assert.Equal(t, "toy", req.Reason)
	assert.Equal(t, testNow, req.RequestedAt)
	assert.Nil(t, req.RespondedAt)
	assert.True(t, balance(t, repo).Equal(d("50")), "requesting does not move money")

	ns, err := repo.ParentNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, model.NotifyWithdrawalRequest, ns[0].Type)
	assert.Equal(t, req.ID, ns[0].RequestID)
	assert.Equal(t, "Asha requested ₹30.00 withdrawal (toy)", ns[0].Message)

	_, err = svc.Request(ctx, "c1", d("60"), "")
	assert.ErrorIs(t, err, model.ErrInsufficientFunds)
	_, err = svc.Request(ctx, "c1", d("0"), "")
	assert.ErrorIs(t, err, model.ErrValidation)
	_, err = svc.Request(ctx, "nobody", d("1"), "")
	assert.ErrorIs(t, err, model.ErrNotFound)

	pending, err := svc.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestApprove(t *testing.T) {
	svc, repo, clock := setup(t, "50")
	ctx := context.Background()

	req, err := svc.Request(ctx, "c1", d("30"), "")
	require.NoError(t, err)

	clock.Advance(time.Hour)
	got, err := svc.Approve(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, got.Status)
	require.NotNil(t, got.RespondedAt)
	assert.Equal(t, testNow.Add(time.Hour), *got.RespondedAt)
	assert.True(t, balance(t, repo).Equal(d("20")))

	ns, err := repo.ChildNotifications(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, model.NotifyWithdrawalApproved, ns[0].Type)

	// Acting again is a no-op.
	again, err := svc.Approve(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, again.Status)
	assert.True(t, got.RespondedAt.Equal(*again.RespondedAt))
	declined, err := svc.Decline(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, declined.Status)
	assert.True(t, balance(t, repo).Equal(d("20")))
}

func TestApprove_InsufficientStaysPending(t *testing.T) {
	svc, repo, _ := setup(t, "50")
	ctx := context.Background()

	first, err := svc.Request(ctx, "c1", d("30"), "")
	require.NoError(t, err)
	second, err := svc.Request(ctx, "c1", d("40"), "")
	require.NoError(t, err)

	_, err = svc.Approve(ctx, first.ID)
	require.NoError(t, err)

	_, err = svc.Approve(ctx, second.ID)
	assert.ErrorIs(t, err, model.ErrInsufficientFunds)

	got, err := svc.Get(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestPending, got.Status)
	assert.True(t, balance(t, repo).Equal(d("20")))
}

func TestDecline(t *testing.T) {
	svc, repo, _ := setup(t, "50")
	ctx := context.Background()

	req, err := svc.Request(ctx, "c1", d("30"), "")
	require.NoError(t, err)

	got, err := svc.Decline(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestDeclined, got.Status)
	assert.NotNil(t, got.RespondedAt)
	assert.True(t, balance(t, repo).Equal(d("50")))

	ns, err := repo.ChildNotifications(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, model.NotifyWithdrawalDeclined, ns[0].Type)

	_, err = svc.Decline(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestForChildAndFind(t *testing.T) {
	svc, _, clock := setup(t, "50")
	ctx := context.Background()

	a, err := svc.Request(ctx, "c1", d("1"), "")
	require.NoError(t, err)
	clock.Advance(time.Minute)
	b, err := svc.Request(ctx, "c1", d("2"), "")
	require.NoError(t, err)

	reqs, err := svc.ForChild(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, b.ID, reqs[0].ID)
	assert.Equal(t, a.ID, reqs[1].ID)

	found, err := svc.Find(ctx, a.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, a.ID, found.ID)
	_, err = svc.Find(ctx, "zzzz")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
