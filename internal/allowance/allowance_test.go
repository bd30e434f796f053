package allowance

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

func daily(amount int64, last time.Time) *model.Allowance {
	return &model.Allowance{Amount: decimal.NewFromInt(amount), Frequency: model.FrequencyDaily, LastDate: last}
}

func TestIsDue(t *testing.T) {
	tests := []struct {
		name string
		a    *model.Allowance
		want bool
	}{
		{"not configured", nil, false},
		{"zero amount", &model.Allowance{Frequency: model.FrequencyDaily, LastDate: testNow.Add(-48 * time.Hour)}, false},
		{"no last date", daily(10, time.Time{}), false},
		{"daily after 25h", daily(10, testNow.Add(-25*time.Hour)), true},
		{"daily exactly 24h", daily(10, testNow.Add(-24*time.Hour)), true},
		{"daily after 23h", daily(10, testNow.Add(-23*time.Hour)), false},
		{"weekly after 6d", &model.Allowance{Amount: decimal.NewFromInt(5), Frequency: model.FrequencyWeekly, LastDate: testNow.AddDate(0, 0, -6)}, false},
		{"weekly after 7d", &model.Allowance{Amount: decimal.NewFromInt(5), Frequency: model.FrequencyWeekly, LastDate: testNow.AddDate(0, 0, -7)}, true},
		{"custom 60s after 61s", &model.Allowance{Amount: decimal.NewFromInt(1), Frequency: model.FrequencyCustom, IntervalSeconds: 60, LastDate: testNow.Add(-61 * time.Second)}, true},
		{"custom without interval", &model.Allowance{Amount: decimal.NewFromInt(1), Frequency: model.FrequencyCustom, LastDate: testNow.AddDate(-1, 0, 0)}, false},
		{"unknown frequency", &model.Allowance{Amount: decimal.NewFromInt(1), Frequency: "monthly", LastDate: testNow.AddDate(-1, 0, 0)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDue(tt.a, testNow))
		})
	}
}

func TestNextDueAndTimeUntil(t *testing.T) {
	last := testNow.Add(-2 * time.Hour)
	next, ok := NextDue(daily(10, last))
	require.True(t, ok)
	assert.Equal(t, last.AddDate(0, 0, 1), next)

	left, ok := TimeUntil(daily(10, last), testNow)
	require.True(t, ok)
	assert.Equal(t, 22*time.Hour, left)

	left, ok = TimeUntil(daily(10, testNow.Add(-30*time.Hour)), testNow)
	require.True(t, ok)
	assert.Equal(t, time.Duration(0), left)

	custom := &model.Allowance{Amount: decimal.NewFromInt(1), Frequency: model.FrequencyCustom, IntervalSeconds: 90, LastDate: testNow}
	next, ok = NextDue(custom)
	require.True(t, ok)
	assert.Equal(t, testNow.Add(90*time.Second), next)

	_, ok = NextDue(nil)
	assert.False(t, ok)
	_, ok = TimeUntil(&model.Allowance{Amount: decimal.NewFromInt(1), Frequency: model.FrequencyCustom, LastDate: testNow}, testNow)
	assert.False(t, ok)
}

func TestScheduleFor(t *testing.T) {
	_, err := ScheduleFor("fortnightly")
	assert.Error(t, err)
	s, err := ScheduleFor(model.FrequencyWeekly)
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, s.Threshold(model.Allowance{}))
}

func TestFormatTimeUntil(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "Ready now!"},
		{-time.Second, "Ready now!"},
		{8 * time.Second, "8s"},
		{6*time.Minute + 7*time.Second, "6m 7s"},
		{4*time.Hour + 5*time.Minute + 59*time.Second, "4h 5m"},
		{2*24*time.Hour + 3*time.Hour + 10*time.Minute, "2d 3h"},
		{1500 * time.Millisecond, "1s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTimeUntil(tt.in), "FormatTimeUntil(%s)", tt.in)
	}
}

func setup(t *testing.T, allowances ...*model.Allowance) (*Engine, *state.Repository, *clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(testNow)
	repo := state.NewRepository(kv.NewMemory(), state.Options{Clock: clock})
	require.NoError(t, repo.Update(context.Background(), func(tx *state.Tx) error {
		for i, a := range allowances {
			tx.State.Children = append(tx.State.Children, model.Child{
				ID:            string(rune('a' + i)),
				Name:          "kid" + string(rune('a'+i)),
				Balance:       decimal.Zero,
				Categories:    []model.Category{},
				Goals:         []model.Goal{},
				Notifications: []string{},
				Allowance:     a,
			})
		}
		return nil
	}))
	return NewEngine(repo, nil), repo, clock
}

func TestSweep_CreditsOncePerDay(t *testing.T) {
	ctx := context.Background()
	engine, repo, _ := setup(t, daily(10, testNow.Add(-25*time.Hour)), daily(10, testNow.Add(-time.Hour)), nil)

	paid, err := engine.Sweep(ctx)
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, "a", paid[0].ChildID)

	st, err := repo.Load(ctx)
	require.NoError(t, err)
	a := st.Child("a")
	assert.True(t, a.Balance.Equal(decimal.NewFromInt(10)))
	assert.True(t, a.Allowance.LastDate.Equal(testNow))
	assert.True(t, st.Child("b").Balance.IsZero())

	ns, err := repo.ChildNotifications(ctx, "a")
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, model.NotifyAllowance, ns[0].Type)
	assert.Equal(t, "You received ₹10.00 as allowance!", ns[0].Message)
	require.NotNil(t, ns[0].Amount)
	assert.True(t, ns[0].Amount.Equal(decimal.NewFromInt(10)))

	marker, err := repo.LastAllowanceCheck(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", marker)

	paid, err = engine.Sweep(ctx)
	require.NoError(t, err)
	assert.Empty(t, paid)
	st, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.True(t, st.Child("a").Balance.Equal(decimal.NewFromInt(10)))
}

func TestSweep_MarkerBlocksSameDay(t *testing.T) {
	ctx := context.Background()
	engine, repo, clock := setup(t, daily(10, testNow.Add(-23*time.Hour)))

	paid, err := engine.Sweep(ctx)
	require.NoError(t, err)
	assert.Empty(t, paid)

	// Due two hours later, but the day has already been swept.
	clock.Advance(2 * time.Hour)
	paid, err = engine.Sweep(ctx)
	require.NoError(t, err)
	assert.Empty(t, paid)

	// SweepChild ignores the marker.
	p, ok, err := engine.SweepChild(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, p.Amount.Equal(decimal.NewFromInt(10)))

	// Next day the regular sweep runs again but nothing is due yet.
	clock.Advance(20 * time.Hour)
	paid, err = engine.Sweep(ctx)
	require.NoError(t, err)
	assert.Empty(t, paid)

	st, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.True(t, st.Child("a").Balance.Equal(decimal.NewFromInt(10)))
}

func TestSweep_NoCatchUp(t *testing.T) {
	ctx := context.Background()
	engine, repo, _ := setup(t, daily(10, testNow.AddDate(0, 0, -5)))

	paid, err := engine.Sweep(ctx)
	require.NoError(t, err)
	require.Len(t, paid, 1)

	st, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.True(t, st.Child("a").Balance.Equal(decimal.NewFromInt(10)))
}

func TestSweepChild_UnknownChild(t *testing.T) {
	engine, _, _ := setup(t)
	_, _, err := engine.SweepChild(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSweep_NothingDueSkipsWrite(t *testing.T) {
	ctx := context.Background()
	engine, repo, _ := setup(t, nil)

	st, err := repo.Load(ctx)
	require.NoError(t, err)
	st.Children[0].Balance = decimal.RequireFromString("1.005")
	require.NoError(t, repo.Save(ctx, st))

	paid, err := engine.Sweep(ctx)
	require.NoError(t, err)
	assert.Empty(t, paid)

	marker, err := repo.LastAllowanceCheck(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", marker)
}
