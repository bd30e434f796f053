package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestChildLookups(t *testing.T) {
	c := Child{
		Categories: []Category{{ID: "c1", Name: "Books", Balance: decimal.NewFromInt(3)}, {ID: "c2", Name: "Toys", Balance: decimal.NewFromInt(4)}},
		Goals:      []Goal{{ID: "g1", Name: "Bike"}},
	}

	assert.Equal(t, "Toys", c.Category("c2").Name)
	assert.Nil(t, c.Category("missing"))
	assert.Equal(t, "c1", c.CategoryByName("BOOKS").ID)
	assert.Equal(t, "g1", c.GoalByName("bike").ID)
	assert.Nil(t, c.Goal("g2"))
	assert.True(t, c.CategoryTotal().Equal(decimal.NewFromInt(7)))

	// Mutations through the returned pointer land in the slice.
	c.Category("c1").Balance = decimal.Zero
	assert.True(t, c.Categories[0].Balance.IsZero())
}

func TestGoalRemaining(t *testing.T) {
	tests := []struct {
		target, current string
		want            string
	}{
		{"50", "40", "10"},
		{"50", "50", "0"},
		{"50", "60", "0"},
	}
	for _, tt := range tests {
		g := Goal{TargetAmount: decimal.RequireFromString(tt.target), CurrentAmount: decimal.RequireFromString(tt.current)}
		assert.True(t, g.Remaining().Equal(decimal.RequireFromString(tt.want)), "Remaining(%s/%s)", tt.current, tt.target)
	}
}

func TestFrequencyValid(t *testing.T) {
	assert.True(t, FrequencyDaily.Valid())
	assert.True(t, FrequencyCustom.Valid())
	assert.False(t, Frequency("monthly").Valid())
}
