package state

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/piggybank-dev/piggybank/internal/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func validState() *model.AppState {
	st := model.DefaultState()
	st.Children = []model.Child{{
		ID:      "c1",
		Name:    "Asha",
		Balance: d("10"),
		Categories: []model.Category{
			{ID: "k1", Name: "Books", Balance: d("2"), AutoSplit: true, Percentage: dp("20")},
			{ID: "k2", Name: "Toys", Balance: d("0"), AutoSplit: true, FixedAmount: dp("5")},
			{ID: "k3", Name: "Misc", Balance: d("1")},
		},
		Goals: []model.Goal{
			{ID: "g1", Name: "Bike", TargetAmount: d("50"), CurrentAmount: d("45")},
		},
	}}
	st.WithdrawalRequests = []model.WithdrawalRequest{
		{ID: "r1", ChildID: "c1", Amount: d("3"), Status: model.RequestPending},
	}
	return st
}

func TestValidate_Valid(t *testing.T) {
	assert.Empty(t, Validate(validState()))
	assert.Empty(t, Validate(model.DefaultState()))
}

func TestValidate_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(st *model.AppState)
		want   string
	}{
		{"negative balance", func(st *model.AppState) { st.Children[0].Balance = d("-1") }, "balance is negative"},
		{"negative savings", func(st *model.AppState) { st.Children[0].PiggyBank = d("-0.01") }, "piggy bank is negative"},
		{"sub-cent balance", func(st *model.AppState) { st.Children[0].Balance = d("1.001") }, "more than 2 decimal places"},
		{"duplicate child name", func(st *model.AppState) {
			st.Children = append(st.Children, model.Child{ID: "c2", Name: "ASHA"})
		}, "duplicate name"},
		{"duplicate category name", func(st *model.AppState) {
			st.Children[0].Categories[2].Name = "books"
		}, "duplicate name"},
		{"split without value", func(st *model.AppState) {
			st.Children[0].Categories[0].Percentage = nil
		}, "no split value"},
		{"split with both values", func(st *model.AppState) {
			st.Children[0].Categories[0].FixedAmount = dp("1")
		}, "both a percentage and a fixed amount"},
		{"percentage over 100", func(st *model.AppState) {
			st.Children[0].Categories[0].Percentage = dp("101")
		}, "outside (0, 100]"},
		{"goal over target", func(st *model.AppState) {
			st.Children[0].Goals[0].CurrentAmount = d("60")
		}, "exceeds target"},
		{"goal reached but not completed", func(st *model.AppState) {
			st.Children[0].Goals[0].CurrentAmount = d("50")
		}, "completed flag is false"},
		{"goal completed early", func(st *model.AppState) {
			st.Children[0].Goals[0].Completed = true
		}, "completed flag is true"},
		{"custom allowance without interval", func(st *model.AppState) {
			st.Children[0].Allowance = &model.Allowance{Amount: d("5"), Frequency: model.FrequencyCustom}
		}, "positive interval"},
		{"pending request for missing child", func(st *model.AppState) {
			st.WithdrawalRequests[0].ChildID = "gone"
		}, "unknown child"},
		{"answered request without time", func(st *model.AppState) {
			st.WithdrawalRequests[0].Status = model.RequestApproved
		}, "no response time"},
		{"unsupported currency", func(st *model.AppState) { st.Currency = "EUR" }, "unsupported currency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := validState()
			tt.mutate(st)
			vs := Validate(st)
			if assert.NotEmpty(t, vs) {
				assert.True(t, strings.Contains(vs.Error(), tt.want), "got %q", vs.Error())
			}
		})
	}
}
