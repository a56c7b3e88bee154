package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/splitnest/splitnest/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func d(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return v
}

func newBalanceService() (*BalanceService, *MockBalanceStore, *MockDebtStore, *MockExpenseStore, *MockMemberStore, *MockTransactor) {
	balances := &MockBalanceStore{}
	debts := &MockDebtStore{}
	expenses := &MockExpenseStore{}
	members := &MockMemberStore{}
	tx := &MockTransactor{}
	svc := NewBalanceService(balances, debts, expenses, members, tx, NewGroupLocker())
	return svc, balances, debts, expenses, members, tx
}

func TestCalculateAllBalances(t *testing.T) {
	svc, balances, debts, expenses, members, tx := newBalanceService()
	ctx := context.Background()

	members.On("GroupExists", ctx, int64(1)).Return(true, nil)
	members.On("ListUserIDs", ctx, int64(1)).Return([]int64{1, 2, 3}, nil)
	expenses.On("ListByGroup", ctx, int64(1)).Return([]*model.Expense{
		{
			GroupID:  1,
			PaidByID: 1,
			Amount:   d(t, "30"),
			Shares: []*model.ExpenseShare{
				{UserID: 1, Amount: d(t, "10")},
				{UserID: 2, Amount: d(t, "10")},
				{UserID: 3, Amount: d(t, "10")},
			},
		},
	}, nil)
	tx.On("WithinTransaction", ctx).Return(nil)

	var written []*model.Balance
	balances.On("UpsertAll", ctx, mock.Anything).Run(func(args mock.Arguments) {
		written = args.Get(1).([]*model.Balance)
	}).Return(nil)

	var edges []*model.DebtEdge
	debts.On("ReplaceForGroup", ctx, int64(1), mock.Anything).Run(func(args mock.Arguments) {
		edges = args.Get(2).([]*model.DebtEdge)
	}).Return(nil)

	summary, err := svc.CalculateAllBalances(ctx, 1)
	require.NoError(t, err)

	require.Len(t, written, 3)
	sum := decimal.Zero
	for _, b := range written {
		sum = sum.Add(b.NetBalance)
	}
	assert.True(t, sum.IsZero(), "net balances sum to zero")

	require.Len(t, edges, 2)
	assert.Equal(t, int64(1), edges[0].CreditorID)

	assert.True(t, summary.TotalExpenses.Equal(d(t, "30")))
	assert.False(t, summary.IsFullySettled)
	assert.Equal(t, 3, summary.MemberCount)
	assert.Equal(t, 2, summary.TransactionsNeeded)
	assert.True(t, summary.TotalOutstanding.Equal(d(t, "20")))
	balances.AssertExpectations(t)
	debts.AssertExpectations(t)
}

func TestCalculateAllBalances_GroupNotFound(t *testing.T) {
	svc, _, _, _, members, _ := newBalanceService()
	ctx := context.Background()

	members.On("GroupExists", ctx, int64(9)).Return(false, nil)

	_, err := svc.CalculateAllBalances(ctx, 9)
	var nf *model.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestCalculateUserBalance_MissingRowIsSettledZero(t *testing.T) {
	svc, balances, _, _, members, _ := newBalanceService()
	ctx := context.Background()

	members.On("GroupExists", ctx, int64(1)).Return(true, nil)
	members.On("IsMember", ctx, int64(1), int64(5)).Return(true, nil)
	balances.On("GetByGroupAndUser", ctx, int64(1), int64(5)).
		Return(nil, model.NewNotFoundError("balance not found"))

	balance, err := svc.CalculateUserBalance(ctx, 1, 5)
	require.NoError(t, err)
	assert.True(t, balance.NetBalance.IsZero())
	assert.True(t, balance.IsSettled)
}

func TestCalculateUserBalance_NonMember(t *testing.T) {
	svc, _, _, _, members, _ := newBalanceService()
	ctx := context.Background()

	members.On("GroupExists", ctx, int64(1)).Return(true, nil)
	members.On("IsMember", ctx, int64(1), int64(5)).Return(false, nil)

	_, err := svc.CalculateUserBalance(ctx, 1, 5)
	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestGetGroupBalanceSummary_ReadsStoredState(t *testing.T) {
	svc, balances, debts, expenses, members, _ := newBalanceService()
	ctx := context.Background()

	members.On("GroupExists", ctx, int64(1)).Return(true, nil)
	balances.On("ListByGroup", ctx, int64(1)).Return([]*model.Balance{
		{GroupID: 1, UserID: 1, NetBalance: d(t, "5")},
		{GroupID: 1, UserID: 2, NetBalance: d(t, "-5")},
	}, nil)
	debts.On("ListByGroup", ctx, int64(1)).Return([]*model.DebtEdge{
		{GroupID: 1, DebtorID: 2, CreditorID: 1, Amount: d(t, "5")},
	}, nil)
	expenses.On("ListByGroup", ctx, int64(1)).Return([]*model.Expense{
		{GroupID: 1, Amount: d(t, "10")},
	}, nil)

	summary, err := svc.GetGroupBalanceSummary(ctx, 1)
	require.NoError(t, err)
	assert.False(t, summary.IsFullySettled)
	assert.Len(t, summary.DebtEdges, 1)
	assert.Equal(t, 2, summary.MemberCount)
	assert.Equal(t, 0, summary.SettledCount)
	assert.Equal(t, 2, summary.UnsettledCount)
	assert.Equal(t, 1, summary.TransactionsNeeded)
	assert.True(t, summary.TotalOutstanding.Equal(d(t, "5")))
	assert.True(t, summary.TotalExpenses.Equal(d(t, "10")))
}
