package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/splitnest/splitnest/internal/events"
	"github.com/splitnest/splitnest/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockBalanceStore struct{ mock.Mock }

func (m *MockBalanceStore) UpsertAll(ctx context.Context, balances []*model.Balance) error {
	args := m.Called(ctx, balances)
	return args.Error(0)
}

func (m *MockBalanceStore) GetByGroupAndUser(ctx context.Context, groupID, userID int64) (*model.Balance, error) {
	args := m.Called(ctx, groupID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Balance), args.Error(1)
}

func (m *MockBalanceStore) ListByGroup(ctx context.Context, groupID int64) ([]*model.Balance, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Balance), args.Error(1)
}

func (m *MockBalanceStore) AnyUnsettled(ctx context.Context, groupID int64) (bool, error) {
	args := m.Called(ctx, groupID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBalanceStore) DeleteByGroup(ctx context.Context, groupID int64) error {
	args := m.Called(ctx, groupID)
	return args.Error(0)
}

type MockDebtStore struct{ mock.Mock }

func (m *MockDebtStore) ReplaceForGroup(ctx context.Context, groupID int64, edges []*model.DebtEdge) error {
	args := m.Called(ctx, groupID, edges)
	return args.Error(0)
}

func (m *MockDebtStore) List(ctx context.Context, f model.DebtFilter) ([]*model.DebtEdge, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.DebtEdge), args.Error(1)
}

func (m *MockDebtStore) ListByGroup(ctx context.Context, groupID int64) ([]*model.DebtEdge, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.DebtEdge), args.Error(1)
}

func (m *MockDebtStore) CountUnsettledInvolving(ctx context.Context, groupID, userID int64) (int64, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockExpenseStore struct{ mock.Mock }

func (m *MockExpenseStore) Create(ctx context.Context, expense *model.Expense) (*model.Expense, error) {
	args := m.Called(ctx, expense)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Expense), args.Error(1)
}

func (m *MockExpenseStore) GetByID(ctx context.Context, id int64) (*model.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Expense), args.Error(1)
}

func (m *MockExpenseStore) ListByGroup(ctx context.Context, groupID int64) ([]*model.Expense, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Expense), args.Error(1)
}

func (m *MockExpenseStore) List(ctx context.Context, f model.ExpenseFilter) ([]*model.Expense, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Expense), args.Get(1).(int64), args.Error(2)
}

func (m *MockExpenseStore) Update(ctx context.Context, expense *model.Expense) (*model.Expense, error) {
	args := m.Called(ctx, expense)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Expense), args.Error(1)
}

func (m *MockExpenseStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockMemberStore struct{ mock.Mock }

func (m *MockMemberStore) GroupExists(ctx context.Context, groupID int64) (bool, error) {
	args := m.Called(ctx, groupID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMemberStore) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMemberStore) ListUserIDs(ctx context.Context, groupID int64) ([]int64, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

type MockSettlementStore struct{ mock.Mock }

func (m *MockSettlementStore) Create(ctx context.Context, s *model.Settlement) (*model.Settlement, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Settlement), args.Error(1)
}

func (m *MockSettlementStore) GetByID(ctx context.Context, id int64) (*model.Settlement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Settlement), args.Error(1)
}

func (m *MockSettlementStore) TransitionIfPending(ctx context.Context, id int64, to model.SettlementStatus, resolvedBy int64, resolvedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, to, resolvedBy, resolvedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockSettlementStore) List(ctx context.Context, f model.SettlementFilter) ([]*model.Settlement, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Settlement), args.Get(1).(int64), args.Error(2)
}

func (m *MockSettlementStore) CountPendingByGroup(ctx context.Context, groupID int64) (int64, error) {
	args := m.Called(ctx, groupID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSettlementStore) CountPendingInvolving(ctx context.Context, groupID, userID int64) (int64, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSettlementStore) ConfirmedStats(ctx context.Context, groupID int64) (int64, decimal.Decimal, *time.Time, error) {
	args := m.Called(ctx, groupID)
	var lastAt *time.Time
	if args.Get(2) != nil {
		lastAt = args.Get(2).(*time.Time)
	}
	return args.Get(0).(int64), args.Get(1).(decimal.Decimal), lastAt, args.Error(3)
}

type MockRequestStore struct{ mock.Mock }

func (m *MockRequestStore) Create(ctx context.Context, req *model.SettlementRequest) (*model.SettlementRequest, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SettlementRequest), args.Error(1)
}

func (m *MockRequestStore) GetByID(ctx context.Context, id int64) (*model.SettlementRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SettlementRequest), args.Error(1)
}

func (m *MockRequestStore) ExistsPendingPair(ctx context.Context, groupID, requesterID, requesteeID int64) (bool, error) {
	args := m.Called(ctx, groupID, requesterID, requesteeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRequestStore) TransitionIfPending(ctx context.Context, id int64, to model.SettlementRequestStatus, responseMessage string, resolvedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, to, responseMessage, resolvedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockRequestStore) LinkSettlement(ctx context.Context, id, settlementID int64) error {
	args := m.Called(ctx, id, settlementID)
	return args.Error(0)
}

func (m *MockRequestStore) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRequestStore) List(ctx context.Context, f model.SettlementRequestFilter) ([]*model.SettlementRequest, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.SettlementRequest), args.Get(1).(int64), args.Error(2)
}

type MockSummaryStore struct{ mock.Mock }

func (m *MockSummaryStore) Upsert(ctx context.Context, s *model.GroupSettlementSummary) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSummaryStore) GetByGroup(ctx context.Context, groupID int64) (*model.GroupSettlementSummary, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GroupSettlementSummary), args.Error(1)
}

// MockTransactor executes the unit of work inline, mirroring a
// committed transaction.
type MockTransactor struct{ mock.Mock }

func (m *MockTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type MockEventSink struct {
	mock.Mock
	Events []*events.Event
}

func (m *MockEventSink) Publish(e *events.Event) error {
	m.Events = append(m.Events, e)
	args := m.Called(e)
	return args.Error(0)
}

type MockGroupStore struct{ mock.Mock }

func (m *MockGroupStore) CreateUser(ctx context.Context, email, name string) (*model.User, error) {
	args := m.Called(ctx, email, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockGroupStore) CreateGroup(ctx context.Context, name string, createdByID int64) (*model.Group, error) {
	args := m.Called(ctx, name, createdByID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Group), args.Error(1)
}

func (m *MockGroupStore) AddMember(ctx context.Context, groupID, userID int64) (*model.Membership, error) {
	args := m.Called(ctx, groupID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Membership), args.Error(1)
}

func (m *MockGroupStore) RemoveMember(ctx context.Context, groupID, userID int64) error {
	args := m.Called(ctx, groupID, userID)
	return args.Error(0)
}

func (m *MockGroupStore) GroupExists(ctx context.Context, groupID int64) (bool, error) {
	args := m.Called(ctx, groupID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGroupStore) GetGroup(ctx context.Context, groupID int64) (*model.Group, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Group), args.Error(1)
}

func (m *MockGroupStore) DeleteGroup(ctx context.Context, groupID int64) error {
	args := m.Called(ctx, groupID)
	return args.Error(0)
}

func (m *MockGroupStore) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Bool(0), args.Error(1)
}

type MockSettlementGuard struct{ mock.Mock }

func (m *MockSettlementGuard) CheckGroupDeletable(ctx context.Context, groupID int64) (*model.DeletableCheck, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeletableCheck), args.Error(1)
}

func (m *MockSettlementGuard) CheckMemberRemovable(ctx context.Context, groupID, userID int64) (*model.RemovableCheck, error) {
	args := m.Called(ctx, groupID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RemovableCheck), args.Error(1)
}

type MockRecalculator struct{ mock.Mock }

func (m *MockRecalculator) RecalculateGroup(ctx context.Context, groupID int64) error {
	args := m.Called(ctx, groupID)
	return args.Error(0)
}
