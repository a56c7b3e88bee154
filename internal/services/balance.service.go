package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/splitnest/splitnest/internal/calculator"
	"github.com/splitnest/splitnest/internal/model"
	"github.com/splitnest/splitnest/pkg/prom"
)

// BalanceService owns the aggregation pipeline: it folds the expense
// ledger into balances and regenerates the minimized debt edges.
type BalanceService struct {
	balances BalanceStore
	debts    DebtStore
	expenses ExpenseStore
	members  MemberStore
	tx       Transactor
	locks    *GroupLocker
}

func NewBalanceService(balances BalanceStore, debts DebtStore, expenses ExpenseStore, members MemberStore, tx Transactor, locks *GroupLocker) *BalanceService {
	return &BalanceService{
		balances: balances,
		debts:    debts,
		expenses: expenses,
		members:  members,
		tx:       tx,
		locks:    locks,
	}
}

// CalculateAllBalances recomputes the whole group from its ledger:
// one balance row per member and a fresh minimized edge set, written
// atomically. It returns the recomputed state.
func (s *BalanceService) CalculateAllBalances(ctx context.Context, groupID int64) (*model.GroupBalanceSummary, error) {
	if err := s.requireGroup(ctx, groupID); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(groupID)
	defer unlock()

	var summary *model.GroupBalanceSummary
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		summary, err = s.recalculate(ctx, groupID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// RecalculateGroup is the in-transaction variant used by mutation
// paths (expense writes, settlement confirmation): the caller already
// holds the group lock and an open transaction.
func (s *BalanceService) RecalculateGroup(ctx context.Context, groupID int64) error {
	_, err := s.recalculate(ctx, groupID)
	return err
}

func (s *BalanceService) recalculate(ctx context.Context, groupID int64) (*model.GroupBalanceSummary, error) {
	started := time.Now()

	memberIDs, err := s.members.ListUserIDs(ctx, groupID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	balances := calculator.AggregateBalances(groupID, memberIDs, expenses)
	if err := s.balances.UpsertAll(ctx, balances); err != nil {
		return nil, err
	}

	edges := calculator.MinimizeDebts(groupID, balances)
	if err := s.debts.ReplaceForGroup(ctx, groupID, edges); err != nil {
		return nil, err
	}

	prom.AddBalanceRecalcDuration(time.Since(started).Seconds())
	prom.SetGaugeVec(prom.SystemBalances, prom.MetricDebtEdgesGenerated, float64(len(edges)), strconv.FormatInt(groupID, 10))

	return model.NewGroupBalanceSummary(groupID, calculator.TotalExpenses(expenses), balances, edges), nil
}

// CalculateUserBalance returns one member's stored balance. A missing
// row means the member has no recorded activity and reads as a zero,
// fully settled balance.
func (s *BalanceService) CalculateUserBalance(ctx context.Context, groupID, userID int64) (*model.Balance, error) {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	balance, err := s.balances.GetByGroupAndUser(ctx, groupID, userID)
	if err != nil {
		var nf *model.NotFoundError
		if errors.As(err, &nf) {
			// no recorded activity, treated as fully settled
			return &model.Balance{
				GroupID:    groupID,
				UserID:     userID,
				TotalPaid:  decimal.Zero,
				TotalOwed:  decimal.Zero,
				NetBalance: decimal.Zero,
				IsSettled:  true,
			}, nil
		}
		return nil, err
	}
	return balance, nil
}

// GetGroupBalanceSummary reads the stored derived state without
// triggering a recomputation.
func (s *BalanceService) GetGroupBalanceSummary(ctx context.Context, groupID int64) (*model.GroupBalanceSummary, error) {
	if err := s.requireGroup(ctx, groupID); err != nil {
		return nil, err
	}

	balances, err := s.balances.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	edges, err := s.debts.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenses.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	return model.NewGroupBalanceSummary(groupID, calculator.TotalExpenses(expenses), balances, edges), nil
}

// ListDebts exposes the current minimized edge set.
func (s *BalanceService) ListDebts(ctx context.Context, f model.DebtFilter) ([]*model.DebtEdge, error) {
	return s.debts.List(ctx, f)
}

func (s *BalanceService) requireGroup(ctx context.Context, groupID int64) error {
	exists, err := s.members.GroupExists(ctx, groupID)
	if err != nil {
		return err
	}
	if !exists {
		return model.NewNotFoundError("group not found")
	}
	return nil
}

func (s *BalanceService) requireMember(ctx context.Context, groupID, userID int64) error {
	if err := s.requireGroup(ctx, groupID); err != nil {
		return err
	}
	member, err := s.members.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !member {
		return model.NewValidationError("user is not a member of the group")
	}
	return nil
}
