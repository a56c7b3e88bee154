// Package services orchestrates the domain: balance recalculation,
// the expense ledger, settlement lifecycles and the group rollup. All
// multi-step mutations run inside a transaction and under the owning
// group's lock, so per-group state changes are serialized.
package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/splitnest/splitnest/internal/events"
	"github.com/splitnest/splitnest/internal/model"
	"github.com/splitnest/splitnest/pkg/logger"
)

type BalanceStore interface {
	UpsertAll(ctx context.Context, balances []*model.Balance) error
	GetByGroupAndUser(ctx context.Context, groupID, userID int64) (*model.Balance, error)
	ListByGroup(ctx context.Context, groupID int64) ([]*model.Balance, error)
	AnyUnsettled(ctx context.Context, groupID int64) (bool, error)
	DeleteByGroup(ctx context.Context, groupID int64) error
}

type DebtStore interface {
	ReplaceForGroup(ctx context.Context, groupID int64, edges []*model.DebtEdge) error
	List(ctx context.Context, f model.DebtFilter) ([]*model.DebtEdge, error)
	ListByGroup(ctx context.Context, groupID int64) ([]*model.DebtEdge, error)
	CountUnsettledInvolving(ctx context.Context, groupID, userID int64) (int64, error)
}

type ExpenseStore interface {
	Create(ctx context.Context, expense *model.Expense) (*model.Expense, error)
	GetByID(ctx context.Context, id int64) (*model.Expense, error)
	ListByGroup(ctx context.Context, groupID int64) ([]*model.Expense, error)
	List(ctx context.Context, f model.ExpenseFilter) ([]*model.Expense, int64, error)
	Update(ctx context.Context, expense *model.Expense) (*model.Expense, error)
	Delete(ctx context.Context, id int64) error
}

type MemberStore interface {
	GroupExists(ctx context.Context, groupID int64) (bool, error)
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)
	ListUserIDs(ctx context.Context, groupID int64) ([]int64, error)
}

type SettlementStore interface {
	Create(ctx context.Context, s *model.Settlement) (*model.Settlement, error)
	GetByID(ctx context.Context, id int64) (*model.Settlement, error)
	TransitionIfPending(ctx context.Context, id int64, to model.SettlementStatus, resolvedBy int64, resolvedAt time.Time) (bool, error)
	List(ctx context.Context, f model.SettlementFilter) ([]*model.Settlement, int64, error)
	CountPendingByGroup(ctx context.Context, groupID int64) (int64, error)
	CountPendingInvolving(ctx context.Context, groupID, userID int64) (int64, error)
	ConfirmedStats(ctx context.Context, groupID int64) (int64, decimal.Decimal, *time.Time, error)
}

type RequestStore interface {
	Create(ctx context.Context, req *model.SettlementRequest) (*model.SettlementRequest, error)
	GetByID(ctx context.Context, id int64) (*model.SettlementRequest, error)
	ExistsPendingPair(ctx context.Context, groupID, requesterID, requesteeID int64) (bool, error)
	TransitionIfPending(ctx context.Context, id int64, to model.SettlementRequestStatus, responseMessage string, resolvedAt time.Time) (bool, error)
	LinkSettlement(ctx context.Context, id, settlementID int64) error
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
	List(ctx context.Context, f model.SettlementRequestFilter) ([]*model.SettlementRequest, int64, error)
}

type SummaryStore interface {
	Upsert(ctx context.Context, s *model.GroupSettlementSummary) error
	GetByGroup(ctx context.Context, groupID int64) (*model.GroupSettlementSummary, error)
}

// Transactor runs fn inside a database transaction; any error rolls
// the whole unit back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventSink receives activity events after the owning transaction has
// committed.
type EventSink interface {
	Publish(e *events.Event) error
}

// publishEvent emits a post-commit event. Delivery failures are
// logged, never propagated: domain state has already committed.
func publishEvent(sink EventSink, e *events.Event) {
	if sink == nil {
		return
	}
	if err := sink.Publish(e); err != nil {
		logger.Error("failed to publish activity event", "event_id", e.ID, "type", e.Type, "error", err)
	}
}
