package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/splitnest/splitnest/internal/events"
	"github.com/splitnest/splitnest/internal/model"
	"github.com/splitnest/splitnest/pkg/prom"
)

// SettlementService owns the settlement state machine. A settlement
// is created pending and resolved exactly once: confirmation applies
// the payment to the group's balances atomically with the status
// flip, rejection only records the refusal. Either way the group
// rollup is refreshed in the same transaction.
type SettlementService struct {
	settlements SettlementStore
	summaries   SummaryStore
	balances    BalanceStore
	debts       DebtStore
	members     MemberStore
	balanceSvc  *BalanceService
	tx          Transactor
	locks       *GroupLocker
	sink        EventSink
	now         func() time.Time
}

func NewSettlementService(settlements SettlementStore, summaries SummaryStore, balances BalanceStore, debts DebtStore, members MemberStore, balanceSvc *BalanceService, tx Transactor, locks *GroupLocker, sink EventSink) *SettlementService {
	return &SettlementService{
		settlements: settlements,
		summaries:   summaries,
		balances:    balances,
		debts:       debts,
		members:     members,
		balanceSvc:  balanceSvc,
		tx:          tx,
		locks:       locks,
		sink:        sink,
		now:         time.Now,
	}
}

func (s *SettlementService) Create(ctx context.Context, p model.SettlementCreateRequest) (*model.Settlement, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireMembers(ctx, p.GroupID, p.PayerID, p.ReceiverID); err != nil {
		return nil, err
	}

	method := p.Method
	if method == "" {
		method = model.SettlementMethodOther
	}
	initiatedBy := p.InitiatedByID
	if initiatedBy == 0 {
		initiatedBy = p.PayerID
	}
	if initiatedBy != p.PayerID && initiatedBy != p.ReceiverID {
		if err := s.requireMembers(ctx, p.GroupID, initiatedBy); err != nil {
			return nil, err
		}
	}
	settlement := &model.Settlement{
		ReferenceCode: uuid.NewString(),
		GroupID:       p.GroupID,
		PayerID:       p.PayerID,
		ReceiverID:    p.ReceiverID,
		Amount:        p.Amount,
		Method:        method,
		Note:          p.Note,
		Status:        model.SettlementStatusPending,
		InitiatedByID: initiatedBy,
	}

	unlock := s.locks.Lock(p.GroupID)
	defer unlock()

	var created *model.Settlement
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.settlements.Create(ctx, settlement)
		if err != nil {
			return err
		}
		return s.refreshSummary(ctx, p.GroupID)
	})
	if err != nil {
		return nil, err
	}

	prom.IncSettlementTransition("created")
	publishEvent(s.sink, events.NewEvent(created.GroupID, created.PayerID, model.ActivitySettlementCreated,
		fmt.Sprintf("recorded a payment of %s", created.Amount.StringFixed(2)),
		map[string]string{"settlement_id": fmt.Sprintf("%d", created.ID)}))

	return created, nil
}

// Confirm flips the settlement to confirmed on confirmedBy's behalf
// and recomputes the whole group in one transaction. The flip is
// guarded on the pending status, so of two racing confirms exactly
// one succeeds and the recomputation runs exactly once.
func (s *SettlementService) Confirm(ctx context.Context, id, confirmedBy int64) (*model.Settlement, error) {
	if confirmedBy == 0 {
		return nil, model.NewValidationError("confirming user is required")
	}
	settlement, err := s.settlements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if settlement.IsTerminal() {
		return nil, model.NewStateError(fmt.Sprintf("settlement is already %s", settlement.Status))
	}

	unlock := s.locks.Lock(settlement.GroupID)
	defer unlock()

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		won, err := s.settlements.TransitionIfPending(ctx, id, model.SettlementStatusConfirmed, confirmedBy, s.now().UTC())
		if err != nil {
			return err
		}
		if !won {
			return model.NewStateError("settlement is no longer pending")
		}
		if err := s.balanceSvc.RecalculateGroup(ctx, settlement.GroupID); err != nil {
			return err
		}
		return s.refreshSummary(ctx, settlement.GroupID)
	})
	if err != nil {
		return nil, err
	}

	prom.IncSettlementTransition("confirmed")
	publishEvent(s.sink, events.NewEvent(settlement.GroupID, confirmedBy, model.ActivitySettlementConfirmed,
		fmt.Sprintf("confirmed a payment of %s", settlement.Amount.StringFixed(2)),
		map[string]string{"settlement_id": fmt.Sprintf("%d", id)}))

	return s.settlements.GetByID(ctx, id)
}

// Reject resolves the settlement on rejectedBy's behalf without
// touching balances.
func (s *SettlementService) Reject(ctx context.Context, id, rejectedBy int64) (*model.Settlement, error) {
	if rejectedBy == 0 {
		return nil, model.NewValidationError("rejecting user is required")
	}
	settlement, err := s.settlements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if settlement.IsTerminal() {
		return nil, model.NewStateError(fmt.Sprintf("settlement is already %s", settlement.Status))
	}

	unlock := s.locks.Lock(settlement.GroupID)
	defer unlock()

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		won, err := s.settlements.TransitionIfPending(ctx, id, model.SettlementStatusRejected, rejectedBy, s.now().UTC())
		if err != nil {
			return err
		}
		if !won {
			return model.NewStateError("settlement is no longer pending")
		}
		return s.refreshSummary(ctx, settlement.GroupID)
	})
	if err != nil {
		return nil, err
	}

	prom.IncSettlementTransition("rejected")
	publishEvent(s.sink, events.NewEvent(settlement.GroupID, rejectedBy, model.ActivitySettlementRejected,
		fmt.Sprintf("rejected a payment of %s", settlement.Amount.StringFixed(2)),
		map[string]string{"settlement_id": fmt.Sprintf("%d", id)}))

	return s.settlements.GetByID(ctx, id)
}

// SettleAllDebts creates one pending settlement per outstanding debt
// edge of the user. Each still needs its receiver to confirm before
// balances move.
func (s *SettlementService) SettleAllDebts(ctx context.Context, groupID, userID int64) ([]*model.Settlement, error) {
	if err := s.requireMembers(ctx, groupID, userID); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(groupID)
	defer unlock()

	var created []*model.Settlement
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		edges, err := s.debts.List(ctx, model.DebtFilter{
			GroupID:   &groupID,
			DebtorID:  &userID,
			Unsettled: true,
		})
		if err != nil {
			return err
		}
		if len(edges) == 0 {
			return nil
		}

		for _, edge := range edges {
			settlement, err := s.settlements.Create(ctx, &model.Settlement{
				ReferenceCode: uuid.NewString(),
				GroupID:       groupID,
				PayerID:       edge.DebtorID,
				ReceiverID:    edge.CreditorID,
				Amount:        edge.Amount,
				Method:        model.SettlementMethodOther,
				Note:          "settle all debts",
				Status:        model.SettlementStatusPending,
				InitiatedByID: userID,
			})
			if err != nil {
				return err
			}
			created = append(created, settlement)
		}

		return s.refreshSummary(ctx, groupID)
	})
	if err != nil {
		return nil, err
	}

	for _, settlement := range created {
		prom.IncSettlementTransition("created")
		publishEvent(s.sink, events.NewEvent(groupID, userID, model.ActivitySettlementCreated,
			fmt.Sprintf("offered to settle %s", settlement.Amount.StringFixed(2)),
			map[string]string{"settlement_id": fmt.Sprintf("%d", settlement.ID)}))
	}
	return created, nil
}

func (s *SettlementService) Get(ctx context.Context, id int64) (*model.Settlement, error) {
	return s.settlements.GetByID(ctx, id)
}

func (s *SettlementService) List(ctx context.Context, f model.SettlementFilter) ([]*model.Settlement, int64, error) {
	return s.settlements.List(ctx, f)
}

// GetSummary returns the stored rollup; a group with no settlement
// activity yet reads as an empty summary.
func (s *SettlementService) GetSummary(ctx context.Context, groupID int64) (*model.GroupSettlementSummary, error) {
	if err := s.requireMembers(ctx, groupID); err != nil {
		return nil, err
	}
	summary, err := s.summaries.GetByGroup(ctx, groupID)
	if err != nil {
		var nf *model.NotFoundError
		if errors.As(err, &nf) {
			return &model.GroupSettlementSummary{GroupID: groupID}, nil
		}
		return nil, err
	}
	return summary, nil
}

// RefreshSummary recomputes the rollup outside a mutation, e.g. after
// a manual data fix.
func (s *SettlementService) RefreshSummary(ctx context.Context, groupID int64) error {
	if err := s.requireMembers(ctx, groupID); err != nil {
		return err
	}
	unlock := s.locks.Lock(groupID)
	defer unlock()
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.refreshSummary(ctx, groupID)
	})
}

// GetUserSettlementStatus answers where one member stands: what they
// owe and are owed per the current edge set, plus pending settlements
// they are a side of.
func (s *SettlementService) GetUserSettlementStatus(ctx context.Context, groupID, userID int64) (*model.UserSettlementStatus, error) {
	if err := s.requireMembers(ctx, groupID, userID); err != nil {
		return nil, err
	}

	owesTo, err := s.debts.List(ctx, model.DebtFilter{GroupID: &groupID, DebtorID: &userID, Unsettled: true})
	if err != nil {
		return nil, err
	}
	owedBy, err := s.debts.List(ctx, model.DebtFilter{GroupID: &groupID, CreditorID: &userID, Unsettled: true})
	if err != nil {
		return nil, err
	}

	status := &model.UserSettlementStatus{
		GroupID: groupID,
		UserID:  userID,
		OwesTo:  owesTo,
		OwedBy:  owedBy,
	}
	for _, edge := range owesTo {
		status.TotalOwed = status.TotalOwed.Add(edge.Amount)
	}
	for _, edge := range owedBy {
		status.TotalOwedToUser = status.TotalOwedToUser.Add(edge.Amount)
	}

	_, outgoing, err := s.settlements.List(ctx, model.SettlementFilter{
		GroupID:  &groupID,
		PayerID:  &userID,
		Statuses: []model.SettlementStatus{model.SettlementStatusPending},
	})
	if err != nil {
		return nil, err
	}
	_, incoming, err := s.settlements.List(ctx, model.SettlementFilter{
		GroupID:    &groupID,
		ReceiverID: &userID,
		Statuses:   []model.SettlementStatus{model.SettlementStatusPending},
	})
	if err != nil {
		return nil, err
	}
	status.PendingOutgoing = outgoing
	status.PendingIncoming = incoming
	status.IsFullySettled = status.TotalOwed.IsZero() && status.TotalOwedToUser.IsZero()
	status.CanLeaveGroup = status.IsFullySettled && outgoing == 0 && incoming == 0

	return status, nil
}

// CheckGroupDeletable reports whether the group carries no unsettled
// debt and no pending settlements.
func (s *SettlementService) CheckGroupDeletable(ctx context.Context, groupID int64) (*model.DeletableCheck, error) {
	if err := s.requireMembers(ctx, groupID); err != nil {
		return nil, err
	}

	check := &model.DeletableCheck{GroupID: groupID, Deletable: true}

	unsettled, err := s.balances.AnyUnsettled(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if unsettled {
		check.Deletable = false
		check.BlockedBy = append(check.BlockedBy, "unsettled balances")
	}

	pending, err := s.settlements.CountPendingByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if pending > 0 {
		check.Deletable = false
		check.BlockedBy = append(check.BlockedBy, "pending settlements")
	}
	return check, nil
}

// CheckMemberRemovable reports whether the member carries no
// outstanding debt edges and no pending settlements in the group.
func (s *SettlementService) CheckMemberRemovable(ctx context.Context, groupID, userID int64) (*model.RemovableCheck, error) {
	if err := s.requireMembers(ctx, groupID, userID); err != nil {
		return nil, err
	}

	check := &model.RemovableCheck{GroupID: groupID, UserID: userID, Removable: true}

	involved, err := s.debts.CountUnsettledInvolving(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if involved > 0 {
		check.Removable = false
		check.BlockedBy = append(check.BlockedBy, "outstanding debts")
	}

	pending, err := s.settlements.CountPendingInvolving(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if pending > 0 {
		check.Removable = false
		check.BlockedBy = append(check.BlockedBy, "pending settlements")
	}
	return check, nil
}

// refreshSummary recomputes the group rollup from the settlements
// table and the stored balances. Runs inside the caller's transaction
// at every settlement mutation.
func (s *SettlementService) refreshSummary(ctx context.Context, groupID int64) error {
	count, total, lastAt, err := s.settlements.ConfirmedStats(ctx, groupID)
	if err != nil {
		return err
	}
	pending, err := s.settlements.CountPendingByGroup(ctx, groupID)
	if err != nil {
		return err
	}
	unsettled, err := s.balances.AnyUnsettled(ctx, groupID)
	if err != nil {
		return err
	}

	return s.summaries.Upsert(ctx, &model.GroupSettlementSummary{
		GroupID:          groupID,
		TotalSettled:     total,
		SettlementCount:  count,
		PendingCount:     pending,
		IsFullySettled:   !unsettled,
		LastSettlementAt: lastAt,
	})
}

// requireMembers checks the group exists and each given user belongs
// to it.
func (s *SettlementService) requireMembers(ctx context.Context, groupID int64, userIDs ...int64) error {
	exists, err := s.members.GroupExists(ctx, groupID)
	if err != nil {
		return err
	}
	if !exists {
		return model.NewNotFoundError("group not found")
	}
	for _, userID := range userIDs {
		member, err := s.members.IsMember(ctx, groupID, userID)
		if err != nil {
			return err
		}
		if !member {
			return model.NewValidationError("user is not a member of the group")
		}
	}
	return nil
}
