package services

import (
	"context"
	"fmt"

	"github.com/splitnest/splitnest/internal/events"
	"github.com/splitnest/splitnest/internal/model"
)

// ExpenseService owns the expense ledger. Every write triggers a full
// recalculation of the group inside the same transaction, so derived
// state never lags the ledger.
type ExpenseService struct {
	expenses   ExpenseStore
	members    MemberStore
	balanceSvc *BalanceService
	tx         Transactor
	locks      *GroupLocker
	sink       EventSink
}

func NewExpenseService(expenses ExpenseStore, members MemberStore, balanceSvc *BalanceService, tx Transactor, locks *GroupLocker, sink EventSink) *ExpenseService {
	return &ExpenseService{
		expenses:   expenses,
		members:    members,
		balanceSvc: balanceSvc,
		tx:         tx,
		locks:      locks,
		sink:       sink,
	}
}

func (s *ExpenseService) Create(ctx context.Context, p model.ExpenseCreateRequest) (*model.Expense, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.validateParticipants(ctx, p.GroupID, p.PaidByID, p.Splits); err != nil {
		return nil, err
	}

	expense := &model.Expense{
		GroupID:     p.GroupID,
		PaidByID:    p.PaidByID,
		Description: p.Description,
		Amount:      p.Amount,
		SplitType:   p.SplitType,
		Shares:      p.ResolveShares(),
	}

	unlock := s.locks.Lock(p.GroupID)
	defer unlock()

	var created *model.Expense
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.expenses.Create(ctx, expense)
		if err != nil {
			return err
		}
		return s.balanceSvc.RecalculateGroup(ctx, p.GroupID)
	})
	if err != nil {
		return nil, err
	}

	publishEvent(s.sink, events.NewEvent(created.GroupID, created.PaidByID, model.ActivityExpenseAdded,
		fmt.Sprintf("added expense %q for %s", created.Description, created.Amount.StringFixed(2)),
		map[string]string{"expense_id": fmt.Sprintf("%d", created.ID)}))

	return created, nil
}

func (s *ExpenseService) Update(ctx context.Context, id int64, p model.ExpenseUpdateRequest) (*model.Expense, error) {
	existing, err := s.expenses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// apply changes over the existing expense and re-validate as a whole
	effective := model.ExpenseCreateRequest{
		GroupID:     existing.GroupID,
		PaidByID:    existing.PaidByID,
		Description: existing.Description,
		Amount:      existing.Amount,
		SplitType:   existing.SplitType,
	}
	for _, share := range existing.Shares {
		effective.Splits = append(effective.Splits, model.SplitInput{
			UserID:     share.UserID,
			Amount:     share.Amount,
			Percentage: share.Percentage,
		})
	}
	if p.Description != nil {
		effective.Description = *p.Description
	}
	if p.Amount != nil {
		effective.Amount = *p.Amount
	}
	if p.SplitType != nil {
		effective.SplitType = *p.SplitType
	}
	if p.Splits != nil {
		effective.Splits = p.Splits
	}

	if err := effective.Validate(); err != nil {
		return nil, err
	}
	if err := s.validateParticipants(ctx, effective.GroupID, effective.PaidByID, effective.Splits); err != nil {
		return nil, err
	}

	existing.Description = effective.Description
	existing.Amount = effective.Amount
	existing.SplitType = effective.SplitType
	existing.Shares = effective.ResolveShares()

	unlock := s.locks.Lock(existing.GroupID)
	defer unlock()

	var updated *model.Expense
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.expenses.Update(ctx, existing)
		if err != nil {
			return err
		}
		return s.balanceSvc.RecalculateGroup(ctx, existing.GroupID)
	})
	if err != nil {
		return nil, err
	}

	publishEvent(s.sink, events.NewEvent(updated.GroupID, updated.PaidByID, model.ActivityExpenseUpdated,
		fmt.Sprintf("updated expense %q", updated.Description),
		map[string]string{"expense_id": fmt.Sprintf("%d", updated.ID)}))

	return updated, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	existing, err := s.expenses.GetByID(ctx, id)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(existing.GroupID)
	defer unlock()

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.expenses.Delete(ctx, id); err != nil {
			return err
		}
		return s.balanceSvc.RecalculateGroup(ctx, existing.GroupID)
	})
	if err != nil {
		return err
	}

	publishEvent(s.sink, events.NewEvent(existing.GroupID, existing.PaidByID, model.ActivityExpenseDeleted,
		fmt.Sprintf("deleted expense %q", existing.Description),
		map[string]string{"expense_id": fmt.Sprintf("%d", id)}))

	return nil
}

func (s *ExpenseService) Get(ctx context.Context, id int64) (*model.Expense, error) {
	return s.expenses.GetByID(ctx, id)
}

func (s *ExpenseService) List(ctx context.Context, f model.ExpenseFilter) ([]*model.Expense, int64, error) {
	return s.expenses.List(ctx, f)
}

func (s *ExpenseService) validateParticipants(ctx context.Context, groupID, paidByID int64, splits []model.SplitInput) error {
	exists, err := s.members.GroupExists(ctx, groupID)
	if err != nil {
		return err
	}
	if !exists {
		return model.NewNotFoundError("group not found")
	}

	member, err := s.members.IsMember(ctx, groupID, paidByID)
	if err != nil {
		return err
	}
	if !member {
		return model.NewValidationError("payer is not a member of the group")
	}

	for _, split := range splits {
		member, err := s.members.IsMember(ctx, groupID, split.UserID)
		if err != nil {
			return err
		}
		if !member {
			return model.NewValidationError("participant is not a member of the group")
		}
	}
	return nil
}
