package services

import (
	"context"
	"strings"

	"github.com/splitnest/splitnest/internal/model"
	"github.com/splitnest/splitnest/pkg/logger"
)

type GroupStore interface {
	CreateUser(ctx context.Context, email, name string) (*model.User, error)
	CreateGroup(ctx context.Context, name string, createdByID int64) (*model.Group, error)
	AddMember(ctx context.Context, groupID, userID int64) (*model.Membership, error)
	RemoveMember(ctx context.Context, groupID, userID int64) error
	GroupExists(ctx context.Context, groupID int64) (bool, error)
	GetGroup(ctx context.Context, groupID int64) (*model.Group, error)
	DeleteGroup(ctx context.Context, groupID int64) error
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)
}

// SettlementGuard answers whether destructive group operations are
// currently allowed.
type SettlementGuard interface {
	CheckGroupDeletable(ctx context.Context, groupID int64) (*model.DeletableCheck, error)
	CheckMemberRemovable(ctx context.Context, groupID, userID int64) (*model.RemovableCheck, error)
}

// Recalculator re-derives a group's balances inside the caller's
// transaction and lock.
type Recalculator interface {
	RecalculateGroup(ctx context.Context, groupID int64) error
}

// GroupService manages groups and memberships. Removing a member or
// deleting a group is refused while settlement state still references
// them.
type GroupService struct {
	members  GroupStore
	balances BalanceStore
	debts    DebtStore
	guard    SettlementGuard
	recalc   Recalculator
	tx       Transactor
	locks    *GroupLocker
}

func NewGroupService(
	members GroupStore,
	balances BalanceStore,
	debts DebtStore,
	guard SettlementGuard,
	recalc Recalculator,
	tx Transactor,
	locks *GroupLocker,
) *GroupService {
	return &GroupService{
		members:  members,
		balances: balances,
		debts:    debts,
		guard:    guard,
		recalc:   recalc,
		tx:       tx,
		locks:    locks,
	}
}

func (s *GroupService) CreateUser(ctx context.Context, email, name string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, model.NewValidationError("email is required")
	}
	if name = strings.TrimSpace(name); name == "" {
		return nil, model.NewValidationError("name is required")
	}
	return s.members.CreateUser(ctx, email, name)
}

// CreateGroup creates a group with the creator as its first member.
func (s *GroupService) CreateGroup(ctx context.Context, name string, createdByID int64) (*model.Group, error) {
	if name = strings.TrimSpace(name); name == "" {
		return nil, model.NewValidationError("name is required")
	}
	if createdByID == 0 {
		return nil, model.NewValidationError("created_by_id is required")
	}
	return s.members.CreateGroup(ctx, name, createdByID)
}

func (s *GroupService) GetGroup(ctx context.Context, groupID int64) (*model.Group, error) {
	return s.members.GetGroup(ctx, groupID)
}

func (s *GroupService) AddMember(ctx context.Context, groupID, userID int64) (*model.Membership, error) {
	exists, err := s.members.GroupExists(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.NewNotFoundError("group not found")
	}

	isMember, err := s.members.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, model.NewStateError("user is already a member of this group")
	}
	return s.members.AddMember(ctx, groupID, userID)
}

// RemoveMember drops a member once they hold no outstanding debts and
// no pending settlements. The group's balances are re-derived so the
// removed member's row disappears.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, userID int64) error {
	isMember, err := s.members.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return model.NewNotFoundError("user is not a member of this group")
	}

	check, err := s.guard.CheckMemberRemovable(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !check.Removable {
		return model.NewStateError("member cannot be removed: " + strings.Join(check.BlockedBy, ", "))
	}

	unlock := s.locks.Lock(groupID)
	defer unlock()

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.members.RemoveMember(ctx, groupID, userID); err != nil {
			return err
		}
		return s.recalc.RecalculateGroup(ctx, groupID)
	})
	if err != nil {
		return err
	}

	logger.Info("member removed from group", "group_id", groupID, "user_id", userID)
	return nil
}

// DeleteGroup removes the group and all of its derived state. Refused
// while any balance is unsettled or any settlement is still pending.
func (s *GroupService) DeleteGroup(ctx context.Context, groupID int64) error {
	exists, err := s.members.GroupExists(ctx, groupID)
	if err != nil {
		return err
	}
	if !exists {
		return model.NewNotFoundError("group not found")
	}

	check, err := s.guard.CheckGroupDeletable(ctx, groupID)
	if err != nil {
		return err
	}
	if !check.Deletable {
		return model.NewStateError("group cannot be deleted: " + strings.Join(check.BlockedBy, ", "))
	}

	unlock := s.locks.Lock(groupID)
	defer unlock()

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.debts.ReplaceForGroup(ctx, groupID, nil); err != nil {
			return err
		}
		if err := s.balances.DeleteByGroup(ctx, groupID); err != nil {
			return err
		}
		return s.members.DeleteGroup(ctx, groupID)
	})
	if err != nil {
		return err
	}

	logger.Info("group deleted", "group_id", groupID)
	return nil
}
