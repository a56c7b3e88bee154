package repository

import (
	"context"
	"errors"

	"github.com/splitnest/splitnest/internal/model"
	"github.com/splitnest/splitnest/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BalanceRepository struct {
	*pg.DB
}

func NewBalanceRepository(db *pg.DB) *BalanceRepository {
	return &BalanceRepository{db}
}

// UpsertAll writes one balance row per member, inserting or updating
// on the (group_id, user_id) key. It is the persistence half of a
// recalculation and is expected to run inside the caller's
// transaction.
func (r *BalanceRepository) UpsertAll(ctx context.Context, balances []*model.Balance) error {
	if len(balances) == 0 {
		return nil
	}
	entities := make([]*BalanceEntity, len(balances))
	for i, b := range balances {
		entities[i] = toBalanceEntity(b)
	}

	return r.Write(ctx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "group_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_paid", "total_owed", "net_balance", "is_settled", "updated_at",
			}),
		}).
		Create(&entities).Error
}

// GetByGroupAndUser returns the stored balance for one member. A
// missing row is not an error state for callers: they translate it
// into a zero, fully settled balance.
func (r *BalanceRepository) GetByGroupAndUser(ctx context.Context, groupID, userID int64) (*model.Balance, error) {
	var entity BalanceEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NewNotFoundError("balance not found")
		}
		return nil, err
	}
	return toBalanceModel(&entity), nil
}

func (r *BalanceRepository) ListByGroup(ctx context.Context, groupID int64) ([]*model.Balance, error) {
	var entities []*BalanceEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("user_id ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toBalanceModels(entities), nil
}

// AnyUnsettled reports whether any member of the group still carries
// a non-zero net balance.
func (r *BalanceRepository) AnyUnsettled(ctx context.Context, groupID int64) (bool, error) {
	var count int64
	err := r.Read(ctx).WithContext(ctx).
		Model(&BalanceEntity{}).
		Where("group_id = ? AND is_settled = ?", groupID, false).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteByGroup removes all balance rows of a group.
func (r *BalanceRepository) DeleteByGroup(ctx context.Context, groupID int64) error {
	return r.Write(ctx).WithContext(ctx).
		Where("group_id = ?", groupID).
		Delete(&BalanceEntity{}).Error
}
