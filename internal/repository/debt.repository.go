package repository

import (
	"context"

	"github.com/splitnest/splitnest/internal/model"
	"github.com/splitnest/splitnest/pkg/pg"
)

type DebtRepository struct {
	*pg.DB
}

func NewDebtRepository(db *pg.DB) *DebtRepository {
	return &DebtRepository{db}
}

// ReplaceForGroup swaps the group's entire edge set for a freshly
// minimized one: delete everything, insert the new edges. Must run
// inside the recalculation transaction so readers never observe a
// half-replaced set.
func (r *DebtRepository) ReplaceForGroup(ctx context.Context, groupID int64, edges []*model.DebtEdge) error {
	tx := r.Write(ctx).WithContext(ctx)

	if err := tx.Where("group_id = ?", groupID).Delete(&DebtEdgeEntity{}).Error; err != nil {
		return err
	}
	if len(edges) == 0 {
		return nil
	}

	entities := make([]*DebtEdgeEntity, len(edges))
	for i, e := range edges {
		entity := toDebtEdgeEntity(e)
		entity.ID = 0
		entities[i] = entity
	}
	return tx.Create(&entities).Error
}

func (r *DebtRepository) List(ctx context.Context, f model.DebtFilter) ([]*model.DebtEdge, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&DebtEdgeEntity{})

	if f.GroupID != nil {
		q = q.Where("group_id = ?", *f.GroupID)
	}
	if f.DebtorID != nil {
		q = q.Where("debtor_id = ?", *f.DebtorID)
	}
	if f.CreditorID != nil {
		q = q.Where("creditor_id = ?", *f.CreditorID)
	}
	if f.Unsettled {
		q = q.Where("is_settled = ?", false)
	}

	var entities []*DebtEdgeEntity
	if err := q.Order("id ASC").Find(&entities).Error; err != nil {
		return nil, err
	}
	return toDebtEdgeModels(entities), nil
}

func (r *DebtRepository) ListByGroup(ctx context.Context, groupID int64) ([]*model.DebtEdge, error) {
	return r.List(ctx, model.DebtFilter{GroupID: &groupID})
}

// CountUnsettledInvolving counts edges where the user is either side,
// used by the deletable/removable guards.
func (r *DebtRepository) CountUnsettledInvolving(ctx context.Context, groupID, userID int64) (int64, error) {
	var count int64
	err := r.Read(ctx).WithContext(ctx).
		Model(&DebtEdgeEntity{}).
		Where("group_id = ? AND is_settled = ? AND (debtor_id = ? OR creditor_id = ?)",
			groupID, false, userID, userID).
		Count(&count).Error
	return count, err
}
