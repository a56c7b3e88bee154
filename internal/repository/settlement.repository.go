package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/splitnest/splitnest/internal/model"
	"github.com/splitnest/splitnest/pkg/pg"
	"gorm.io/gorm"
)

type SettlementRepository struct {
	*pg.DB
}

func NewSettlementRepository(db *pg.DB) *SettlementRepository {
	return &SettlementRepository{db}
}

func (r *SettlementRepository) Create(ctx context.Context, s *model.Settlement) (*model.Settlement, error) {
	entity := toSettlementEntity(s)
	entity.ID = 0

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toSettlementModel(entity), nil
}

func (r *SettlementRepository) GetByID(ctx context.Context, id int64) (*model.Settlement, error) {
	var entity SettlementEntity
	err := r.Read(ctx).WithContext(ctx).First(&entity, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NewNotFoundError("settlement not found")
		}
		return nil, err
	}
	return toSettlementModel(&entity), nil
}

// TransitionIfPending performs the conditional status flip that makes
// confirm/reject race-safe: the UPDATE is guarded on status='pending',
// so of two concurrent confirms exactly one sees RowsAffected==1.
// resolvedBy is recorded on the row for both outcomes. Returns true
// when this caller won the transition.
func (r *SettlementRepository) TransitionIfPending(ctx context.Context, id int64, to model.SettlementStatus, resolvedBy int64, resolvedAt time.Time) (bool, error) {
	res := r.Write(ctx).WithContext(ctx).
		Model(&SettlementEntity{}).
		Where("id = ? AND status = ?", id, string(model.SettlementStatusPending)).
		Updates(map[string]interface{}{
			"status":          string(to),
			"confirmed_by_id": resolvedBy,
			"resolved_at":     resolvedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *SettlementRepository) List(ctx context.Context, f model.SettlementFilter) ([]*model.Settlement, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&SettlementEntity{})

	if f.GroupID != nil {
		q = q.Where("group_id = ?", *f.GroupID)
	}
	if f.PayerID != nil {
		q = q.Where("payer_id = ?", *f.PayerID)
	}
	if f.ReceiverID != nil {
		q = q.Where("receiver_id = ?", *f.ReceiverID)
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		q = q.Where("status IN ?", statuses)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at"
	if f.Desc {
		order += " DESC"
	} else {
		order += " ASC"
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var entities []*SettlementEntity
	if err := q.Order(order).Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}
	return toSettlementModels(entities), total, nil
}

func (r *SettlementRepository) CountPendingByGroup(ctx context.Context, groupID int64) (int64, error) {
	var count int64
	err := r.Read(ctx).WithContext(ctx).
		Model(&SettlementEntity{}).
		Where("group_id = ? AND status = ?", groupID, string(model.SettlementStatusPending)).
		Count(&count).Error
	return count, err
}

// CountPendingInvolving counts pending settlements where the user is
// payer or receiver.
func (r *SettlementRepository) CountPendingInvolving(ctx context.Context, groupID, userID int64) (int64, error) {
	var count int64
	err := r.Read(ctx).WithContext(ctx).
		Model(&SettlementEntity{}).
		Where("group_id = ? AND status = ? AND (payer_id = ? OR receiver_id = ?)",
			groupID, string(model.SettlementStatusPending), userID, userID).
		Count(&count).Error
	return count, err
}

// ConfirmedStats returns the rollup inputs for the group summary:
// confirmed count, confirmed sum and the latest resolution time.
func (r *SettlementRepository) ConfirmedStats(ctx context.Context, groupID int64) (int64, decimal.Decimal, *time.Time, error) {
	type row struct {
		Count  int64
		Total  decimal.NullDecimal
		LastAt *time.Time
	}
	var res row
	err := r.Read(ctx).WithContext(ctx).
		Model(&SettlementEntity{}).
		Select("COUNT(*) AS count, SUM(amount) AS total, MAX(resolved_at) AS last_at").
		Where("group_id = ? AND status = ?", groupID, string(model.SettlementStatusConfirmed)).
		Scan(&res).Error
	if err != nil {
		return 0, decimal.Zero, nil, err
	}
	total := decimal.Zero
	if res.Total.Valid {
		total = res.Total.Decimal
	}
	return res.Count, total, res.LastAt, nil
}
