package repository

import (
	"context"
	"errors"

	"github.com/splitnest/splitnest/internal/model"
	"github.com/splitnest/splitnest/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SummaryRepository struct {
	*pg.DB
}

func NewSummaryRepository(db *pg.DB) *SummaryRepository {
	return &SummaryRepository{db}
}

// Upsert writes the group's rollup, one row per group.
func (r *SummaryRepository) Upsert(ctx context.Context, s *model.GroupSettlementSummary) error {
	entity := toSummaryEntity(s)

	return r.Write(ctx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "group_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_settled", "settlement_count", "pending_count", "is_fully_settled", "last_settlement_at", "updated_at",
			}),
		}).
		Create(entity).Error
}

func (r *SummaryRepository) GetByGroup(ctx context.Context, groupID int64) (*model.GroupSettlementSummary, error) {
	var entity GroupSettlementSummaryEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("group_id = ?", groupID).
		First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NewNotFoundError("group settlement summary not found")
		}
		return nil, err
	}
	return toSummaryModel(&entity), nil
}
