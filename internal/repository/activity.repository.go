package repository

import (
	"context"

	"github.com/splitnest/splitnest/internal/model"
	"github.com/splitnest/splitnest/pkg/pg"
	"gorm.io/gorm/clause"
)

type ActivityRepository struct {
	*pg.DB
}

func NewActivityRepository(db *pg.DB) *ActivityRepository {
	return &ActivityRepository{db}
}

// Create inserts a feed entry. The event_id column is unique, so a
// replayed delivery of the same event is dropped instead of
// duplicated; the return value reports whether a row was written.
func (r *ActivityRepository) Create(ctx context.Context, a *model.Activity) (bool, error) {
	entity := toActivityEntity(a)
	entity.ID = 0

	res := r.Write(ctx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoNothing: true,
		}).
		Create(entity)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *ActivityRepository) List(ctx context.Context, f model.ActivityFilter) ([]*model.Activity, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&ActivityEntity{})

	if f.GroupID != nil {
		q = q.Where("group_id = ?", *f.GroupID)
	}
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if len(f.Types) > 0 {
		types := make([]string, len(f.Types))
		for i, t := range f.Types {
			types[i] = string(t)
		}
		q = q.Where("type IN ?", types)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var entities []*ActivityEntity
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}
	return toActivityModels(entities), total, nil
}
