package repository

import (
	"context"
	"errors"
	"time"

	"github.com/splitnest/splitnest/internal/model"
	"github.com/splitnest/splitnest/pkg/pg"
	"gorm.io/gorm"
)

type SettlementRequestRepository struct {
	*pg.DB
}

func NewSettlementRequestRepository(db *pg.DB) *SettlementRequestRepository {
	return &SettlementRequestRepository{db}
}

func (r *SettlementRequestRepository) Create(ctx context.Context, req *model.SettlementRequest) (*model.SettlementRequest, error) {
	entity := toSettlementRequestEntity(req)
	entity.ID = 0

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toSettlementRequestModel(entity), nil
}

func (r *SettlementRequestRepository) GetByID(ctx context.Context, id int64) (*model.SettlementRequest, error) {
	var entity SettlementRequestEntity
	err := r.Read(ctx).WithContext(ctx).First(&entity, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NewNotFoundError("settlement request not found")
		}
		return nil, err
	}
	return toSettlementRequestModel(&entity), nil
}

// ExistsPendingPair reports whether the requester already has a
// pending request towards this requestee in the group. The pair is
// ordered: a reverse-direction pending request does not count.
func (r *SettlementRequestRepository) ExistsPendingPair(ctx context.Context, groupID, requesterID, requesteeID int64) (bool, error) {
	var count int64
	err := r.Read(ctx).WithContext(ctx).
		Model(&SettlementRequestEntity{}).
		Where("group_id = ? AND status = ? AND requester_id = ? AND requestee_id = ?",
			groupID, string(model.RequestStatusPending), requesterID, requesteeID).
		Count(&count).Error
	return count > 0, err
}

// TransitionIfPending flips the request out of pending, guarded the
// same way as settlement transitions so concurrent resolutions have
// exactly one winner. responseMessage is stored alongside the flip.
func (r *SettlementRequestRepository) TransitionIfPending(ctx context.Context, id int64, to model.SettlementRequestStatus, responseMessage string, resolvedAt time.Time) (bool, error) {
	res := r.Write(ctx).WithContext(ctx).
		Model(&SettlementRequestEntity{}).
		Where("id = ? AND status = ?", id, string(model.RequestStatusPending)).
		Updates(map[string]interface{}{
			"status":           string(to),
			"response_message": responseMessage,
			"resolved_at":      resolvedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// LinkSettlement records the settlement created by an acceptance.
func (r *SettlementRequestRepository) LinkSettlement(ctx context.Context, id, settlementID int64) error {
	return r.Write(ctx).WithContext(ctx).
		Model(&SettlementRequestEntity{}).
		Where("id = ?", id).
		Update("settlement_id", settlementID).Error
}

// ExpirePending bulk-flips every pending request whose window has
// passed at the given instant. Returns how many were expired.
func (r *SettlementRequestRepository) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	res := r.Write(ctx).WithContext(ctx).
		Model(&SettlementRequestEntity{}).
		Where("status = ? AND expires_at < ?", string(model.RequestStatusPending), now).
		Updates(map[string]interface{}{
			"status":      string(model.RequestStatusExpired),
			"resolved_at": now,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *SettlementRequestRepository) List(ctx context.Context, f model.SettlementRequestFilter) ([]*model.SettlementRequest, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&SettlementRequestEntity{})

	if f.GroupID != nil {
		q = q.Where("group_id = ?", *f.GroupID)
	}
	if f.RequesterID != nil {
		q = q.Where("requester_id = ?", *f.RequesterID)
	}
	if f.RequesteeID != nil {
		q = q.Where("requestee_id = ?", *f.RequesteeID)
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		q = q.Where("status IN ?", statuses)
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

	var entities []*SettlementRequestEntity
	if err := q.Order(order).Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}
	return toSettlementRequestModels(entities), total, nil
}
