package repository

import (
	"context"
	"errors"

	"github.com/splitnest/splitnest/internal/model"
	"github.com/splitnest/splitnest/pkg/pg"
	"gorm.io/gorm"
)

type MembershipRepository struct {
	*pg.DB
}

func NewMembershipRepository(db *pg.DB) *MembershipRepository {
	return &MembershipRepository{db}
}

func (r *MembershipRepository) CreateUser(ctx context.Context, email, name string) (*model.User, error) {
	entity := &UserEntity{Email: email, Name: name}
	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toUserModel(entity), nil
}

func (r *MembershipRepository) CreateGroup(ctx context.Context, name string, createdByID int64) (*model.Group, error) {
	entity := &GroupEntity{Name: name, CreatedByID: createdByID}
	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	// the creator is always a member
	member := &MembershipEntity{GroupID: entity.ID, UserID: createdByID}
	if err := r.Write(ctx).WithContext(ctx).Create(member).Error; err != nil {
		return nil, err
	}
	return toGroupModel(entity), nil
}

func (r *MembershipRepository) AddMember(ctx context.Context, groupID, userID int64) (*model.Membership, error) {
	entity := &MembershipEntity{GroupID: groupID, UserID: userID}
	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toMembershipModel(entity), nil
}

func (r *MembershipRepository) RemoveMember(ctx context.Context, groupID, userID int64) error {
	res := r.Write(ctx).WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&MembershipEntity{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.NewNotFoundError("membership not found")
	}
	return nil
}

func (r *MembershipRepository) GroupExists(ctx context.Context, groupID int64) (bool, error) {
	var count int64
	err := r.Read(ctx).WithContext(ctx).
		Model(&GroupEntity{}).
		Where("id = ?", groupID).
		Count(&count).Error
	return count > 0, err
}

func (r *MembershipRepository) GetGroup(ctx context.Context, groupID int64) (*model.Group, error) {
	var entity GroupEntity
	err := r.Read(ctx).WithContext(ctx).First(&entity, groupID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NewNotFoundError("group not found")
		}
		return nil, err
	}
	return toGroupModel(&entity), nil
}

func (r *MembershipRepository) DeleteGroup(ctx context.Context, groupID int64) error {
	tx := r.Write(ctx).WithContext(ctx)
	if err := tx.Where("group_id = ?", groupID).Delete(&MembershipEntity{}).Error; err != nil {
		return err
	}
	res := tx.Delete(&GroupEntity{}, groupID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.NewNotFoundError("group not found")
	}
	return nil
}

func (r *MembershipRepository) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	var count int64
	err := r.Read(ctx).WithContext(ctx).
		Model(&MembershipEntity{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}

// ListUserIDs returns the ids of all members of a group in ascending
// order.
func (r *MembershipRepository) ListUserIDs(ctx context.Context, groupID int64) ([]int64, error) {
	var ids []int64
	err := r.Read(ctx).WithContext(ctx).
		Model(&MembershipEntity{}).
		Where("group_id = ?", groupID).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
