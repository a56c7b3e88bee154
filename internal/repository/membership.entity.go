package repository

import (
	"time"

	"github.com/splitnest/splitnest/internal/model"
)

type UserEntity struct {
	ID        int64     `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	Email     string    `db:"email"      gorm:"column:email;not null;uniqueIndex"`
	Name      string    `db:"name"       gorm:"column:name;not null"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (UserEntity) TableName() string { return "users" }

type GroupEntity struct {
	ID          int64     `db:"id"            gorm:"primaryKey;autoIncrement;column:id"`
	Name        string    `db:"name"          gorm:"column:name;not null"`
	CreatedByID int64     `db:"created_by_id" gorm:"column:created_by_id;not null"`
	CreatedAt   time.Time `db:"created_at"    gorm:"column:created_at;autoCreateTime"`
}

func (GroupEntity) TableName() string { return "groups" }

type MembershipEntity struct {
	ID       int64     `db:"id"        gorm:"primaryKey;autoIncrement;column:id"`
	GroupID  int64     `db:"group_id"  gorm:"column:group_id;not null;uniqueIndex:ux_memberships_group_user,priority:1"`
	UserID   int64     `db:"user_id"   gorm:"column:user_id;not null;uniqueIndex:ux_memberships_group_user,priority:2"`
	JoinedAt time.Time `db:"joined_at" gorm:"column:joined_at;autoCreateTime"`
}

func (MembershipEntity) TableName() string { return "memberships" }

func toUserModel(e *UserEntity) *model.User {
	if e == nil {
		return nil
	}
	return &model.User{ID: e.ID, Email: e.Email, Name: e.Name, CreatedAt: e.CreatedAt}
}

func toGroupModel(e *GroupEntity) *model.Group {
	if e == nil {
		return nil
	}
	return &model.Group{ID: e.ID, Name: e.Name, CreatedByID: e.CreatedByID, CreatedAt: e.CreatedAt}
}

func toMembershipModel(e *MembershipEntity) *model.Membership {
	if e == nil {
		return nil
	}
	return &model.Membership{ID: e.ID, GroupID: e.GroupID, UserID: e.UserID, JoinedAt: e.JoinedAt}
}
