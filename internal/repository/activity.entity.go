package repository

import (
	"time"

	"github.com/splitnest/splitnest/internal/model"
)

type ActivityEntity struct {
	ID          int64     `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	EventID     string    `db:"event_id"    gorm:"column:event_id;not null;uniqueIndex"`
	GroupID     int64     `db:"group_id"    gorm:"column:group_id;not null;index"`
	UserID      int64     `db:"user_id"     gorm:"column:user_id;not null"`
	Type        string    `db:"type"        gorm:"column:type;not null"`
	Description string    `db:"description" gorm:"column:description;not null"`
	Metadata    string    `db:"metadata"    gorm:"column:metadata"`
	CreatedAt   time.Time `db:"created_at"  gorm:"column:created_at;autoCreateTime"`
}

func (ActivityEntity) TableName() string { return "activities" }

func toActivityEntity(m *model.Activity) *ActivityEntity {
	if m == nil {
		return nil
	}
	return &ActivityEntity{
		ID:          m.ID,
		EventID:     m.EventID,
		GroupID:     m.GroupID,
		UserID:      m.UserID,
		Type:        string(m.Type),
		Description: m.Description,
		Metadata:    m.Metadata,
		CreatedAt:   m.CreatedAt,
	}
}

func toActivityModel(e *ActivityEntity) *model.Activity {
	if e == nil {
		return nil
	}
	return &model.Activity{
		ID:          e.ID,
		EventID:     e.EventID,
		GroupID:     e.GroupID,
		UserID:      e.UserID,
		Type:        model.ActivityType(e.Type),
		Description: e.Description,
		Metadata:    e.Metadata,
		CreatedAt:   e.CreatedAt,
	}
}

func toActivityModels(entities []*ActivityEntity) []*model.Activity {
	if entities == nil {
		return nil
	}
	models := make([]*model.Activity, len(entities))
	for i, e := range entities {
		models[i] = toActivityModel(e)
	}
	return models
}
