package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/splitnest/splitnest/internal/model"
)

type GroupSettlementSummaryEntity struct {
	ID               int64           `db:"id"                 gorm:"primaryKey;autoIncrement;column:id"`
	GroupID          int64           `db:"group_id"           gorm:"column:group_id;not null;uniqueIndex"`
	TotalSettled     decimal.Decimal `db:"total_settled"      gorm:"column:total_settled;type:numeric(14,2);not null"`
	SettlementCount  int64           `db:"settlement_count"   gorm:"column:settlement_count;not null;default:0"`
	PendingCount     int64           `db:"pending_count"      gorm:"column:pending_count;not null;default:0"`
	IsFullySettled   bool            `db:"is_fully_settled"   gorm:"column:is_fully_settled;not null;default:false"`
	LastSettlementAt *time.Time      `db:"last_settlement_at" gorm:"column:last_settlement_at"`
	UpdatedAt        time.Time       `db:"updated_at"         gorm:"column:updated_at;autoUpdateTime"`
}

func (GroupSettlementSummaryEntity) TableName() string { return "group_settlement_summaries" }

func toSummaryEntity(m *model.GroupSettlementSummary) *GroupSettlementSummaryEntity {
	if m == nil {
		return nil
	}
	return &GroupSettlementSummaryEntity{
		ID:               m.ID,
		GroupID:          m.GroupID,
		TotalSettled:     m.TotalSettled,
		SettlementCount:  m.SettlementCount,
		PendingCount:     m.PendingCount,
		IsFullySettled:   m.IsFullySettled,
		LastSettlementAt: m.LastSettlementAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func toSummaryModel(e *GroupSettlementSummaryEntity) *model.GroupSettlementSummary {
	if e == nil {
		return nil
	}
	return &model.GroupSettlementSummary{
		ID:               e.ID,
		GroupID:          e.GroupID,
		TotalSettled:     e.TotalSettled,
		SettlementCount:  e.SettlementCount,
		PendingCount:     e.PendingCount,
		IsFullySettled:   e.IsFullySettled,
		LastSettlementAt: e.LastSettlementAt,
		UpdatedAt:        e.UpdatedAt,
	}
}
