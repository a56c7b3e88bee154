package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/splitnest/splitnest/internal/model"
)

type SettlementRequestEntity struct {
	ID              int64           `db:"id"               gorm:"primaryKey;autoIncrement;column:id"`
	ReferenceCode   string          `db:"reference_code"   gorm:"column:reference_code;not null;uniqueIndex"`
	GroupID         int64           `db:"group_id"         gorm:"column:group_id;not null;index"`
	RequesterID     int64           `db:"requester_id"     gorm:"column:requester_id;not null;index"`
	RequesteeID     int64           `db:"requestee_id"     gorm:"column:requestee_id;not null;index"`
	Amount          decimal.Decimal `db:"amount"           gorm:"column:amount;type:numeric(12,2);not null"`
	Note            string          `db:"note"             gorm:"column:note"`
	Status          string          `db:"status"           gorm:"column:status;not null;default:pending;index"`
	ResponseMessage string          `db:"response_message" gorm:"column:response_message"`
	SettlementID    *int64          `db:"settlement_id"    gorm:"column:settlement_id"`
	ExpiresAt       time.Time       `db:"expires_at"       gorm:"column:expires_at;not null;index"`
	CreatedAt       time.Time       `db:"created_at"       gorm:"column:created_at;autoCreateTime"`
	ResolvedAt      *time.Time      `db:"resolved_at"      gorm:"column:resolved_at"`
}

func (SettlementRequestEntity) TableName() string { return "settlement_requests" }

func toSettlementRequestEntity(m *model.SettlementRequest) *SettlementRequestEntity {
	if m == nil {
		return nil
	}
	return &SettlementRequestEntity{
		ID:              m.ID,
		ReferenceCode:   m.ReferenceCode,
		GroupID:         m.GroupID,
		RequesterID:     m.RequesterID,
		RequesteeID:     m.RequesteeID,
		Amount:          m.Amount,
		Note:            m.Note,
		Status:          string(m.Status),
		ResponseMessage: m.ResponseMessage,
		SettlementID:    m.SettlementID,
		ExpiresAt:       m.ExpiresAt,
		CreatedAt:       m.CreatedAt,
		ResolvedAt:      m.ResolvedAt,
	}
}

func toSettlementRequestModel(e *SettlementRequestEntity) *model.SettlementRequest {
	if e == nil {
		return nil
	}
	return &model.SettlementRequest{
		ID:              e.ID,
		ReferenceCode:   e.ReferenceCode,
		GroupID:         e.GroupID,
		RequesterID:     e.RequesterID,
		RequesteeID:     e.RequesteeID,
		Amount:          e.Amount,
		Note:            e.Note,
		Status:          model.SettlementRequestStatus(e.Status),
		ResponseMessage: e.ResponseMessage,
		SettlementID:    e.SettlementID,
		ExpiresAt:       e.ExpiresAt,
		CreatedAt:       e.CreatedAt,
		ResolvedAt:      e.ResolvedAt,
	}
}

func toSettlementRequestModels(entities []*SettlementRequestEntity) []*model.SettlementRequest {
	if entities == nil {
		return nil
	}
	models := make([]*model.SettlementRequest, len(entities))
	for i, e := range entities {
		models[i] = toSettlementRequestModel(e)
	}
	return models
}
