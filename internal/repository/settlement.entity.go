package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/splitnest/splitnest/internal/model"
)

type SettlementEntity struct {
	ID            int64           `db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	ReferenceCode string          `db:"reference_code" gorm:"column:reference_code;not null;uniqueIndex"`
	GroupID       int64           `db:"group_id"       gorm:"column:group_id;not null;index"`
	PayerID       int64           `db:"payer_id"       gorm:"column:payer_id;not null;index"`
	ReceiverID    int64           `db:"receiver_id"    gorm:"column:receiver_id;not null;index"`
	Amount        decimal.Decimal `db:"amount"         gorm:"column:amount;type:numeric(12,2);not null"`
	Method        string          `db:"method"         gorm:"column:method;not null;default:other"`
	Note          string          `db:"note"           gorm:"column:note"`
	Status        string          `db:"status"         gorm:"column:status;not null;default:pending;index"`
	InitiatedByID int64           `db:"initiated_by_id" gorm:"column:initiated_by_id;not null"`
	ConfirmedByID *int64          `db:"confirmed_by_id" gorm:"column:confirmed_by_id"`
	CreatedAt     time.Time       `db:"created_at"     gorm:"column:created_at;autoCreateTime"`
	ResolvedAt    *time.Time      `db:"resolved_at"    gorm:"column:resolved_at"`
}

func (SettlementEntity) TableName() string { return "settlements" }

func toSettlementEntity(m *model.Settlement) *SettlementEntity {
	if m == nil {
		return nil
	}
	return &SettlementEntity{
		ID:            m.ID,
		ReferenceCode: m.ReferenceCode,
		GroupID:       m.GroupID,
		PayerID:       m.PayerID,
		ReceiverID:    m.ReceiverID,
		Amount:        m.Amount,
		Method:        string(m.Method),
		Note:          m.Note,
		Status:        string(m.Status),
		InitiatedByID: m.InitiatedByID,
		ConfirmedByID: m.ConfirmedByID,
		CreatedAt:     m.CreatedAt,
		ResolvedAt:    m.ResolvedAt,
	}
}

func toSettlementModel(e *SettlementEntity) *model.Settlement {
	if e == nil {
		return nil
	}
	return &model.Settlement{
		ID:            e.ID,
		ReferenceCode: e.ReferenceCode,
		GroupID:       e.GroupID,
		PayerID:       e.PayerID,
		ReceiverID:    e.ReceiverID,
		Amount:        e.Amount,
		Method:        model.SettlementMethod(e.Method),
		Note:          e.Note,
		Status:        model.SettlementStatus(e.Status),
		InitiatedByID: e.InitiatedByID,
		ConfirmedByID: e.ConfirmedByID,
		CreatedAt:     e.CreatedAt,
		ResolvedAt:    e.ResolvedAt,
	}
}

func toSettlementModels(entities []*SettlementEntity) []*model.Settlement {
	if entities == nil {
		return nil
	}
	models := make([]*model.Settlement, len(entities))
	for i, e := range entities {
		models[i] = toSettlementModel(e)
	}
	return models
}
