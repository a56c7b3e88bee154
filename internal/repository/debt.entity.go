package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/splitnest/splitnest/internal/model"
)

type DebtEdgeEntity struct {
	ID         int64           `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	GroupID    int64           `db:"group_id"    gorm:"column:group_id;not null;index"`
	DebtorID   int64           `db:"debtor_id"   gorm:"column:debtor_id;not null;index"`
	CreditorID int64           `db:"creditor_id" gorm:"column:creditor_id;not null"`
	Amount     decimal.Decimal `db:"amount"      gorm:"column:amount;type:numeric(12,2);not null"`
	IsSettled  bool            `db:"is_settled"  gorm:"column:is_settled;not null;default:false"`
	CreatedAt  time.Time       `db:"created_at"  gorm:"column:created_at;autoCreateTime"`
}

func (DebtEdgeEntity) TableName() string { return "debt_edges" }

func toDebtEdgeEntity(m *model.DebtEdge) *DebtEdgeEntity {
	if m == nil {
		return nil
	}
	return &DebtEdgeEntity{
		ID:         m.ID,
		GroupID:    m.GroupID,
		DebtorID:   m.DebtorID,
		CreditorID: m.CreditorID,
		Amount:     m.Amount,
		IsSettled:  m.IsSettled,
		CreatedAt:  m.CreatedAt,
	}
}

func toDebtEdgeModel(e *DebtEdgeEntity) *model.DebtEdge {
	if e == nil {
		return nil
	}
	return &model.DebtEdge{
		ID:         e.ID,
		GroupID:    e.GroupID,
		DebtorID:   e.DebtorID,
		CreditorID: e.CreditorID,
		Amount:     e.Amount,
		IsSettled:  e.IsSettled,
		CreatedAt:  e.CreatedAt,
	}
}

func toDebtEdgeModels(entities []*DebtEdgeEntity) []*model.DebtEdge {
	if entities == nil {
		return nil
	}
	models := make([]*model.DebtEdge, len(entities))
	for i, e := range entities {
		models[i] = toDebtEdgeModel(e)
	}
	return models
}
