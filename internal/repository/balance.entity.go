package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/splitnest/splitnest/internal/model"
)

type BalanceEntity struct {
	ID         int64           `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	GroupID    int64           `db:"group_id"    gorm:"column:group_id;not null;uniqueIndex:ux_balances_group_user,priority:1"`
	UserID     int64           `db:"user_id"     gorm:"column:user_id;not null;uniqueIndex:ux_balances_group_user,priority:2"`
	TotalPaid  decimal.Decimal `db:"total_paid"  gorm:"column:total_paid;type:numeric(12,2);not null"`
	TotalOwed  decimal.Decimal `db:"total_owed"  gorm:"column:total_owed;type:numeric(12,2);not null"`
	NetBalance decimal.Decimal `db:"net_balance" gorm:"column:net_balance;type:numeric(12,2);not null"`
	IsSettled  bool            `db:"is_settled"  gorm:"column:is_settled;not null;default:false"`
	CreatedAt  time.Time       `db:"created_at"  gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `db:"updated_at"  gorm:"column:updated_at;autoUpdateTime"`
}

func (BalanceEntity) TableName() string { return "balances" }

func toBalanceEntity(m *model.Balance) *BalanceEntity {
	if m == nil {
		return nil
	}
	return &BalanceEntity{
		ID:         m.ID,
		GroupID:    m.GroupID,
		UserID:     m.UserID,
		TotalPaid:  m.TotalPaid,
		TotalOwed:  m.TotalOwed,
		NetBalance: m.NetBalance,
		IsSettled:  m.IsSettled,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func toBalanceModel(e *BalanceEntity) *model.Balance {
	if e == nil {
		return nil
	}
	return &model.Balance{
		ID:         e.ID,
		GroupID:    e.GroupID,
		UserID:     e.UserID,
		TotalPaid:  e.TotalPaid,
		TotalOwed:  e.TotalOwed,
		NetBalance: e.NetBalance,
		IsSettled:  e.IsSettled,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func toBalanceModels(entities []*BalanceEntity) []*model.Balance {
	if entities == nil {
		return nil
	}
	models := make([]*model.Balance, len(entities))
	for i, e := range entities {
		models[i] = toBalanceModel(e)
	}
	return models
}
