package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/splitnest/splitnest/internal/model"
)

type ExpenseEntity struct {
	ID          int64                   `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	GroupID     int64                   `db:"group_id"    gorm:"column:group_id;not null;index"`
	PaidByID    int64                   `db:"paid_by_id"  gorm:"column:paid_by_id;not null;index"`
	Description string                  `db:"description" gorm:"column:description;not null"`
	Amount      decimal.Decimal         `db:"amount"      gorm:"column:amount;type:numeric(12,2);not null"`
	SplitType   string                  `db:"split_type"  gorm:"column:split_type;not null"`
	Shares      []*ExpenseShareEntity   `gorm:"foreignKey:ExpenseID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time               `db:"created_at"  gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time               `db:"updated_at"  gorm:"column:updated_at;autoUpdateTime"`
}

func (ExpenseEntity) TableName() string { return "expenses" }

type ExpenseShareEntity struct {
	ID         int64           `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	ExpenseID  int64           `db:"expense_id" gorm:"column:expense_id;not null;index"`
	UserID     int64           `db:"user_id"    gorm:"column:user_id;not null"`
	Amount     decimal.Decimal `db:"amount"     gorm:"column:amount;type:numeric(12,2);not null"`
	Percentage decimal.Decimal `db:"percentage" gorm:"column:percentage;type:numeric(5,2)"`
}

func (ExpenseShareEntity) TableName() string { return "expense_participants" }

func toExpenseEntity(m *model.Expense) *ExpenseEntity {
	if m == nil {
		return nil
	}
	e := &ExpenseEntity{
		ID:          m.ID,
		GroupID:     m.GroupID,
		PaidByID:    m.PaidByID,
		Description: m.Description,
		Amount:      m.Amount,
		SplitType:   string(m.SplitType),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	for _, s := range m.Shares {
		e.Shares = append(e.Shares, &ExpenseShareEntity{
			ExpenseID:  m.ID,
			UserID:     s.UserID,
			Amount:     s.Amount,
			Percentage: s.Percentage,
		})
	}
	return e
}

func toExpenseModel(e *ExpenseEntity) *model.Expense {
	if e == nil {
		return nil
	}
	m := &model.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PaidByID:    e.PaidByID,
		Description: e.Description,
		Amount:      e.Amount,
		SplitType:   model.SplitType(e.SplitType),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	for _, s := range e.Shares {
		m.Shares = append(m.Shares, &model.ExpenseShare{
			UserID:     s.UserID,
			Amount:     s.Amount,
			Percentage: s.Percentage,
		})
	}
	return m
}

func toExpenseModels(entities []*ExpenseEntity) []*model.Expense {
	if entities == nil {
		return nil
	}
	models := make([]*model.Expense, len(entities))
	for i, e := range entities {
		models[i] = toExpenseModel(e)
	}
	return models
}
