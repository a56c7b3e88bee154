package repository

import (
	"context"
	"errors"

	"github.com/splitnest/splitnest/internal/model"
	"github.com/splitnest/splitnest/pkg/pg"
	"gorm.io/gorm"
)

type ExpenseRepository struct {
	*pg.DB
}

func NewExpenseRepository(db *pg.DB) *ExpenseRepository {
	return &ExpenseRepository{db}
}

// Create inserts the expense together with its participant shares.
func (r *ExpenseRepository) Create(ctx context.Context, expense *model.Expense) (*model.Expense, error) {
	entity := toExpenseEntity(expense)
	entity.ID = 0
	for _, s := range entity.Shares {
		s.ExpenseID = 0
	}

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return toExpenseModel(entity), nil
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*model.Expense, error) {
	var entity ExpenseEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("Shares").
		First(&entity, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.NewNotFoundError("expense not found")
		}
		return nil, err
	}
	return toExpenseModel(&entity), nil
}

// ListByGroup returns every expense of the group with shares loaded.
// This feeds the aggregation pass, so it is unpaginated on purpose.
func (r *ExpenseRepository) ListByGroup(ctx context.Context, groupID int64) ([]*model.Expense, error) {
	var entities []*ExpenseEntity
	err := r.Read(ctx).WithContext(ctx).
		Preload("Shares").
		Where("group_id = ?", groupID).
		Order("id ASC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return toExpenseModels(entities), nil
}

func (r *ExpenseRepository) List(ctx context.Context, f model.ExpenseFilter) ([]*model.Expense, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&ExpenseEntity{})

	if f.GroupID != nil {
		q = q.Where("group_id = ?", *f.GroupID)
	}
	if f.PaidByID != nil {
		q = q.Where("paid_by_id = ?", *f.PaidByID)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
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

	var entities []*ExpenseEntity
	if err := q.Preload("Shares").Order(order).Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}
	return toExpenseModels(entities), total, nil
}

// Update rewrites the expense row and replaces its share set.
func (r *ExpenseRepository) Update(ctx context.Context, expense *model.Expense) (*model.Expense, error) {
	tx := r.Write(ctx).WithContext(ctx)

	updates := map[string]interface{}{
		"description": expense.Description,
		"amount":      expense.Amount,
		"split_type":  string(expense.SplitType),
	}
	res := tx.Model(&ExpenseEntity{}).Where("id = ?", expense.ID).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, model.NewNotFoundError("expense not found")
	}

	if err := tx.Where("expense_id = ?", expense.ID).Delete(&ExpenseShareEntity{}).Error; err != nil {
		return nil, err
	}
	shares := make([]*ExpenseShareEntity, len(expense.Shares))
	for i, s := range expense.Shares {
		shares[i] = &ExpenseShareEntity{
			ExpenseID:  expense.ID,
			UserID:     s.UserID,
			Amount:     s.Amount,
			Percentage: s.Percentage,
		}
	}
	if len(shares) > 0 {
		if err := tx.Create(&shares).Error; err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, expense.ID)
}

func (r *ExpenseRepository) Delete(ctx context.Context, id int64) error {
	tx := r.Write(ctx).WithContext(ctx)

	if err := tx.Where("expense_id = ?", id).Delete(&ExpenseShareEntity{}).Error; err != nil {
		return err
	}
	res := tx.Delete(&ExpenseEntity{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.NewNotFoundError("expense not found")
	}
	return nil
}
