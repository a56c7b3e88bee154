package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/splitnest/splitnest/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockExpenseService struct {
	mock.Mock
}

func (m *MockExpenseService) Create(ctx context.Context, p model.ExpenseCreateRequest) (*model.Expense, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Expense), args.Error(1)
}

func (m *MockExpenseService) Get(ctx context.Context, id int64) (*model.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Expense), args.Error(1)
}

func (m *MockExpenseService) Update(ctx context.Context, id int64, p model.ExpenseUpdateRequest) (*model.Expense, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Expense), args.Error(1)
}

func (m *MockExpenseService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockExpenseService) List(ctx context.Context, f model.ExpenseFilter) ([]*model.Expense, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Expense), args.Get(1).(int64), args.Error(2)
}

func TestExpenseHandler_CreateExpense(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		svc := new(MockExpenseService)
		handler := NewExpenseHandler(svc)

		reqBody := model.ExpenseCreateRequest{
			GroupID:     1,
			PaidByID:    2,
			Description: "Dinner",
			Amount:      decimal.RequireFromString("60.00"),
			SplitType:   model.SplitEqual,
			Splits: []model.SplitInput{
				{UserID: 1}, {UserID: 2}, {UserID: 3},
			},
		}
		bodyBytes, _ := json.Marshal(reqBody)

		svc.On("Create", mock.Anything, mock.MatchedBy(func(p model.ExpenseCreateRequest) bool {
			return p.GroupID == 1 && p.SplitType == model.SplitEqual && len(p.Splits) == 3
		})).Return(&model.Expense{ID: 5, GroupID: 1, Description: "Dinner"}, nil)

		ctx := setupTestContext("POST", "/expenses", bodyBytes)
		handler.CreateExpense(ctx)

		assert.Equal(t, 201, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})

	t.Run("split mismatch maps to 400", func(t *testing.T) {
		svc := new(MockExpenseService)
		handler := NewExpenseHandler(svc)

		svc.On("Create", mock.Anything, mock.Anything).
			Return(nil, model.NewValidationError("split amounts must sum to the expense amount"))

		bodyBytes, _ := json.Marshal(model.ExpenseCreateRequest{GroupID: 1})
		ctx := setupTestContext("POST", "/expenses", bodyBytes)
		handler.CreateExpense(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})
}

func TestExpenseHandler_DeleteExpense(t *testing.T) {
	t.Run("successful delete", func(t *testing.T) {
		svc := new(MockExpenseService)
		handler := NewExpenseHandler(svc)

		svc.On("Delete", mock.Anything, int64(5)).Return(nil)

		ctx := setupTestContext("DELETE", "/expenses/5", nil)
		ctx.SetUserValue("id", "5")
		handler.DeleteExpense(ctx)

		assert.Equal(t, 204, ctx.Response.StatusCode())
	})

	t.Run("unknown expense maps to 404", func(t *testing.T) {
		svc := new(MockExpenseService)
		handler := NewExpenseHandler(svc)

		svc.On("Delete", mock.Anything, int64(99)).
			Return(model.NewNotFoundError("expense not found"))

		ctx := setupTestContext("DELETE", "/expenses/99", nil)
		ctx.SetUserValue("id", "99")
		handler.DeleteExpense(ctx)

		assert.Equal(t, 404, ctx.Response.StatusCode())
	})
}

func TestExpenseHandler_ListExpenses(t *testing.T) {
	svc := new(MockExpenseService)
	handler := NewExpenseHandler(svc)

	svc.On("List", mock.Anything, mock.MatchedBy(func(f model.ExpenseFilter) bool {
		return f.GroupID != nil && *f.GroupID == 1 && f.From != nil && f.Limit == 20
	})).Return([]*model.Expense{{ID: 1}, {ID: 2}}, int64(2), nil)

	ctx := setupTestContext("GET", "/expenses?group_id=1&from=2026-01-01&limit=20", nil)
	handler.ListExpenses(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())

	var response expenseListResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
	assert.Equal(t, int64(2), response.Total)
	assert.Len(t, response.Items, 2)
}

func TestStatusForMapping(t *testing.T) {
	assert.Equal(t, 400, statusFor(model.NewValidationError("bad")))
	assert.Equal(t, 404, statusFor(model.NewNotFoundError("missing")))
	assert.Equal(t, 409, statusFor(model.NewStateError("conflict")))
	assert.Equal(t, 410, statusFor(model.NewExpiredError("expired")))
	assert.Equal(t, 500, statusFor(assert.AnError))
}
