package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/splitnest/splitnest/internal/model"
	xhttp "github.com/splitnest/splitnest/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

type MockSettlementService struct {
	mock.Mock
}

func (m *MockSettlementService) Create(ctx context.Context, p model.SettlementCreateRequest) (*model.Settlement, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Settlement), args.Error(1)
}

func (m *MockSettlementService) Get(ctx context.Context, id int64) (*model.Settlement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Settlement), args.Error(1)
}

func (m *MockSettlementService) Confirm(ctx context.Context, id, confirmedBy int64) (*model.Settlement, error) {
	args := m.Called(ctx, id, confirmedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Settlement), args.Error(1)
}

func (m *MockSettlementService) Reject(ctx context.Context, id, rejectedBy int64) (*model.Settlement, error) {
	args := m.Called(ctx, id, rejectedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Settlement), args.Error(1)
}

func (m *MockSettlementService) List(ctx context.Context, f model.SettlementFilter) ([]*model.Settlement, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Settlement), args.Get(1).(int64), args.Error(2)
}

func (m *MockSettlementService) SettleAllDebts(ctx context.Context, groupID, userID int64) ([]*model.Settlement, error) {
	args := m.Called(ctx, groupID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Settlement), args.Error(1)
}

func (m *MockSettlementService) GetSummary(ctx context.Context, groupID int64) (*model.GroupSettlementSummary, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GroupSettlementSummary), args.Error(1)
}

func (m *MockSettlementService) RefreshSummary(ctx context.Context, groupID int64) error {
	args := m.Called(ctx, groupID)
	return args.Error(0)
}

func (m *MockSettlementService) GetUserSettlementStatus(ctx context.Context, groupID, userID int64) (*model.UserSettlementStatus, error) {
	args := m.Called(ctx, groupID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserSettlementStatus), args.Error(1)
}

func (m *MockSettlementService) CheckGroupDeletable(ctx context.Context, groupID int64) (*model.DeletableCheck, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DeletableCheck), args.Error(1)
}

func (m *MockSettlementService) CheckMemberRemovable(ctx context.Context, groupID, userID int64) (*model.RemovableCheck, error) {
	args := m.Called(ctx, groupID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RemovableCheck), args.Error(1)
}

func setupTestContext(method, path string, body []byte) *xhttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if body != nil {
		ctx.Request.SetBody(body)
	}
	return ctx
}

func TestSettlementHandler_CreateSettlement(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		svc := new(MockSettlementService)
		handler := NewSettlementHandler(svc)

		reqBody := model.SettlementCreateRequest{
			GroupID:    1,
			PayerID:    2,
			ReceiverID: 3,
			Amount:     decimal.RequireFromString("25.50"),
		}
		bodyBytes, _ := json.Marshal(reqBody)

		expected := &model.Settlement{
			ID:      7,
			GroupID: 1,
			Status:  model.SettlementStatusPending,
		}

		svc.On("Create", mock.Anything, mock.MatchedBy(func(p model.SettlementCreateRequest) bool {
			return p.GroupID == 1 && p.PayerID == 2 && p.Amount.Equal(decimal.RequireFromString("25.50"))
		})).Return(expected, nil)

		ctx := setupTestContext("POST", "/settlements", bodyBytes)
		handler.CreateSettlement(ctx)

		assert.Equal(t, 201, ctx.Response.StatusCode())

		var response model.Settlement
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
		assert.Equal(t, int64(7), response.ID)
		assert.Equal(t, model.SettlementStatusPending, response.Status)
		svc.AssertExpectations(t)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		svc := new(MockSettlementService)
		handler := NewSettlementHandler(svc)

		ctx := setupTestContext("POST", "/settlements", []byte("not json"))
		handler.CreateSettlement(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
	})

	t.Run("validation error maps to 400", func(t *testing.T) {
		svc := new(MockSettlementService)
		handler := NewSettlementHandler(svc)

		svc.On("Create", mock.Anything, mock.Anything).
			Return(nil, model.NewValidationError("payer and receiver must differ"))

		bodyBytes, _ := json.Marshal(model.SettlementCreateRequest{GroupID: 1, PayerID: 2, ReceiverID: 2})
		ctx := setupTestContext("POST", "/settlements", bodyBytes)
		handler.CreateSettlement(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())

		var response map[string]string
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
		assert.Equal(t, "payer and receiver must differ", response["error"])
	})
}

func TestSettlementHandler_ConfirmSettlement(t *testing.T) {
	t.Run("successful confirmation", func(t *testing.T) {
		svc := new(MockSettlementService)
		handler := NewSettlementHandler(svc)

		svc.On("Confirm", mock.Anything, int64(7), int64(3)).
			Return(&model.Settlement{ID: 7, Status: model.SettlementStatusConfirmed}, nil)

		bodyBytes, _ := json.Marshal(settlementActionRequest{UserID: 3})
		ctx := setupTestContext("POST", "/settlements/7/confirm", bodyBytes)
		ctx.SetUserValue("id", "7")
		handler.ConfirmSettlement(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())

		var response model.Settlement
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
		assert.Equal(t, model.SettlementStatusConfirmed, response.Status)
	})

	t.Run("already resolved maps to 409", func(t *testing.T) {
		svc := new(MockSettlementService)
		handler := NewSettlementHandler(svc)

		svc.On("Confirm", mock.Anything, int64(7), int64(3)).
			Return(nil, model.NewStateError("settlement is no longer pending"))

		bodyBytes, _ := json.Marshal(settlementActionRequest{UserID: 3})
		ctx := setupTestContext("POST", "/settlements/7/confirm", bodyBytes)
		ctx.SetUserValue("id", "7")
		handler.ConfirmSettlement(ctx)

		assert.Equal(t, 409, ctx.Response.StatusCode())
	})

	t.Run("unknown settlement maps to 404", func(t *testing.T) {
		svc := new(MockSettlementService)
		handler := NewSettlementHandler(svc)

		svc.On("Confirm", mock.Anything, int64(99), int64(3)).
			Return(nil, model.NewNotFoundError("settlement not found"))

		bodyBytes, _ := json.Marshal(settlementActionRequest{UserID: 3})
		ctx := setupTestContext("POST", "/settlements/99/confirm", bodyBytes)
		ctx.SetUserValue("id", "99")
		handler.ConfirmSettlement(ctx)

		assert.Equal(t, 404, ctx.Response.StatusCode())
	})

	t.Run("non-numeric id", func(t *testing.T) {
		svc := new(MockSettlementService)
		handler := NewSettlementHandler(svc)

		ctx := setupTestContext("POST", "/settlements/abc/confirm", nil)
		ctx.SetUserValue("id", "abc")
		handler.ConfirmSettlement(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
		svc.AssertNotCalled(t, "Confirm")
	})

	t.Run("missing user_id", func(t *testing.T) {
		svc := new(MockSettlementService)
		handler := NewSettlementHandler(svc)

		bodyBytes, _ := json.Marshal(settlementActionRequest{})
		ctx := setupTestContext("POST", "/settlements/7/confirm", bodyBytes)
		ctx.SetUserValue("id", "7")
		handler.ConfirmSettlement(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
		svc.AssertNotCalled(t, "Confirm")
	})
}

func TestSettlementHandler_ListSettlements(t *testing.T) {
	t.Run("filters parsed from query", func(t *testing.T) {
		svc := new(MockSettlementService)
		handler := NewSettlementHandler(svc)

		svc.On("List", mock.Anything, mock.MatchedBy(func(f model.SettlementFilter) bool {
			return f.GroupID != nil && *f.GroupID == 1 &&
				len(f.Statuses) == 2 &&
				f.Limit == 5 && f.Desc
		})).Return([]*model.Settlement{}, int64(0), nil)

		ctx := setupTestContext("GET", "/settlements?group_id=1&status=pending,confirmed&limit=5&order=desc", nil)
		handler.ListSettlements(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())
		svc.AssertExpectations(t)
	})
}

func TestSettlementHandler_SettleAllDebts(t *testing.T) {
	t.Run("creates settlements for every debt", func(t *testing.T) {
		svc := new(MockSettlementService)
		handler := NewSettlementHandler(svc)

		svc.On("SettleAllDebts", mock.Anything, int64(1), int64(2)).
			Return([]*model.Settlement{{ID: 10}, {ID: 11}}, nil)

		bodyBytes, _ := json.Marshal(settleAllRequest{UserID: 2})
		ctx := setupTestContext("POST", "/groups/1/settle-all", bodyBytes)
		ctx.SetUserValue("id", "1")
		handler.SettleAllDebts(ctx)

		assert.Equal(t, 201, ctx.Response.StatusCode())

		var response settleAllResponse
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
		assert.Len(t, response.Settlements, 2)
	})

	t.Run("missing user_id", func(t *testing.T) {
		svc := new(MockSettlementService)
		handler := NewSettlementHandler(svc)

		ctx := setupTestContext("POST", "/groups/1/settle-all", []byte(`{}`))
		ctx.SetUserValue("id", "1")
		handler.SettleAllDebts(ctx)

		assert.Equal(t, 400, ctx.Response.StatusCode())
		svc.AssertNotCalled(t, "SettleAllDebts")
	})
}

func TestSettlementHandler_CheckDeletable(t *testing.T) {
	svc := new(MockSettlementService)
	handler := NewSettlementHandler(svc)

	svc.On("CheckGroupDeletable", mock.Anything, int64(1)).
		Return(&model.DeletableCheck{Deletable: false, BlockedBy: []string{"unsettled balances"}}, nil)

	ctx := setupTestContext("GET", "/groups/1/deletable", nil)
	ctx.SetUserValue("id", "1")
	handler.CheckDeletable(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())

	var response model.DeletableCheck
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
	assert.False(t, response.Deletable)
	assert.Contains(t, response.BlockedBy, "unsettled balances")
}
