package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/splitnest/splitnest/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRequestService struct {
	mock.Mock
}

func (m *MockRequestService) Create(ctx context.Context, p model.SettlementRequestCreateRequest) (*model.SettlementRequest, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SettlementRequest), args.Error(1)
}

func (m *MockRequestService) Get(ctx context.Context, id int64) (*model.SettlementRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SettlementRequest), args.Error(1)
}

func (m *MockRequestService) Accept(ctx context.Context, id int64, responseMessage string) (*model.Settlement, error) {
	args := m.Called(ctx, id, responseMessage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Settlement), args.Error(1)
}

func (m *MockRequestService) Reject(ctx context.Context, id int64, responseMessage string) (*model.SettlementRequest, error) {
	args := m.Called(ctx, id, responseMessage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SettlementRequest), args.Error(1)
}

func (m *MockRequestService) List(ctx context.Context, f model.SettlementRequestFilter) ([]*model.SettlementRequest, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.SettlementRequest), args.Get(1).(int64), args.Error(2)
}

func (m *MockRequestService) ExpirePending(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func TestRequestHandler_AcceptRequest(t *testing.T) {
	t.Run("accept answers with the created settlement", func(t *testing.T) {
		svc := new(MockRequestService)
		handler := NewSettlementRequestHandler(svc)

		svc.On("Accept", mock.Anything, int64(3), "").
			Return(&model.Settlement{ID: 9, Status: model.SettlementStatusPending}, nil)

		ctx := setupTestContext("POST", "/settlement-requests/3/accept", nil)
		ctx.SetUserValue("id", "3")
		handler.AcceptRequest(ctx)

		assert.Equal(t, 201, ctx.Response.StatusCode())

		var response model.Settlement
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
		assert.Equal(t, int64(9), response.ID)
	})

	t.Run("response message forwarded on reject", func(t *testing.T) {
		svc := new(MockRequestService)
		handler := NewSettlementRequestHandler(svc)

		svc.On("Reject", mock.Anything, int64(3), "already paid in cash").
			Return(&model.SettlementRequest{ID: 3, Status: model.RequestStatusRejected, ResponseMessage: "already paid in cash"}, nil)

		bodyBytes, _ := json.Marshal(respondRequestBody{ResponseMessage: "already paid in cash"})
		ctx := setupTestContext("POST", "/settlement-requests/3/reject", bodyBytes)
		ctx.SetUserValue("id", "3")
		handler.RejectRequest(ctx)

		assert.Equal(t, 200, ctx.Response.StatusCode())

		var response model.SettlementRequest
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
		assert.Equal(t, "already paid in cash", response.ResponseMessage)
		svc.AssertExpectations(t)
	})

	t.Run("expired request maps to 410", func(t *testing.T) {
		svc := new(MockRequestService)
		handler := NewSettlementRequestHandler(svc)

		svc.On("Accept", mock.Anything, int64(3), "").
			Return(nil, model.NewExpiredError("settlement request has expired"))

		ctx := setupTestContext("POST", "/settlement-requests/3/accept", nil)
		ctx.SetUserValue("id", "3")
		handler.AcceptRequest(ctx)

		assert.Equal(t, 410, ctx.Response.StatusCode())
	})

	t.Run("duplicate pending pair maps to 409 on create", func(t *testing.T) {
		svc := new(MockRequestService)
		handler := NewSettlementRequestHandler(svc)

		svc.On("Create", mock.Anything, mock.Anything).
			Return(nil, model.NewStateError("a pending request already exists between these members"))

		bodyBytes, _ := json.Marshal(model.SettlementRequestCreateRequest{GroupID: 1, RequesterID: 1, RequesteeID: 2})
		ctx := setupTestContext("POST", "/settlement-requests", bodyBytes)
		handler.CreateRequest(ctx)

		assert.Equal(t, 409, ctx.Response.StatusCode())
	})
}

func TestRequestHandler_ExpireRequests(t *testing.T) {
	svc := new(MockRequestService)
	handler := NewSettlementRequestHandler(svc)

	svc.On("ExpirePending", mock.Anything).Return(int64(4), nil)

	ctx := setupTestContext("POST", "/settlement-requests/expire", nil)
	handler.ExpireRequests(ctx)

	assert.Equal(t, 200, ctx.Response.StatusCode())

	var response expireResponse
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &response))
	assert.Equal(t, int64(4), response.Expired)
}
