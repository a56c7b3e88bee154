package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/splitnest/splitnest/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type requestFixture struct {
	svc         *SettlementRequestService
	requests    *MockRequestStore
	settlements *MockSettlementStore
	summaries   *MockSummaryStore
	balances    *MockBalanceStore
	members     *MockMemberStore
	tx          *MockTransactor
	sink        *MockEventSink
}

func newRequestFixture() *requestFixture {
	f := &requestFixture{
		requests:    &MockRequestStore{},
		settlements: &MockSettlementStore{},
		summaries:   &MockSummaryStore{},
		balances:    &MockBalanceStore{},
		members:     &MockMemberStore{},
		tx:          &MockTransactor{},
		sink:        &MockEventSink{},
	}
	f.svc = NewSettlementRequestService(f.requests, f.settlements, f.summaries, f.balances, f.members, f.tx, NewGroupLocker(), f.sink, 0)
	return f
}

func pendingRequest(id, groupID int64, expiresAt time.Time) *model.SettlementRequest {
	return &model.SettlementRequest{
		ID:          id,
		GroupID:     groupID,
		RequesterID: 1,
		RequesteeID: 2,
		Amount:      decimal.NewFromInt(25),
		Status:      model.RequestStatusPending,
		ExpiresAt:   expiresAt,
	}
}

func TestRequestCreate_SetsSevenDayExpiry(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	f.members.On("GroupExists", ctx, int64(1)).Return(true, nil)
	f.members.On("IsMember", ctx, int64(1), mock.Anything).Return(true, nil)
	f.requests.On("ExistsPendingPair", ctx, int64(1), int64(1), int64(2)).Return(false, nil)

	var written *model.SettlementRequest
	f.requests.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
		written = args.Get(1).(*model.SettlementRequest)
	}).Return(pendingRequest(3, 1, now.Add(model.RequestExpiryTTL)), nil)
	f.sink.On("Publish", mock.Anything).Return(nil)

	_, err := f.svc.Create(ctx, model.SettlementRequestCreateRequest{
		GroupID:     1,
		RequesterID: 1,
		RequesteeID: 2,
		Amount:      decimal.NewFromInt(25),
	})
	require.NoError(t, err)

	require.NotNil(t, written)
	assert.Equal(t, now.Add(7*24*time.Hour), written.ExpiresAt)
	assert.NotEmpty(t, written.ReferenceCode)
}

func TestRequestCreate_DuplicatePendingPair(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()

	f.members.On("GroupExists", ctx, int64(1)).Return(true, nil)
	f.members.On("IsMember", ctx, int64(1), mock.Anything).Return(true, nil)
	f.requests.On("ExistsPendingPair", ctx, int64(1), int64(1), int64(2)).Return(true, nil)

	_, err := f.svc.Create(ctx, model.SettlementRequestCreateRequest{
		GroupID:     1,
		RequesterID: 1,
		RequesteeID: 2,
		Amount:      decimal.NewFromInt(25),
	})
	var serr *model.StateError
	assert.ErrorAs(t, err, &serr)
	f.requests.AssertNotCalled(t, "Create", ctx, mock.Anything)
}

func TestRequestAccept_CreatesLinkedSettlement(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()

	now := time.Now().UTC()
	f.requests.On("GetByID", ctx, int64(3)).Return(pendingRequest(3, 1, now.Add(time.Hour)), nil)
	f.tx.On("WithinTransaction", ctx).Return(nil)
	f.requests.On("TransitionIfPending", ctx, int64(3), model.RequestStatusAccepted, "", mock.Anything).
		Return(true, nil)

	f.settlements.On("Create", ctx, mock.MatchedBy(func(s *model.Settlement) bool {
		// the requester offered to pay, so the settlement flows
		// requester -> requestee
		return s.PayerID == 1 && s.ReceiverID == 2 &&
			s.InitiatedByID == 1 &&
			s.Status == model.SettlementStatusPending
	})).Return(&model.Settlement{ID: 9, GroupID: 1, PayerID: 1, ReceiverID: 2}, nil)

	f.requests.On("LinkSettlement", ctx, int64(3), int64(9)).Return(nil)
	f.settlements.On("ConfirmedStats", ctx, int64(1)).Return(int64(0), decimal.Zero, nil, nil)
	f.settlements.On("CountPendingByGroup", ctx, int64(1)).Return(int64(1), nil)
	f.balances.On("AnyUnsettled", ctx, int64(1)).Return(true, nil)
	f.summaries.On("Upsert", ctx, mock.Anything).Return(nil)
	f.sink.On("Publish", mock.Anything).Return(nil)

	settlement, err := f.svc.Accept(ctx, 3, "")
	require.NoError(t, err)
	assert.Equal(t, int64(9), settlement.ID)

	require.Len(t, f.sink.Events, 1)
	assert.Equal(t, model.ActivityRequestAccepted, f.sink.Events[0].Type)
}

func TestRequestAccept_Expired(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()

	now := time.Now().UTC()
	f.requests.On("GetByID", ctx, int64(3)).Return(pendingRequest(3, 1, now.Add(-time.Minute)), nil)
	f.requests.On("TransitionIfPending", ctx, int64(3), model.RequestStatusExpired, "", mock.Anything).
		Return(true, nil)

	_, err := f.svc.Accept(ctx, 3, "")
	var eerr *model.ExpiredError
	require.ErrorAs(t, err, &eerr)

	f.settlements.AssertNotCalled(t, "Create", ctx, mock.Anything)
	f.requests.AssertCalled(t, "TransitionIfPending", ctx, int64(3), model.RequestStatusExpired, "", mock.Anything)
}

func TestRequestAccept_AlreadyTerminal(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()

	terminal := pendingRequest(3, 1, time.Now().Add(time.Hour))
	terminal.Status = model.RequestStatusAccepted
	f.requests.On("GetByID", ctx, int64(3)).Return(terminal, nil)

	_, err := f.svc.Accept(ctx, 3, "")
	var serr *model.StateError
	assert.ErrorAs(t, err, &serr)
}

func TestRequestAccept_LosesRace(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()

	f.requests.On("GetByID", ctx, int64(3)).Return(pendingRequest(3, 1, time.Now().Add(time.Hour)), nil)
	f.tx.On("WithinTransaction", ctx).Return(nil)
	f.requests.On("TransitionIfPending", ctx, int64(3), model.RequestStatusAccepted, "", mock.Anything).
		Return(false, nil)

	_, err := f.svc.Accept(ctx, 3, "")
	var serr *model.StateError
	require.ErrorAs(t, err, &serr)
	f.settlements.AssertNotCalled(t, "Create", ctx, mock.Anything)
}

func TestRequestReject(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()

	first := pendingRequest(3, 1, time.Now().Add(time.Hour))
	rejected := *first
	rejected.Status = model.RequestStatusRejected
	rejected.ResponseMessage = "already paid in cash"

	f.requests.On("GetByID", ctx, int64(3)).Return(first, nil).Once()
	f.requests.On("TransitionIfPending", ctx, int64(3), model.RequestStatusRejected, "already paid in cash", mock.Anything).
		Return(true, nil)
	f.sink.On("Publish", mock.Anything).Return(nil)
	f.requests.On("GetByID", ctx, int64(3)).Return(&rejected, nil)

	got, err := f.svc.Reject(ctx, 3, "already paid in cash")
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusRejected, got.Status)
	assert.Equal(t, "already paid in cash", got.ResponseMessage)
	f.requests.AssertExpectations(t)
}

func TestExpirePending(t *testing.T) {
	f := newRequestFixture()
	ctx := context.Background()

	f.requests.On("ExpirePending", ctx, mock.Anything).Return(int64(4), nil)

	expired, err := f.svc.ExpirePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), expired)
}
