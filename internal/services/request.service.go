package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/splitnest/splitnest/internal/events"
	"github.com/splitnest/splitnest/internal/model"
	"github.com/splitnest/splitnest/pkg/logger"
	"github.com/splitnest/splitnest/pkg/prom"
)

// SettlementRequestService owns the request lifecycle: a debtor
// offers to settle, the creditor accepts or rejects within seven
// days, and anything older is swept to expired. Acceptance creates
// the linked pending settlement in the same transaction.
type SettlementRequestService struct {
	requests    RequestStore
	settlements SettlementStore
	summaries   SummaryStore
	balances    BalanceStore
	members     MemberStore
	tx          Transactor
	locks       *GroupLocker
	sink        EventSink
	ttl         time.Duration
	now         func() time.Time
}

func NewSettlementRequestService(requests RequestStore, settlements SettlementStore, summaries SummaryStore, balances BalanceStore, members MemberStore, tx Transactor, locks *GroupLocker, sink EventSink, ttl time.Duration) *SettlementRequestService {
	if ttl <= 0 {
		ttl = model.RequestExpiryTTL
	}
	return &SettlementRequestService{
		requests:    requests,
		settlements: settlements,
		summaries:   summaries,
		balances:    balances,
		members:     members,
		tx:          tx,
		locks:       locks,
		sink:        sink,
		ttl:         ttl,
		now:         time.Now,
	}
}

func (s *SettlementRequestService) Create(ctx context.Context, p model.SettlementRequestCreateRequest) (*model.SettlementRequest, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireMembers(ctx, p.GroupID, p.RequesterID, p.RequesteeID); err != nil {
		return nil, err
	}

	exists, err := s.requests.ExistsPendingPair(ctx, p.GroupID, p.RequesterID, p.RequesteeID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, model.NewStateError("a pending request between these users already exists")
	}

	now := s.now().UTC()
	created, err := s.requests.Create(ctx, &model.SettlementRequest{
		ReferenceCode: uuid.NewString(),
		GroupID:       p.GroupID,
		RequesterID:   p.RequesterID,
		RequesteeID:   p.RequesteeID,
		Amount:        p.Amount,
		Note:          p.Note,
		Status:        model.RequestStatusPending,
		ExpiresAt:     now.Add(s.ttl),
	})
	if err != nil {
		return nil, err
	}

	publishEvent(s.sink, events.NewEvent(created.GroupID, created.RequesterID, model.ActivityRequestSent,
		fmt.Sprintf("requested a settlement of %s", created.Amount.StringFixed(2)),
		map[string]string{"request_id": fmt.Sprintf("%d", created.ID)}))

	return created, nil
}

// Accept resolves the request and creates the linked pending
// settlement (the requester pays the requestee) in one transaction.
// A request past its expiry is flipped to expired instead and the
// caller gets an ExpiredError.
func (s *SettlementRequestService) Accept(ctx context.Context, id int64, responseMessage string) (*model.Settlement, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.IsTerminal() {
		return nil, model.NewStateError(fmt.Sprintf("request is already %s", request.Status))
	}

	now := s.now().UTC()
	if request.IsExpired(now) {
		// lazily expire so the row matches what the caller observed
		if _, err := s.requests.TransitionIfPending(ctx, id, model.RequestStatusExpired, "", now); err != nil {
			logger.Warn("failed to lazily expire request", "request_id", id, "error", err)
		}
		return nil, model.NewExpiredError("request has expired")
	}

	unlock := s.locks.Lock(request.GroupID)
	defer unlock()

	var settlement *model.Settlement
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		won, err := s.requests.TransitionIfPending(ctx, id, model.RequestStatusAccepted, responseMessage, now)
		if err != nil {
			return err
		}
		if !won {
			return model.NewStateError("request is no longer pending")
		}

		settlement, err = s.settlements.Create(ctx, &model.Settlement{
			ReferenceCode: uuid.NewString(),
			GroupID:       request.GroupID,
			PayerID:       request.RequesterID,
			ReceiverID:    request.RequesteeID,
			Amount:        request.Amount,
			Method:        model.SettlementMethodOther,
			Note:          request.Note,
			Status:        model.SettlementStatusPending,
			InitiatedByID: request.RequesterID,
		})
		if err != nil {
			return err
		}
		if err := s.requests.LinkSettlement(ctx, id, settlement.ID); err != nil {
			return err
		}
		return s.refreshSummary(ctx, request.GroupID)
	})
	if err != nil {
		return nil, err
	}

	prom.IncSettlementTransition("created")
	publishEvent(s.sink, events.NewEvent(request.GroupID, request.RequesteeID, model.ActivityRequestAccepted,
		fmt.Sprintf("accepted a settlement request of %s", request.Amount.StringFixed(2)),
		map[string]string{
			"request_id":    fmt.Sprintf("%d", id),
			"settlement_id": fmt.Sprintf("%d", settlement.ID),
		}))

	return settlement, nil
}

// Reject resolves the request, keeping the requestee's optional
// response message on the row.
func (s *SettlementRequestService) Reject(ctx context.Context, id int64, responseMessage string) (*model.SettlementRequest, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.IsTerminal() {
		return nil, model.NewStateError(fmt.Sprintf("request is already %s", request.Status))
	}

	won, err := s.requests.TransitionIfPending(ctx, id, model.RequestStatusRejected, responseMessage, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, model.NewStateError("request is no longer pending")
	}

	publishEvent(s.sink, events.NewEvent(request.GroupID, request.RequesteeID, model.ActivityRequestRejected,
		fmt.Sprintf("rejected a settlement request of %s", request.Amount.StringFixed(2)),
		map[string]string{"request_id": fmt.Sprintf("%d", id)}))

	return s.requests.GetByID(ctx, id)
}

// ExpirePending sweeps every pending request whose window has passed.
// Invoked on a schedule by the sweeper binary.
func (s *SettlementRequestService) ExpirePending(ctx context.Context) (int64, error) {
	expired, err := s.requests.ExpirePending(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		prom.AddCounter(prom.SystemSettlements, prom.MetricRequestsExpired, float64(expired))
		logger.Info("expired stale settlement requests", "count", expired)
	}
	return expired, nil
}

func (s *SettlementRequestService) Get(ctx context.Context, id int64) (*model.SettlementRequest, error) {
	return s.requests.GetByID(ctx, id)
}

func (s *SettlementRequestService) List(ctx context.Context, f model.SettlementRequestFilter) ([]*model.SettlementRequest, int64, error) {
	return s.requests.List(ctx, f)
}

func (s *SettlementRequestService) refreshSummary(ctx context.Context, groupID int64) error {
	count, total, lastAt, err := s.settlements.ConfirmedStats(ctx, groupID)
	if err != nil {
		return err
	}
	pending, err := s.settlements.CountPendingByGroup(ctx, groupID)
	if err != nil {
		return err
	}
	unsettled, err := s.balances.AnyUnsettled(ctx, groupID)
	if err != nil {
		return err
	}
	return s.summaries.Upsert(ctx, &model.GroupSettlementSummary{
		GroupID:          groupID,
		TotalSettled:     total,
		SettlementCount:  count,
		PendingCount:     pending,
		IsFullySettled:   !unsettled,
		LastSettlementAt: lastAt,
	})
}

func (s *SettlementRequestService) requireMembers(ctx context.Context, groupID int64, userIDs ...int64) error {
	exists, err := s.members.GroupExists(ctx, groupID)
	if err != nil {
		return err
	}
	if !exists {
		return model.NewNotFoundError("group not found")
	}
	for _, userID := range userIDs {
		member, err := s.members.IsMember(ctx, groupID, userID)
		if err != nil {
			return err
		}
		if !member {
			return model.NewValidationError("user is not a member of the group")
		}
	}
	return nil
}
