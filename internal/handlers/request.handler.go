package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/splitnest/splitnest/internal/model"
	xhttp "github.com/splitnest/splitnest/pkg/http"
)

type SettlementRequestService interface {
	Create(ctx context.Context, p model.SettlementRequestCreateRequest) (*model.SettlementRequest, error)
	Get(ctx context.Context, id int64) (*model.SettlementRequest, error)
	Accept(ctx context.Context, id int64, responseMessage string) (*model.Settlement, error)
	Reject(ctx context.Context, id int64, responseMessage string) (*model.SettlementRequest, error)
	List(ctx context.Context, f model.SettlementRequestFilter) ([]*model.SettlementRequest, int64, error)
	ExpirePending(ctx context.Context) (int64, error)
}

type SettlementRequestHandler struct {
	svc SettlementRequestService
}

func NewSettlementRequestHandler(requestService SettlementRequestService) *SettlementRequestHandler {
	return &SettlementRequestHandler{svc: requestService}
}

func RegisterSettlementRequestRoutes(e *router.Group, h *SettlementRequestHandler) {
	e.POST("/settlement-requests", h.CreateRequest)
	e.GET("/settlement-requests", h.ListRequests)
	e.GET("/settlement-requests/{id}", h.GetRequest)
	e.POST("/settlement-requests/{id}/accept", h.AcceptRequest)
	e.POST("/settlement-requests/{id}/reject", h.RejectRequest)
	e.POST("/settlement-requests/expire", h.ExpireRequests)
}

type requestListResponse struct {
	Items []*model.SettlementRequest `json:"items"`
	Total int64                      `json:"total"`
}

type expireResponse struct {
	Expired int64 `json:"expired"`
}

type respondRequestBody struct {
	ResponseMessage string `json:"response_message"`
}

// readResponseMessage parses the optional accept/reject body.
func readResponseMessage(ctx *xhttp.RequestCtx) (string, error) {
	if len(ctx.PostBody()) == 0 {
		return "", nil
	}
	var body respondRequestBody
	if err := readJSON(ctx, &body); err != nil {
		return "", err
	}
	return body.ResponseMessage, nil
}

func (h *SettlementRequestHandler) CreateRequest(ctx *xhttp.RequestCtx) {
	var req model.SettlementRequestCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	request, err := h.svc.Create(ctx, req)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, 201, request)
}

func (h *SettlementRequestHandler) GetRequest(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid request id")
		return
	}

	request, err := h.svc.Get(ctx, id)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, 200, request)
}

// AcceptRequest resolves the request and answers with the pending
// settlement it created.
func (h *SettlementRequestHandler) AcceptRequest(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid request id")
		return
	}

	message, err := readResponseMessage(ctx)
	if err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	settlement, err := h.svc.Accept(ctx, id, message)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, 201, settlement)
}

func (h *SettlementRequestHandler) RejectRequest(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid request id")
		return
	}

	message, err := readResponseMessage(ctx)
	if err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	request, err := h.svc.Reject(ctx, id, message)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, 200, request)
}

func (h *SettlementRequestHandler) ListRequests(ctx *xhttp.RequestCtx) {
	var f model.SettlementRequestFilter
	f.GroupID = queryInt64(ctx, "group_id")
	f.RequesterID = queryInt64(ctx, "requester_id")
	f.RequesteeID = queryInt64(ctx, "requestee_id")
	for _, s := range queryCSV(ctx, "status") {
		f.Statuses = append(f.Statuses, model.SettlementRequestStatus(s))
	}
	applyPagination(ctx, &f.Limit, &f.Offset, &f.Desc)

	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, 200, requestListResponse{Items: items, Total: total})
}

// ExpireRequests sweeps stale pending requests on demand. The sweeper
// binary runs the same operation on a schedule.
func (h *SettlementRequestHandler) ExpireRequests(ctx *xhttp.RequestCtx) {
	n, err := h.svc.ExpirePending(ctx)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, 200, expireResponse{Expired: n})
}
