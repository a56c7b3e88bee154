package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/splitnest/splitnest/internal/model"
	xhttp "github.com/splitnest/splitnest/pkg/http"
)

type SettlementService interface {
	Create(ctx context.Context, p model.SettlementCreateRequest) (*model.Settlement, error)
	Get(ctx context.Context, id int64) (*model.Settlement, error)
	Confirm(ctx context.Context, id, confirmedBy int64) (*model.Settlement, error)
	Reject(ctx context.Context, id, rejectedBy int64) (*model.Settlement, error)
	List(ctx context.Context, f model.SettlementFilter) ([]*model.Settlement, int64, error)
	SettleAllDebts(ctx context.Context, groupID, userID int64) ([]*model.Settlement, error)
	GetSummary(ctx context.Context, groupID int64) (*model.GroupSettlementSummary, error)
	RefreshSummary(ctx context.Context, groupID int64) error
	GetUserSettlementStatus(ctx context.Context, groupID, userID int64) (*model.UserSettlementStatus, error)
	CheckGroupDeletable(ctx context.Context, groupID int64) (*model.DeletableCheck, error)
	CheckMemberRemovable(ctx context.Context, groupID, userID int64) (*model.RemovableCheck, error)
}

type SettlementHandler struct {
	svc SettlementService
}

func NewSettlementHandler(settlementService SettlementService) *SettlementHandler {
	return &SettlementHandler{svc: settlementService}
}

func RegisterSettlementRoutes(e *router.Group, h *SettlementHandler) {
	e.POST("/settlements", h.CreateSettlement)
	e.GET("/settlements", h.ListSettlements)
	e.GET("/settlements/{id}", h.GetSettlement)
	e.POST("/settlements/{id}/confirm", h.ConfirmSettlement)
	e.POST("/settlements/{id}/reject", h.RejectSettlement)
	e.POST("/groups/{id}/settle-all", h.SettleAllDebts)
	e.GET("/groups/{id}/settlements/summary", h.GetGroupSummary)
	e.POST("/groups/{id}/settlements/summary/refresh", h.RefreshGroupSummary)
	e.GET("/groups/{id}/members/{user_id}/settlement-status", h.GetUserStatus)
	e.GET("/groups/{id}/deletable", h.CheckDeletable)
	e.GET("/groups/{id}/members/{user_id}/removable", h.CheckRemovable)
}

type settlementListResponse struct {
	Items []*model.Settlement `json:"items"`
	Total int64               `json:"total"`
}

type settleAllRequest struct {
	UserID int64 `json:"user_id"`
}

// settlementActionRequest identifies who is confirming or rejecting.
type settlementActionRequest struct {
	UserID int64 `json:"user_id"`
}

type settleAllResponse struct {
	Settlements []*model.Settlement `json:"settlements"`
}

func (h *SettlementHandler) CreateSettlement(ctx *xhttp.RequestCtx) {
	var req model.SettlementCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	settlement, err := h.svc.Create(ctx, req)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, 201, settlement)
}

func (h *SettlementHandler) GetSettlement(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid settlement id")
		return
	}

	settlement, err := h.svc.Get(ctx, id)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, 200, settlement)
}

func (h *SettlementHandler) ConfirmSettlement(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid settlement id")
		return
	}

	var req settlementActionRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	if req.UserID == 0 {
		writeError(ctx, 400, "user_id is required")
		return
	}

	settlement, err := h.svc.Confirm(ctx, id, req.UserID)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, 200, settlement)
}

func (h *SettlementHandler) RejectSettlement(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid settlement id")
		return
	}

	var req settlementActionRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	if req.UserID == 0 {
		writeError(ctx, 400, "user_id is required")
		return
	}

	settlement, err := h.svc.Reject(ctx, id, req.UserID)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, 200, settlement)
}

func (h *SettlementHandler) ListSettlements(ctx *xhttp.RequestCtx) {
	var f model.SettlementFilter
	f.GroupID = queryInt64(ctx, "group_id")
	f.PayerID = queryInt64(ctx, "payer_id")
	f.ReceiverID = queryInt64(ctx, "receiver_id")
	for _, s := range queryCSV(ctx, "status") {
		f.Statuses = append(f.Statuses, model.SettlementStatus(s))
	}
	f.From = queryTime(ctx, "from")
	f.To = queryTime(ctx, "to")
	applyPagination(ctx, &f.Limit, &f.Offset, &f.Desc)

	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, 200, settlementListResponse{Items: items, Total: total})
}

// SettleAllDebts creates confirmed settlements for every debt the
// user currently owes in the group.
func (h *SettlementHandler) SettleAllDebts(ctx *xhttp.RequestCtx) {
	groupID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid group id")
		return
	}

	var req settleAllRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	if req.UserID == 0 {
		writeError(ctx, 400, "user_id is required")
		return
	}

	settlements, err := h.svc.SettleAllDebts(ctx, groupID, req.UserID)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, 201, settleAllResponse{Settlements: settlements})
}

func (h *SettlementHandler) GetGroupSummary(ctx *xhttp.RequestCtx) {
	groupID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid group id")
		return
	}

	summary, err := h.svc.GetSummary(ctx, groupID)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, 200, summary)
}

// RefreshGroupSummary forces a rollup recomputation, for operators
// fixing up data out of band.
func (h *SettlementHandler) RefreshGroupSummary(ctx *xhttp.RequestCtx) {
	groupID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid group id")
		return
	}

	if err := h.svc.RefreshSummary(ctx, groupID); err != nil {
		writeDomainError(ctx, err)
		return
	}

	summary, err := h.svc.GetSummary(ctx, groupID)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, 200, summary)
}

func (h *SettlementHandler) GetUserStatus(ctx *xhttp.RequestCtx) {
	groupID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid group id")
		return
	}
	userID, err := pathInt64(ctx, "user_id")
	if err != nil {
		writeError(ctx, 400, "invalid user id")
		return
	}

	status, err := h.svc.GetUserSettlementStatus(ctx, groupID, userID)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, 200, status)
}

func (h *SettlementHandler) CheckDeletable(ctx *xhttp.RequestCtx) {
	groupID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid group id")
		return
	}

	check, err := h.svc.CheckGroupDeletable(ctx, groupID)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, 200, check)
}

func (h *SettlementHandler) CheckRemovable(ctx *xhttp.RequestCtx) {
	groupID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid group id")
		return
	}
	userID, err := pathInt64(ctx, "user_id")
	if err != nil {
		writeError(ctx, 400, "invalid user id")
		return
	}

	check, err := h.svc.CheckMemberRemovable(ctx, groupID, userID)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, 200, check)
}
