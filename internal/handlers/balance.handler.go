package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/splitnest/splitnest/internal/model"
	xhttp "github.com/splitnest/splitnest/pkg/http"
)

type BalanceService interface {
	CalculateAllBalances(ctx context.Context, groupID int64) (*model.GroupBalanceSummary, error)
	GetGroupBalanceSummary(ctx context.Context, groupID int64) (*model.GroupBalanceSummary, error)
	CalculateUserBalance(ctx context.Context, groupID, userID int64) (*model.Balance, error)
	ListDebts(ctx context.Context, f model.DebtFilter) ([]*model.DebtEdge, error)
}

type BalanceHandler struct {
	svc BalanceService
}

func NewBalanceHandler(balanceService BalanceService) *BalanceHandler {
	return &BalanceHandler{svc: balanceService}
}

func RegisterBalanceRoutes(e *router.Group, h *BalanceHandler) {
	e.POST("/groups/{id}/balances/recalculate", h.RecalculateBalances)
	e.GET("/groups/{id}/balances", h.GetGroupSummary)
	e.GET("/groups/{id}/balances/{user_id}", h.GetUserBalance)
	e.GET("/groups/{id}/debts", h.ListDebts)
}

type debtListResponse struct {
	Items []*model.DebtEdge `json:"items"`
}

// RecalculateBalances re-derives the whole group's balance sheet and
// debt edges from its expense history.
func (h *BalanceHandler) RecalculateBalances(ctx *xhttp.RequestCtx) {
	groupID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid group id")
		return
	}

	summary, err := h.svc.CalculateAllBalances(ctx, groupID)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, 200, summary)
}

func (h *BalanceHandler) GetGroupSummary(ctx *xhttp.RequestCtx) {
	groupID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid group id")
		return
	}

	summary, err := h.svc.GetGroupBalanceSummary(ctx, groupID)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, 200, summary)
}

func (h *BalanceHandler) GetUserBalance(ctx *xhttp.RequestCtx) {
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

	balance, err := h.svc.CalculateUserBalance(ctx, groupID, userID)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, 200, balance)
}

func (h *BalanceHandler) ListDebts(ctx *xhttp.RequestCtx) {
	groupID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid group id")
		return
	}

	f := model.DebtFilter{GroupID: &groupID}
	f.DebtorID = queryInt64(ctx, "debtor_id")
	f.CreditorID = queryInt64(ctx, "creditor_id")
	if query(ctx, "unsettled") == "true" {
		f.Unsettled = true
	}

	edges, err := h.svc.ListDebts(ctx, f)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, 200, debtListResponse{Items: edges})
}
