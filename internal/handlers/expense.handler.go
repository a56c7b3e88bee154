package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/splitnest/splitnest/internal/model"
	xhttp "github.com/splitnest/splitnest/pkg/http"
)

type ExpenseService interface {
	Create(ctx context.Context, p model.ExpenseCreateRequest) (*model.Expense, error)
	Get(ctx context.Context, id int64) (*model.Expense, error)
	Update(ctx context.Context, id int64, p model.ExpenseUpdateRequest) (*model.Expense, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f model.ExpenseFilter) ([]*model.Expense, int64, error)
}

type ExpenseHandler struct {
	svc ExpenseService
}

func NewExpenseHandler(expenseService ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{svc: expenseService}
}

func RegisterExpenseRoutes(e *router.Group, h *ExpenseHandler) {
	e.POST("/expenses", h.CreateExpense)
	e.GET("/expenses", h.ListExpenses)
	e.GET("/expenses/{id}", h.GetExpense)
	e.PUT("/expenses/{id}", h.UpdateExpense)
	e.DELETE("/expenses/{id}", h.DeleteExpense)
}

type expenseListResponse struct {
	Items []*model.Expense `json:"items"`
	Total int64            `json:"total"`
}

func (h *ExpenseHandler) CreateExpense(ctx *xhttp.RequestCtx) {
	var req model.ExpenseCreateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	expense, err := h.svc.Create(ctx, req)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, 201, expense)
}

func (h *ExpenseHandler) GetExpense(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid expense id")
		return
	}

	expense, err := h.svc.Get(ctx, id)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, 200, expense)
}

func (h *ExpenseHandler) UpdateExpense(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid expense id")
		return
	}

	var req model.ExpenseUpdateRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	expense, err := h.svc.Update(ctx, id, req)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, 200, expense)
}

func (h *ExpenseHandler) DeleteExpense(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid expense id")
		return
	}

	if err := h.svc.Delete(ctx, id); err != nil {
		writeDomainError(ctx, err)
		return
	}
	ctx.Response.SetStatusCode(204)
}

func (h *ExpenseHandler) ListExpenses(ctx *xhttp.RequestCtx) {
	var f model.ExpenseFilter
	f.GroupID = queryInt64(ctx, "group_id")
	f.PaidByID = queryInt64(ctx, "paid_by_id")
	f.From = queryTime(ctx, "from")
	f.To = queryTime(ctx, "to")
	applyPagination(ctx, &f.Limit, &f.Offset, &f.Desc)

	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, 200, expenseListResponse{Items: items, Total: total})
}
