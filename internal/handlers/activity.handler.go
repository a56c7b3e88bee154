package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/splitnest/splitnest/internal/model"
	xhttp "github.com/splitnest/splitnest/pkg/http"
)

type ActivityService interface {
	List(ctx context.Context, f model.ActivityFilter) ([]*model.Activity, int64, error)
}

type ActivityHandler struct {
	svc ActivityService
}

func NewActivityHandler(activityService ActivityService) *ActivityHandler {
	return &ActivityHandler{svc: activityService}
}

func RegisterActivityRoutes(e *router.Group, h *ActivityHandler) {
	e.GET("/groups/{id}/activities", h.ListActivities)
}

type activityListResponse struct {
	Items []*model.Activity `json:"items"`
	Total int64             `json:"total"`
}

func (h *ActivityHandler) ListActivities(ctx *xhttp.RequestCtx) {
	groupID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid group id")
		return
	}

	f := model.ActivityFilter{GroupID: &groupID}
	f.UserID = queryInt64(ctx, "user_id")
	for _, s := range queryCSV(ctx, "type") {
		f.Types = append(f.Types, model.ActivityType(s))
	}
	var desc bool
	applyPagination(ctx, &f.Limit, &f.Offset, &desc)

	items, total, err := h.svc.List(ctx, f)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, 200, activityListResponse{Items: items, Total: total})
}
