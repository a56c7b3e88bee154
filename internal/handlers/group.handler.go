package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/splitnest/splitnest/internal/model"
	xhttp "github.com/splitnest/splitnest/pkg/http"
)

type GroupService interface {
	CreateUser(ctx context.Context, email, name string) (*model.User, error)
	CreateGroup(ctx context.Context, name string, createdByID int64) (*model.Group, error)
	GetGroup(ctx context.Context, groupID int64) (*model.Group, error)
	AddMember(ctx context.Context, groupID, userID int64) (*model.Membership, error)
	RemoveMember(ctx context.Context, groupID, userID int64) error
	DeleteGroup(ctx context.Context, groupID int64) error
}

type GroupHandler struct {
	svc GroupService
}

func NewGroupHandler(groupService GroupService) *GroupHandler {
	return &GroupHandler{svc: groupService}
}

func RegisterGroupRoutes(e *router.Group, h *GroupHandler) {
	e.POST("/users", h.CreateUser)
	e.POST("/groups", h.CreateGroup)
	e.GET("/groups/{id}", h.GetGroup)
	e.DELETE("/groups/{id}", h.DeleteGroup)
	e.POST("/groups/{id}/members", h.AddMember)
	e.DELETE("/groups/{id}/members/{user_id}", h.RemoveMember)
}

type createUserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type createGroupRequest struct {
	Name        string `json:"name"`
	CreatedByID int64  `json:"created_by_id"`
}

type addMemberRequest struct {
	UserID int64 `json:"user_id"`
}

func (h *GroupHandler) CreateUser(ctx *xhttp.RequestCtx) {
	var req createUserRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	user, err := h.svc.CreateUser(ctx, req.Email, req.Name)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, 201, user)
}

func (h *GroupHandler) CreateGroup(ctx *xhttp.RequestCtx) {
	var req createGroupRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}

	group, err := h.svc.CreateGroup(ctx, req.Name, req.CreatedByID)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, 201, group)
}

func (h *GroupHandler) GetGroup(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid group id")
		return
	}

	group, err := h.svc.GetGroup(ctx, id)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, 200, group)
}

// DeleteGroup refuses with 409 while the group still has unsettled
// balances or pending settlements.
func (h *GroupHandler) DeleteGroup(ctx *xhttp.RequestCtx) {
	id, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid group id")
		return
	}

	if err := h.svc.DeleteGroup(ctx, id); err != nil {
		writeDomainError(ctx, err)
		return
	}
	ctx.Response.SetStatusCode(204)
}

func (h *GroupHandler) AddMember(ctx *xhttp.RequestCtx) {
	groupID, err := pathInt64(ctx, "id")
	if err != nil {
		writeError(ctx, 400, "invalid group id")
		return
	}

	var req addMemberRequest
	if err := readJSON(ctx, &req); err != nil {
		writeError(ctx, 400, "invalid JSON: "+err.Error())
		return
	}
	if req.UserID == 0 {
		writeError(ctx, 400, "user_id is required")
		return
	}

	membership, err := h.svc.AddMember(ctx, groupID, req.UserID)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, 201, membership)
}

func (h *GroupHandler) RemoveMember(ctx *xhttp.RequestCtx) {
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

	if err := h.svc.RemoveMember(ctx, groupID, userID); err != nil {
		writeDomainError(ctx, err)
		return
	}
	ctx.Response.SetStatusCode(204)
}
