package profile

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/realtruedate/backend/internal/db"
	"github.com/realtruedate/backend/internal/middleware"
	"github.com/realtruedate/backend/internal/response"
	"github.com/realtruedate/backend/internal/server"
)

// Handler exposes profile CRUD and blocking over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes() []server.Route {
	user := []db.Role{db.RoleUser}
	return []server.Route{
		{Method: http.MethodGet, Path: "/api/profile", Roles: user, Handler: h.own},
		{Method: http.MethodPost, Path: "/api/profile", Roles: user, Handler: h.create},
		{Method: http.MethodPatch, Path: "/api/profile", Roles: user, Handler: h.update},
		{Method: http.MethodDelete, Path: "/api/profile", Roles: user, Handler: h.deactivate},
		{Method: http.MethodGet, Path: "/api/profiles/:id", Roles: user, Handler: h.byID},
		{Method: http.MethodPost, Path: "/api/blocks", Roles: user, Handler: h.block},
		{Method: http.MethodDelete, Path: "/api/blocks/:id", Roles: user, Handler: h.unblock},
		{Method: http.MethodGet, Path: "/api/blocks", Roles: user, Handler: h.listBlocked},
	}
}

func (h *Handler) own(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	view, err := h.svc.Own(c.Request.Context(), user.ID)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, view, "Profile retrieved successfully")
}

func (h *Handler) create(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	view, err := h.svc.Create(c.Request.Context(), user.ID, in)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.Created(c, view, "Profile created successfully")
}

func (h *Handler) update(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var in UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	view, err := h.svc.Update(c.Request.Context(), user.ID, in)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, view, "Profile updated successfully")
}

func (h *Handler) deactivate(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	if err := h.svc.Deactivate(c.Request.Context(), user.ID); err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, nil, "Profile deleted successfully")
}

func (h *Handler) byID(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, "Invalid profile id", nil, http.StatusBadRequest)
		return
	}
	view, err := h.svc.ByID(c.Request.Context(), user.ID, id)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, view, "Profile retrieved successfully")
}

type blockRequest struct {
	UserID uint64 `json:"user_id" binding:"required"`
	Reason string `json:"reason"`
}

func (h *Handler) block(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.svc.Block(c.Request.Context(), user.ID, req.UserID, req.Reason); err != nil {
		response.Err(c, err)
		return
	}
	response.Created(c, nil, "User blocked successfully")
}

func (h *Handler) unblock(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, "Invalid user id", nil, http.StatusBadRequest)
		return
	}
	if err := h.svc.Unblock(c.Request.Context(), user.ID, id); err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, nil, "User unblocked successfully")
}

func (h *Handler) listBlocked(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	blocked, err := h.svc.ListBlocked(c.Request.Context(), user.ID)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, blocked, "Blocked users retrieved successfully")
}
