package match

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/realtruedate/backend/internal/db"
	"github.com/realtruedate/backend/internal/middleware"
	"github.com/realtruedate/backend/internal/response"
	"github.com/realtruedate/backend/internal/server"
)

// Handler exposes match discovery and swipes over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes() []server.Route {
	user := []db.Role{db.RoleUser}
	return []server.Route{
		{Method: http.MethodGet, Path: "/api/matches", Roles: user, Handler: h.discover},
		{Method: http.MethodPost, Path: "/api/swipes", Roles: user, Handler: h.swipe},
		{Method: http.MethodGet, Path: "/api/swipes", Roles: user, Handler: h.listSwipes},
		{Method: http.MethodGet, Path: "/api/swipes/allowance", Roles: user, Handler: h.allowance},
	}
}

func (h *Handler) discover(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	results, err := h.svc.Discover(c.Request.Context(), user, time.Now().UTC())
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, results, "Matches retrieved successfully")
}

type swipeRequest struct {
	TargetID  uint64 `json:"target_id" binding:"required"`
	Direction string `json:"direction" binding:"required"`
}

func (h *Handler) swipe(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req swipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	outcome, err := h.svc.RecordSwipe(c.Request.Context(), user, req.TargetID,
		db.SwipeDirection(req.Direction), time.Now().UTC())
	if err != nil {
		response.Err(c, err)
		return
	}
	response.Created(c, outcome, "Swipe recorded successfully")
}

func (h *Handler) listSwipes(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	swipes, err := h.svc.ListRightSwipes(c.Request.Context(), user.ID, time.Now().UTC())
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, swipes, "Swipes retrieved successfully")
}

func (h *Handler) allowance(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	allowance := h.svc.Allowance(c.Request.Context(), user.ID, time.Now().UTC())
	response.OK(c, allowance, "Allowance retrieved successfully")
}
