package subscription

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/realtruedate/backend/internal/db"
	"github.com/realtruedate/backend/internal/middleware"
	"github.com/realtruedate/backend/internal/response"
	"github.com/realtruedate/backend/internal/server"
	"github.com/realtruedate/backend/internal/utils/pagination"
)

const pageSize = 20

// Handler exposes plans and subscriptions over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes() []server.Route {
	user := []db.Role{db.RoleUser}
	admin := []db.Role{db.RoleAdmin}
	return []server.Route{
		{Method: http.MethodGet, Path: "/api/plans", Handler: h.listPlans},
		{Method: http.MethodGet, Path: "/api/plans/:id", Handler: h.getPlan},
		{Method: http.MethodPost, Path: "/api/admin/plans", Roles: admin, Handler: h.createPlan},
		{Method: http.MethodPatch, Path: "/api/admin/plans/:id/toggle", Roles: admin, Handler: h.togglePlan},
		{Method: http.MethodPost, Path: "/api/subscriptions", Roles: user, Handler: h.subscribe},
		{Method: http.MethodGet, Path: "/api/subscriptions", Roles: user, Handler: h.listOwn},
		{Method: http.MethodDelete, Path: "/api/subscriptions/:id", Roles: []db.Role{db.RoleUser, db.RoleAdmin}, Handler: h.cancel},
		{Method: http.MethodGet, Path: "/api/payment-methods", Roles: user, Handler: h.paymentMethods},
		{Method: http.MethodGet, Path: "/api/admin/subscriptions", Roles: admin, Handler: h.listAll},
		{Method: http.MethodGet, Path: "/api/admin/subscriptions/:id", Roles: admin, Handler: h.getOne},
	}
}

func (h *Handler) listPlans(c *gin.Context) {
	user, authed := middleware.CurrentUser(c)
	isAdmin := authed && user.Role == db.RoleAdmin
	plans, err := h.svc.ListPlans(c.Request.Context(), isAdmin)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, plans, "Plans retrieved successfully")
}

func (h *Handler) getPlan(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, "Invalid plan id", nil, http.StatusBadRequest)
		return
	}
	plan, err := h.svc.GetPlan(c.Request.Context(), id)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, plan, "Plan retrieved successfully")
}

func (h *Handler) createPlan(c *gin.Context) {
	admin, _ := middleware.CurrentUser(c)

	var in PlanInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	plan, err := h.svc.CreatePlan(c.Request.Context(), admin.ID, in)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.Created(c, plan, "Plan created successfully")
}

func (h *Handler) togglePlan(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, "Invalid plan id", nil, http.StatusBadRequest)
		return
	}
	plan, err := h.svc.TogglePlan(c.Request.Context(), id)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, plan, "Plan updated successfully")
}

type subscribeRequest struct {
	PlanID          uint64 `json:"plan_id" binding:"required"`
	PaymentMethodID string `json:"payment_method_id" binding:"required"`
}

func (h *Handler) subscribe(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	sub, err := h.svc.Subscribe(c.Request.Context(), user, req.PlanID, req.PaymentMethodID)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.Created(c, sub, "Subscription created successfully")
}

func (h *Handler) listOwn(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	subs, err := h.svc.ListOwn(c.Request.Context(), user.ID)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, subs, "Subscriptions retrieved successfully")
}

func (h *Handler) cancel(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, "Invalid subscription id", nil, http.StatusBadRequest)
		return
	}
	if err := h.svc.Cancel(c.Request.Context(), user, id); err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, nil, "Subscription canceled successfully")
}

func (h *Handler) paymentMethods(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	methods, err := h.svc.PaymentMethods(c.Request.Context(), user)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, methods, "Payment methods retrieved successfully")
}

func (h *Handler) listAll(c *gin.Context) {
	params := pagination.ParsePage(c.Query("page"), pageSize)
	subs, total, err := h.svc.ListAll(c.Request.Context(), params.Offset(), params.PageSize)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, gin.H{
		"subscriptions": subs,
		"meta":          pagination.BuildMeta(params, total, len(subs)),
	}, "Subscriptions retrieved successfully")
}

func (h *Handler) getOne(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, "Invalid subscription id", nil, http.StatusBadRequest)
		return
	}
	sub, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, sub, "Subscription retrieved successfully")
}
