package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/realtruedate/backend/internal/db"
	"github.com/realtruedate/backend/internal/response"
	"github.com/realtruedate/backend/internal/server"
	"github.com/realtruedate/backend/internal/utils/pagination"
)

const pageSize = 20

// Handler exposes the admin dashboard and profile review over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes() []server.Route {
	admin := []db.Role{db.RoleAdmin}
	return []server.Route{
		{Method: http.MethodGet, Path: "/api/admin/dashboard", Roles: admin, Handler: h.dashboard},
		{Method: http.MethodGet, Path: "/api/admin/profiles", Roles: admin, Handler: h.reviewProfiles},
	}
}

func (h *Handler) dashboard(c *gin.Context) {
	periodDays := 30
	if raw := c.Query("period_days"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 365 {
			periodDays = n
		}
	}
	dashboard, err := h.svc.BuildDashboard(c.Request.Context(), periodDays, time.Now().UTC())
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, dashboard, "Dashboard retrieved successfully")
}

func (h *Handler) reviewProfiles(c *gin.Context) {
	params := pagination.ParsePage(c.Query("page"), pageSize)
	entries, total, err := h.svc.ReviewProfiles(c.Request.Context(),
		c.Query("search"), params.Offset(), params.PageSize, time.Now().UTC())
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, gin.H{
		"profiles": entries,
		"meta":     pagination.BuildMeta(params, total, len(entries)),
	}, "Profiles retrieved successfully")
}
