package video

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/realtruedate/backend/internal/db"
	"github.com/realtruedate/backend/internal/middleware"
	"github.com/realtruedate/backend/internal/response"
	"github.com/realtruedate/backend/internal/server"
)

// Handler exposes the video pipeline over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes() []server.Route {
	user := []db.Role{db.RoleUser}
	return []server.Route{
		{Method: http.MethodPost, Path: "/api/videos", Roles: user, Handler: h.upload},
		{Method: http.MethodGet, Path: "/api/videos", Roles: user, Handler: h.list},
		{Method: http.MethodGet, Path: "/api/videos/:id", Roles: user, Handler: h.status},
		{Method: http.MethodPost, Path: "/api/videos/:id/reanalyze", Roles: user, Handler: h.reanalyze},
	}
}

func (h *Handler) upload(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, "A file field is required", nil, http.StatusBadRequest)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, "Could not read the uploaded file", nil, http.StatusBadRequest)
		return
	}
	defer file.Close()

	video, err := h.svc.Upload(c.Request.Context(), user.ID, fileHeader.Filename, fileHeader.Size, file)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.Success(c, gin.H{
		"video_id": video.ID,
		"status":   video.Status,
	}, "Video uploaded, analysis scheduled", http.StatusAccepted)
}

func (h *Handler) list(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	videos, err := h.svc.ListOwn(c.Request.Context(), user.ID)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.OK(c, videos, "Videos retrieved successfully")
}

func (h *Handler) status(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, "Invalid video id", nil, http.StatusBadRequest)
		return
	}

	status, err := h.svc.GetStatus(c.Request.Context(), user.ID, id)
	if err != nil {
		response.Err(c, err)
		return
	}
	switch status.Status {
	case db.VideoPending, db.VideoProcessing:
		response.Success(c, status, "Analysis in progress", http.StatusAccepted)
	case db.VideoFailed:
		response.Error(c, "Video analysis failed", gin.H{"video_id": status.VideoID}, http.StatusUnprocessableEntity)
	default:
		response.OK(c, status, "Analysis completed")
	}
}

func (h *Handler) reanalyze(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, "Invalid video id", nil, http.StatusBadRequest)
		return
	}

	status, err := h.svc.Reanalyze(c.Request.Context(), user.ID, id)
	if err != nil {
		response.Err(c, err)
		return
	}
	response.Success(c, status, "Re-analysis scheduled", http.StatusAccepted)
}
