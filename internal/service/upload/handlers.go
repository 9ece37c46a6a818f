package upload

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/realtruedate/backend/internal/config"
	"github.com/realtruedate/backend/internal/db"
	"github.com/realtruedate/backend/internal/response"
	"github.com/realtruedate/backend/internal/server"
	"github.com/realtruedate/backend/internal/storage"
)

// Handler is the generic authenticated upload surface: validate, store,
// answer with the key and a presigned fetch URL.
type Handler struct {
	cfg     *config.Config
	storage storage.ObjectStorage
	logger  *slog.Logger
}

func NewHandler(cfg *config.Config, store storage.ObjectStorage, logger *slog.Logger) *Handler {
	return &Handler{cfg: cfg, storage: store, logger: logger}
}

func (h *Handler) Routes() []server.Route {
	authed := []db.Role{db.RoleUser, db.RoleAdmin}
	return []server.Route{
		{Method: http.MethodPost, Path: "/api/uploads", Roles: authed, Handler: h.upload},
	}
}

type uploadResponse struct {
	*storage.UploadMeta
	URL string `json:"url"`
}

func (h *Handler) upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, "A file field is required", nil, http.StatusBadRequest)
		return
	}

	meta, err := storage.ValidateFile(h.cfg, fileHeader.Filename, fileHeader.Size)
	if err != nil {
		response.Error(c, err.Error(), nil, http.StatusBadRequest)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, "Could not read the uploaded file", nil, http.StatusBadRequest)
		return
	}
	defer file.Close()

	ctx := c.Request.Context()
	if err := h.storage.Upload(ctx, meta.Key, file, meta.MimeType); err != nil {
		h.logger.Error("upload failed", slog.String("key", meta.Key), slog.Any("error", err))
		response.Error(c, "Upload failed", nil, http.StatusInternalServerError)
		return
	}

	expiry := time.Duration(h.cfg.S3.PresignExpirySeconds) * time.Second
	url, err := h.storage.PresignGet(ctx, meta.Key, expiry)
	if err != nil {
		h.logger.Warn("presign failed", slog.String("key", meta.Key), slog.Any("error", err))
	}
	response.Created(c, uploadResponse{UploadMeta: meta, URL: url}, "File uploaded successfully")
}
