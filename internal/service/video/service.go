package video

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/realtruedate/backend/internal/config"
	"github.com/realtruedate/backend/internal/db"
	apperr "github.com/realtruedate/backend/internal/errors"
	"github.com/realtruedate/backend/internal/repository"
	"github.com/realtruedate/backend/internal/storage"
	"github.com/realtruedate/backend/internal/tasks"
)

// Service implements the video surface: upload, status, result, re-analyze.
// The analysis itself runs in the worker process.
type Service struct {
	cfg     *config.Config
	videos  *repository.VideoRepository
	storage storage.ObjectStorage
	tasks   tasks.Enqueuer
	logger  *slog.Logger
}

func NewService(
	cfg *config.Config,
	videos *repository.VideoRepository,
	store storage.ObjectStorage,
	enqueuer tasks.Enqueuer,
	logger *slog.Logger,
) *Service {
	return &Service{cfg: cfg, videos: videos, storage: store, tasks: enqueuer, logger: logger}
}

// Upload validates and stores the blob, creates the pending row and hands
// the job to the queue. Returns immediately; analysis is asynchronous.
func (s *Service) Upload(ctx context.Context, userID uint64, fileName string, size int64, body io.Reader) (*db.Video, error) {
	meta, err := storage.ValidateFile(s.cfg, fileName, size)
	if err != nil {
		return nil, apperr.Invalid(err.Error())
	}
	if !strings.HasPrefix(meta.MimeType, "video") {
		return nil, apperr.Invalid("Only video files can be analyzed")
	}

	if err := s.storage.Upload(ctx, meta.Key, body, meta.MimeType); err != nil {
		return nil, err
	}

	video := db.Video{
		UserID:     userID,
		StorageKey: meta.Key,
		Status:     db.VideoPending,
		Metadata: db.JSONMap{
			"file_name": meta.FileName,
			"mime_type": meta.MimeType,
			"size":      meta.Size,
		},
	}
	if err := s.videos.Create(ctx, &video); err != nil {
		return nil, err
	}

	if err := s.tasks.EnqueueVideoAnalysis(ctx, video.ID); err != nil {
		// the row stays pending; re-analyze can pick it up later
		s.logger.Error("failed to enqueue analysis",
			slog.Uint64("video_id", video.ID), slog.Any("error", err))
		return nil, apperr.Internal("Could not schedule video analysis")
	}
	return &video, nil
}

// Status describes where a video sits in the pipeline, with the result
// attached once analysis completed.
type Status struct {
	VideoID uint64                  `json:"video_id"`
	Status  db.VideoStatus          `json:"status"`
	Result  *db.VideoAnalysisResult `json:"result,omitempty"`
}

// GetStatus reports the pipeline state of the caller's video.
func (s *Service) GetStatus(ctx context.Context, userID, videoID uint64) (*Status, error) {
	video, err := s.videos.GetForUser(ctx, videoID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Video not found")
		}
		return nil, err
	}

	status := Status{VideoID: video.ID, Status: video.Status}
	if video.Status == db.VideoCompleted {
		result, err := s.videos.GetResult(ctx, video.ID)
		if err != nil {
			return nil, err
		}
		status.Result = result
	}
	return &status, nil
}

func (s *Service) ListOwn(ctx context.Context, userID uint64) ([]db.Video, error) {
	return s.videos.ListForUser(ctx, userID)
}

// Reanalyze resets a terminal video to processing and re-enqueues the job.
// In-flight videos cannot be re-analyzed.
func (s *Service) Reanalyze(ctx context.Context, userID, videoID uint64) (*Status, error) {
	video, err := s.videos.GetForUser(ctx, videoID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Video not found")
		}
		return nil, err
	}
	if video.Status != db.VideoCompleted && video.Status != db.VideoFailed {
		return nil, apperr.Invalid("Video analysis is still in progress")
	}

	if err := s.videos.UpdateStatus(ctx, video.ID, db.VideoProcessing); err != nil {
		return nil, err
	}
	if err := s.tasks.EnqueueVideoAnalysis(ctx, video.ID); err != nil {
		s.logger.Error("failed to enqueue re-analysis",
			slog.Uint64("video_id", video.ID), slog.Any("error", err))
		return nil, apperr.Internal("Could not schedule video analysis")
	}
	return &Status{VideoID: video.ID, Status: db.VideoProcessing}, nil
}
