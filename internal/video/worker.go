package video

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"github.com/realtruedate/backend/internal/db"
	"github.com/realtruedate/backend/internal/repository"
	"github.com/realtruedate/backend/internal/storage"
	"github.com/realtruedate/backend/internal/tasks"
)

// Worker consumes analysis jobs: fetch the row, pull the blob, run the
// analyzer, persist the outcome. Retry policy lives in the queue config;
// the handler only decides retryable vs terminal.
type Worker struct {
	videos   *repository.VideoRepository
	storage  storage.ObjectStorage
	analyzer Analyzer
	logger   *slog.Logger
}

func NewWorker(
	videos *repository.VideoRepository,
	store storage.ObjectStorage,
	analyzer Analyzer,
	logger *slog.Logger,
) *Worker {
	return &Worker{videos: videos, storage: store, analyzer: analyzer, logger: logger}
}

// Register attaches the worker's handlers to the queue mux.
func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(tasks.TypeVideoAnalyze, w.HandleVideoAnalyze)
}

func (w *Worker) HandleVideoAnalyze(ctx context.Context, task *asynq.Task) error {
	var payload tasks.VideoAnalyzePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("malformed payload: %v: %w", err, asynq.SkipRetry)
	}
	logger := w.logger.With(slog.Uint64("video_id", payload.VideoID))

	video, err := w.videos.GetByID(ctx, payload.VideoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// the row was deleted after enqueueing; nothing to retry against
			logger.Warn("video row not found, dropping job")
			return fmt.Errorf("video %d not found: %w", payload.VideoID, asynq.SkipRetry)
		}
		return err
	}

	if err := w.videos.UpdateStatus(ctx, video.ID, db.VideoProcessing); err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "analysis-*.mp4")
	if err != nil {
		return w.fail(ctx, logger, video.ID, fmt.Errorf("temp file: %w", err))
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := w.storage.Download(ctx, video.StorageKey, tmp); err != nil {
		return w.fail(ctx, logger, video.ID, fmt.Errorf("download: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return w.fail(ctx, logger, video.ID, err)
	}

	features, err := w.analyzer.Analyze(ctx, tmp.Name())
	if err != nil {
		if errors.Is(err, ErrNoFace) {
			// another attempt would see the same frame
			logger.Info("no face found, marking failed")
			if err := w.videos.UpdateStatus(ctx, video.ID, db.VideoFailed); err != nil {
				return err
			}
			return fmt.Errorf("analysis yielded nothing: %w", asynq.SkipRetry)
		}
		return w.fail(ctx, logger, video.ID, fmt.Errorf("analyze: %w", err))
	}
	if features.Empty() {
		logger.Info("empty feature set, marking failed")
		if err := w.videos.UpdateStatus(ctx, video.ID, db.VideoFailed); err != nil {
			return err
		}
		return fmt.Errorf("analysis yielded nothing: %w", asynq.SkipRetry)
	}

	resultKey, err := w.uploadResult(ctx, video, features)
	if err != nil {
		return w.fail(ctx, logger, video.ID, fmt.Errorf("store result: %w", err))
	}

	result := db.VideoAnalysisResult{
		VideoID:         video.ID,
		SkinColor:       features.SkinColor,
		EyeColor:        features.EyeColor,
		HairColor:       features.HairColor,
		TattoosDetected: features.Tattoos,
		ResultKey:       resultKey,
	}
	if err := w.videos.SaveResult(ctx, &result); err != nil {
		return w.fail(ctx, logger, video.ID, fmt.Errorf("persist result: %w", err))
	}

	logger.Info("video analysis completed")
	return nil
}

// fail marks the row failed and returns a retryable error; the queue decides
// whether another attempt remains.
func (w *Worker) fail(ctx context.Context, logger *slog.Logger, videoID uint64, cause error) error {
	logger.Error("video analysis failed", slog.Any("error", cause))
	if err := w.videos.UpdateStatus(ctx, videoID, db.VideoFailed); err != nil {
		logger.Error("could not mark video failed", slog.Any("error", err))
	}
	return cause
}

func (w *Worker) uploadResult(ctx context.Context, video *db.Video, features *Features) (string, error) {
	body, err := json.Marshal(struct {
		VideoID    uint64    `json:"video_id"`
		AnalyzedAt time.Time `json:"analyzed_at"`
		*Features
	}{
		VideoID:    video.ID,
		AnalyzedAt: time.Now().UTC(),
		Features:   features,
	})
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("results/%d_analysis.json", video.ID)
	if err := w.storage.Upload(ctx, key, bytes.NewReader(body), "application/json"); err != nil {
		return "", err
	}
	return key, nil
}
