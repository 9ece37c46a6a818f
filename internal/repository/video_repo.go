package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/realtruedate/backend/internal/db"
)

// VideoRepository provides data access for uploaded videos and their
// analysis results.
type VideoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(database *gorm.DB) *VideoRepository {
	return &VideoRepository{db: database}
}

func (r *VideoRepository) Create(ctx context.Context, video *db.Video) error {
	return r.db.WithContext(ctx).Create(video).Error
}

func (r *VideoRepository) GetByID(ctx context.Context, id uint64) (*db.Video, error) {
	var video db.Video
	if err := r.db.WithContext(ctx).First(&video, id).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

// GetForUser fetches a video only when it belongs to the user, so ownership
// checks cannot be skipped by a handler.
func (r *VideoRepository) GetForUser(ctx context.Context, id, userID uint64) (*db.Video, error) {
	var video db.Video
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&video).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *VideoRepository) ListForUser(ctx context.Context, userID uint64) ([]db.Video, error) {
	var videos []db.Video
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("uploaded_at DESC").
		Find(&videos).Error
	return videos, err
}

func (r *VideoRepository) UpdateStatus(ctx context.Context, id uint64, status db.VideoStatus) error {
	return r.db.WithContext(ctx).
		Model(&db.Video{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// SaveResult stores the analysis outcome and marks the video completed in one
// transaction. Re-analysis replaces any prior result for the video.
func (r *VideoRepository) SaveResult(ctx context.Context, result *db.VideoAnalysisResult) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("video_id = ?", result.VideoID).
			Delete(&db.VideoAnalysisResult{}).Error; err != nil {
			return err
		}
		if err := tx.Create(result).Error; err != nil {
			return err
		}
		return tx.Model(&db.Video{}).
			Where("id = ?", result.VideoID).
			Update("status", db.VideoCompleted).Error
	})
}

// GetResult returns the analysis result for a video, or nil when none exists.
func (r *VideoRepository) GetResult(ctx context.Context, videoID uint64) (*db.VideoAnalysisResult, error) {
	var result db.VideoAnalysisResult
	err := r.db.WithContext(ctx).
		Where("video_id = ?", videoID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}
