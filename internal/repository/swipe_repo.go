package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/realtruedate/backend/internal/db"
)

// ErrDuplicateSwipe reports a second swipe on an ordered pair. The ledger's
// composite primary key turns a concurrent race into one winner and one of
// these.
var ErrDuplicateSwipe = errors.New("swipe already recorded for this pair")

// SwipeRepository provides data access for the append-only swipe ledger.
type SwipeRepository struct {
	db *gorm.DB
}

func NewSwipeRepository(database *gorm.DB) *SwipeRepository {
	return &SwipeRepository{db: database}
}

// Create inserts a swipe row. Unlike an upsert, a conflicting pair is an
// error: swipes are immutable once recorded.
func (r *SwipeRepository) Create(ctx context.Context, userID, targetID uint64, direction db.SwipeDirection) (*db.Swipe, error) {
	swipe := db.Swipe{
		UserID:    userID,
		TargetID:  targetID,
		Direction: direction,
	}
	err := r.db.WithContext(ctx).Create(&swipe).Error
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSwipe
		}
		return nil, err
	}
	return &swipe, nil
}

// Exists reports whether the ordered pair already has a swipe.
func (r *SwipeRepository) Exists(ctx context.Context, userID, targetID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Swipe{}).
		Where("user_id = ? AND target_id = ?", userID, targetID).
		Count(&count).Error
	return count > 0, err
}

// ListRight returns the user's right swipes, newest first.
func (r *SwipeRepository) ListRight(ctx context.Context, userID uint64) ([]db.Swipe, error) {
	var swipes []db.Swipe
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND direction = ?", userID, db.SwipeRight).
		Order("created_at DESC").
		Find(&swipes).Error
	return swipes, err
}

// CountInWindow counts the user's swipes with created_at in [from, to].
func (r *SwipeRepository) CountInWindow(ctx context.Context, userID uint64, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Swipe{}).
		Where("user_id = ? AND created_at >= ? AND created_at <= ?", userID, from, to).
		Count(&count).Error
	return count, err
}

// LastInWindow returns the timestamp of the user's most recent swipe in
// [from, to], or nil when there is none.
func (r *SwipeRepository) LastInWindow(ctx context.Context, userID uint64, from, to time.Time) (*time.Time, error) {
	var swipe db.Swipe
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ? AND created_at <= ?", userID, from, to).
		Order("created_at DESC").
		First(&swipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ts := swipe.CreatedAt
	return &ts, nil
}

// isUniqueViolation matches the duplicate-key errors of both MySQL and the
// SQLite driver used in tests.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
