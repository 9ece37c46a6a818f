package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/realtruedate/backend/internal/db"
)

// BlockRepository provides data access for user blocks.
type BlockRepository struct {
	db *gorm.DB
}

func NewBlockRepository(database *gorm.DB) *BlockRepository {
	return &BlockRepository{db: database}
}

// Upsert records a block, updating the reason when the pair already exists.
// Blocking is idempotent from the caller's point of view.
func (r *BlockRepository) Upsert(ctx context.Context, blockerID, blockedID uint64, reason string) (*db.Block, error) {
	block := db.Block{
		BlockerID: blockerID,
		BlockedID: blockedID,
		Reason:    reason,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "blocker_id"}, {Name: "blocked_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"reason"}),
		}).
		Create(&block).Error
	if err != nil {
		return nil, err
	}
	return &block, nil
}

// Delete removes a block. Returns gorm.ErrRecordNotFound when the pair was
// never blocked so unblocking a stranger is visible to the caller.
func (r *BlockRepository) Delete(ctx context.Context, blockerID, blockedID uint64) error {
	result := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&db.Block{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Exists reports whether blocker has blocked blocked.
func (r *BlockRepository) Exists(ctx context.Context, blockerID, blockedID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Block{}).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Count(&count).Error
	return count > 0, err
}

// ListByBlocker returns the rows the user has created, newest first.
func (r *BlockRepository) ListByBlocker(ctx context.Context, blockerID uint64) ([]db.Block, error) {
	var blocks []db.Block
	err := r.db.WithContext(ctx).
		Where("blocker_id = ?", blockerID).
		Order("created_at DESC").
		Find(&blocks).Error
	return blocks, err
}

// InvolvedIDs returns every user id blocked by, or blocking, the given user.
// Used to carve blocked users out of match results in either direction.
func (r *BlockRepository) InvolvedIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var blocks []db.Block
	err := r.db.WithContext(ctx).
		Where("blocker_id = ? OR blocked_id = ?", userID, userID).
		Find(&blocks).Error
	if err != nil {
		return nil, err
	}
	seen := make(map[uint64]struct{}, len(blocks))
	ids := make([]uint64, 0, len(blocks))
	for _, b := range blocks {
		other := b.BlockedID
		if other == userID {
			other = b.BlockerID
		}
		if _, ok := seen[other]; ok {
			continue
		}
		seen[other] = struct{}{}
		ids = append(ids, other)
	}
	return ids, nil
}
