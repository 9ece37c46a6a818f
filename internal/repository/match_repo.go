package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/realtruedate/backend/internal/db"
)

// MatchRepository runs the candidate query for match discovery. Distance
// annotation and ordering happen in the service layer, which keeps the SQL
// portable between MySQL and the SQLite used in tests.
type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// CandidateFilter carries the requester-derived predicate for candidates.
type CandidateFilter struct {
	RequesterID uint64
	// AgeMin/AgeMax are the requester's preference interval; candidates must
	// declare an interval contained in it.
	AgeMin int
	AgeMax int
	// Gender is the requester's InterestedIn value.
	Gender string
	// ExcludeIDs removes blocked users in either direction, when enabled.
	ExcludeIDs []uint64
}

// ListCandidates returns profiles of verified, active users matching the
// filter. Candidates without a location are excluded outright; a candidate
// with no coordinates cannot be distance-ranked.
func (r *MatchRepository) ListCandidates(ctx context.Context, filter CandidateFilter) ([]db.Profile, error) {
	query := r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Joins("JOIN users ON users.id = profiles.user_id").
		Where("profiles.user_id != ?", filter.RequesterID).
		Where("profiles.active = ?", true).
		Where("profiles.has_location = ?", true).
		Where("profiles.age_min >= ? AND profiles.age_max <= ?", filter.AgeMin, filter.AgeMax).
		Where("profiles.gender = ?", filter.Gender).
		Where("users.role = ?", db.RoleUser).
		Where("users.verified = ?", true).
		Where("users.status = ?", db.AccountActive)

	if len(filter.ExcludeIDs) > 0 {
		query = query.Where("profiles.user_id NOT IN ?", filter.ExcludeIDs)
	}

	var profiles []db.Profile
	if err := query.Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}
