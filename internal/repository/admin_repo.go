package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/realtruedate/backend/internal/db"
)

// AdminRepository runs the aggregate queries behind the admin dashboard and
// the profile-review listing.
type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(database *gorm.DB) *AdminRepository {
	return &AdminRepository{db: database}
}

// DashboardTotals are the headline counters on the admin dashboard.
type DashboardTotals struct {
	Users               int64   `json:"users"`
	ActiveUsers         int64   `json:"active_users"`
	ActiveSubscriptions int64   `json:"active_subscriptions"`
	Revenue             float64 `json:"revenue"`
}

func (r *AdminRepository) Totals(ctx context.Context, now time.Time) (*DashboardTotals, error) {
	var totals DashboardTotals
	database := r.db.WithContext(ctx)

	if err := database.Model(&db.User{}).
		Where("role = ?", db.RoleUser).
		Count(&totals.Users).Error; err != nil {
		return nil, err
	}
	if err := database.Model(&db.User{}).
		Where("role = ? AND status = ?", db.RoleUser, db.AccountActive).
		Count(&totals.ActiveUsers).Error; err != nil {
		return nil, err
	}

	live := []db.SubscriptionStatus{db.SubscriptionActive, db.SubscriptionTrialing}
	if err := database.Model(&db.Subscription{}).
		Where("status IN ? AND ends_at >= ?", live, now).
		Count(&totals.ActiveSubscriptions).Error; err != nil {
		return nil, err
	}

	// Revenue is the sum of plan prices over live subscriptions. COALESCE
	// keeps the zero-subscription case a 0, not NULL.
	err := database.Model(&db.Subscription{}).
		Select("COALESCE(SUM(subscription_plans.price), 0)").
		Joins("JOIN subscription_plans ON subscription_plans.id = subscriptions.plan_id").
		Where("subscriptions.status IN ? AND subscriptions.ends_at >= ?", live, now).
		Scan(&totals.Revenue).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

// DayCount is one bucket of a per-day series.
type DayCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// RegistrationsPerDay buckets user creations by calendar day over [from, to].
// Days with no registrations are filled in by the caller, not the query.
func (r *AdminRepository) RegistrationsPerDay(ctx context.Context, from, to time.Time) ([]DayCount, error) {
	var rows []DayCount
	err := r.db.WithContext(ctx).
		Model(&db.User{}).
		Select("DATE(created_at) AS day, COUNT(*) AS count").
		Where("role = ? AND created_at >= ? AND created_at <= ?", db.RoleUser, from, to).
		Group("DATE(created_at)").
		Order("day ASC").
		Scan(&rows).Error
	return rows, err
}

// SearchProfiles returns a page of user profiles whose name, email or phone
// matches the search term, plus the unpaged total for pagination meta.
func (r *AdminRepository) SearchProfiles(ctx context.Context, search string, offset, limit int) ([]db.Profile, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Joins("JOIN users ON users.id = profiles.user_id").
		Where("users.role = ?", db.RoleUser)
	if search != "" {
		pattern := "%" + search + "%"
		base = base.Where("profiles.name LIKE ? OR users.email LIKE ? OR profiles.phone LIKE ?",
			pattern, pattern, pattern)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var profiles []db.Profile
	err := base.
		Preload("User").
		Order("profiles.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&profiles).Error
	return profiles, total, err
}
