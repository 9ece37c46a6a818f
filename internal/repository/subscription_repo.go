package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/realtruedate/backend/internal/db"
)

// SubscriptionRepository provides data access for plans and subscriptions.
type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(database *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: database}
}

func (r *SubscriptionRepository) CreatePlan(ctx context.Context, plan *db.SubscriptionPlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *SubscriptionRepository) GetPlan(ctx context.Context, id uint64) (*db.SubscriptionPlan, error) {
	var plan db.SubscriptionPlan
	if err := r.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// ListPlans returns plans, optionally only active ones, newest first.
func (r *SubscriptionRepository) ListPlans(ctx context.Context, activeOnly bool) ([]db.SubscriptionPlan, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	var plans []db.SubscriptionPlan
	err := query.Find(&plans).Error
	return plans, err
}

func (r *SubscriptionRepository) SavePlan(ctx context.Context, plan *db.SubscriptionPlan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}

func (r *SubscriptionRepository) DeletePlan(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&db.SubscriptionPlan{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *SubscriptionRepository) CreateSubscription(ctx context.Context, sub *db.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *SubscriptionRepository) GetSubscription(ctx context.Context, id uint64) (*db.Subscription, error) {
	var sub db.Subscription
	err := r.db.WithContext(ctx).Preload("Plan").First(&sub, id).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) SaveSubscription(ctx context.Context, sub *db.Subscription) error {
	return r.db.WithContext(ctx).Save(sub).Error
}

// ActiveForUser returns the user's active subscription whose window covers
// now, or nil when the user has none. Trialing rows do not grant allowance,
// so the quota path only sees status active.
func (r *SubscriptionRepository) ActiveForUser(ctx context.Context, userID uint64, now time.Time) (*db.Subscription, error) {
	var sub db.Subscription
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Where("user_id = ? AND status = ? AND ends_at >= ?",
			userID, db.SubscriptionActive, now).
		Order("ends_at DESC").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// HasLiveSubscription reports whether the user already holds an active or
// trialing subscription to the plan. Checked before creating a new one.
func (r *SubscriptionRepository) HasLiveSubscription(ctx context.Context, userID, planID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Subscription{}).
		Where("user_id = ? AND plan_id = ? AND status IN ?",
			userID, planID, []db.SubscriptionStatus{db.SubscriptionActive, db.SubscriptionTrialing}).
		Count(&count).Error
	return count > 0, err
}

// PlanNameTaken reports whether a plan with the name already exists.
func (r *SubscriptionRepository) PlanNameTaken(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.SubscriptionPlan{}).
		Where("name = ?", name).
		Count(&count).Error
	return count > 0, err
}

// ListAll returns every subscription, newest first.
func (r *SubscriptionRepository) ListAll(ctx context.Context, offset, limit int) ([]db.Subscription, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&db.Subscription{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var subs []db.Subscription
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&subs).Error
	return subs, total, err
}

// ListForUser returns the user's subscriptions, newest first.
func (r *SubscriptionRepository) ListForUser(ctx context.Context, userID uint64) ([]db.Subscription, error) {
	var subs []db.Subscription
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&subs).Error
	return subs, err
}
