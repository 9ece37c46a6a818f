package quota_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/realtruedate/backend/internal/cache"
	appdb "github.com/realtruedate/backend/internal/db"
	"github.com/realtruedate/backend/internal/repository"
	"github.com/realtruedate/backend/internal/service/quota"
)

type fixture struct {
	db    *gorm.DB
	cache *cache.RedisCache
	svc   *quota.Service
	redis *miniredis.Miniredis
}

func setup(t *testing.T) *fixture {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := database.AutoMigrate(appdb.Models()...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	mr := miniredis.RunT(t)
	redisCache := &cache.RedisCache{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}

	svc := quota.NewService(
		repository.NewUserRepository(database),
		repository.NewSwipeRepository(database),
		repository.NewSubscriptionRepository(database),
		redisCache,
		slog.Default(),
	)
	return &fixture{db: database, cache: redisCache, svc: svc, redis: mr}
}

func (f *fixture) seedUser(t *testing.T, freeSwipes int) uint64 {
	t.Helper()
	user := appdb.User{Email: "u@example.com", PasswordHash: "x", Role: appdb.RoleUser,
		Verified: true, Status: appdb.AccountActive}
	if err := f.db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	profile := appdb.Profile{UserID: user.ID,
		Dob: time.Date(1995, 1, 1, 0, 0, 0, 0, time.UTC), FreeSwipes: freeSwipes, Active: true}
	if err := f.db.Create(&profile).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return user.ID
}

func (f *fixture) swipeAt(t *testing.T, userID, targetID uint64, at time.Time) {
	t.Helper()
	if err := f.db.Create(&appdb.Swipe{
		UserID: userID, TargetID: targetID, Direction: appdb.SwipeLeft,
	}).Error; err != nil {
		t.Fatalf("seed swipe: %v", err)
	}
	if err := f.db.Model(&appdb.Swipe{}).
		Where("user_id = ? AND target_id = ?", userID, targetID).
		Update("created_at", at).Error; err != nil {
		t.Fatalf("backdate swipe: %v", err)
	}
}

func (f *fixture) seedSubscription(t *testing.T, userID uint64, unlimited bool, limit int, start, end time.Time) {
	t.Helper()
	plan := appdb.SubscriptionPlan{Name: "plan", Price: 10, Interval: "month",
		UnlimitedSwipes: unlimited, SwipeLimit: limit, Active: true}
	if err := f.db.Create(&plan).Error; err != nil {
		t.Fatalf("seed plan: %v", err)
	}
	if err := f.db.Create(&appdb.Subscription{
		UserID: userID, PlanID: plan.ID, Status: appdb.SubscriptionActive,
		StartsAt: start, EndsAt: end,
	}).Error; err != nil {
		t.Fatalf("seed subscription: %v", err)
	}
}

func TestFreePoolRemaining(t *testing.T) {
	f := setup(t)
	userID := f.seedUser(t, 5)
	now := time.Now().UTC()

	// two swipes this month
	f.swipeAt(t, userID, 100, now.Add(-time.Hour))
	f.swipeAt(t, userID, 101, now.Add(-time.Minute))

	allowance := f.svc.Remaining(context.Background(), userID, now)
	assert.False(t, allowance.Unlimited)
	assert.Equal(t, int64(3), allowance.Remaining)
}

func TestLastMonthSwipesDoNotCount(t *testing.T) {
	f := setup(t)
	userID := f.seedUser(t, 5)
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	f.swipeAt(t, userID, 100, monthStart.Add(-time.Hour))

	allowance := f.svc.Remaining(context.Background(), userID, now)
	assert.Equal(t, int64(5), allowance.Remaining)
}

func TestExhaustedWithoutSubscription(t *testing.T) {
	f := setup(t)
	userID := f.seedUser(t, 2)
	now := time.Now().UTC()

	f.swipeAt(t, userID, 100, now.Add(-2*time.Hour))
	f.swipeAt(t, userID, 101, now.Add(-time.Hour))

	allowance := f.svc.Remaining(context.Background(), userID, now)
	assert.False(t, allowance.Unlimited)
	assert.Equal(t, int64(0), allowance.Remaining)
}

func TestUnlimitedPlan(t *testing.T) {
	f := setup(t)
	userID := f.seedUser(t, 0)
	now := time.Now().UTC()
	f.seedSubscription(t, userID, true, 0, now.Add(-24*time.Hour), now.Add(29*24*time.Hour))

	allowance := f.svc.Remaining(context.Background(), userID, now)
	assert.True(t, allowance.Unlimited)
}

func TestLimitedPlanCountsFromFreeExhaustion(t *testing.T) {
	f := setup(t)
	userID := f.seedUser(t, 1)
	now := time.Now().UTC()
	f.seedSubscription(t, userID, false, 10, now.Add(-10*24*time.Hour), now.Add(20*24*time.Hour))

	// four swipes against one free credit; the pool is long exhausted
	f.swipeAt(t, userID, 100, now.Add(-4*time.Hour))
	f.swipeAt(t, userID, 101, now.Add(-3*time.Hour))
	f.swipeAt(t, userID, 102, now.Add(-2*time.Hour))
	f.swipeAt(t, userID, 103, now.Add(-time.Hour))

	// exhausted-at is the most recent in-window swipe, so the billed window
	// [now-1h, sub end] holds exactly that row: 10 - 1 = 9
	allowance := f.svc.Remaining(context.Background(), userID, now)
	assert.False(t, allowance.Unlimited)
	assert.Equal(t, int64(9), allowance.Remaining)
}

func TestTrialingSubscriptionGrantsNothing(t *testing.T) {
	f := setup(t)
	userID := f.seedUser(t, 1)
	now := time.Now().UTC()

	plan := appdb.SubscriptionPlan{Name: "trial", Price: 10, Interval: "month",
		SwipeLimit: 10, Active: true}
	assert.NoError(t, f.db.Create(&plan).Error)
	assert.NoError(t, f.db.Create(&appdb.Subscription{
		UserID: userID, PlanID: plan.ID, Status: appdb.SubscriptionTrialing,
		StartsAt: now.Add(-24 * time.Hour), EndsAt: now.Add(6 * 24 * time.Hour),
	}).Error)

	// free pool exhausted; the trial period buys no allowance
	f.swipeAt(t, userID, 100, now.Add(-time.Hour))

	allowance := f.svc.Remaining(context.Background(), userID, now)
	assert.False(t, allowance.Unlimited)
	assert.Equal(t, int64(0), allowance.Remaining)
}

func TestExpiredSubscriptionGrantsNothing(t *testing.T) {
	f := setup(t)
	userID := f.seedUser(t, 1)
	now := time.Now().UTC()
	f.seedSubscription(t, userID, true, 0, now.Add(-60*24*time.Hour), now.Add(-30*24*time.Hour))

	f.swipeAt(t, userID, 100, now.Add(-time.Hour))

	allowance := f.svc.Remaining(context.Background(), userID, now)
	assert.False(t, allowance.Unlimited)
	assert.Equal(t, int64(0), allowance.Remaining)
}

func TestAllowanceIsCachedAndInvalidated(t *testing.T) {
	f := setup(t)
	userID := f.seedUser(t, 5)
	now := time.Now().UTC()
	ctx := context.Background()

	allowance := f.svc.Remaining(ctx, userID, now)
	assert.Equal(t, int64(5), allowance.Remaining)

	// a swipe recorded behind the cache's back is invisible until invalidation
	f.swipeAt(t, userID, 100, now)
	allowance = f.svc.Remaining(ctx, userID, now)
	assert.Equal(t, int64(5), allowance.Remaining)

	f.svc.Invalidate(ctx, userID)
	allowance = f.svc.Remaining(ctx, userID, now.Add(time.Minute))
	assert.Equal(t, int64(4), allowance.Remaining)
}

func TestMissingProfileFailsClosed(t *testing.T) {
	f := setup(t)
	now := time.Now().UTC()

	allowance := f.svc.Remaining(context.Background(), 999, now)
	assert.False(t, allowance.Unlimited)
	assert.Equal(t, int64(0), allowance.Remaining)
}
