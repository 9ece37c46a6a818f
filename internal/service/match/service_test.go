package match_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/realtruedate/backend/internal/cache"
	"github.com/realtruedate/backend/internal/config"
	appdb "github.com/realtruedate/backend/internal/db"
	apperr "github.com/realtruedate/backend/internal/errors"
	"github.com/realtruedate/backend/internal/repository"
	"github.com/realtruedate/backend/internal/service/match"
	"github.com/realtruedate/backend/internal/service/quota"
)

type stubStorage struct{}

func (stubStorage) Upload(context.Context, string, io.Reader, string) error { return nil }
func (stubStorage) Download(context.Context, string, io.Writer) error       { return nil }
func (stubStorage) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://example.com/" + key, nil
}

type fixture struct {
	db     *gorm.DB
	cfg    *config.Config
	blocks *repository.BlockRepository
	svc    *match.Service
}

func setup(t *testing.T, excludeBlocked bool) *fixture {
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

	cfg := &config.Config{}
	cfg.Match.ExcludeBlocked = excludeBlocked
	cfg.S3.PresignExpirySeconds = 300

	users := repository.NewUserRepository(database)
	swipes := repository.NewSwipeRepository(database)
	subs := repository.NewSubscriptionRepository(database)
	blocks := repository.NewBlockRepository(database)
	quotaSvc := quota.NewService(users, swipes, subs, redisCache, slog.Default())

	svc := match.NewService(cfg, users,
		repository.NewMatchRepository(database), swipes, blocks,
		quotaSvc, stubStorage{}, slog.Default())
	return &fixture{db: database, cfg: cfg, blocks: blocks, svc: svc}
}

func (f *fixture) seedUser(t *testing.T, email, gender, interestedIn string, lat, lng float64, freeSwipes int) *appdb.User {
	t.Helper()
	user := appdb.User{Email: email, PasswordHash: "x", Role: appdb.RoleUser,
		Verified: true, Status: appdb.AccountActive}
	if err := f.db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	profile := appdb.Profile{
		UserID: user.ID, Name: email,
		Dob:    time.Now().UTC().AddDate(-30, 0, -7),
		Gender: gender, InterestedIn: interestedIn,
		AgeMin: 18, AgeMax: 35,
		Lat: lat, Lng: lng, HasLocation: true,
		Active: true, FreeSwipes: freeSwipes,
		Images: appdb.StringList{"images/p.jpg"},
	}
	if err := f.db.Create(&profile).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return &user
}

func TestDiscoverOrdersByDistance(t *testing.T) {
	f := setup(t, false)
	now := time.Now().UTC()

	requester := f.seedUser(t, "req@example.com", "female", "male", 40.0, -73.0, 5)
	far := f.seedUser(t, "far@example.com", "male", "female", 41.0, -74.0, 5)
	near := f.seedUser(t, "near@example.com", "male", "female", 40.01, -73.01, 5)

	results, err := f.svc.Discover(context.Background(), requester, now)
	assert.NoError(t, err)
	if assert.Len(t, results, 2) {
		assert.Equal(t, near.ID, results[0].UserID)
		assert.Equal(t, far.ID, results[1].UserID)
		assert.Less(t, results[0].DistanceKm, results[1].DistanceKm)
		assert.Equal(t, 30, results[0].Age)
		assert.Equal(t, []string{"https://example.com/images/p.jpg"}, results[0].Images)
	}
}

func TestDiscoverRequiresVerifiedActiveAccount(t *testing.T) {
	f := setup(t, false)
	requester := f.seedUser(t, "req@example.com", "female", "male", 40.0, -73.0, 5)
	requester.Verified = false

	_, err := f.svc.Discover(context.Background(), requester, time.Now().UTC())
	var e *apperr.Error
	if assert.ErrorAs(t, err, &e) {
		assert.Equal(t, 400, e.Status)
	}
}

func TestDiscoverRequiresLocation(t *testing.T) {
	f := setup(t, false)
	requester := f.seedUser(t, "req@example.com", "female", "male", 40.0, -73.0, 5)
	assert.NoError(t, f.db.Model(&appdb.Profile{}).
		Where("user_id = ?", requester.ID).
		Update("has_location", false).Error)

	_, err := f.svc.Discover(context.Background(), requester, time.Now().UTC())
	var e *apperr.Error
	if assert.ErrorAs(t, err, &e) {
		assert.Equal(t, 400, e.Status)
	}
}

func TestDiscoverBlockExclusionFlag(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	// flag off: blocked users still show up
	f := setup(t, false)
	requester := f.seedUser(t, "req@example.com", "female", "male", 40.0, -73.0, 5)
	blocked := f.seedUser(t, "b@example.com", "male", "female", 40.1, -73.1, 5)
	_, _ = f.blocks.Upsert(ctx, requester.ID, blocked.ID, "")

	results, err := f.svc.Discover(ctx, requester, now)
	assert.NoError(t, err)
	assert.Len(t, results, 1)

	// flag on: both directions carved out
	f = setup(t, true)
	requester = f.seedUser(t, "req@example.com", "female", "male", 40.0, -73.0, 5)
	blockedByMe := f.seedUser(t, "b@example.com", "male", "female", 40.1, -73.1, 5)
	blocksMe := f.seedUser(t, "c@example.com", "male", "female", 40.2, -73.2, 5)
	kept := f.seedUser(t, "d@example.com", "male", "female", 40.3, -73.3, 5)
	_, _ = f.blocks.Upsert(ctx, requester.ID, blockedByMe.ID, "")
	_, _ = f.blocks.Upsert(ctx, blocksMe.ID, requester.ID, "")

	results, err = f.svc.Discover(ctx, requester, now)
	assert.NoError(t, err)
	if assert.Len(t, results, 1) {
		assert.Equal(t, kept.ID, results[0].UserID)
	}
}

func TestRecordSwipe(t *testing.T) {
	f := setup(t, false)
	ctx := context.Background()
	now := time.Now().UTC()

	swiper := f.seedUser(t, "a@example.com", "male", "female", 40.0, -73.0, 5)
	target := f.seedUser(t, "b@example.com", "female", "male", 40.1, -73.1, 5)

	outcome, err := f.svc.RecordSwipe(ctx, swiper, target.ID, appdb.SwipeRight, now)
	assert.NoError(t, err)
	assert.Equal(t, target.ID, outcome.TargetID)
	assert.False(t, outcome.Blocked)

	// duplicate pair
	_, err = f.svc.RecordSwipe(ctx, swiper, target.ID, appdb.SwipeLeft, now)
	var e *apperr.Error
	if assert.ErrorAs(t, err, &e) {
		assert.Equal(t, 400, e.Status)
	}

	// self swipe
	_, err = f.svc.RecordSwipe(ctx, swiper, swiper.ID, appdb.SwipeRight, now)
	assert.Error(t, err)

	// bad direction
	_, err = f.svc.RecordSwipe(ctx, swiper, target.ID, "up", now)
	assert.Error(t, err)
}

func TestRecordSwipePastExhaustion(t *testing.T) {
	f := setup(t, false)
	ctx := context.Background()
	now := time.Now().UTC()

	swiper := f.seedUser(t, "a@example.com", "male", "female", 40.0, -73.0, 2)
	first := f.seedUser(t, "b@example.com", "female", "male", 40.1, -73.1, 5)
	second := f.seedUser(t, "c@example.com", "female", "male", 40.2, -73.2, 5)
	third := f.seedUser(t, "d@example.com", "female", "male", 40.3, -73.3, 5)

	_, err := f.svc.RecordSwipe(ctx, swiper, first.ID, appdb.SwipeRight, now)
	assert.NoError(t, err)
	_, err = f.svc.RecordSwipe(ctx, swiper, second.ID, appdb.SwipeLeft, now)
	assert.NoError(t, err)

	// the accountant reports, it does not gate: swiping past the allowance
	// still records the row, and the reported remainder floors at zero
	outcome, err := f.svc.RecordSwipe(ctx, swiper, third.ID, appdb.SwipeRight, now)
	assert.NoError(t, err)
	assert.Equal(t, third.ID, outcome.TargetID)

	allowance := f.svc.Allowance(ctx, swiper.ID, now)
	assert.False(t, allowance.Unlimited)
	assert.Equal(t, int64(0), allowance.Remaining)

	var count int64
	f.db.Model(&appdb.Swipe{}).Where("user_id = ?", swiper.ID).Count(&count)
	assert.Equal(t, int64(3), count)
}

func TestListRightSwipes(t *testing.T) {
	f := setup(t, false)
	ctx := context.Background()
	now := time.Now().UTC()

	swiper := f.seedUser(t, "a@example.com", "male", "female", 40.0, -73.0, 5)
	target := f.seedUser(t, "b@example.com", "female", "male", 40.1, -73.1, 5)

	// empty history is a 404
	_, err := f.svc.ListRightSwipes(ctx, swiper.ID, now)
	var e *apperr.Error
	if assert.ErrorAs(t, err, &e) {
		assert.Equal(t, 404, e.Status)
	}

	_, err = f.svc.RecordSwipe(ctx, swiper, target.ID, appdb.SwipeRight, now)
	assert.NoError(t, err)

	swipes, err := f.svc.ListRightSwipes(ctx, swiper.ID, now)
	assert.NoError(t, err)
	if assert.Len(t, swipes, 1) {
		assert.Equal(t, target.ID, swipes[0].TargetID)
		assert.Equal(t, "b@example.com", swipes[0].Name)
	}
}
